package lint

import (
	"slices"
	"sort"

	"surgelint/internal/diag"
)

// AllRules returns every built-in rule sorted by code.
func AllRules() []Rule {
	rules := []Rule{
		eolLast{meta{CodeEOLLast}},
		emptyImportGroupRule{meta{CodeNoEmptyImportGroup}},
		extraSemicolons{meta{CodeNoExtraSemicolons}},
		multipleEmptyLines{meta{CodeNoMultipleEmptyLine}},
		todoComments{meta{CodeNoTodoComments}},
		trailingSpaces{meta{CodeNoTrailingSpaces}},
	}
	sortRules(rules)
	return rules
}

// RecommendedRules returns the rules tagged "recommended".
func RecommendedRules() []Rule {
	return FilteredRules([]string{TagRecommended}, nil, nil)
}

// FilteredRules selects rules carrying any of tags, adds the rules named in
// include and finally removes the rules named in exclude.
func FilteredRules(tags, exclude, include []string) []Rule {
	var out []Rule
	for _, r := range AllRules() {
		code := string(r.Code())
		switch {
		case slices.Contains(exclude, code):
			continue
		case slices.Contains(include, code):
			out = append(out, r)
		case hasAnyTag(r, tags):
			out = append(out, r)
		}
	}
	return out
}

// RuleByCode finds a built-in rule.
func RuleByCode(code diag.Code) (Rule, bool) {
	for _, r := range AllRules() {
		if r.Code() == code {
			return r, true
		}
	}
	return nil, false
}

func hasAnyTag(r Rule, tags []string) bool {
	for _, t := range r.Tags() {
		if slices.Contains(tags, t) {
			return true
		}
	}
	return false
}

func sortRules(rules []Rule) {
	sort.Slice(rules, func(i, j int) bool { return rules[i].Code() < rules[j].Code() })
}
