package lint

import (
	"errors"
	"slices"
	"sort"

	"surgelint/internal/diag"
)

const (
	TagRecommended = "recommended"
	TagPackage     = "package"
)

// ErrNoRules is returned when rule filtering leaves nothing to run.
var ErrNoRules = errors.New("No rules have been configured") //nolint:staticcheck // user-facing message

// RulesConfig is the rule selection from flags or the manifest.
// A nil Tags means "use the default tags".
type RulesConfig struct {
	Tags    []string
	Include []string
	Exclude []string
}

// ProjectShape describes the manifest the run was configured from.
type ProjectShape struct {
	IsPackage   bool
	IsWorkspace bool
}

// ConfiguredRules is the resolved rule set of a run.
type ConfiguredRules struct {
	Rules []Rule
	// Surface enables the workspace export-surface check.
	Surface bool
}

// IncrementalCacheState returns the sorted rule codes, followed by the
// surface code when the workspace check is active. Any change to it
// invalidates cached results.
func (c ConfiguredRules) IncrementalCacheState() []string {
	names := make([]string, 0, len(c.Rules)+1)
	for _, r := range c.Rules {
		names = append(names, string(r.Code()))
	}
	sort.Strings(names)
	if c.Surface {
		names = append(names, string(diag.SurfaceCode))
	}
	return names
}

// Codes lists the enabled rule codes.
func (c ConfiguredRules) Codes() []diag.Code {
	out := make([]diag.Code, 0, len(c.Rules))
	for _, r := range c.Rules {
		out = append(out, r.Code())
	}
	return out
}

// ConfigureRules resolves cfg against the built-in rules. The surface check
// is implicit for packages and workspaces unless excluded by code.
func ConfigureRules(cfg RulesConfig, shape ProjectShape) ConfiguredRules {
	surfaceCode := string(diag.SurfaceCode)
	implicit := shape.IsPackage || shape.IsWorkspace
	surface := implicit && !slices.Contains(cfg.Exclude, surfaceCode)

	tags := cfg.Tags
	if tags == nil {
		tags = DefaultTags(shape)
	}
	withoutSurface := func(codes []string) []string {
		if codes == nil {
			return nil
		}
		return slices.DeleteFunc(slices.Clone(codes), func(c string) bool { return c == surfaceCode })
	}

	return ConfiguredRules{
		Rules:   FilteredRules(tags, withoutSurface(cfg.Exclude), withoutSurface(cfg.Include)),
		Surface: surface,
	}
}

// ConfigureRulesNonEmpty is ConfigureRules failing with ErrNoRules on an
// empty rule set.
func ConfigureRulesNonEmpty(cfg RulesConfig, shape ProjectShape) (ConfiguredRules, error) {
	rules := ConfigureRules(cfg, shape)
	if len(rules.Rules) == 0 {
		return rules, ErrNoRules
	}
	return rules, nil
}

// DefaultTags returns the tags used when none are configured.
func DefaultTags(shape ProjectShape) []string {
	tags := []string{TagRecommended}
	if shape.IsPackage {
		tags = append(tags, TagPackage)
	}
	return tags
}
