package lint

import (
	"slices"
	"strings"

	"surgelint/internal/diag"
	"surgelint/internal/source"
)

// ignores is the set of ignore directives found in one file.
type ignores struct {
	wholeFile bool
	fileCodes []string
	// nextLine maps a 1-based line to the codes ignored on it; an empty
	// slice ignores every code.
	nextLine map[uint32][]string
}

func parseDirectives(file *source.File, scan *scanResult, fileDirective, lineDirective string) ignores {
	var out ignores
	codeSeen := false
	for _, c := range scan.comments {
		if c.Kind != CommentLine {
			continue
		}
		name, codes, ok := splitDirective(c.Body())
		if !ok {
			continue
		}
		// файловая директива действует только до первого кода
		if !codeSeen {
			codeSeen = strings.TrimSpace(scan.code[:c.Span.Start]) != ""
		}
		switch {
		case fileDirective != "" && name == fileDirective && !codeSeen:
			if len(codes) == 0 {
				out.wholeFile = true
			}
			out.fileCodes = append(out.fileCodes, codes...)
		case lineDirective != "" && name == lineDirective:
			if out.nextLine == nil {
				out.nextLine = make(map[uint32][]string)
			}
			start, _ := file.Resolve(c.Span)
			line := start.Line + 1
			if len(codes) == 0 {
				out.nextLine[line] = []string{}
				continue
			}
			if prev, ok := out.nextLine[line]; ok && len(prev) == 0 {
				continue
			}
			out.nextLine[line] = append(out.nextLine[line], codes...)
		}
	}
	return out
}

func splitDirective(body string) (name string, codes []string, ok bool) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return "", nil, false
	}
	for _, f := range fields[1:] {
		for _, code := range strings.Split(f, ",") {
			if code != "" {
				codes = append(codes, code)
			}
		}
	}
	return fields[0], codes, true
}

func (ig ignores) suppressed(d *diag.RuleDiagnostic) bool {
	code := string(d.Rule)
	if slices.Contains(ig.fileCodes, code) {
		return true
	}
	if len(ig.nextLine) == 0 {
		return false
	}
	start, _ := d.File.Resolve(d.Span)
	codes, ok := ig.nextLine[start.Line]
	if !ok {
		return false
	}
	return len(codes) == 0 || slices.Contains(codes, code)
}
