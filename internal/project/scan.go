package project

import (
	"regexp"
	"strings"

	"surgelint/internal/source"
)

var (
	importRe = regexp.MustCompile(`^\s*import\s+([A-Za-z0-9_./-]+)\s*(::[^;]*)?;`)
	fnRe     = regexp.MustCompile(`^\s*(pub\s+)?fn\s+([A-Za-z_]\w*)\s*(<[^>]*>)?\s*(\([^)]*\)\s*(->\s*[^{;]+)?)`)
	typeRe   = regexp.MustCompile(`^\s*(pub\s+)?type\s+([A-Za-z_]\w*)`)
)

// ScanModule extracts imports and top-level declarations from a source file.
// Declarations must fit on one line; block comments are not recognised.
func ScanModule(path, content string) ModuleMeta {
	file := source.NewFile(path, content)
	meta := ModuleMeta{Path: file.Path, File: file}

	off := 0
	for _, line := range strings.SplitAfter(content, "\n") {
		code := stripLineComment(line)
		switch {
		case importRe.MatchString(code):
			m := importRe.FindStringSubmatchIndex(code)
			meta.Imports = append(meta.Imports, ImportMeta{
				Path: code[m[2]:m[3]],
				Span: source.NewSpan(off+m[2], off+m[3]),
			})
		case fnRe.MatchString(code):
			m := fnRe.FindStringSubmatchIndex(code)
			meta.Decls = append(meta.Decls, Decl{
				Kind:          DeclFn,
				Name:          code[m[4]:m[5]],
				Public:        m[2] >= 0,
				Span:          source.NewSpan(off+m[4], off+m[5]),
				Signature:     strings.TrimSpace(code[m[8]:m[9]]),
				HasReturnType: m[10] >= 0,
			})
		case typeRe.MatchString(code):
			m := typeRe.FindStringSubmatchIndex(code)
			meta.Decls = append(meta.Decls, Decl{
				Kind:   DeclType,
				Name:   code[m[4]:m[5]],
				Public: m[2] >= 0,
				Span:   source.NewSpan(off+m[4], off+m[5]),
			})
		}
		off += len(line)
	}
	return meta
}

// stripLineComment drops a // comment that is not inside a string literal.
func stripLineComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '/':
			if !inString && i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}
