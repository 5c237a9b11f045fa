package lint

import (
	"strings"

	"surgelint/internal/diag"
	"surgelint/internal/source"
)

// Rule is one lint check.
type Rule interface {
	Code() diag.Code
	Tags() []string
	Docs() string
	Check(ctx *Context)
}

// Context is what a rule sees while checking one file.
type Context struct {
	File *source.File
	scan *scanResult
	out  []*diag.RuleDiagnostic
}

// Text returns the original file text.
func (c *Context) Text() string { return c.File.Text() }

// Code returns the text with comments and string literal bodies blanked out.
func (c *Context) Code() string { return c.scan.code }

// Comments returns comments in source order.
func (c *Context) Comments() []Comment { return c.scan.comments }

// Lines returns the original text split into lines without terminators,
// together with the byte offset of each line start.
func (c *Context) Lines() ([]string, []int) {
	text := c.File.Text()
	lines := strings.Split(text, "\n")
	starts := make([]int, len(lines))
	off := 0
	for i, l := range lines {
		starts[i] = off
		off += len(l) + 1
	}
	return lines, starts
}

// Report records a diagnostic produced by rule.
func (c *Context) Report(rule Rule, span source.Span, msg string) *diag.RuleDiagnostic {
	d := diag.NewRule(diag.SevWarning, rule.Code(), c.File, span, msg)
	c.out = append(c.out, d)
	return d
}

// meta provides Code/Tags/Docs from the embedded catalog.
type meta struct {
	code diag.Code
}

func (m meta) Code() diag.Code { return m.code }
func (m meta) Tags() []string  { return lookupInfo(m.code).Tags }
func (m meta) Docs() string    { return lookupInfo(m.code).Docs }
