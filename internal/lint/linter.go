package lint

import (
	"surgelint/internal/diag"
	"surgelint/internal/source"
)

const (
	DefaultIgnoreFileDirective       = "surgelint-ignore-file"
	DefaultIgnoreDiagnosticDirective = "surgelint-ignore"
)

// Linter runs a fixed rule set over single files. It holds no per-file
// state and may be shared by concurrent workers.
type Linter struct {
	rules         []Rule
	fileDirective string
	lineDirective string
}

// Builder configures a Linter.
type Builder struct {
	l Linter
}

// NewBuilder starts a Linter with no rules and no directives.
func NewBuilder() *Builder {
	return &Builder{}
}

// IgnoreFileDirective sets the comment that disables linting for a file.
func (b *Builder) IgnoreFileDirective(name string) *Builder {
	b.l.fileDirective = name
	return b
}

// IgnoreDiagnosticDirective sets the comment that suppresses diagnostics on
// the following line.
func (b *Builder) IgnoreDiagnosticDirective(name string) *Builder {
	b.l.lineDirective = name
	return b
}

// Rules sets the rules to run.
func (b *Builder) Rules(rules []Rule) *Builder {
	b.l.rules = append([]Rule(nil), rules...)
	return b
}

// Build returns the configured linter.
func (b *Builder) Build() *Linter {
	l := b.l
	return &l
}

// New creates a linter with the default directives.
func New(rules []Rule) *Linter {
	return NewBuilder().
		IgnoreFileDirective(DefaultIgnoreFileDirective).
		IgnoreDiagnosticDirective(DefaultIgnoreDiagnosticDirective).
		Rules(rules).
		Build()
}

// Rules returns the linter's rules.
func (l *Linter) Rules() []Rule {
	return l.rules
}

// Analyze scans text, runs every rule and returns the file snapshot with its
// diagnostics sorted by position. A *ParseError is returned when the text
// cannot be scanned.
func (l *Linter) Analyze(specifier string, media source.MediaKind, text string) (*source.File, []*diag.RuleDiagnostic, error) {
	file := source.NewFile(specifier, text)
	if media != source.MediaUnknown {
		file.Media = media
	}

	scanned, err := scan(file)
	if err != nil {
		return nil, nil, err
	}
	ig := parseDirectives(file, scanned, l.fileDirective, l.lineDirective)
	if ig.wholeFile {
		return file, nil, nil
	}

	ctx := &Context{File: file, scan: scanned}
	for _, r := range l.rules {
		r.Check(ctx)
	}

	bag := diag.NewBag(0)
	for _, d := range ctx.out {
		if ig.suppressed(d) {
			continue
		}
		bag.Add(d)
	}
	bag.Sort()
	return file, bag.Items(), nil
}
