package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"surgelint/internal/diag"
)

// Pretty prints every diagnostic as soon as it arrives, with a source
// snippet and caret underline. Output order follows arrival order.
type Pretty struct {
	w    io.Writer
	opts Options

	count   int
	fixable int

	codeColor  *color.Color
	errColor   *color.Color
	warnColor  *color.Color
	caretColor *color.Color
	dimColor   *color.Color
}

// NewPretty creates a verbose human-readable reporter.
func NewPretty(w io.Writer, opts Options) *Pretty {
	p := &Pretty{
		w:          w,
		opts:       opts,
		codeColor:  color.New(color.FgCyan, color.Bold),
		errColor:   color.New(color.FgRed, color.Bold),
		warnColor:  color.New(color.FgYellow, color.Bold),
		caretColor: color.New(color.FgRed),
		dimColor:   color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{p.codeColor, p.errColor, p.warnColor, p.caretColor, p.dimColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Pretty) VisitDiagnostic(d diag.Diagnostic) {
	p.count++
	if rd, ok := d.(*diag.RuleDiagnostic); ok && rd.Fixable() {
		p.fixable++
	}

	sevColor := p.warnColor
	if d.Severity() == diag.SevError {
		sevColor = p.errColor
	}
	fmt.Fprintf(p.w, "%s %s\n", sevColor.Sprint("("+d.Code().String()+")"), d.Message())

	if loc, ok := d.Location(); ok {
		start := loc.Start()
		fmt.Fprintf(p.w, "    %s %s:%d:%d\n", p.dimColor.Sprint("at"),
			p.opts.displayPath(loc.File.Path), start.Line, start.Col)
		p.snippet(loc)
	} else {
		fmt.Fprintf(p.w, "    %s %s\n", p.dimColor.Sprint("at"), p.opts.displayPath(d.Specifier()))
	}

	if hint, ok := d.Hint(); ok {
		fmt.Fprintf(p.w, "\n    %s %s\n", p.codeColor.Sprint("hint:"), hint)
	}
	fmt.Fprintln(p.w)
}

// snippet prints the first line of the location with carets under the span.
func (p *Pretty) snippet(loc diag.Location) {
	start, end := loc.File.Resolve(loc.Span)
	line := loc.File.GetLine(start.Line)
	lineNo := strconv.FormatUint(uint64(start.Line), 10)
	gutter := strings.Repeat(" ", len(lineNo))

	display := strings.ReplaceAll(line, "\t", "    ")
	fmt.Fprintf(p.w, "\n %s %s %s\n", p.dimColor.Sprint(lineNo), p.dimColor.Sprint("|"), display)

	startCol := int(start.Col) - 1
	endCol := len(line)
	if end.Line == start.Line {
		endCol = int(end.Col) - 1
	}
	startCol = min(max(startCol, 0), len(line))
	endCol = min(max(endCol, startCol), len(line))

	pad := displayWidth(line[:startCol])
	width := max(displayWidth(line[startCol:endCol]), 1)
	fmt.Fprintf(p.w, " %s %s %s%s\n", gutter, p.dimColor.Sprint("|"),
		strings.Repeat(" ", pad), p.caretColor.Sprint(strings.Repeat("^", width)))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(strings.ReplaceAll(s, "\t", "    "))
}

func (p *Pretty) VisitError(file string, err error) {
	fmt.Fprintf(p.w, "%s %s\n   %v\n", p.errColor.Sprint("Error linting:"), p.opts.displayPath(file), err)
}

func (p *Pretty) Close(checked int) error {
	suffix := ""
	if p.fixable > 0 {
		suffix = p.dimColor.Sprint(printer.Sprintf(" (%d fixable via --fix)", p.fixable))
	}
	for _, line := range summary(p.count, checked, suffix) {
		if _, err := fmt.Fprintln(p.w, line); err != nil {
			return err
		}
	}
	return nil
}
