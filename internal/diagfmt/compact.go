package diagfmt

import (
	"fmt"
	"io"

	"surgelint/internal/diag"
)

// Compact prints one line per diagnostic.
type Compact struct {
	w     io.Writer
	opts  Options
	count int
}

// NewCompact creates a one-line-per-diagnostic reporter.
func NewCompact(w io.Writer, opts Options) *Compact {
	return &Compact{w: w, opts: opts}
}

func (c *Compact) VisitDiagnostic(d diag.Diagnostic) {
	c.count++
	loc, ok := d.Location()
	if !ok {
		fmt.Fprintf(c.w, "%s: %s (%s)\n", c.opts.displayPath(d.Specifier()), d.Message(), d.Code())
		return
	}
	// строка с 1, колонка с 0
	pos := loc.File.LineColumnIndex(loc.Span.Start)
	fmt.Fprintf(c.w, "%s: line %d, col %d - %s (%s)\n",
		c.opts.displayPath(loc.File.Path), pos.Line+1, pos.Col, d.Message(), d.Code())
}

func (c *Compact) VisitError(file string, err error) {
	fmt.Fprintf(c.w, "Error linting: %s\n   %v\n", c.opts.displayPath(file), err)
}

func (c *Compact) Close(checked int) error {
	for _, line := range summary(c.count, checked, "") {
		if _, err := fmt.Fprintln(c.w, line); err != nil {
			return err
		}
	}
	return nil
}
