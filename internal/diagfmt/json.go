package diagfmt

import (
	"cmp"
	"encoding/json"
	"io"
	"slices"

	"surgelint/internal/diag"
	"surgelint/internal/source"
)

// The field names below are consumed by external tooling; keep them stable.

// PositionJSON is one end of a diagnostic range.
type PositionJSON struct {
	Line    uint32 `json:"line"` // 1-based
	Col     uint32 `json:"col"`  // 0-based
	BytePos uint32 `json:"bytePos"`
}

// RangeJSON is the located part of a diagnostic.
type RangeJSON struct {
	Start PositionJSON `json:"start"`
	End   PositionJSON `json:"end"`
}

// DiagnosticJSON is one diagnostic record.
type DiagnosticJSON struct {
	Filename string     `json:"filename"`
	Range    *RangeJSON `json:"range"`
	Message  string     `json:"message"`
	Code     string     `json:"code"`
	Hint     *string    `json:"hint"`
}

// ErrorJSON is one file-level failure.
type ErrorJSON struct {
	FilePath string `json:"file_path"`
	Message  string `json:"message"`
}

// DocumentJSON is the whole machine-readable output.
type DocumentJSON struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Errors      []ErrorJSON      `json:"errors"`
}

// JSON buffers everything and writes one sorted document on Close.
type JSON struct {
	w    io.Writer
	opts Options
	doc  DocumentJSON
}

// NewJSON creates the machine-readable reporter.
func NewJSON(w io.Writer, opts Options) *JSON {
	return &JSON{
		w:    w,
		opts: opts,
		doc: DocumentJSON{
			Diagnostics: []DiagnosticJSON{},
			Errors:      []ErrorJSON{},
		},
	}
}

func (j *JSON) VisitDiagnostic(d diag.Diagnostic) {
	rec := DiagnosticJSON{
		Filename: j.opts.displayPath(d.Specifier()),
		Message:  d.Message(),
		Code:     d.Code().String(),
	}
	if loc, ok := d.Location(); ok {
		rec.Range = &RangeJSON{
			Start: makePosition(loc.File, loc.Span.Start),
			End:   makePosition(loc.File, loc.Span.End),
		}
	}
	if hint, ok := d.Hint(); ok {
		rec.Hint = &hint
	}
	j.doc.Diagnostics = append(j.doc.Diagnostics, rec)
}

func makePosition(f *source.File, off uint32) PositionJSON {
	lc := f.LineColumnIndex(off)
	return PositionJSON{Line: lc.Line + 1, Col: lc.Col, BytePos: off}
}

func (j *JSON) VisitError(file string, err error) {
	j.doc.Errors = append(j.doc.Errors, ErrorJSON{
		FilePath: j.opts.displayPath(file),
		Message:  err.Error(),
	})
}

func (j *JSON) Close(int) error {
	SortDiagnostics(j.doc.Diagnostics)
	slices.SortStableFunc(j.doc.Errors, func(a, b ErrorJSON) int {
		return cmp.Or(cmp.Compare(a.FilePath, b.FilePath), cmp.Compare(a.Message, b.Message))
	})

	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(j.doc)
}

// SortDiagnostics orders records by file, then located before unlocated,
// then start line and column. Code and message break the remaining ties so
// the order does not depend on arrival order.
func SortDiagnostics(ds []DiagnosticJSON) {
	slices.SortStableFunc(ds, compareDiagnostics)
}

func compareDiagnostics(a, b DiagnosticJSON) int {
	if c := cmp.Compare(a.Filename, b.Filename); c != 0 {
		return c
	}
	switch {
	case a.Range != nil && b.Range == nil:
		return -1
	case a.Range == nil && b.Range != nil:
		return 1
	case a.Range != nil:
		if c := cmp.Or(
			cmp.Compare(a.Range.Start.Line, b.Range.Start.Line),
			cmp.Compare(a.Range.Start.Col, b.Range.Start.Col),
		); c != 0 {
			return c
		}
	}
	return cmp.Or(cmp.Compare(a.Code, b.Code), cmp.Compare(a.Message, b.Message))
}
