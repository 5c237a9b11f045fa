package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"surgelint/internal/diag"
)

// Reporter receives the results of a lint run. Calls are not synchronized:
// the caller guarantees a single goroutine drives a reporter.
type Reporter interface {
	VisitDiagnostic(d diag.Diagnostic)
	VisitError(file string, err error)
	// Close finalizes output; checked is the number of files in the run.
	Close(checked int) error
}

// Kind selects a reporter implementation.
type Kind uint8

const (
	KindPretty Kind = iota
	KindCompact
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindPretty:
		return "pretty"
	case KindCompact:
		return "compact"
	case KindJSON:
		return "json"
	}
	return "unknown"
}

// ParseKind parses a reporter name; empty means pretty.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pretty":
		return KindPretty, nil
	case "compact":
		return KindCompact, nil
	case "json":
		return KindJSON, nil
	}
	return KindPretty, fmt.Errorf("unknown reporter %q (want pretty, compact or json)", s)
}

// Options configures reporter output.
type Options struct {
	// BaseDir makes absolute paths relative for display. Empty keeps paths as is.
	BaseDir string
	Color   bool
}

// New creates a reporter writing to w.
func New(kind Kind, w io.Writer, opts Options) Reporter {
	switch kind {
	case KindCompact:
		return NewCompact(w, opts)
	case KindJSON:
		return NewJSON(w, opts)
	default:
		return NewPretty(w, opts)
	}
}

func (o Options) displayPath(path string) string {
	if o.BaseDir == "" || !filepath.IsAbs(filepath.FromSlash(path)) {
		return path
	}
	rel, err := filepath.Rel(o.BaseDir, filepath.FromSlash(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

var printer = message.NewPrinter(language.English)

func plural(n int, one, many string) string {
	if n == 1 {
		return printer.Sprintf("%d %s", n, one)
	}
	return printer.Sprintf("%d %s", n, many)
}

// summary returns the closing lines shared by the text reporters.
// fixSuffix is appended to the problem count line.
func summary(problems, checked int, fixSuffix string) []string {
	var lines []string
	if problems > 0 {
		lines = append(lines, "Found "+plural(problems, "problem", "problems")+fixSuffix)
	}
	return append(lines, "Checked "+plural(checked, "file", "files"))
}
