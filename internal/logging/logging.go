// Package logging builds the leveled structured logger shared by the CLI,
// the driver and the fix engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// ParseLevel converts a flag value into a pterm log level.
func ParseLevel(s string) (pterm.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "disabled":
		return pterm.LogLevelDisabled, nil
	case "trace":
		return pterm.LogLevelTrace, nil
	case "debug":
		return pterm.LogLevelDebug, nil
	case "", "info":
		return pterm.LogLevelInfo, nil
	case "warn", "warning":
		return pterm.LogLevelWarn, nil
	case "error":
		return pterm.LogLevelError, nil
	default:
		return pterm.LogLevelInfo, fmt.Errorf("invalid log level %q (expected off|trace|debug|info|warn|error)", s)
	}
}

// Options configures New.
type Options struct {
	Level string
	JSON  bool
	Color bool
}

// New returns a logger writing to w (stderr when nil).
func New(w io.Writer, opts Options) (*pterm.Logger, error) {
	lvl, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	formatter := pterm.LogFormatterColorful
	if opts.JSON {
		formatter = pterm.LogFormatterJSON
	}
	if !opts.Color && !opts.JSON {
		pterm.DisableStyling()
	}
	return pterm.DefaultLogger.
		WithLevel(lvl).
		WithWriter(w).
		WithFormatter(formatter).
		WithTime(false), nil
}

// Nop returns a logger that drops every record.
func Nop() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)
}

// OrNop returns l, or a disabled logger when l is nil.
func OrNop(l *pterm.Logger) *pterm.Logger {
	if l == nil {
		return Nop()
	}
	return l
}
