package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"surgelint/internal/source"
)

// StdinName is the file identity used for text read from standard input.
const StdinName = "$surgelint$stdin.sg"

// LintStdin lints text read from r as if it were a file in cwd.
// Fixes are never applied and the cache is not consulted.
func LintStdin(ctx context.Context, r io.Reader, cwd string, opts Options) (Outcome, error) {
	if opts.Analyzer == nil || opts.Reporter == nil {
		return Outcome{}, errors.New("driver: analyzer and reporter are required")
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read stdin: %w", err)
	}

	path := source.NormalizePath(filepath.Join(cwd, StdinName))
	success := true
	_, diags, err := opts.Analyzer.Analyze(path, source.MediaSurge, string(data))
	if err != nil {
		opts.Reporter.VisitError(path, err)
		success = false
	}
	for _, d := range diags {
		opts.Reporter.VisitDiagnostic(d)
		success = false
	}
	if err := opts.Reporter.Close(1); err != nil {
		return Outcome{}, fmt.Errorf("failed to write report: %w", err)
	}
	return Outcome{Success: success, Checked: 1}, nil
}
