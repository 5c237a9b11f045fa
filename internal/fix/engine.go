package fix

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"surgelint/internal/diag"
	"surgelint/internal/logging"
	"surgelint/internal/source"
	"surgelint/internal/trace"
)

// MaxIterations bounds the number of applied fix passes per file.
const MaxIterations = 5

// Analyzer parses text and evaluates the configured rules.
// Implementations must be safe for concurrent use on distinct files.
type Analyzer interface {
	Analyze(specifier string, media source.MediaKind, text string) (*source.File, []*diag.RuleDiagnostic, error)
}

// Target is the initial analysis state of one file.
type Target struct {
	Path        string // where the fixed text is persisted
	Specifier   string // identity passed back to the analyzer
	Media       source.MediaKind
	File        *source.File
	Diagnostics []*diag.RuleDiagnostic
}

// Options configures Converge.
type Options struct {
	// MaxIterations overrides the default bound when > 0.
	MaxIterations int
	// Write persists the final text; WriteFile when nil.
	Write  WriteFunc
	Logger *pterm.Logger
}

// Result is the state the convergence loop stopped at.
type Result struct {
	File        *source.File
	Diagnostics []*diag.RuleDiagnostic
	// Iterations counts applied edit batches.
	Iterations int
	// Converged is false when the bound was hit with edits still pending.
	Converged bool
	Written   bool
}

// BrokenFixError means re-analysis of fixed text failed. The source was
// fine before the fix, so this is a defect of the rule that produced it.
type BrokenFixError struct {
	Path      string
	Iteration int
	Err       error
}

func (e *BrokenFixError) Error() string {
	return fmt.Sprintf("an applied lint fix caused an error; please report this bug (%s, pass %d): %v", e.Path, e.Iteration, e.Err)
}

func (e *BrokenFixError) Unwrap() error { return e.Err }

// WriteError reports a failure to persist fixed text.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed writing fixed file %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Converge applies the first candidate fix of every diagnostic, re-analyzes,
// and repeats until no edit is left or the iteration bound is reached.
// The text is persisted only if at least one batch was applied.
func Converge(ctx context.Context, analyzer Analyzer, target Target, opts Options) (Result, error) {
	limit := opts.MaxIterations
	if limit <= 0 {
		limit = MaxIterations
	}
	write := opts.Write
	if write == nil {
		write = WriteFile
	}
	logger := logging.OrNop(opts.Logger)

	state := Result{File: target.File, Diagnostics: target.Diagnostics}
	for {
		edits := PendingEdits(state.Diagnostics)
		if len(edits) == 0 {
			state.Converged = true
			break
		}
		if state.Iterations >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		next, err := applyPass(ctx, analyzer, target, state, edits)
		if err != nil {
			return state, err
		}
		state = next
	}

	if !state.Converged {
		logger.Warn("reached the maximum number of fix iterations; this is likely a bug in a lint rule",
			logger.Args("file", target.Path, "iterations", state.Iterations))
	}

	if state.Iterations == 0 {
		return state, nil
	}
	if err := write(target.Path, state.File.Text()); err != nil {
		return state, &WriteError{Path: target.Path, Err: err}
	}
	state.Written = true
	logger.Debug("fixed file written", logger.Args("file", target.Path, "iterations", state.Iterations))
	return state, nil
}

// applyPass builds the next state from scratch; prev is never mutated so a
// failed re-analysis leaves the caller with the last good snapshot.
func applyPass(ctx context.Context, analyzer Analyzer, target Target, prev Result, edits []diag.TextEdit) (Result, error) {
	iteration := prev.Iterations + 1
	_, span := trace.Start(ctx, trace.ScopeIteration, "fix#"+strconv.Itoa(iteration))
	span.Set("edits", strconv.Itoa(len(edits)))
	defer span.End(target.Path)

	text, err := ApplyEdits(prev.File.Text(), edits)
	if err != nil {
		return prev, &BrokenFixError{Path: target.Path, Iteration: iteration, Err: err}
	}
	file, diags, err := analyzer.Analyze(target.Specifier, target.Media, text)
	if err != nil {
		return prev, &BrokenFixError{Path: target.Path, Iteration: iteration, Err: err}
	}
	return Result{
		File:        file,
		Diagnostics: diags,
		Iterations:  iteration,
	}, nil
}
