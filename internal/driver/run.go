package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"

	"surgelint/internal/cache"
	"surgelint/internal/diag"
	"surgelint/internal/diagfmt"
	"surgelint/internal/fix"
	"surgelint/internal/logging"
	"surgelint/internal/observ"
	"surgelint/internal/project"
	"surgelint/internal/project/dag"
	"surgelint/internal/source"
	"surgelint/internal/trace"
)

// Options configures Run.
type Options struct {
	Analyzer fix.Analyzer
	Reporter diagfmt.Reporter
	// Cache defaults to cache.Disabled.
	Cache cache.Gateway
	// Fix enables the fix-convergence loop.
	Fix bool
	// Jobs bounds the number of files linted at once; GOMAXPROCS when <= 0.
	Jobs int

	// Workspace enables the export-surface task when Surface is set.
	Workspace *project.Workspace
	Surface   bool
	// Loader reads workspace modules; dag.OSLoader when nil.
	Loader dag.Loader

	Logger   *pterm.Logger
	Progress ProgressSink
	// Write persists fixed files; fix.WriteFile when nil.
	Write fix.WriteFunc
	// Read loads file contents; os.ReadFile when nil.
	Read func(path string) (string, error)
}

// Outcome summarizes a finished run.
type Outcome struct {
	// Success is false if any diagnostic was reported or any file failed.
	Success bool
	Checked int
	Cached  int
	Fixed   int
	RunID   string
	Timings observ.Report
}

// event is one message for the reporter goroutine.
type event struct {
	diag diag.Diagnostic
	file string
	err  error
}

type runner struct {
	opts   Options
	logger *pterm.Logger
	read   func(path string) (string, error)

	events chan event
	failed atomic.Bool
	cached atomic.Int64
	fixed  atomic.Int64
}

// Run lints files concurrently and feeds every result to opts.Reporter.
// Per-file failures are reported and do not stop other files; only setup
// errors and reporter failures are returned.
func Run(ctx context.Context, files []string, opts Options) (Outcome, error) {
	if len(files) == 0 {
		return Outcome{}, ErrNoTargetFiles
	}
	if opts.Analyzer == nil {
		return Outcome{}, errors.New("driver: no analyzer configured")
	}
	if opts.Reporter == nil {
		return Outcome{}, errors.New("driver: no reporter configured")
	}
	if opts.Cache == nil {
		opts.Cache = cache.Disabled
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	runID := uuid.NewString()
	r := &runner{
		opts:   opts,
		logger: logging.OrNop(opts.Logger),
		read:   opts.Read,
		events: make(chan event, 64),
	}
	if r.read == nil {
		r.read = readFile
	}
	r.logger.Debug("lint run started", r.logger.Args("run", runID, "files", len(files), "jobs", jobs, "fix", opts.Fix))

	ctx, runSpan := trace.Start(ctx, trace.ScopeRun, "lint")
	runSpan.Set("run", runID)
	defer runSpan.End(strconv.Itoa(len(files)) + " files")

	timer := observ.NewTimer()
	lintPhase := timer.Begin("lint")

	// единственный владелец reporter
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for ev := range r.events {
			if ev.diag != nil {
				opts.Reporter.VisitDiagnostic(ev.diag)
				continue
			}
			opts.Reporter.VisitError(ev.file, ev.err)
		}
	}()

	for _, f := range files {
		emit(opts.Progress, Event{File: f, Stage: StageQueued})
	}

	var wg sync.WaitGroup
	if opts.Surface && opts.Workspace != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx := timer.Begin("workspace")
			found := r.checkWorkspace(ctx, files)
			timer.End(idx, strconv.Itoa(found)+" diagnostics")
		}()
	}

	poolPhase := timer.Begin("files")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for _, path := range files {
		g.Go(func() error {
			r.lintFile(gctx, path)
			return nil
		})
	}
	poolErr := g.Wait()
	timer.End(poolPhase, "")
	wg.Wait()

	close(r.events)
	<-consumed
	timer.End(lintPhase, "")

	if poolErr != nil {
		return Outcome{}, poolErr
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	cachePhase := timer.Begin("cache")
	if err := opts.Cache.WaitCompletion(ctx); err != nil {
		// кэш лишь ускоряет следующий запуск
		r.logger.Warn("failed to save lint cache", r.logger.Args("run", runID, "error", err))
	}
	timer.End(cachePhase, "")

	if err := opts.Reporter.Close(len(files)); err != nil {
		return Outcome{}, fmt.Errorf("failed to write report: %w", err)
	}

	out := Outcome{
		Success: !r.failed.Load(),
		Checked: len(files),
		Cached:  int(r.cached.Load()),
		Fixed:   int(r.fixed.Load()),
		RunID:   runID,
		Timings: timer.Report(),
	}
	r.logger.Debug("lint run finished", r.logger.Args(
		"run", runID, "success", out.Success, "cached", out.Cached, "fixed", out.Fixed))
	return out, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *runner) fail(path string, err error) {
	r.failed.Store(true)
	r.events <- event{file: path, err: err}
}

// lintFile handles one file end to end. It shares no state with other files
// except the event channel and the cache gateway.
func (r *runner) lintFile(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	ctx, span := trace.Start(trace.WithTask(ctx, path), trace.ScopeTask, "lint-file")
	defer span.End("")
	start := time.Now()

	content, err := r.read(path)
	if err != nil {
		r.fail(path, err)
		emit(r.opts.Progress, Event{File: path, Stage: StageLint, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return
	}
	if r.opts.Cache.IsFileSame(path, content) {
		r.cached.Add(1)
		trace.Point(ctx, trace.ScopeTask, "cache-hit", path)
		emit(r.opts.Progress, Event{File: path, Stage: StageCached, Status: StatusDone, Elapsed: time.Since(start)})
		return
	}

	emit(r.opts.Progress, Event{File: path, Stage: StageLint, Status: StatusWorking})
	media := source.MediaKindFromPath(path)
	file, diags, err := r.opts.Analyzer.Analyze(path, media, content)
	if err != nil {
		r.fail(path, err)
		emit(r.opts.Progress, Event{File: path, Stage: StageLint, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return
	}

	stage := StageLint
	if r.opts.Fix {
		res, err := fix.Converge(ctx, r.opts.Analyzer, fix.Target{
			Path:        path,
			Specifier:   path,
			Media:       media,
			File:        file,
			Diagnostics: diags,
		}, fix.Options{Write: r.opts.Write, Logger: r.logger})
		if err != nil {
			r.fail(path, err)
			emit(r.opts.Progress, Event{File: path, Stage: StageFix, Status: StatusError, Err: err, Elapsed: time.Since(start)})
			return
		}
		file, diags = res.File, res.Diagnostics
		if res.Written {
			r.fixed.Add(1)
			stage = StageFix
		}
	}

	for _, d := range diags {
		r.events <- event{diag: d}
	}
	status := StatusDone
	if len(diags) > 0 {
		r.failed.Store(true)
		status = StatusProblems
	} else {
		r.opts.Cache.UpdateFile(path, file.Text())
	}
	emit(r.opts.Progress, Event{File: path, Stage: stage, Status: status, Elapsed: time.Since(start)})
}

// checkWorkspace runs the export-surface check for members whose exports
// are part of this run. It returns the number of diagnostics found.
func (r *runner) checkWorkspace(ctx context.Context, files []string) int {
	_, span := trace.Start(trace.WithTask(ctx, "workspace"), trace.ScopeTask, "surface")
	defer span.End(r.opts.Workspace.Root)
	start := time.Now()
	emit(r.opts.Progress, Event{Stage: StageWorkspace, Status: StatusWorking})

	graph, err := dag.BuildValidated(r.opts.Workspace, r.opts.Loader)
	if err != nil {
		r.fail(r.opts.Workspace.Root, err)
		emit(r.opts.Progress, Event{Stage: StageWorkspace, Status: StatusError, Err: err, Elapsed: time.Since(start)})
		return 0
	}

	requested := make(map[string]struct{}, len(files))
	for _, f := range files {
		requested[source.NormalizePath(f)] = struct{}{}
	}

	found := 0
	for _, member := range r.opts.Workspace.Members {
		if !intersects(member.Exports, requested) {
			r.logger.Debug("skipping workspace member", r.logger.Args("member", member.Name))
			continue
		}
		for _, d := range dag.SurfaceDiagnostics(member.Exports, graph) {
			r.events <- event{diag: d}
			found++
		}
	}
	status := StatusDone
	if found > 0 {
		r.failed.Store(true)
		status = StatusProblems
	}
	emit(r.opts.Progress, Event{Stage: StageWorkspace, Status: status, Elapsed: time.Since(start)})
	return found
}

func intersects(exports []string, requested map[string]struct{}) bool {
	for _, e := range exports {
		if _, ok := requested[source.NormalizePath(e)]; ok {
			return true
		}
	}
	return false
}
