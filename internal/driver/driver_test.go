package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surgelint/internal/cache"
	"surgelint/internal/diag"
	"surgelint/internal/diagfmt"
	"surgelint/internal/fix"
	"surgelint/internal/lint"
	"surgelint/internal/project"
	"surgelint/internal/source"
)

var testState = []string{"test-rules"}

// recorder collects everything the driver reports.
type recorder struct {
	diags   []diag.Diagnostic
	errs    map[string]error
	checked int
}

func newRecorder() *recorder { return &recorder{errs: make(map[string]error)} }

func (r *recorder) VisitDiagnostic(d diag.Diagnostic) { r.diags = append(r.diags, d) }
func (r *recorder) VisitError(file string, err error) { r.errs[file] = err }
func (r *recorder) Close(checked int) error {
	r.checked = checked
	return nil
}

func (r *recorder) codes() []string {
	out := make([]string, 0, len(r.diags))
	for _, d := range r.diags {
		out = append(out, filepath.Base(d.Specifier())+":"+d.Code().String())
	}
	return out
}

// countingAnalyzer counts Analyze calls of the wrapped analyzer.
type countingAnalyzer struct {
	inner fix.Analyzer
	calls atomic.Int64
}

func (c *countingAnalyzer) Analyze(specifier string, media source.MediaKind, text string) (*source.File, []*diag.RuleDiagnostic, error) {
	c.calls.Add(1)
	return c.inner.Analyze(specifier, media, text)
}

func writeFiles(t *testing.T, dir string, files map[string]string) []string {
	t.Helper()
	var paths []string
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		paths = append(paths, p)
	}
	return paths
}

func TestFailureIsIsolatedPerFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.sg": "fn f() {\n",
		"b.sg": "let x = 1;\n",
	})
	files, err := CollectFiles(FilePatterns{BaseDir: dir})
	require.NoError(t, err)

	store := cache.NewMemoryStore()
	rec := newRecorder()
	out, err := Run(context.Background(), files, Options{
		Analyzer: lint.New(lint.RecommendedRules()),
		Reporter: rec,
		Cache:    cache.New(store, testState, files),
		Jobs:     2,
	})
	require.NoError(t, err)

	assert.False(t, out.Success)
	assert.Equal(t, 2, rec.checked)
	require.Len(t, rec.errs, 1)
	var perr *lint.ParseError
	assert.ErrorAs(t, rec.errs[files[0]], &perr)
	assert.Empty(t, rec.diags)

	next := cache.New(store, testState, files)
	assert.True(t, next.IsFileSame(files[1], "let x = 1;\n"), "clean sibling must still be cached")
	assert.False(t, next.IsFileSame(files[0], "fn f() {\n"))
}

func TestCleanFilesSkippedOnNextRun(t *testing.T) {
	dir := t.TempDir()
	files := writeFiles(t, dir, map[string]string{"a.sg": "let a = 1;\n"})
	store := cache.NewMemoryStore()
	analyzer := &countingAnalyzer{inner: lint.New(lint.RecommendedRules())}

	run := func() Outcome {
		out, err := Run(context.Background(), files, Options{
			Analyzer: analyzer,
			Reporter: newRecorder(),
			Cache:    cache.New(store, testState, files),
		})
		require.NoError(t, err)
		return out
	}

	first := run()
	assert.True(t, first.Success)
	assert.Equal(t, 0, first.Cached)

	second := run()
	assert.True(t, second.Success)
	assert.Equal(t, 1, second.Cached)
	assert.Equal(t, 1, second.Checked)
	assert.EqualValues(t, 1, analyzer.calls.Load(), "cached file must not be analyzed")
}

func TestFixEndToEnd(t *testing.T) {
	tests := []struct {
		name      string
		foo       string
		wantFoo   string
		wantCodes []string
		success   bool
	}{
		{
			name:    "fix resolves everything",
			foo:     "let x = 1;;\n",
			wantFoo: "let x = 1;\n",
			success: true,
		},
		{
			name:      "residual diagnostic without fix",
			foo:       "// TODO: tidy\nlet x = 1;;\n",
			wantFoo:   "// TODO: tidy\nlet x = 1;\n",
			wantCodes: []string{"foo.sg:no-todo-comments"},
			success:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{"foo.sg": tt.foo, "bar.sg": "let y = 2;\n"})
			files, err := CollectFiles(FilePatterns{BaseDir: dir})
			require.NoError(t, err)
			bar, foo := files[0], files[1]

			store := cache.NewMemoryStore()
			var writes atomic.Int64
			rec := newRecorder()
			out, err := Run(context.Background(), files, Options{
				Analyzer: lint.New(lint.AllRules()),
				Reporter: rec,
				Cache:    cache.New(store, testState, files),
				Fix:      true,
				Write: func(path, text string) error {
					writes.Add(1)
					return fix.WriteFile(path, text)
				},
			})
			require.NoError(t, err)

			assert.Equal(t, tt.success, out.Success)
			assert.Equal(t, 1, out.Fixed)
			assert.EqualValues(t, 1, writes.Load(), "foo must be written exactly once")
			assert.ElementsMatch(t, tt.wantCodes, rec.codes())

			data, err := os.ReadFile(foo)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFoo, string(data))

			next := cache.New(store, testState, files)
			assert.True(t, next.IsFileSame(bar, "let y = 2;\n"))
			assert.Equal(t, tt.success, next.IsFileSame(foo, tt.wantFoo))
		})
	}
}

// breakingAnalyzer offers a fix whose result fails to parse.
type breakingAnalyzer struct{}

func (breakingAnalyzer) Analyze(specifier string, _ source.MediaKind, text string) (*source.File, []*diag.RuleDiagnostic, error) {
	file := source.NewFile(specifier, text)
	if strings.Contains(text, "BAD") {
		return nil, nil, errors.New("unexpected token BAD")
	}
	i := strings.Index(text, "x")
	if i < 0 {
		return file, nil, nil
	}
	span := source.NewSpan(i, i+1)
	d := diag.NewRule(diag.SevWarning, "no-x", file, span, "x is not allowed").
		WithFix(fix.ReplaceSpan("Replace x", span, "BAD"))
	return file, []*diag.RuleDiagnostic{d}, nil
}

func TestBrokenFixSurfacesAsError(t *testing.T) {
	rec := newRecorder()
	written := false
	out, err := Run(context.Background(), []string{"/virtual/a.sg"}, Options{
		Analyzer: breakingAnalyzer{},
		Reporter: rec,
		Fix:      true,
		Read:     func(string) (string, error) { return "let x;\n", nil },
		Write:    func(string, string) error { written = true; return nil },
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.False(t, written)
	assert.Empty(t, rec.diags)

	var broken *fix.BrokenFixError
	require.ErrorAs(t, rec.errs["/virtual/a.sg"], &broken)
	assert.Equal(t, 1, broken.Iteration)
}

func TestJSONOutputIndependentOfScheduling(t *testing.T) {
	dir := t.TempDir()
	contents := make(map[string]string)
	for i := range 12 {
		contents[fmt.Sprintf("m%02d.sg", i)] = fmt.Sprintf("let v%d = 1;;  \n\n\n\nlet w = 2;", i)
	}
	files := writeFiles(t, dir, contents)

	render := func(jobs int) string {
		var buf bytes.Buffer
		_, err := Run(context.Background(), files, Options{
			Analyzer: lint.New(lint.AllRules()),
			Reporter: diagfmt.NewJSON(&buf, diagfmt.Options{BaseDir: dir}),
			Jobs:     jobs,
		})
		require.NoError(t, err)
		return buf.String()
	}
	serial := render(1)
	assert.Equal(t, serial, render(8))
	assert.Equal(t, serial, render(3))
	assert.Contains(t, serial, `"filename": "m00.sg"`)
}

func TestWorkspaceSurfaceTask(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"mod.sg":   "import ./util;\npub fn run() {\n}\n",
		"util.sg":  "pub fn helper() -> int {\n}\n",
		"other.sg": "let z = 1;\n",
	})
	ws := &project.Workspace{
		Root:    dir,
		Members: []project.Member{{Name: "app", Dir: dir, Exports: []string{filepath.Join(dir, "mod.sg")}}},
	}

	t.Run("exports requested", func(t *testing.T) {
		rec := newRecorder()
		out, err := Run(context.Background(), []string{filepath.Join(dir, "mod.sg")}, Options{
			Analyzer:  lint.New(lint.RecommendedRules()),
			Reporter:  rec,
			Workspace: ws,
			Surface:   true,
		})
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Equal(t, []string{"mod.sg:explicit-surface"}, rec.codes())
	})

	t.Run("exports not requested", func(t *testing.T) {
		rec := newRecorder()
		out, err := Run(context.Background(), []string{filepath.Join(dir, "other.sg")}, Options{
			Analyzer:  lint.New(lint.RecommendedRules()),
			Reporter:  rec,
			Workspace: ws,
			Surface:   true,
		})
		require.NoError(t, err)
		assert.True(t, out.Success)
		assert.Empty(t, rec.diags)
	})

	t.Run("broken graph", func(t *testing.T) {
		broken := &project.Workspace{
			Root:    dir,
			Members: []project.Member{{Name: "app", Dir: dir, Exports: []string{filepath.Join(dir, "mod.sg")}}},
		}
		rec := newRecorder()
		out, err := Run(context.Background(), []string{filepath.Join(dir, "mod.sg")}, Options{
			Analyzer:  lint.New(lint.RecommendedRules()),
			Reporter:  rec,
			Workspace: broken,
			Surface:   true,
			Loader: func(path string) (string, error) {
				if strings.HasSuffix(path, "util.sg") {
					return "import ./mod;\n", nil
				}
				data, err := os.ReadFile(path)
				return string(data), err
			},
		})
		require.NoError(t, err)
		assert.False(t, out.Success)
		assert.Contains(t, rec.errs, dir)
	})
}

func TestRunWithoutFiles(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrNoTargetFiles)
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"src/a.sg":            "",
		"src/b.sgh":           "",
		"src/readme.md":       "",
		"src/gen/c.sg":        "",
		"vendor/v.sg":         "",
		".git/hooks/x.sg":     "",
		"node_modules/m/n.sg": "",
	})

	files, err := CollectFiles(FilePatterns{BaseDir: dir, Exclude: []string{"src/gen"}})
	require.NoError(t, err)
	want := []string{
		source.NormalizePath(filepath.Join(dir, "src/a.sg")),
		source.NormalizePath(filepath.Join(dir, "src/b.sgh")),
	}
	assert.Equal(t, want, files)

	_, err = CollectFiles(FilePatterns{BaseDir: dir, Include: []string{"src/readme.md"}})
	assert.ErrorIs(t, err, ErrNoTargetFiles)

	_, err = CollectFiles(FilePatterns{BaseDir: dir, Include: []string{"missing"}})
	assert.Error(t, err)
}

func TestLintStdin(t *testing.T) {
	rec := newRecorder()
	out, err := LintStdin(context.Background(), strings.NewReader("let x = 1;  \n"), "/work", Options{
		Analyzer: lint.New(lint.RecommendedRules()),
		Reporter: rec,
	})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, 1, rec.checked)
	require.Len(t, rec.diags, 1)
	assert.Equal(t, "/work/"+StdinName, rec.diags[0].Specifier())
}

func TestProgressEvents(t *testing.T) {
	dir := t.TempDir()
	files := writeFiles(t, dir, map[string]string{"a.sg": "let a = 1;\n", "b.sg": "let b = 1;;\n"})

	ch := make(chan Event, 16)
	_, err := Run(context.Background(), files, Options{
		Analyzer: lint.New(lint.RecommendedRules()),
		Reporter: newRecorder(),
		Progress: ChannelSink{Ch: ch},
	})
	require.NoError(t, err)
	close(ch)

	final := make(map[string]Status)
	queued := 0
	for ev := range ch {
		if ev.Stage == StageQueued {
			queued++
			continue
		}
		final[filepath.Base(ev.File)] = ev.Status
	}
	assert.Equal(t, 2, queued)
	assert.Equal(t, StatusDone, final["a.sg"])
	assert.Equal(t, StatusProblems, final["b.sg"])
}
