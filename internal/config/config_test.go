package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surgelint/internal/diagfmt"
	"surgelint/internal/project"
)

func newCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "lint"}
	cmd.Flags().Int("jobs", 0, "")
	cmd.Flags().String("reporter", "", "")
	cmd.Flags().String("log-level", "warn", "")
	return cmd
}

func TestSettingsLayering(t *testing.T) {
	t.Setenv("SURGELINT_JOBS", "3")
	t.Setenv("SURGELINT_CACHE_DIR", "/tmp/lint-cache")
	t.Setenv("SURGELINT_REPORTER", "compact")

	cmd := newCommand()
	require.NoError(t, cmd.Flags().Set("reporter", "json"))

	v := NewViper()
	require.NoError(t, BindFlags(v, cmd))
	s, err := LoadSettings(v)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Jobs, "environment applies when the flag is unset")
	assert.Equal(t, "/tmp/lint-cache", s.CacheDir)
	assert.Equal(t, "json", s.Reporter, "explicit flag wins over environment")
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "auto", s.Color)
}

func TestSettingsRejectNegativeJobs(t *testing.T) {
	t.Setenv("SURGELINT_JOBS", "-1")
	_, err := LoadSettings(NewViper())
	assert.Error(t, err)
}

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, project.ManifestName), []byte(content), 0o644))
}

func TestResolveWithoutManifest(t *testing.T) {
	cwd := t.TempDir()
	opts, err := ResolveLintOptions(LintFlags{}, Settings{}, cwd)
	require.NoError(t, err)

	assert.Nil(t, opts.Manifest)
	assert.Nil(t, opts.Workspace)
	assert.Equal(t, cwd, opts.Patterns.BaseDir)
	assert.Nil(t, opts.Rules.Tags)
	assert.Equal(t, diagfmt.KindPretty, opts.Reporter)
}

func TestResolveFromManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[package]
name = "app"
exports = ["mod.sg"]

[lint]
tags = ["recommended"]
exclude = ["eol-last"]
report = "compact"

[lint.files]
include = ["src"]
exclude = ["src/gen"]
`)
	cwd := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(cwd, 0o755))

	opts, err := ResolveLintOptions(LintFlags{Ignore: []string{"src/tmp"}}, Settings{}, cwd)
	require.NoError(t, err)

	require.NotNil(t, opts.Manifest)
	assert.True(t, opts.Shape.IsPackage)
	require.NotNil(t, opts.Workspace)
	assert.Equal(t, "app", opts.Workspace.Members[0].Name)

	assert.Equal(t, root, opts.Patterns.BaseDir)
	assert.Equal(t, []string{"src"}, opts.Patterns.Include)
	assert.Equal(t, []string{"src/gen", "src/tmp"}, opts.Patterns.Exclude)

	assert.Equal(t, []string{"recommended"}, opts.Rules.Tags)
	assert.Equal(t, []string{"eol-last"}, opts.Rules.Exclude)
	assert.Equal(t, diagfmt.KindCompact, opts.Reporter)
}

func TestFlagsOverrideManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[lint]\ntags = [\"package\"]\ninclude = [\"no-todo-comments\"]\nreport = \"compact\"\n")

	flags := LintFlags{
		Files:   []string{"a.sg"},
		Tags:    []string{},
		Include: []string{"eol-last"},
	}
	opts, err := ResolveLintOptions(flags, Settings{Reporter: "json"}, root)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.sg"}, opts.Patterns.Include)
	assert.Equal(t, root, opts.Patterns.BaseDir)
	assert.NotNil(t, opts.Rules.Tags)
	assert.Empty(t, opts.Rules.Tags)
	assert.Equal(t, []string{"eol-last"}, opts.Rules.Include)
	assert.Equal(t, diagfmt.KindJSON, opts.Reporter)
	assert.False(t, opts.Shape.IsPackage)
	assert.Nil(t, opts.Workspace)
}

func TestExplicitConfigAndNoConfig(t *testing.T) {
	root := t.TempDir()
	other := filepath.Join(root, "conf")
	writeManifest(t, other, "[lint]\nreport = \"json\"\n")
	writeManifest(t, root, "[lint]\nreport = \"compact\"\n")

	opts, err := ResolveLintOptions(LintFlags{Config: "conf/" + project.ManifestName}, Settings{}, root)
	require.NoError(t, err)
	assert.Equal(t, diagfmt.KindJSON, opts.Reporter)

	opts, err = ResolveLintOptions(LintFlags{NoConfig: true}, Settings{}, root)
	require.NoError(t, err)
	assert.Nil(t, opts.Manifest)
	assert.Equal(t, diagfmt.KindPretty, opts.Reporter)
}

func TestResolveErrors(t *testing.T) {
	root := t.TempDir()

	_, err := ResolveLintOptions(LintFlags{Files: []string{"-"}, Fix: true}, Settings{}, root)
	assert.ErrorIs(t, err, ErrFixWithStdin)

	_, err = ResolveLintOptions(LintFlags{NoConfig: true}, Settings{Reporter: "xml"}, root)
	assert.Error(t, err)

	writeManifest(t, root, "[lint]\nunknown = 1\n")
	_, err = ResolveLintOptions(LintFlags{}, Settings{}, root)
	assert.Error(t, err)
}

func TestStdinHasNoPatterns(t *testing.T) {
	opts, err := ResolveLintOptions(LintFlags{Files: []string{"-"}, NoConfig: true}, Settings{}, t.TempDir())
	require.NoError(t, err)
	assert.True(t, opts.Stdin)
	assert.Empty(t, opts.Patterns.Include)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList([]string{"a, b", "", " c "}))
	assert.Nil(t, SplitList(nil))
}
