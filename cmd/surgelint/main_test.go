package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"surgelint/internal/config"
	"surgelint/internal/lint"
	"surgelint/internal/project"
)

func newLintTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "lint"}
	registerLintFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	return cmd
}

// runLintCommand executes "surgelint lint args..." in dir with the global
// flags main registers and returns the captured stdout and stderr.
func runLintCommand(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(dir)

	root := &cobra.Command{Use: "surgelint", SilenceUsage: true, SilenceErrors: true}
	registerPersistentFlags(root)
	cmd := &cobra.Command{Use: "lint", RunE: runLint}
	registerLintFlags(cmd)
	root.AddCommand(cmd)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"lint", "--no-config", "--no-cache"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSource(t *testing.T, dir, name, text string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func decodeReport(t *testing.T, out string) []map[string]any {
	t.Helper()
	var doc struct {
		Diagnostics []map[string]any `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, out)
	}
	return doc.Diagnostics
}

func TestLintCommandHonorsIgnoreDirectives(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.sg", "// surgelint-ignore no-trailing-spaces\nlet x = 1;   \n")
	writeSource(t, dir, "b.sg", "// surgelint-ignore-file\nlet y = 2;   \n")

	stdout, stderr, err := runLintCommand(t, dir, "--json", "a.sg", "b.sg")
	if err != nil {
		t.Fatalf("lint: %v\nstdout:\n%s\nstderr:\n%s", err, stdout, stderr)
	}
	if diags := decodeReport(t, stdout); len(diags) != 0 {
		t.Fatalf("suppressed diagnostics reported: %v", diags)
	}
}

func TestLintCommandJSONFailure(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.sg", "let x = 1;   \n")

	stdout, stderr, err := runLintCommand(t, dir, "--json", "a.sg")
	if !errors.Is(err, errLintFailed) {
		t.Fatalf("err = %v, want errLintFailed", err)
	}
	diags := decodeReport(t, stdout)
	if len(diags) != 1 || diags[0]["code"] != lint.CodeNoTrailingSpaces.String() {
		t.Fatalf("diagnostics = %v", diags)
	}
	if diags[0]["filename"] != "a.sg" {
		t.Fatalf("filename = %v, want path relative to cwd", diags[0]["filename"])
	}
	if stderr != "" {
		t.Fatalf("unexpected stderr output:\n%s", stderr)
	}
}

func TestLintCommandPrettyGoesToStderr(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.sg", "let x = 1;   \n")

	stdout, stderr, err := runLintCommand(t, dir, "--color=off", "a.sg")
	if !errors.Is(err, errLintFailed) {
		t.Fatalf("err = %v, want errLintFailed", err)
	}
	if stdout != "" {
		t.Fatalf("pretty report leaked to stdout:\n%s", stdout)
	}
	if !strings.Contains(stderr, string(lint.CodeNoTrailingSpaces)) {
		t.Fatalf("stderr misses the diagnostic:\n%s", stderr)
	}
}

func TestReadLintFlags(t *testing.T) {
	cmd := newLintTestCommand(t, "--fix", "--rules-include=eol-last,no-todo-comments", "--ignore", "gen", "--no-config")
	flags, err := readLintFlags(cmd, []string{"src"})
	if err != nil {
		t.Fatalf("readLintFlags: %v", err)
	}
	if !flags.Fix || !flags.NoConfig {
		t.Fatalf("bool flags not read: %+v", flags)
	}
	if got := strings.Join(flags.Include, "|"); got != "eol-last|no-todo-comments" {
		t.Fatalf("include = %q", got)
	}
	if len(flags.Ignore) != 1 || flags.Ignore[0] != "gen" {
		t.Fatalf("ignore = %v", flags.Ignore)
	}
	if flags.Tags != nil {
		t.Fatalf("tags should stay unset, got %v", flags.Tags)
	}
}

func TestReadLintFlagsEmptyTags(t *testing.T) {
	cmd := newLintTestCommand(t, "--rules-tags=")
	flags, err := readLintFlags(cmd, nil)
	if err != nil {
		t.Fatalf("readLintFlags: %v", err)
	}
	if flags.Tags == nil || len(flags.Tags) != 0 {
		t.Fatalf("tags = %#v, want empty non-nil", flags.Tags)
	}
}

func TestReporterShortcut(t *testing.T) {
	var s config.Settings
	if err := reporterShortcut(newLintTestCommand(t, "--compact"), &s); err != nil {
		t.Fatalf("reporterShortcut: %v", err)
	}
	if s.Reporter != "compact" {
		t.Fatalf("reporter = %q", s.Reporter)
	}
	if err := reporterShortcut(newLintTestCommand(t, "--json", "--compact"), &s); err == nil {
		t.Fatal("expected error for --json with --compact")
	}
}

func TestResolveColor(t *testing.T) {
	for mode, want := range map[string]bool{"on": true, "always": true, "off": false} {
		got, err := resolveColor(mode, os.Stderr)
		if err != nil || got != want {
			t.Errorf("resolveColor(%q) = %v, %v", mode, got, err)
		}
	}
	if _, err := resolveColor("sometimes", os.Stderr); err == nil {
		t.Error("expected error for invalid mode")
	}
}

func TestReadUIMode(t *testing.T) {
	if m, err := readUIMode(""); err != nil || m != uiModeOff {
		t.Fatalf("readUIMode(\"\") = %q, %v", m, err)
	}
	if m, err := readUIMode(" ON "); err != nil || m != uiModeOn {
		t.Fatalf("readUIMode(ON) = %q, %v", m, err)
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Fatal("expected error")
	}
	if shouldUseTUI(uiModeOff) || !shouldUseTUI(uiModeOn) {
		t.Fatal("explicit modes ignored")
	}
}

func TestInitWritesLoadableManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	cmd := &cobra.Command{Use: "init", RunE: runInit}
	cmd.Flags().Bool("package", false, "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--package", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}

	m, err := project.LoadManifest(filepath.Join(dir, project.ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if !m.IsPackage() || m.Package.Name != "demo" {
		t.Fatalf("unexpected package section: %+v", m.Package)
	}
	if got := strings.Join(m.Lint.Tags, ","); got != "recommended,package" {
		t.Fatalf("tags = %q", got)
	}
	if !strings.Contains(out.String(), "created ") {
		t.Fatalf("output = %q", out.String())
	}

	cmd.SetArgs([]string{dir})
	if err := cmd.Execute(); err == nil {
		t.Fatal("second init should fail")
	}
}

func TestRenderRules(t *testing.T) {
	var infos []lint.RuleInfo
	for _, r := range lint.AllRules() {
		infos = append(infos, lint.RuleInfo{Code: r.Code(), Tags: r.Tags(), Docs: r.Docs()})
	}

	var buf bytes.Buffer
	renderRulesPretty(&buf, infos, false, false)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(infos) {
		t.Fatalf("got %d lines for %d rules:\n%s", len(lines), len(infos), buf.String())
	}
	if !strings.HasPrefix(lines[0], "eol-last ") || !strings.Contains(lines[0], "[recommended]") {
		t.Fatalf("first line = %q", lines[0])
	}

	buf.Reset()
	if err := renderRulesJSON(&buf, infos[:1]); err != nil {
		t.Fatalf("renderRulesJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"code": "eol-last"`) {
		t.Fatalf("json = %s", buf.String())
	}
}
