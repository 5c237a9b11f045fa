package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"surgelint/internal/diagfmt"
	"surgelint/internal/driver"
	"surgelint/internal/lint"
	"surgelint/internal/project"
)

// ErrFixWithStdin rejects --fix for text read from standard input.
var ErrFixWithStdin = errors.New("--fix cannot be used when linting stdin")

// LintFlags are the lint command's own flags.
type LintFlags struct {
	// Files are files or directories; a single "-" reads stdin.
	Files  []string
	Ignore []string
	// Tags is nil when --rules-tags was not given.
	Tags    []string
	Include []string
	Exclude []string
	Fix     bool
	// Config is an explicit manifest path.
	Config   string
	NoConfig bool
}

// LintOptions is the fully resolved configuration of one lint run.
type LintOptions struct {
	Patterns  driver.FilePatterns
	Stdin     bool
	Fix       bool
	Rules     lint.RulesConfig
	Shape     lint.ProjectShape
	Reporter  diagfmt.Kind
	Manifest  *project.Manifest
	Workspace *project.Workspace
	// BaseDir relativizes paths in reports.
	BaseDir string
}

// ResolveLintOptions merges flags, settings and the manifest found from cwd.
// Flags win over the manifest; the manifest wins over defaults.
func ResolveLintOptions(flags LintFlags, settings Settings, cwd string) (LintOptions, error) {
	opts := LintOptions{
		Fix:     flags.Fix,
		Stdin:   len(flags.Files) == 1 && flags.Files[0] == "-",
		BaseDir: cwd,
	}
	if opts.Stdin && opts.Fix {
		return LintOptions{}, ErrFixWithStdin
	}

	manifest, err := loadManifest(flags, cwd)
	if err != nil {
		return LintOptions{}, err
	}
	opts.Manifest = manifest

	var section project.LintSection
	if manifest != nil {
		section = manifest.Lint
		opts.Shape = lint.ProjectShape{IsPackage: manifest.IsPackage(), IsWorkspace: manifest.IsWorkspace()}
		ws, err := project.LoadWorkspace(manifest)
		if err != nil {
			return LintOptions{}, err
		}
		opts.Workspace = ws
	}

	switch {
	case opts.Stdin:
		// без файлов
	case len(flags.Files) > 0:
		opts.Patterns = driver.FilePatterns{Include: flags.Files, Exclude: flags.Ignore, BaseDir: cwd}
	case manifest != nil:
		opts.Patterns = driver.FilePatterns{
			Include: section.Files.Include,
			Exclude: append(append([]string(nil), section.Files.Exclude...), flags.Ignore...),
			BaseDir: manifest.Dir(),
		}
	default:
		opts.Patterns = driver.FilePatterns{Exclude: flags.Ignore, BaseDir: cwd}
	}

	opts.Rules = lint.RulesConfig{
		Tags:    firstNonNil(flags.Tags, section.Tags),
		Include: firstNonEmpty(flags.Include, section.Include),
		Exclude: firstNonEmpty(flags.Exclude, section.Exclude),
	}

	report := settings.Reporter
	if report == "" {
		report = section.Report
	}
	kind, err := diagfmt.ParseKind(report)
	if err != nil {
		return LintOptions{}, err
	}
	opts.Reporter = kind
	return opts, nil
}

func loadManifest(flags LintFlags, cwd string) (*project.Manifest, error) {
	if flags.NoConfig {
		return nil, nil
	}
	path := flags.Config
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	if path == "" {
		found, ok, err := project.FindManifest(cwd)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		path = found
	}
	m, err := project.LoadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return m, nil
}

func firstNonNil(a, b []string) []string {
	if a != nil {
		return a
	}
	return b
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

// SplitList splits comma separated flag values and drops empty entries.
func SplitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
