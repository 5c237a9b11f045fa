package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"surgelint/internal/source"
)

// ErrNoTargetFiles is returned when the file patterns match nothing.
var ErrNoTargetFiles = errors.New("No target files found.") //nolint:staticcheck // message is user-facing

// FilePatterns selects the files of a run. Include entries are files or
// directories; Exclude entries are path prefixes or glob patterns.
type FilePatterns struct {
	Include []string
	Exclude []string
	// BaseDir resolves relative entries; the working directory when empty.
	BaseDir string
}

var skippedDirs = map[string]struct{}{
	".git":         {},
	"vendor":       {},
	"node_modules": {},
}

// CollectFiles expands patterns into a sorted list of absolute lintable paths.
func CollectFiles(patterns FilePatterns) ([]string, error) {
	base := patterns.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		base = wd
	}
	include := patterns.Include
	if len(include) == 0 {
		include = []string{"."}
	}
	excludes := make([]string, 0, len(patterns.Exclude))
	for _, ex := range patterns.Exclude {
		excludes = append(excludes, absPath(base, ex))
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		path = source.NormalizePath(path)
		if isExcluded(path, excludes) {
			return
		}
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, inc := range include {
		root := absPath(base, inc)
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", inc, err)
		}
		if !info.IsDir() {
			// явно указанный файл берём, если он поддерживается
			if source.MediaKindFromPath(root).IsLintable() {
				add(root)
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if _, skip := skippedDirs[d.Name()]; skip && path != root {
					return filepath.SkipDir
				}
				if isExcluded(source.NormalizePath(path), excludes) {
					return filepath.SkipDir
				}
				return nil
			}
			if source.MediaKindFromPath(path).IsLintable() {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return nil, ErrNoTargetFiles
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

func absPath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func isExcluded(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = source.NormalizePath(ex)
		if path == ex || strings.HasPrefix(path, ex+"/") {
			return true
		}
		if ok, _ := filepath.Match(ex, path); ok {
			return true
		}
	}
	return false
}
