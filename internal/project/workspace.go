package project

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Workspace is the set of members whose export surface is checked.
type Workspace struct {
	Root    string
	Members []Member
}

// Member is one package of a workspace.
type Member struct {
	Name string
	Dir  string // absolute
	// Exports are absolute paths of the public entry points.
	Exports []string
}

// MemberByName finds a member.
func (w *Workspace) MemberByName(name string) (Member, bool) {
	for _, m := range w.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// MemberOf returns the member whose directory contains path.
// The deepest directory wins for nested members.
func (w *Workspace) MemberOf(path string) (Member, bool) {
	best := -1
	for i, m := range w.Members {
		if pathWithin(m.Dir, path) && (best < 0 || len(m.Dir) > len(w.Members[best].Dir)) {
			best = i
		}
	}
	if best < 0 {
		return Member{}, false
	}
	return w.Members[best], true
}

func (w *Workspace) validate() error {
	seen := make(map[string]struct{}, len(w.Members))
	for _, m := range w.Members {
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("duplicate workspace member %q", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return nil
}

// ResolveImport maps an import path written in file fromPath to a file path.
// "./x" and "../x" are relative to the importing file; a path whose first
// segment names a workspace member resolves inside that member; anything
// else resolves from the root of the importing member.
func (w *Workspace) ResolveImport(fromPath, importPath string) (string, error) {
	segments, err := SplitImportPath(importPath)
	if err != nil {
		return "", err
	}
	var base string
	switch {
	case segments[0] == "." || segments[0] == "..":
		base = filepath.Dir(fromPath)
	default:
		if m, ok := w.MemberByName(segments[0]); ok && len(segments) > 1 {
			base = m.Dir
			segments = segments[1:]
		} else if m, ok := w.MemberOf(fromPath); ok {
			base = m.Dir
		} else {
			return "", fmt.Errorf("cannot resolve %q: %s is outside the workspace", importPath, fromPath)
		}
	}

	target := filepath.Join(base, filepath.FromSlash(strings.Join(segments, "/"))) + ".sg"
	if !pathWithin(w.Root, target) {
		return "", fmt.Errorf("import %q escapes the workspace root", importPath)
	}
	return target, nil
}
