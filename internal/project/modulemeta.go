package project

import (
	"errors"
	"strings"
	"unicode"

	"surgelint/internal/source"
)

// ImportMeta is one import statement of a module.
type ImportMeta struct {
	Path string // as written: "a/b", "./c", "../d"
	Span source.Span
}

// DeclKind distinguishes declaration forms relevant to the export surface.
type DeclKind uint8

const (
	DeclFn DeclKind = iota + 1
	DeclType
)

// Decl is a top-level declaration found by ScanModule.
type Decl struct {
	Kind   DeclKind
	Name   string
	Public bool
	// Span covers the declared name.
	Span source.Span
	// Signature is the parameter list and return type text of a function.
	Signature string
	// HasReturnType reports an explicit "-> T" on a function.
	HasReturnType bool
}

// ModuleMeta describes one source file of a workspace member.
type ModuleMeta struct {
	Path    string // нормализованный путь к файлу
	Member  string // имя участника workspace
	File    *source.File
	Imports []ImportMeta
	Decls   []Decl
}

// PrivateTypes returns the names of non-public types declared in the module.
func (m *ModuleMeta) PrivateTypes() map[string]struct{} {
	out := make(map[string]struct{})
	for _, d := range m.Decls {
		if d.Kind == DeclType && !d.Public {
			out[d.Name] = struct{}{}
		}
	}
	return out
}

// IsValidModuleIdent reports whether name can be a member name.
func IsValidModuleIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// SplitImportPath splits an import path into segments, rejecting empty
// segments. A trailing ".sg" is dropped.
func SplitImportPath(path string) ([]string, error) {
	path = strings.TrimSuffix(strings.TrimSpace(path), ".sg")
	if path == "" {
		return nil, errors.New("empty import path")
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return nil, errors.New("import path must be relative and use '/'")
	}
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if seg == "" {
			return nil, errors.New("empty import segment")
		}
	}
	return segments, nil
}
