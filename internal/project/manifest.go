package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrPackageSectionMissing indicates that [package] is missing in a member manifest.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

// PackageSection is the [package] table.
type PackageSection struct {
	Name    string   `toml:"name"`
	Exports []string `toml:"exports"`
}

// WorkspaceSection is the [workspace] table.
type WorkspaceSection struct {
	Members []string `toml:"members"`
}

// LintFiles is the [lint.files] table.
type LintFiles struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// LintSection is the [lint] table.
type LintSection struct {
	// Tags is nil when the key is absent, so defaults can apply.
	Tags    []string  `toml:"tags"`
	Include []string  `toml:"include"`
	Exclude []string  `toml:"exclude"`
	Report  string    `toml:"report"`
	Files   LintFiles `toml:"files"`
}

// Manifest is a parsed surgelint.toml.
type Manifest struct {
	Path      string            `toml:"-"`
	Package   *PackageSection   `toml:"package"`
	Workspace *WorkspaceSection `toml:"workspace"`
	Lint      LintSection       `toml:"lint"`
}

// Dir returns the directory containing the manifest.
func (m *Manifest) Dir() string { return filepath.Dir(m.Path) }

// IsPackage reports whether the manifest declares a package.
func (m *Manifest) IsPackage() bool { return m != nil && m.Package != nil }

// IsWorkspace reports whether the manifest declares workspace members.
func (m *Manifest) IsWorkspace() bool {
	return m != nil && m.Workspace != nil && len(m.Workspace.Members) > 0
}

// LoadManifest parses a surgelint.toml file.
func LoadManifest(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	meta, err := toml.DecodeFile(abs, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", abs, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", abs, undecoded[0].String())
	}
	if meta.IsDefined("lint", "tags") && m.Lint.Tags == nil {
		m.Lint.Tags = []string{}
	}
	if m.Package != nil {
		m.Package.Name = strings.TrimSpace(m.Package.Name)
		if !meta.IsDefined("package", "name") || m.Package.Name == "" {
			return nil, fmt.Errorf("%s: %w", abs, ErrPackageNameMissing)
		}
	}
	m.Path = abs
	return &m, nil
}

// LoadWorkspace builds the workspace described by m: the package itself,
// and every member directory with its own manifest. Returns nil when the
// manifest declares neither.
func LoadWorkspace(m *Manifest) (*Workspace, error) {
	if !m.IsPackage() && !m.IsWorkspace() {
		return nil, nil
	}
	ws := &Workspace{Root: m.Dir()}
	if m.IsPackage() {
		member, err := memberFromPackage(m.Dir(), m.Package)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Path, err)
		}
		ws.Members = append(ws.Members, member)
	}
	if m.IsWorkspace() {
		for _, rel := range m.Workspace.Members {
			dir, err := resolveMemberDir(ws.Root, rel)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", m.Path, err)
			}
			sub, err := LoadManifest(filepath.Join(dir, ManifestName))
			if err != nil {
				return nil, err
			}
			if !sub.IsPackage() {
				return nil, fmt.Errorf("%s: %w", sub.Path, ErrPackageSectionMissing)
			}
			member, err := memberFromPackage(dir, sub.Package)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", sub.Path, err)
			}
			ws.Members = append(ws.Members, member)
		}
	}
	if err := ws.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}
	return ws, nil
}

func memberFromPackage(dir string, pkg *PackageSection) (Member, error) {
	if !IsValidModuleIdent(pkg.Name) {
		return Member{}, fmt.Errorf("invalid package name %q", pkg.Name)
	}
	member := Member{Name: pkg.Name, Dir: dir}
	for _, exp := range pkg.Exports {
		exp = strings.TrimSpace(exp)
		if exp == "" || filepath.IsAbs(exp) {
			return Member{}, fmt.Errorf("invalid export %q: must be a relative path", exp)
		}
		abs := filepath.Join(dir, filepath.FromSlash(exp))
		if !pathWithin(dir, abs) {
			return Member{}, fmt.Errorf("invalid export %q: escapes package directory", exp)
		}
		member.Exports = append(member.Exports, abs)
	}
	return member, nil
}

// resolveMemberDir resolves and validates a member directory relative to the workspace root.
func resolveMemberDir(root, rel string) (string, error) {
	rel = strings.TrimSpace(rel)
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("invalid workspace member %q: must be a relative path", rel)
	}
	dir := filepath.Join(root, filepath.Clean(filepath.FromSlash(rel)))
	if !pathWithin(root, dir) {
		return "", fmt.Errorf("invalid workspace member %q: escapes workspace root", rel)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("invalid workspace member %q: %w", rel, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("invalid workspace member %q: not a directory", rel)
	}
	return dir, nil
}
