package project

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanModule(t *testing.T) {
	content := "import a/b;\n" +
		"import ./c::{x, y}; // trailing\n" +
		"// import commented/out;\n" +
		"pub fn run(n: int) -> int {\n" +
		"fn helper() {\n" +
		"pub type Point = int;\n" +
		"type hidden = int;\n" +
		"let s = \"pub fn inside() // not a comment\";\n"
	meta := ScanModule("/w/m.sg", content)

	var imports []string
	for _, imp := range meta.Imports {
		imports = append(imports, imp.Path)
	}
	if !slices.Equal(imports, []string{"a/b", "./c"}) {
		t.Fatalf("imports = %v", imports)
	}
	if got := meta.File.Slice(meta.Imports[1].Span); got != "./c" {
		t.Fatalf("import span = %q", got)
	}

	if len(meta.Decls) != 4 {
		t.Fatalf("decls = %+v", meta.Decls)
	}
	run := meta.Decls[0]
	if run.Name != "run" || !run.Public || !run.HasReturnType || run.Signature != "(n: int) -> int" {
		t.Fatalf("run = %+v", run)
	}
	if meta.File.Slice(run.Span) != "run" {
		t.Fatalf("run span = %q", meta.File.Slice(run.Span))
	}
	if helper := meta.Decls[1]; helper.Public || helper.HasReturnType {
		t.Fatalf("helper = %+v", helper)
	}
	private := meta.PrivateTypes()
	if _, ok := private["hidden"]; !ok || len(private) != 1 {
		t.Fatalf("private types = %v", private)
	}
}

func TestLoadManifestPackage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), `
[package]
name = "app"
exports = ["mod.sg"]

[lint]
exclude = ["eol-last"]
report = "json"

[lint.files]
include = ["src"]
`)
	m, err := LoadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if !m.IsPackage() || m.IsWorkspace() {
		t.Fatalf("shape: package=%v workspace=%v", m.IsPackage(), m.IsWorkspace())
	}
	if m.Lint.Tags != nil {
		t.Fatal("absent tags must stay nil")
	}
	if m.Lint.Report != "json" || !slices.Equal(m.Lint.Files.Include, []string{"src"}) {
		t.Fatalf("lint = %+v", m.Lint)
	}

	ws, err := LoadWorkspace(m)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	if len(ws.Members) != 1 || ws.Members[0].Exports[0] != filepath.Join(dir, "mod.sg") {
		t.Fatalf("workspace = %+v", ws)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)

	writeFile(t, path, "[package]\nexports = []\n")
	if _, err := LoadManifest(path); !errors.Is(err, ErrPackageNameMissing) {
		t.Fatalf("expected ErrPackageNameMissing, got %v", err)
	}

	writeFile(t, path, "[lint]\ntagz = []\n")
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("unknown key must be rejected")
	}

	writeFile(t, path, "[lint]\ntags = []\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Lint.Tags == nil {
		t.Fatal("explicit empty tags must be non-nil")
	}
}

func TestLoadWorkspaceMembers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "[workspace]\nmembers = [\"libs/a\", \"libs/b\"]\n")
	writeFile(t, filepath.Join(root, "libs/a", ManifestName), "[package]\nname = \"a\"\nexports = [\"mod.sg\"]\n")
	writeFile(t, filepath.Join(root, "libs/b", ManifestName), "[package]\nname = \"b\"\n")

	m, err := LoadManifest(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	ws, err := LoadWorkspace(m)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	if len(ws.Members) != 2 || ws.Members[0].Name != "a" || ws.Members[1].Name != "b" {
		t.Fatalf("members = %+v", ws.Members)
	}

	writeFile(t, filepath.Join(root, ManifestName), "[workspace]\nmembers = [\"../escape\"]\n")
	m, err = LoadManifest(filepath.Join(root, ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWorkspace(m); err == nil {
		t.Fatal("member outside the root must be rejected")
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("FindManifest: %v %v", ok, err)
	}
	if path != filepath.Join(root, ManifestName) {
		t.Fatalf("path = %q", path)
	}
}

func TestResolveImport(t *testing.T) {
	ws := &Workspace{
		Root: "/ws",
		Members: []Member{
			{Name: "app", Dir: "/ws/app"},
			{Name: "util", Dir: "/ws/util"},
		},
	}
	tests := []struct {
		from, imp, want string
		wantErr         bool
	}{
		{"/ws/app/sub/x.sg", "./y", "/ws/app/sub/y.sg", false},
		{"/ws/app/sub/x.sg", "../z", "/ws/app/z.sg", false},
		{"/ws/app/sub/x.sg", "lib/q", "/ws/app/lib/q.sg", false},
		{"/ws/app/x.sg", "util/str", "/ws/util/str.sg", false},
		{"/ws/app/x.sg", "util", "/ws/app/util.sg", false},
		{"/ws/app/x.sg", "a//b", "", true},
		{"/ws/app/x.sg", "../../etc", "", true},
		{"/elsewhere/x.sg", "q", "", true},
	}
	for _, tt := range tests {
		got, err := ws.ResolveImport(tt.from, tt.imp)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ResolveImport(%q, %q) = %q, want error", tt.from, tt.imp, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ResolveImport(%q, %q) = %q, %v; want %q", tt.from, tt.imp, got, err, tt.want)
		}
	}
}
