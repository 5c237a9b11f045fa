package dag

import (
	"fmt"
	"regexp"
	"sort"

	"surgelint/internal/diag"
	"surgelint/internal/project"
	"surgelint/internal/source"
)

var identRe = regexp.MustCompile(`[A-Za-z_]\w*`)

// SurfaceDiagnostics checks the public API reachable from exports:
// public functions need an explicit return type and may not mention types
// private to their module; every export must exist.
func SurfaceDiagnostics(exports []string, g *ModuleGraph) []*diag.SurfaceDiagnostic {
	var out []*diag.SurfaceDiagnostic

	sorted := append([]string(nil), exports...)
	sort.Strings(sorted)
	for _, exp := range sorted {
		if _, ok := g.Missing[source.NormalizePath(exp)]; ok {
			out = append(out, diag.NewUnlocatedSurface(exp, fmt.Sprintf("exported entry point %q was not found", exp)).
				WithHint("check the exports list in surgelint.toml"))
		}
	}

	for _, id := range g.Reachable(sorted) {
		mod := &g.Modules[id]
		private := mod.PrivateTypes()
		for _, d := range mod.Decls {
			if !d.Public || d.Kind != project.DeclFn {
				continue
			}
			if !d.HasReturnType {
				out = append(out, diag.NewSurface(mod.File, d.Span,
					fmt.Sprintf("missing explicit return type in the public API for %q", d.Name)).
					WithHint("add an explicit return type to the function signature"))
			}
			for _, name := range privateTypesIn(d.Signature, private) {
				out = append(out, diag.NewSurface(mod.File, d.Span,
					fmt.Sprintf("public function %q references private type %q", d.Name, name)).
					WithHint("make the type public with \"pub type\" or remove it from the signature"))
			}
		}
	}
	return out
}

func privateTypesIn(signature string, private map[string]struct{}) []string {
	if len(private) == 0 {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, ident := range identRe.FindAllString(signature, -1) {
		if _, ok := private[ident]; ok && !seen[ident] {
			seen[ident] = true
			out = append(out, ident)
		}
	}
	return out
}
