package dag

import (
	"fmt"
	"slices"

	"surgelint/internal/project"
	"surgelint/internal/source"
)

// Graph stores import edges between indexed modules.
type Graph struct {
	Edges [][]ModuleID // Edges[from] = []to, sorted
	Indeg []int        // входящие степени для Kahn
}

// Problem is a structural defect found while building the graph.
type Problem struct {
	Module string
	Span   source.Span
	Msg    string
}

func (p Problem) String() string {
	if p.Span.Empty() {
		return fmt.Sprintf("%s: %s", p.Module, p.Msg)
	}
	return fmt.Sprintf("%s@%s: %s", p.Module, p.Span, p.Msg)
}

// BuildGraph connects modules through their resolved imports. resolved[i][j]
// is the target path of metas[i].Imports[j], or "" when it failed to resolve.
func BuildGraph(idx ModuleIndex, metas []project.ModuleMeta, resolved [][]string) (Graph, []Problem) {
	n := len(idx.IDToName)
	g := Graph{
		Edges: make([][]ModuleID, n),
		Indeg: make([]int, n),
	}
	var problems []Problem

	for i, meta := range metas {
		from, ok := idx.NameToID[meta.Path]
		if !ok {
			// не должно происходить, индекс строится на тех же метаданных
			continue
		}
		seen := make(map[ModuleID]struct{}, len(meta.Imports))
		for j, imp := range meta.Imports {
			target := resolved[i][j]
			if target == "" {
				continue
			}
			to, ok := idx.NameToID[target]
			if !ok {
				problems = append(problems, Problem{
					Module: meta.Path,
					Span:   imp.Span,
					Msg:    fmt.Sprintf("imports unknown module %q", imp.Path),
				})
				continue
			}
			if to == from {
				problems = append(problems, Problem{
					Module: meta.Path,
					Span:   imp.Span,
					Msg:    "module imports itself",
				})
				continue
			}
			if _, dup := seen[to]; dup {
				continue
			}
			seen[to] = struct{}{}
			g.Edges[from] = append(g.Edges[from], to)
			g.Indeg[to]++
		}
		slices.Sort(g.Edges[from])
	}
	return g, problems
}
