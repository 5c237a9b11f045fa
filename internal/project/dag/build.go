package dag

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"surgelint/internal/project"
	"surgelint/internal/source"
)

// Loader returns the content of a source file.
type Loader func(path string) (string, error)

// OSLoader reads files from disk.
func OSLoader(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ValidationError lists every structural problem of a workspace graph.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return "invalid module graph: " + strings.Join(parts, "; ")
}

// ModuleGraph is a validated, acyclic graph of the modules reachable from the
// workspace exports.
type ModuleGraph struct {
	Index   ModuleIndex
	Graph   Graph
	Topo    *Topo
	Modules []project.ModuleMeta // by ModuleID
	// Missing holds export paths that do not exist on disk.
	Missing map[string]struct{}
}

// Module looks up a module by normalized path.
func (g *ModuleGraph) Module(path string) (*project.ModuleMeta, bool) {
	id, ok := g.Index.NameToID[source.NormalizePath(path)]
	if !ok {
		return nil, false
	}
	return &g.Modules[id], true
}

// Reachable returns the modules reachable from roots, in topological order.
func (g *ModuleGraph) Reachable(roots []string) []ModuleID {
	seen := make(map[ModuleID]bool)
	var stack []ModuleID
	for _, r := range roots {
		if id, ok := g.Index.NameToID[source.NormalizePath(r)]; ok && !seen[id] {
			seen[id] = true
			stack = append(stack, id)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, to := range g.Graph.Edges[id] {
			if !seen[to] {
				seen[to] = true
				stack = append(stack, to)
			}
		}
	}
	out := make([]ModuleID, 0, len(seen))
	for _, id := range g.Topo.Order {
		if seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// BuildValidated loads every module reachable from the members' exports and
// checks that imports resolve and form no cycle. Exports missing on disk are
// recorded in Missing rather than failing the build.
func BuildValidated(ws *project.Workspace, load Loader) (*ModuleGraph, error) {
	if ws == nil {
		return nil, errors.New("no workspace")
	}
	if load == nil {
		load = OSLoader
	}

	missing := make(map[string]struct{})
	byPath := make(map[string]project.ModuleMeta)
	resolvedBy := make(map[string][]string)
	var problems []Problem

	var queue []string
	for _, m := range ws.Members {
		queue = append(queue, m.Exports...)
	}
	sort.Strings(queue)
	exports := make(map[string]bool, len(queue))
	for _, q := range queue {
		exports[q] = true
	}

	visited := make(map[string]bool)
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if visited[path] {
			continue
		}
		visited[path] = true

		content, err := load(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				if exports[path] {
					missing[source.NormalizePath(path)] = struct{}{}
				}
				// отсутствующий импорт будет отмечен при построении графа
				continue
			}
			return nil, fmt.Errorf("load %s: %w", path, err)
		}

		meta := project.ScanModule(path, content)
		if member, ok := ws.MemberOf(path); ok {
			meta.Member = member.Name
		}
		targets := make([]string, len(meta.Imports))
		for i, imp := range meta.Imports {
			target, err := ws.ResolveImport(path, imp.Path)
			if err != nil {
				problems = append(problems, Problem{Module: meta.Path, Span: imp.Span, Msg: err.Error()})
				continue
			}
			targets[i] = source.NormalizePath(target)
			if !visited[target] {
				queue = append(queue, target)
			}
		}
		byPath[meta.Path] = meta
		resolvedBy[meta.Path] = targets
	}

	metas := make([]project.ModuleMeta, 0, len(byPath))
	for _, meta := range byPath {
		metas = append(metas, meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Path < metas[j].Path })
	resolved := make([][]string, len(metas))
	for i, meta := range metas {
		resolved[i] = resolvedBy[meta.Path]
	}

	idx := BuildIndex(metas)
	g, graphProblems := BuildGraph(idx, metas, resolved)
	problems = append(problems, graphProblems...)

	topo := ToposortKahn(g)
	if topo.Cyclic {
		names := make([]string, len(topo.Cycles))
		for i, id := range topo.Cycles {
			names[i] = idx.IDToName[id]
		}
		problems = append(problems, Problem{
			Module: names[0],
			Msg:    "import cycle between " + strings.Join(names, ", "),
		})
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	modules := make([]project.ModuleMeta, len(idx.IDToName))
	for _, meta := range metas {
		modules[idx.NameToID[meta.Path]] = meta
	}
	return &ModuleGraph{
		Index:   idx,
		Graph:   g,
		Topo:    topo,
		Modules: modules,
		Missing: missing,
	}, nil
}
