package dag

import "slices"

// Topo is the result of Kahn's algorithm over a Graph.
type Topo struct {
	Order   []ModuleID   // importers before their imports
	Batches [][]ModuleID // волны независимых модулей
	Cyclic  bool
	Cycles  []ModuleID // узлы, оставшиеся в цикле
}

// ToposortKahn orders g deterministically; ties are broken by module ID.
func ToposortKahn(g Graph) *Topo {
	n := len(g.Edges)
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{Order: make([]ModuleID, 0, n)}

	var wave []ModuleID
	for id := range indeg {
		if indeg[id] == 0 {
			wave = append(wave, toModuleID(id))
		}
	}

	for len(wave) > 0 {
		topo.Batches = append(topo.Batches, wave)
		topo.Order = append(topo.Order, wave...)
		var next []ModuleID
		for _, id := range wave {
			for _, to := range g.Edges[id] {
				indeg[to]--
				if indeg[to] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		wave = next
	}

	if len(topo.Order) != n {
		topo.Cyclic = true
		for id, d := range indeg {
			if d > 0 {
				topo.Cycles = append(topo.Cycles, toModuleID(id))
			}
		}
	}
	return topo
}
