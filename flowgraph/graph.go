// Package flowgraph builds the information-flow dependency graph from a
// parsed transaction's instructions: one node per step index (including
// the stepidx sentinels), one edge per dependency a step's accesses
// declare on an earlier producing step.
package flowgraph

import (
	"sort"

	"github.com/ethflow/tracewalk/instructions"
)

// Edge is "From depended on To", To always being an earlier step index or
// a stepidx sentinel.
type Edge struct {
	From int
	To   int
}

// Graph is the dependency graph for one parsed transaction.
type Graph struct {
	edges     []Edge
	edgeSet   map[Edge]struct{}
	outByStep map[int][]int
}

// Build constructs the graph for instrs, which must be in step-index
// order (as produced by traceevm.EVM.Instructions).
func Build(instrs []*instructions.Instruction) *Graph {
	g := &Graph{edgeSet: make(map[Edge]struct{}), outByStep: make(map[int][]int)}
	for _, instr := range instrs {
		for _, dep := range instr.Flow.Accesses.Dependencies() {
			g.addEdge(instr.StepIndex, dep.ProducerStep)
		}
	}
	return g
}

func (g *Graph) addEdge(from, to int) {
	e := Edge{From: from, To: to}
	if _, ok := g.edgeSet[e]; ok {
		return
	}
	g.edgeSet[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.outByStep[from] = append(g.outByStep[from], to)
}

// Edges returns every distinct edge, in the order first discovered.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// DependenciesOf returns the distinct step indices step directly depends
// on, sorted descending (most recent producer first).
func (g *Graph) DependenciesOf(step int) []int {
	out := append([]int(nil), g.outByStep[step]...)
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// IsAcyclic reports whether every edge strictly decreases step index —
// sufficient to prove acyclicity, since a cycle would require some edge to
// point forward or to itself (spec.md invariant 6).
func (g *Graph) IsAcyclic() bool {
	for _, e := range g.edges {
		if e.To >= e.From {
			return false
		}
	}
	return true
}
