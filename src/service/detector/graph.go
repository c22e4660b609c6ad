package detector

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"debtwatch/src/model"
)

// debtGraph wraps a gonum directed graph with the label mapping the
// graph detectors share. Node labels are opaque strings: files for
// TypeScript models, package dirs for Go models.
type debtGraph struct {
	directed *simple.DirectedGraph
	idOf     map[string]int64
	labelOf  map[int64]string
	fanIn    map[string]int
	fanOut   map[string]int
}

// buildGraph converts model edges into a gonum directed graph.
// Duplicate edges collapse and self-loops are dropped; node ids are
// assigned in sorted label order so analyses are reproducible.
func buildGraph(sm *model.SymbolModel) *debtGraph {
	g := &debtGraph{
		directed: simple.NewDirectedGraph(),
		idOf:     make(map[string]int64),
		labelOf:  make(map[int64]string),
		fanIn:    make(map[string]int),
		fanOut:   make(map[string]int),
	}

	labels := make(map[string]struct{})
	for _, f := range sm.Files {
		labels[f.Node] = struct{}{}
	}
	for _, e := range sm.Edges {
		labels[e.FromFile] = struct{}{}
		labels[e.ToFile] = struct{}{}
	}
	sorted := make([]string, 0, len(labels))
	for l := range labels {
		sorted = append(sorted, l)
	}
	sort.Strings(sorted)
	for _, l := range sorted {
		id := int64(len(g.idOf))
		g.idOf[l] = id
		g.labelOf[id] = l
		g.directed.AddNode(simple.Node(id))
	}

	seen := make(map[[2]int64]struct{})
	for _, e := range sm.Edges {
		from, to := g.idOf[e.FromFile], g.idOf[e.ToFile]
		if from == to {
			continue
		}
		key := [2]int64{from, to}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		g.directed.SetEdge(g.directed.NewEdge(simple.Node(from), simple.Node(to)))
		g.fanOut[e.FromFile]++
		g.fanIn[e.ToFile]++
	}
	return g
}

// sortedLabels returns all node labels in ascending order
func (g *debtGraph) sortedLabels() []string {
	out := make([]string, 0, len(g.idOf))
	for l := range g.idOf {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
