package skeleton

import (
	"github.com/paulmach/orb"
)

// Node is a graph vertex at an endpoint, junction, or loop-root pixel,
// already converted to geographic coordinates.
type Node struct {
	Pt    orb.Point
	Class Class
	// Edges holds the indices of incident edges. A self-loop appears twice,
	// so len(Edges) is the node's degree.
	Edges []int
}

// Edge connects two nodes and carries the ordered polyline of pixel centers
// between them, endpoints included, in geographic coordinates. A == B marks a
// self-loop (an isolated cycle, or a degenerate isolated pixel).
type Edge struct {
	A, B int
	Line orb.LineString

	removed bool
}

// Graph is the arena-style pixel graph: nodes and edges live in contiguous
// slices and refer to each other by index. Simplification passes mark edges
// removed in place rather than reallocating.
type Graph struct {
	Nodes []Node
	Edges []Edge

	// Dropped counts degenerate edges (fewer than two coordinates) excluded
	// from the output, surfaced through the pipeline diagnostics.
	Dropped int
	// Knots counts edges removed by CollapseKnots.
	Knots int
}

// addEdge appends an edge and registers it with both endpoint nodes.
func (g *Graph) addEdge(a, b int, line orb.LineString) int {
	idx := len(g.Edges)
	g.Edges = append(g.Edges, Edge{A: a, B: b, Line: line})
	g.Nodes[a].Edges = append(g.Nodes[a].Edges, idx)
	g.Nodes[b].Edges = append(g.Nodes[b].Edges, idx)
	return idx
}

// removeEdge marks an edge removed and detaches it from its endpoints.
func (g *Graph) removeEdge(idx int) {
	e := &g.Edges[idx]
	if e.removed {
		return
	}
	e.removed = true
	g.detach(e.A, idx)
	g.detach(e.B, idx)
}

// detach removes every occurrence of edge idx from node n's incidence list.
func (g *Graph) detach(n, idx int) {
	edges := g.Nodes[n].Edges[:0]
	for _, e := range g.Nodes[n].Edges {
		if e != idx {
			edges = append(edges, e)
		}
	}
	g.Nodes[n].Edges = edges
}

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for i := range g.Edges {
		if !g.Edges[i].removed {
			n++
		}
	}
	return n
}

// NodeCount returns the number of nodes with at least one live incidence.
func (g *Graph) NodeCount() int {
	n := 0
	for i := range g.Nodes {
		if len(g.Nodes[i].Edges) > 0 {
			n++
		}
	}
	return n
}

// Degree returns the degree of node n; self-loops count twice.
func (g *Graph) Degree(n int) int {
	return len(g.Nodes[n].Edges)
}

// Components returns the number of connected components over live edges.
func (g *Graph) Components() int {
	seen := make([]bool, len(g.Nodes))
	count := 0
	for start := range g.Nodes {
		if seen[start] || len(g.Nodes[start].Edges) == 0 {
			continue
		}
		count++
		queue := []int{start}
		seen[start] = true
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			for _, ei := range g.Nodes[u].Edges {
				e := &g.Edges[ei]
				for _, v := range [2]int{e.A, e.B} {
					if !seen[v] {
						seen[v] = true
						queue = append(queue, v)
					}
				}
			}
		}
	}
	return count
}

// Lines extracts one linestring per live edge. Edges with fewer than two
// coordinates (degenerate isolated pixels) are dropped and counted in
// g.Dropped so nothing disappears silently.
func (g *Graph) Lines() []orb.LineString {
	lines := make([]orb.LineString, 0, len(g.Edges))
	for i := range g.Edges {
		e := &g.Edges[i]
		if e.removed {
			continue
		}
		if len(e.Line) < 2 {
			g.Dropped++
			continue
		}
		lines = append(lines, e.Line)
	}
	return lines
}
