package skeleton

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// CollapseKnots welds together clusters of nodes joined by edges shorter
// than maxLen. Thinning a wide junction often leaves a small tangle of
// junction pixels connected by stub edges; collapsing the tangle to its
// centroid restores a single clean intersection.
//
// All nodes of a cluster move to the cluster centroid, the short edges are
// removed, and surviving edges are re-attached to the cluster
// representative with their end coordinates snapped to the centroid. The
// number of removed edges is recorded in g.Knots.
func CollapseKnots(g *Graph, maxLen float64) {
	if maxLen <= 0 || len(g.Edges) == 0 {
		return
	}

	parent := make([]int, len(g.Nodes))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// Smallest node index represents the cluster.
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	short := make([]bool, len(g.Edges))
	for i := range g.Edges {
		e := &g.Edges[i]
		if e.removed || e.A == e.B {
			continue
		}
		if planar.Length(e.Line) < maxLen {
			short[i] = true
			union(e.A, e.B)
		}
	}

	// Centroid per cluster, over member node points. Singleton clusters
	// keep their point untouched.
	sumX := make(map[int]float64)
	sumY := make(map[int]float64)
	count := make(map[int]int)
	for i := range g.Nodes {
		r := find(i)
		sumX[r] += g.Nodes[i].Pt[0]
		sumY[r] += g.Nodes[i].Pt[1]
		count[r]++
	}
	centroid := make(map[int]orb.Point)
	for r, c := range count {
		if c < 2 {
			continue
		}
		centroid[r] = orb.Point{sumX[r] / float64(c), sumY[r] / float64(c)}
	}
	if len(centroid) == 0 {
		return
	}

	for r, pt := range centroid {
		g.Nodes[r].Pt = pt
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		if e.removed {
			continue
		}
		if short[i] {
			g.removeEdge(i)
			g.Knots++
			continue
		}
		ra, rb := find(e.A), find(e.B)
		if ca, ok := centroid[ra]; ok {
			e.Line[0] = ca
		}
		if cb, ok := centroid[rb]; ok {
			e.Line[len(e.Line)-1] = cb
		}
		if e.A != ra {
			g.detach(e.A, i)
			e.A = ra
			g.Nodes[ra].Edges = append(g.Nodes[ra].Edges, i)
		}
		if e.B != rb {
			g.detach(e.B, i)
			e.B = rb
			g.Nodes[rb].Edges = append(g.Nodes[rb].Edges, i)
		}
	}
}
