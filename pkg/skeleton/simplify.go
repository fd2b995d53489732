package skeleton

import "github.com/paulmach/orb"

// MergePassThrough removes degree-2 pass-through nodes by splicing their
// two incident edges into one. The merge repeats until no such node
// remains, so long alternating runs of stub nodes collapse into a single
// polyline. Self-loop nodes are left alone: their two incidences reference
// the same edge.
func MergePassThrough(g *Graph) {
	changed := true
	for changed {
		changed = false
		for n := range g.Nodes {
			inc := liveIncidences(g, n)
			if len(inc) != 2 || inc[0] == inc[1] {
				continue
			}
			spliceAt(g, n, inc[0], inc[1])
			changed = true
		}
	}
}

// liveIncidences returns the non-removed edge incidences of node n.
func liveIncidences(g *Graph, n int) []int {
	var inc []int
	for _, e := range g.Nodes[n].Edges {
		if !g.Edges[e].removed {
			inc = append(inc, e)
		}
	}
	return inc
}

// spliceAt replaces edges e1 and e2, which meet at node n, with one edge
// running endpoint-to-endpoint through n's position.
func spliceAt(g *Graph, n, e1, e2 int) {
	// Orient e1 to end at n and e2 to start at n.
	a := g.Edges[e1].A
	l1 := g.Edges[e1].Line
	if a == n {
		a = g.Edges[e1].B
		l1 = reverse(l1)
	}
	b := g.Edges[e2].B
	l2 := g.Edges[e2].Line
	if b == n {
		b = g.Edges[e2].A
		l2 = reverse(l2)
	}

	line := make(orb.LineString, 0, len(l1)+len(l2)-1)
	line = append(line, l1...)
	line = append(line, l2[1:]...)

	g.removeEdge(e1)
	g.removeEdge(e2)
	g.addEdge(a, b, line)
}

func reverse(l orb.LineString) orb.LineString {
	out := make(orb.LineString, len(l))
	for i, p := range l {
		out[len(l)-1-i] = p
	}
	return out
}
