package geometry

import "github.com/paulmach/orb"

// NodeSet indexes the unique endpoints of a line set. Source[i] and
// Target[i] are indices into Nodes for line i's first and last coordinate;
// Degree[j] counts how many line ends meet at Nodes[j].
type NodeSet struct {
	Nodes  []orb.Point
	Source []int
	Target []int
	Degree []int
}

// SourceTarget builds the node index of lines. Nodes are numbered in first
// appearance order, so the result is deterministic for a given input order.
func SourceTarget(lines []orb.LineString) NodeSet {
	ns := NodeSet{
		Source: make([]int, len(lines)),
		Target: make([]int, len(lines)),
	}
	index := make(map[orb.Point]int)
	intern := func(p orb.Point) int {
		if i, ok := index[p]; ok {
			return i
		}
		i := len(ns.Nodes)
		index[p] = i
		ns.Nodes = append(ns.Nodes, p)
		ns.Degree = append(ns.Degree, 0)
		return i
	}
	for i, l := range lines {
		s, e := EndPoints(l)
		ns.Source[i] = intern(s)
		ns.Target[i] = intern(e)
		ns.Degree[ns.Source[i]]++
		ns.Degree[ns.Target[i]]++
	}
	return ns
}
