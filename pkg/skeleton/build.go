package skeleton

import (
	"github.com/paulmach/orb"

	"github.com/tgrayson/netskel/pkg/errors"
	"github.com/tgrayson/netskel/pkg/raster"
)

// Build constructs the pixel graph of a skeleton mask.
//
// Nodes are seeded at every endpoint and junction pixel. From each node,
// every unvisited chain direction is walked until the next node, and the
// visited pixel centers form the edge's polyline in geographic coordinates
// (through the bitmap's transform). Each chain pixel belongs to exactly one
// edge. Chains that close into a loop without touching a node become
// self-loop edges rooted at the loop pixel with the lowest row-major index.
// Isolated pixels become degenerate single-pixel self-loops.
//
// Returns an EMPTY_SKELETON error when the mask has no foreground pixels.
func Build(b *raster.Bitmap) (*Graph, error) {
	class, foreground := classify(b)
	if foreground == 0 {
		return nil, errors.New(errors.ErrCodeEmptySkeleton, "build", "skeleton mask has no foreground pixels")
	}

	w := b.Width
	geo := func(i int) orb.Point { return b.Transform.Geo(i%w, i/w) }

	// Seed nodes at non-chain pixels, scan order for determinism.
	g := &Graph{}
	nodeAt := make(map[int]int)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !b.Get(x, y) || class[i] == ClassChain {
				continue
			}
			nodeAt[i] = len(g.Nodes)
			g.Nodes = append(g.Nodes, Node{Pt: geo(i), Class: class[i]})
		}
	}

	visited := make([]bool, w*b.Height)
	var buf []int

	for y := 0; y < b.Height; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !b.Get(x, y) || class[i] == ClassChain {
				continue
			}
			if class[i] == ClassIsolated {
				n := nodeAt[i]
				g.addEdge(n, n, orb.LineString{geo(i)})
				continue
			}
			buf = connectedNeighbors(b, x, y, buf[:0])
			for _, j := range buf {
				if class[j] != ClassChain {
					// Direct node-to-node adjacency; emit once per pair.
					if i < j {
						g.addEdge(nodeAt[i], nodeAt[j], orb.LineString{geo(i), geo(j)})
					}
					continue
				}
				if visited[j] {
					continue
				}
				g.walkChain(b, class, visited, nodeAt, i, j, geo)
			}
		}
	}

	// Leftover chain pixels form closed loops with no node anywhere on them.
	for y := 0; y < b.Height; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !b.Get(x, y) || class[i] != ClassChain || visited[i] {
				continue
			}
			g.walkLoop(b, visited, i, geo)
		}
	}

	return g, nil
}

// walkChain follows chain pixels from node pixel start through first until
// another node pixel is reached, emitting one edge.
func (g *Graph) walkChain(b *raster.Bitmap, class []Class, visited []bool, nodeAt map[int]int, start, first int, geo func(int) orb.Point) {
	w := b.Width
	line := orb.LineString{geo(start), geo(first)}
	visited[first] = true

	prev, cur := start, first
	var buf []int
	for {
		buf = connectedNeighbors(b, cur%w, cur/w, buf[:0])
		// A chain pixel has exactly two connected neighbors; take the one the
		// walk did not come from.
		next := buf[0]
		if next == prev {
			next = buf[1]
		}
		line = append(line, geo(next))
		if class[next] != ClassChain {
			g.addEdge(nodeAt[start], nodeAt[next], line)
			return
		}
		visited[next] = true
		prev, cur = cur, next
	}
}

// walkLoop traces a closed all-chain cycle starting at root, creating a
// loop-root node and a single self-loop edge whose polyline closes on itself.
func (g *Graph) walkLoop(b *raster.Bitmap, visited []bool, root int, geo func(int) orb.Point) {
	w := b.Width
	visited[root] = true
	n := len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{Pt: geo(root), Class: ClassChain})

	line := orb.LineString{geo(root)}
	var buf []int
	buf = connectedNeighbors(b, root%w, root/w, buf[:0])
	prev, cur := root, buf[0]
	for cur != root {
		visited[cur] = true
		line = append(line, geo(cur))
		buf = connectedNeighbors(b, cur%w, cur/w, buf[:0])
		next := buf[0]
		if next == prev {
			next = buf[1]
		}
		prev, cur = cur, next
	}
	line = append(line, geo(root))
	g.addEdge(n, n, line)
}
