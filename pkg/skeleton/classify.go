package skeleton

import (
	"github.com/tgrayson/netskel/pkg/raster"
)

// Class tags a skeleton pixel by its connected-neighbor count.
type Class uint8

const (
	// ClassIsolated is a foreground pixel with no connected neighbors.
	ClassIsolated Class = iota
	// ClassEndpoint has exactly one connected neighbor.
	ClassEndpoint
	// ClassChain has exactly two connected neighbors; it lies on an edge.
	ClassChain
	// ClassJunction has three or more connected neighbors; it is a branch point.
	ClassJunction
)

// String returns a short human-readable tag, used in diagnostics.
func (c Class) String() string {
	switch c {
	case ClassIsolated:
		return "isolated"
	case ClassEndpoint:
		return "endpoint"
	case ClassChain:
		return "chain"
	case ClassJunction:
		return "junction"
	default:
		return "unknown"
	}
}

// neighborOffsets enumerates the 8-neighborhood clockwise from north. The
// fixed order keeps classification and chain walks deterministic.
var neighborOffsets = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// connected reports whether the pixel at (x+dx, y+dy) is a connected
// neighbor of the foreground pixel at (x, y). Orthogonal neighbors connect
// whenever they are foreground. Diagonal neighbors connect only when both
// orthogonal bridging cells are background, which prevents the diagonal from
// double-counting a step that is already reachable orthogonally.
func connected(b *raster.Bitmap, x, y, dx, dy int) bool {
	if !b.Get(x+dx, y+dy) {
		return false
	}
	if dx != 0 && dy != 0 {
		return !b.Get(x+dx, y) && !b.Get(x, y+dy)
	}
	return true
}

// connectedNeighbors appends the row-major indices of the connected neighbors
// of (x, y) to buf and returns it. Neighbors appear in neighborOffsets order.
func connectedNeighbors(b *raster.Bitmap, x, y int, buf []int) []int {
	for _, d := range neighborOffsets {
		if connected(b, x, y, d[0], d[1]) {
			buf = append(buf, (y+d[1])*b.Width+x+d[0])
		}
	}
	return buf
}

// classify computes the class of every foreground pixel in one pass.
// The returned slice is indexed row-major; entries for background pixels are
// meaningless. The second return is the number of foreground pixels.
func classify(b *raster.Bitmap) ([]Class, int) {
	class := make([]Class, b.Width*b.Height)
	foreground := 0
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if !b.Get(x, y) {
				continue
			}
			foreground++
			degree := 0
			for _, d := range neighborOffsets {
				if connected(b, x, y, d[0], d[1]) {
					degree++
				}
			}
			switch {
			case degree == 0:
				class[y*b.Width+x] = ClassIsolated
			case degree == 1:
				class[y*b.Width+x] = ClassEndpoint
			case degree == 2:
				class[y*b.Width+x] = ClassChain
			default:
				class[y*b.Width+x] = ClassJunction
			}
		}
	}
	return class, foreground
}
