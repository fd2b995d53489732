package raster

import (
	"math"

	"github.com/paulmach/orb"
)

// Transform is the immutable affine mapping between raster cell indices and
// geographic coordinates. Rotation is always zero: columns increase with
// geographic X, rows increase as geographic Y decreases (image convention).
//
// The transform is produced by [Rasterize] and must be carried unchanged to
// the pixel-graph builder so skeleton pixels map back to the same geographic
// frame. It is a value type; copies are safe and independent.
type Transform struct {
	// OriginX is the geographic X of the left edge of column 0.
	OriginX float64
	// OriginY is the geographic Y of the top edge of row 0.
	OriginY float64
	// CellSize is the width and height of one cell in geographic units.
	CellSize float64
}

// Geo returns the geographic coordinate of the center of cell (col, row).
func (t Transform) Geo(col, row int) orb.Point {
	return orb.Point{
		t.OriginX + (float64(col)+0.5)*t.CellSize,
		t.OriginY - (float64(row)+0.5)*t.CellSize,
	}
}

// Cell returns the cell indices containing the geographic point p.
// The result may lie outside the raster; callers check with [Bitmap.InBounds].
func (t Transform) Cell(p orb.Point) (col, row int) {
	col = int(math.Floor((p[0] - t.OriginX) / t.CellSize))
	row = int(math.Floor((t.OriginY - p[1]) / t.CellSize))
	return col, row
}

// Bitmap is a binary raster mask with its geographic transform.
// Cells are stored row-major; the zero value is not usable, construct with
// [NewBitmap] or [Rasterize].
type Bitmap struct {
	Width, Height int
	Transform     Transform

	cells []uint8
}

// NewBitmap creates an all-background bitmap of the given size.
func NewBitmap(width, height int, t Transform) *Bitmap {
	return &Bitmap{
		Width:     width,
		Height:    height,
		Transform: t,
		cells:     make([]uint8, width*height),
	}
}

// InBounds reports whether (x, y) lies within the raster.
func (b *Bitmap) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Get reports whether cell (x, y) is foreground. Out-of-bounds cells are
// background, which lets neighborhood scans run without edge special-casing.
func (b *Bitmap) Get(x, y int) bool {
	if !b.InBounds(x, y) {
		return false
	}
	return b.cells[y*b.Width+x] != 0
}

// Set marks cell (x, y) as foreground (v=true) or background (v=false).
// Out-of-bounds writes are ignored.
func (b *Bitmap) Set(x, y int, v bool) {
	if !b.InBounds(x, y) {
		return
	}
	if v {
		b.cells[y*b.Width+x] = 1
	} else {
		b.cells[y*b.Width+x] = 0
	}
}

// Count returns the number of foreground cells.
func (b *Bitmap) Count() int {
	n := 0
	for _, c := range b.cells {
		if c != 0 {
			n++
		}
	}
	return n
}

// Clone returns a deep copy sharing no state with the receiver.
func (b *Bitmap) Clone() *Bitmap {
	c := NewBitmap(b.Width, b.Height, b.Transform)
	copy(c.cells, b.cells)
	return c
}

// neighbors8 enumerates the 8-neighborhood clockwise from north.
// The fixed order makes every scan over a pixel's neighbors deterministic.
var neighbors8 = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// Components returns the number of 8-connected foreground components.
// Used for the topology-preservation check between mask and skeleton and for
// the disconnected-result diagnostic.
func (b *Bitmap) Components() int {
	seen := make([]bool, len(b.cells))
	count := 0
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := y*b.Width + x
			if b.cells[i] == 0 || seen[i] {
				continue
			}
			count++
			queue := []int{i}
			seen[i] = true
			for qi := 0; qi < len(queue); qi++ {
				u := queue[qi]
				ux, uy := u%b.Width, u/b.Width
				for _, d := range neighbors8 {
					vx, vy := ux+d[0], uy+d[1]
					if !b.Get(vx, vy) {
						continue
					}
					v := vy*b.Width + vx
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
