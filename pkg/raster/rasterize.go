package raster

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/tgrayson/netskel/pkg/errors"
)

// marginCells is the padding added around the buffered extent so no skeleton
// pixel can touch the raster edge.
const marginCells = 2

// Options configures geometry rasterization.
type Options struct {
	// Buffer is the corridor half-width in geographic units. Every point
	// within Buffer of an input line becomes part of the mask.
	Buffer float64
	// CellSize is the raster resolution in geographic units per cell.
	CellSize float64
	// Segment switches to variable-width buffering: only lines running
	// within Buffer of another line's centre portion burn at the full
	// Buffer, solitary lines burn a token one-cell-wide trace. Keeps lone
	// carriageways from being fattened and re-centered by the corridor.
	Segment bool
}

// Validate checks the rasterization parameters.
func (o Options) Validate() error {
	if err := errors.ValidatePositive("rasterize", "buffer", o.Buffer); err != nil {
		return err
	}
	return errors.ValidatePositive("rasterize", "cell size", o.CellSize)
}

// Rasterize buffers every input line by opts.Buffer and burns the result into
// a binary mask. Each segment is expanded into a round-capped capsule; the
// union of the capsules equals the buffered union of the lines, so no polygon
// boolean operations are needed. A cell is foreground when its center lies
// within the buffer distance of any segment.
//
// The raster bounds are the input bounding box expanded by the buffer plus a
// two-cell margin, and the returned bitmap carries the affine [Transform]
// needed to map skeleton pixels back to geographic space.
//
// Returns an EMPTY_INPUT error when the input holds no coordinates and an
// INVALID_PARAMETER error for a non-positive buffer or cell size.
func Rasterize(lines []orb.LineString, opts Options) (*Bitmap, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	bound, ok := linesBound(lines)
	if !ok {
		return nil, errors.New(errors.ErrCodeEmptyInput, "rasterize", "input network has no coordinates")
	}

	cell := opts.CellSize
	margin := opts.Buffer + marginCells*cell
	t := Transform{
		OriginX:  bound.Min[0] - margin,
		OriginY:  bound.Max[1] + margin,
		CellSize: cell,
	}
	width := int(math.Ceil((bound.Max[0] - bound.Min[0] + 2*margin) / cell))
	height := int(math.Ceil((bound.Max[1] - bound.Min[1] + 2*margin) / cell))
	b := NewBitmap(width, height, t)

	radii := make([]float64, len(lines))
	for i := range radii {
		radii[i] = opts.Buffer
	}
	if opts.Segment {
		radii = segmentRadii(lines, opts)
	}

	for li, ls := range lines {
		switch len(ls) {
		case 0:
			continue
		case 1:
			b.burnSegment(ls[0], ls[0], radii[li])
		default:
			for i := 0; i+1 < len(ls); i++ {
				b.burnSegment(ls[i], ls[i+1], radii[li])
			}
		}
	}

	return b, nil
}

// burnSegment marks every cell whose center is within radius of the segment
// (a, b). Degenerate segments (a == b) burn a disc.
func (b *Bitmap) burnSegment(p, q orb.Point, radius float64) {
	minX := math.Min(p[0], q[0]) - radius
	maxX := math.Max(p[0], q[0]) + radius
	minY := math.Min(p[1], q[1]) - radius
	maxY := math.Max(p[1], q[1]) + radius

	c0, r0 := b.Transform.Cell(orb.Point{minX, maxY})
	c1, r1 := b.Transform.Cell(orb.Point{maxX, minY})
	c0, r0 = max(c0, 0), max(r0, 0)
	c1, r1 = min(c1, b.Width-1), min(r1, b.Height-1)

	r2 := radius * radius
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			center := b.Transform.Geo(col, row)
			if planar.DistanceFromSegmentSquared(p, q, center) <= r2 {
				b.cells[row*b.Width+col] = 1
			}
		}
	}
}

// linesBound returns the union bounding box of all coordinates.
func linesBound(lines []orb.LineString) (orb.Bound, bool) {
	var bound orb.Bound
	found := false
	for _, ls := range lines {
		if len(ls) == 0 {
			continue
		}
		if !found {
			bound = ls.Bound()
			found = true
		} else {
			bound = bound.Union(ls.Bound())
		}
	}
	return bound, found
}
