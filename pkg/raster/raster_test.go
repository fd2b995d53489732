package raster

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgrayson/netskel/pkg/errors"
)

func TestTransform_RoundTrip(t *testing.T) {
	tr := Transform{OriginX: -10, OriginY: 20, CellSize: 0.5}

	for _, cell := range [][2]int{{0, 0}, {3, 7}, {99, 42}} {
		p := tr.Geo(cell[0], cell[1])
		col, row := tr.Cell(p)
		assert.Equal(t, cell[0], col, "column round trip for %v", cell)
		assert.Equal(t, cell[1], row, "row round trip for %v", cell)
	}
}

func TestRasterize_Validation(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}

	tests := []struct {
		name  string
		lines []orb.LineString
		opts  Options
		code  errors.Code
	}{
		{
			name:  "no lines",
			lines: nil,
			opts:  Options{Buffer: 5, CellSize: 1},
			code:  errors.ErrCodeEmptyInput,
		},
		{
			name:  "only empty lines",
			lines: []orb.LineString{{}},
			opts:  Options{Buffer: 5, CellSize: 1},
			code:  errors.ErrCodeEmptyInput,
		},
		{
			name:  "zero buffer",
			lines: []orb.LineString{line},
			opts:  Options{Buffer: 0, CellSize: 1},
			code:  errors.ErrCodeInvalidParameter,
		},
		{
			name:  "negative cell size",
			lines: []orb.LineString{line},
			opts:  Options{Buffer: 5, CellSize: -1},
			code:  errors.ErrCodeInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rasterize(tt.lines, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v, want code %s", err, tt.code)
		})
	}
}

func TestRasterize_StraightCorridor(t *testing.T) {
	lines := []orb.LineString{{{0, 0}, {100, 0}}}

	b, err := Rasterize(lines, Options{Buffer: 5, CellSize: 1})
	require.NoError(t, err)
	require.NotZero(t, b.Count())

	// The mask is a single corridor.
	assert.Equal(t, 1, b.Components())

	// Cell centers on the line, inside the buffer, and beyond it.
	assert.True(t, getAt(b, orb.Point{50, 0}), "center of corridor should be foreground")
	assert.True(t, getAt(b, orb.Point{50, 4}), "point within buffer should be foreground")
	assert.False(t, getAt(b, orb.Point{50, 6.3}), "point beyond buffer should be background")

	// The margin keeps foreground away from the raster edge.
	for x := 0; x < b.Width; x++ {
		assert.False(t, b.Get(x, 0), "top border must stay background")
		assert.False(t, b.Get(x, b.Height-1), "bottom border must stay background")
	}
}

// getAt looks up the mask cell containing a geographic point.
func getAt(b *Bitmap, p orb.Point) bool {
	col, row := b.Transform.Cell(p)
	return b.Get(col, row)
}

func TestRasterize_DisjointInputs(t *testing.T) {
	lines := []orb.LineString{
		{{0, 0}, {20, 0}},
		{{0, 500}, {20, 500}},
	}

	b, err := Rasterize(lines, Options{Buffer: 3, CellSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Components())
}

func TestSegmentRadii(t *testing.T) {
	lines := []orb.LineString{
		{{0, 0}, {100, 0}},
		{{0, 4}, {100, 4}},
		{{0, 500}, {100, 500}},
	}

	radii := segmentRadii(lines, Options{Buffer: 5, CellSize: 1})

	require.Len(t, radii, 3)
	assert.Equal(t, 5.0, radii[0], "bundled line gets the full buffer")
	assert.Equal(t, 5.0, radii[1], "bundled line gets the full buffer")
	assert.InDelta(t, 0.612, radii[2], 1e-9, "solitary line gets the token width")
}

func TestRasterize_SegmentMode(t *testing.T) {
	solitary := []orb.LineString{{{0, 0}, {100, 0}}}

	wide, err := Rasterize(solitary, Options{Buffer: 5, CellSize: 1})
	require.NoError(t, err)
	narrow, err := Rasterize(solitary, Options{Buffer: 5, CellSize: 1, Segment: true})
	require.NoError(t, err)

	assert.True(t, getAt(wide, orb.Point{50, 4}), "full buffer covers the corridor flank")
	assert.False(t, getAt(narrow, orb.Point{50, 4}), "solitary line in segment mode burns a thin trace")
	assert.True(t, getAt(narrow, orb.Point{50, 0}), "solitary line itself still burns")
	assert.Equal(t, 1, narrow.Components(), "thin trace must stay connected")
}

func TestTrimEnds(t *testing.T) {
	l := orb.LineString{{0, 0}, {10, 0}, {20, 0}}

	centre := trimEnds(l, 5)
	require.Len(t, centre, 3)
	assert.Equal(t, orb.Point{5, 0}, centre[0])
	assert.Equal(t, orb.Point{15, 0}, centre[2])

	assert.Nil(t, trimEnds(l, 10), "line shorter than twice the offset has no centre")
	assert.Nil(t, trimEnds(orb.LineString{{3, 3}}, 1))
}

func TestFillHoles(t *testing.T) {
	t.Run("small interior hole filled", func(t *testing.T) {
		b := NewBitmap(9, 9, Transform{CellSize: 1})
		for y := 2; y <= 6; y++ {
			for x := 2; x <= 6; x++ {
				b.Set(x, y, true)
			}
		}
		b.Set(4, 4, false)

		FillHoles(b, 4)
		assert.True(t, b.Get(4, 4), "single-cell hole should be filled")
	})

	t.Run("large hole kept", func(t *testing.T) {
		b := NewBitmap(11, 11, Transform{CellSize: 1})
		for y := 1; y <= 9; y++ {
			for x := 1; x <= 9; x++ {
				b.Set(x, y, true)
			}
		}
		for y := 4; y <= 6; y++ {
			for x := 4; x <= 6; x++ {
				b.Set(x, y, false)
			}
		}

		FillHoles(b, 4)
		assert.False(t, b.Get(5, 5), "9-cell hole exceeds maxArea and must survive")
	})

	t.Run("border background untouched", func(t *testing.T) {
		b := NewBitmap(5, 5, Transform{CellSize: 1})
		b.Set(2, 2, true)

		FillHoles(b, 100)
		assert.Equal(t, 1, b.Count(), "outside background touches the border and must not be filled")
	})
}

func TestZhangSuen_Bar(t *testing.T) {
	b := NewBitmap(40, 11, Transform{CellSize: 1})
	for y := 3; y <= 7; y++ {
		for x := 2; x <= 37; x++ {
			b.Set(x, y, true)
		}
	}
	before := b.Count()

	s := ZhangSuen{}.Thin(b)

	assert.Equal(t, before, b.Count(), "input bitmap must not be modified")
	assert.Less(t, s.Count(), before, "thinning should remove pixels")
	assert.Equal(t, 1, s.Components(), "bar must stay one component")

	// One-pixel wide: no fully-foreground 2x2 block remains.
	for y := 0; y < s.Height-1; y++ {
		for x := 0; x < s.Width-1; x++ {
			full := s.Get(x, y) && s.Get(x+1, y) && s.Get(x, y+1) && s.Get(x+1, y+1)
			assert.False(t, full, "2x2 foreground block at (%d,%d)", x, y)
		}
	}
}

func TestZhangSuen_SymmetricErosion(t *testing.T) {
	// A left-right symmetric bar must thin to a left-right symmetric
	// skeleton: scan order must not bias which tip erodes further.
	b := NewBitmap(60, 13, Transform{CellSize: 1})
	for y := 3; y <= 9; y++ {
		for x := 4; x <= 55; x++ {
			b.Set(x, y, true)
		}
	}

	s := ZhangSuen{}.Thin(b)

	minX, maxX := s.Width, -1
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if s.Get(x, y) {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
			}
		}
	}
	require.LessOrEqual(t, minX, maxX, "skeleton must not be empty")

	westInset := minX - 4
	eastInset := 55 - maxX
	assert.LessOrEqual(t, absInt(westInset-eastInset), 1,
		"tip erosion must be symmetric: west inset %d, east inset %d", westInset, eastInset)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestZhangSuen_SmallComponents(t *testing.T) {
	b := NewBitmap(10, 10, Transform{CellSize: 1})
	b.Set(2, 2, true) // isolated pixel
	b.Set(6, 6, true) // isolated 2x2 block
	b.Set(7, 6, true)
	b.Set(6, 7, true)
	b.Set(7, 7, true)

	s := ZhangSuen{}.Thin(b)

	assert.True(t, s.Get(2, 2), "isolated pixel must survive thinning")
	assert.Equal(t, 2, s.Components(), "no component may vanish")
}

func TestZhangSuen_PreservesLoop(t *testing.T) {
	// A square ring: frame of thickness 3 in a 21x21 raster.
	b := NewBitmap(21, 21, Transform{CellSize: 1})
	for y := 2; y <= 18; y++ {
		for x := 2; x <= 18; x++ {
			onFrame := x <= 4 || x >= 16 || y <= 4 || y >= 16
			if onFrame {
				b.Set(x, y, true)
			}
		}
	}

	s := ZhangSuen{}.Thin(b)

	assert.Equal(t, 1, s.Components())
	assert.False(t, s.Get(10, 10), "ring interior stays background")
	assert.GreaterOrEqual(t, backgroundComponents(s), 2,
		"the ring's hole must survive thinning")
}

// backgroundComponents counts 4-connected background components.
func backgroundComponents(b *Bitmap) int {
	seen := make([]bool, b.Width*b.Height)
	count := 0
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := y*b.Width + x
			if b.Get(x, y) || seen[i] {
				continue
			}
			count++
			queue := []int{i}
			seen[i] = true
			for qi := 0; qi < len(queue); qi++ {
				u := queue[qi]
				ux, uy := u%b.Width, u/b.Width
				for _, d := range [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
					vx, vy := ux+d[0], uy+d[1]
					if !b.InBounds(vx, vy) || b.Get(vx, vy) {
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
