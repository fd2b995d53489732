package voronoi

import (
	"context"
	"math"
	"testing"

	"github.com/fogleman/delaunay"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgrayson/netskel/pkg/errors"
	"github.com/tgrayson/netskel/pkg/raster"
)

func TestOptionsValidate(t *testing.T) {
	valid := Options{Buffer: 5, CellSize: 1}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		opts Options
	}{
		{name: "zero buffer", opts: Options{CellSize: 1}},
		{name: "negative cell size", opts: Options{Buffer: 5, CellSize: -1}},
		{name: "negative spacing", opts: Options{Buffer: 5, CellSize: 1, Spacing: -2}},
		{name: "negative tolerance", opts: Options{Buffer: 5, CellSize: 1, Tolerance: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter))
		})
	}
}

func TestRun_EmptyInput(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{Buffer: 5, CellSize: 1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeEmptyInput))
}

func TestRun_StraightCorridor(t *testing.T) {
	lines := []orb.LineString{{{0, 0}, {100, 0}}}

	res, err := Run(context.Background(), lines, Options{Buffer: 5, CellSize: 1})
	require.NoError(t, err)

	require.NotEmpty(t, res.Lines)
	assert.GreaterOrEqual(t, res.Samples, 3)
	assert.Positive(t, res.RawEdges)

	// The centerline hugs the corridor axis and covers most of its length.
	bound := res.Lines.Bound()
	assert.Greater(t, bound.Max[0]-bound.Min[0], 50.0)
	for _, l := range res.Lines {
		for _, p := range l {
			d := planar.DistanceFromSegment(orb.Point{0, 0}, orb.Point{100, 0}, p)
			assert.LessOrEqual(t, d, 5.5)
		}
	}
}

func TestCircumcenter(t *testing.T) {
	tri, err := delaunay.Triangulate([]delaunay.Point{
		{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4},
	})
	require.NoError(t, err)
	require.Len(t, tri.Triangles, 3)

	c := circumcenter(tri, 0)
	assert.InDelta(t, 2, c[0], 1e-9)
	assert.InDelta(t, 2, c[1], 1e-9)
}

func TestBoundarySamples(t *testing.T) {
	b := raster.NewBitmap(10, 10, raster.Transform{OriginY: 10, CellSize: 1})
	for y := 2; y < 8; y++ {
		for x := 2; x < 8; x++ {
			b.Set(x, y, true)
		}
	}

	samples := boundarySamples(b, 0.5)

	// 6x6 block has a 20-cell boundary ring; fine spacing keeps all of it.
	assert.Len(t, samples, 20)
	for _, p := range samples {
		col, row := b.Transform.Cell(p)
		assert.True(t, b.Get(col, row))
		interior := col > 2 && col < 7 && row > 2 && row < 7
		assert.False(t, interior, "sample %v is not a boundary cell", p)
	}
}

func TestBoundarySamples_SpacingThins(t *testing.T) {
	b := raster.NewBitmap(40, 40, raster.Transform{OriginY: 40, CellSize: 1})
	for y := 5; y < 35; y++ {
		for x := 5; x < 35; x++ {
			b.Set(x, y, true)
		}
	}

	fine := boundarySamples(b, 0.5)
	coarse := boundarySamples(b, 4)

	assert.Greater(t, len(fine), len(coarse))
	assert.GreaterOrEqual(t, len(coarse), 3)
	// No two coarse samples share a 4x4 bucket, so none are closer than
	// adjacent buckets allow.
	for i, p := range coarse {
		for _, q := range coarse[i+1:] {
			bx := math.Floor(p[0]/4) == math.Floor(q[0]/4)
			by := math.Floor(p[1]/4) == math.Floor(q[1]/4)
			assert.False(t, bx && by)
		}
	}
}
