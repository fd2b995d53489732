package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgrayson/netskel/pkg/errors"
	"github.com/tgrayson/netskel/pkg/geometry"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(*Options) {}},
		{name: "zero buffer", mutate: func(o *Options) { o.Buffer = 0 }, wantErr: true},
		{name: "negative cell size", mutate: func(o *Options) { o.CellSize = -1 }, wantErr: true},
		{name: "NaN buffer", mutate: func(o *Options) { o.Buffer = math.NaN() }, wantErr: true},
		{name: "negative tolerance", mutate: func(o *Options) { o.Tolerance = -0.5 }, wantErr: true},
		{name: "negative precision", mutate: func(o *Options) { o.Precision = -0.1 }, wantErr: true},
		{name: "negative hole area", mutate: func(o *Options) { o.HoleArea = -1 }, wantErr: true},
		{name: "tolerance allowed", mutate: func(o *Options) { o.Tolerance = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// corridor is the canonical straight test input.
var corridor = []orb.LineString{{{0, 0}, {100, 0}}}

func corridorOptions() Options {
	opts := DefaultOptions()
	opts.Buffer = 5
	opts.CellSize = 1
	return opts
}

func TestRun_StraightCorridor(t *testing.T) {
	res, err := Run(context.Background(), corridor, corridorOptions())
	require.NoError(t, err)

	require.NotEmpty(t, res.Lines)
	assert.Equal(t, 1, res.Stats.MaskComponents)
	assert.Equal(t, 1, res.Stats.SkeletonComponents)
	assert.Equal(t, 1, res.Stats.OutputComponents)
	assert.False(t, res.Stats.Disconnected)
	assert.Positive(t, res.Stats.SkeletonPixels)
	assert.Less(t, res.Stats.SkeletonPixels, res.Stats.ForegroundPixels)

	// Output stays inside the corridor.
	maxDev := 5.0 + 2*1.0
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, l := range res.Lines {
		for _, p := range l {
			d := planar.DistanceFromSegment(orb.Point{0, 0}, orb.Point{100, 0}, p)
			assert.LessOrEqual(t, d, maxDev)
			minX = math.Min(minX, p[0])
			maxX = math.Max(maxX, p[0])
		}
	}

	// The centerline must reach both cap centers, eroding each tip by
	// roughly one cell but never more from one side than the other.
	assert.InDelta(t, 0, minX, 2.0, "west endpoint pulled away from the input start")
	assert.InDelta(t, 100, maxX, 2.0, "east endpoint pulled away from the input end")
}

func TestRun_ToleranceBoundsDeviation(t *testing.T) {
	wiggle := []orb.LineString{{{0, 0}, {25, 3}, {50, -3}, {75, 3}, {100, 0}}}

	base, err := Run(context.Background(), wiggle, corridorOptions())
	require.NoError(t, err)

	opts := corridorOptions()
	opts.Tolerance = 4
	simplified, err := Run(context.Background(), wiggle, opts)
	require.NoError(t, err)

	// Every vertex of the unsimplified network stays within the
	// simplification tolerance of the simplified polyline.
	for _, l := range base.Lines {
		for _, p := range l {
			d := math.Inf(1)
			for _, s := range simplified.Lines {
				for i := 0; i+1 < len(s); i++ {
					d = math.Min(d, planar.DistanceFromSegment(s[i], s[i+1], p))
				}
			}
			assert.LessOrEqual(t, d, opts.Tolerance)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	a, err := Run(context.Background(), corridor, corridorOptions())
	require.NoError(t, err)
	b, err := Run(context.Background(), corridor, corridorOptions())
	require.NoError(t, err)

	assert.Equal(t, a.Lines, b.Lines)
	assert.Equal(t, a.Stats, b.Stats)
}

func TestRun_Primal(t *testing.T) {
	opts := corridorOptions()
	opts.Primal = true

	res, err := Run(context.Background(), corridor, opts)
	require.NoError(t, err)

	require.NotEmpty(t, res.Lines)
	for _, l := range res.Lines {
		assert.Len(t, l, 2)
	}
}

func TestRun_CoarseSnapCountsDroppedLines(t *testing.T) {
	opts := corridorOptions()
	opts.Precision = 1000 // every coordinate snaps to the same grid point

	res, err := Run(context.Background(), corridor, opts)
	require.NoError(t, err)

	assert.Empty(t, res.Lines)
	assert.GreaterOrEqual(t, res.Stats.DroppedEdges, 1)
}

func TestRun_SegmentMode(t *testing.T) {
	// Two bundled parallel lines plus a solitary one far away. Segment
	// mode keeps the bundle at full width and thins the loner down.
	lines := []orb.LineString{
		{{0, 0}, {100, 0}},
		{{0, 4}, {100, 4}},
		{{0, 500}, {100, 500}},
	}
	opts := corridorOptions()
	opts.Segment = true

	res, err := Run(context.Background(), lines, opts)
	require.NoError(t, err)

	wide, err := Run(context.Background(), lines, corridorOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.OutputComponents)
	assert.Less(t, res.Stats.ForegroundPixels, wide.Stats.ForegroundPixels)
}

func TestRun_ToleranceKeepsEndpoints(t *testing.T) {
	base, err := Run(context.Background(), corridor, corridorOptions())
	require.NoError(t, err)

	opts := corridorOptions()
	opts.Tolerance = 50
	simplified, err := Run(context.Background(), corridor, opts)
	require.NoError(t, err)

	require.Len(t, simplified.Lines, len(base.Lines))
	for i := range base.Lines {
		s0, e0 := geometry.EndPoints(orb.LineString(base.Lines[i]))
		s1, e1 := geometry.EndPoints(orb.LineString(simplified.Lines[i]))
		assert.Equal(t, s0, s1)
		assert.Equal(t, e0, e1)
		assert.LessOrEqual(t, len(simplified.Lines[i]), len(base.Lines[i]))
	}
}

func TestRun_NarrowBufferEmptySkeleton(t *testing.T) {
	opts := corridorOptions()
	opts.Buffer = 0.2 // below half the cell size: no cell center falls inside

	_, err := Run(context.Background(), corridor, opts)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeEmptySkeleton))
}

func TestRun_EmptyInput(t *testing.T) {
	_, err := Run(context.Background(), nil, corridorOptions())

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeEmptyInput))
}

func TestRun_ClosedLoop(t *testing.T) {
	ring := []orb.LineString{{{0, 0}, {60, 0}, {60, 60}, {0, 60}, {0, 0}}}
	opts := corridorOptions()
	opts.Buffer = 4

	res, err := Run(context.Background(), ring, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.MaskComponents)
	assert.Equal(t, 1, res.Stats.OutputComponents)

	closed := false
	for _, l := range res.Lines {
		s, e := geometry.EndPoints(orb.LineString(l))
		if s == e {
			closed = true
		}
	}
	assert.True(t, closed, "ring corridor must yield a closed output line")
}

func TestRun_DisjointInputs(t *testing.T) {
	lines := []orb.LineString{
		{{0, 0}, {50, 0}},
		{{0, 200}, {50, 200}},
	}

	res, err := Run(context.Background(), lines, corridorOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.MaskComponents)
	assert.Equal(t, 2, res.Stats.OutputComponents)
	assert.False(t, res.Stats.Disconnected)
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, corridor, corridorOptions())

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTileOptionsValidate(t *testing.T) {
	opts := TileOptions{Options: corridorOptions(), TileSize: 50}
	assert.NoError(t, opts.Validate())

	opts.TileSize = 0
	err := opts.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter))

	opts.TileSize = 50
	opts.Workers = -1
	err = opts.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidParameter))
}

func TestRunTiled_StraightCorridor(t *testing.T) {
	lines := []orb.LineString{{{0, 0}, {200, 0}}}
	opts := TileOptions{Options: corridorOptions(), TileSize: 80, Workers: 2}

	res, err := RunTiled(context.Background(), lines, opts)
	require.NoError(t, err)

	require.NotEmpty(t, res.Lines)
	assert.Equal(t, 1, res.Stats.OutputComponents, "gap fill must rejoin tile cuts")
	for _, l := range res.Lines {
		for _, p := range l {
			d := planar.DistanceFromSegment(orb.Point{0, 0}, orb.Point{200, 0}, p)
			assert.LessOrEqual(t, d, 7.0)
		}
	}
}

func TestRunTiled_Primal(t *testing.T) {
	lines := []orb.LineString{{{0, 0}, {200, 0}}}
	opts := TileOptions{Options: corridorOptions(), TileSize: 80, Workers: 2}
	opts.Primal = true

	res, err := RunTiled(context.Background(), lines, opts)
	require.NoError(t, err)

	// Primal reduction runs on the stitched network, so no multi-vertex
	// line survives a tile seam.
	require.NotEmpty(t, res.Lines)
	for _, l := range res.Lines {
		assert.Len(t, l, 2)
	}
	assert.Equal(t, 1, res.Stats.OutputComponents)
}

func TestRunTiled_EmptyInput(t *testing.T) {
	opts := TileOptions{Options: corridorOptions(), TileSize: 80}

	_, err := RunTiled(context.Background(), nil, opts)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeEmptyInput))
}

func TestRunTiled_SingleTileMatchesRun(t *testing.T) {
	opts := TileOptions{Options: corridorOptions(), TileSize: 1000, Workers: 1}

	tiled, err := RunTiled(context.Background(), corridor, opts)
	require.NoError(t, err)
	plain, err := Run(context.Background(), corridor, opts.Options)
	require.NoError(t, err)

	assert.Equal(t, plain.Stats.OutputComponents, tiled.Stats.OutputComponents)
	assert.Len(t, tiled.Lines, len(plain.Lines))
}
