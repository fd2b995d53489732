// Package pipeline orchestrates the raster-skeleton simplification of a
// linestring network: rasterize a buffered corridor, thin it to a one-pixel
// skeleton, vectorize the skeleton's pixel graph, and post-process the
// resulting lines.
//
// The pipeline is single-threaded; [RunTiled] wraps it for large inputs by
// splitting the extent into overlapping tiles processed concurrently.
package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/tgrayson/netskel/pkg/errors"
	"github.com/tgrayson/netskel/pkg/geometry"
	"github.com/tgrayson/netskel/pkg/observability"
	"github.com/tgrayson/netskel/pkg/raster"
	"github.com/tgrayson/netskel/pkg/skeleton"
)

// Options holds the pipeline parameters. The zero value is not valid;
// start from [DefaultOptions].
type Options struct {
	// Buffer is the corridor half-width in geographic units.
	Buffer float64
	// CellSize is the raster resolution in geographic units per cell.
	CellSize float64
	// Tolerance is the Douglas-Peucker tolerance applied to the output.
	// Zero disables simplification. Ignored when Primal is set.
	Tolerance float64
	// Primal reduces every output line to its endpoints.
	Primal bool
	// Knots keeps short junction-cluster edges instead of collapsing them.
	Knots bool
	// Segment buffers adaptively: the full Buffer only where lines bundle
	// together, a token width where a line runs alone.
	Segment bool
	// HoleArea is the largest hole, in cells, filled before thinning.
	HoleArea int
	// Precision snaps output coordinates to a grid of this spacing.
	// Zero disables snapping.
	Precision float64
}

// DefaultOptions returns the parameter set used by the CLI when no flags
// are given.
func DefaultOptions() Options {
	return Options{
		Buffer:    8,
		CellSize:  1,
		HoleArea:  4,
		Precision: 0.1,
	}
}

// Validate checks the options, returning an INVALID_PARAMETER error on the
// first violation.
func (o Options) Validate() error {
	const stage = "options"
	if err := errors.ValidatePositive(stage, "buffer", o.Buffer); err != nil {
		return err
	}
	if err := errors.ValidatePositive(stage, "cell size", o.CellSize); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative(stage, "tolerance", o.Tolerance); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative(stage, "precision", o.Precision); err != nil {
		return err
	}
	if o.HoleArea < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, stage, "hole area must be non-negative, got %d", o.HoleArea)
	}
	return nil
}

// Stats carries the per-stage diagnostics of a pipeline run.
type Stats struct {
	ForegroundPixels   int
	SkeletonPixels     int
	MaskComponents     int
	SkeletonComponents int
	OutputComponents   int
	Nodes              int
	Edges              int
	DroppedEdges       int
	// Disconnected is set when the output has more connected components
	// than the buffered mask, meaning the simplification broke the
	// network apart somewhere. Non-fatal.
	Disconnected bool
}

// Result is the output of a pipeline run.
type Result struct {
	Lines orb.MultiLineString
	Stats Stats
}

// Run executes the full skeletonization pipeline on lines. Stage timings go
// to the context logger at debug level; the disconnected-output diagnostic
// is logged as a warning and surfaced in Stats.
func Run(ctx context.Context, lines []orb.LineString, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := log.FromContext(ctx)
	var stats Stats

	mask, err := stageBitmap(ctx, "rasterize", func() (*raster.Bitmap, error) {
		return raster.Rasterize(lines, raster.Options{Buffer: opts.Buffer, CellSize: opts.CellSize, Segment: opts.Segment})
	})
	if err != nil {
		return nil, err
	}

	_, err = stageBitmap(ctx, "fill-holes", func() (*raster.Bitmap, error) {
		raster.FillHoles(mask, opts.HoleArea)
		return mask, nil
	})
	if err != nil {
		return nil, err
	}
	stats.ForegroundPixels = mask.Count()
	stats.MaskComponents = mask.Components()

	var thinner raster.Thinner = raster.ZhangSuen{}
	skel, err := stageBitmap(ctx, "thin", func() (*raster.Bitmap, error) {
		return thinner.Thin(mask), nil
	})
	if err != nil {
		return nil, err
	}
	stats.SkeletonPixels = skel.Count()
	stats.SkeletonComponents = skel.Components()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := stageGraph(ctx, "build-graph", func() (*skeleton.Graph, error) {
		return skeleton.Build(skel)
	})
	if err != nil {
		return nil, err
	}

	if !opts.Knots {
		skeleton.CollapseKnots(g, 2*opts.CellSize)
	}
	skeleton.MergePassThrough(g)

	out := g.Lines()
	stats.Nodes = g.NodeCount()
	stats.Edges = g.EdgeCount()
	stats.DroppedEdges = g.Dropped

	// Lines collapsing below two distinct coordinates are removed, never
	// silently: every exclusion lands in the dropped-edge diagnostic.
	before := len(out)
	out = geometry.SnapToGrid(out, opts.Precision)
	stats.DroppedEdges += before - len(out)
	switch {
	case opts.Primal:
		before = len(out)
		out = skeleton.Primal(out)
		stats.DroppedEdges += before - len(out)
	case opts.Tolerance > 0:
		simplifier := simplify.DouglasPeucker(opts.Tolerance)
		for i, l := range out {
			out[i] = simplifier.LineString(l)
		}
	}

	stats.OutputComponents = componentCount(out)
	if stats.OutputComponents > stats.MaskComponents {
		stats.Disconnected = true
		logger.Warn("output is more fragmented than the input corridor",
			"output_components", stats.OutputComponents,
			"mask_components", stats.MaskComponents)
	}

	logger.Debug("pipeline complete",
		"lines", len(out),
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"dropped", stats.DroppedEdges)

	return &Result{Lines: orb.MultiLineString(out), Stats: stats}, nil
}

// stageBitmap runs one raster stage with timing and hook instrumentation.
func stageBitmap(ctx context.Context, name string, fn func() (*raster.Bitmap, error)) (*raster.Bitmap, error) {
	observability.Pipeline().OnStageStart(ctx, name)
	start := time.Now()
	b, err := fn()
	count := 0
	if b != nil {
		count = b.Count()
	}
	observability.Pipeline().OnStageComplete(ctx, name, count, time.Since(start), err)
	log.FromContext(ctx).Debug("stage complete", "stage", name, "pixels", count,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return b, err
}

// stageGraph runs one graph stage with timing and hook instrumentation.
func stageGraph(ctx context.Context, name string, fn func() (*skeleton.Graph, error)) (*skeleton.Graph, error) {
	observability.Pipeline().OnStageStart(ctx, name)
	start := time.Now()
	g, err := fn()
	count := 0
	if g != nil {
		count = g.EdgeCount()
	}
	observability.Pipeline().OnStageComplete(ctx, name, count, time.Since(start), err)
	log.FromContext(ctx).Debug("stage complete", "stage", name, "edges", count,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return g, err
}

// componentCount returns the number of connected components of a line set,
// treating lines as edges between their (exact) endpoint coordinates.
func componentCount(lines []orb.LineString) int {
	ns := geometry.SourceTarget(lines)
	parent := make([]int, len(ns.Nodes))
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
	for i := range lines {
		a, b := find(ns.Source[i]), find(ns.Target[i])
		if a != b {
			parent[b] = a
		}
	}
	count := 0
	for i := range parent {
		if find(i) == i {
			count++
		}
	}
	return count
}
