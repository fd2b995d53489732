// Package voronoi implements the alternative centerline strategy: instead
// of thinning the buffered mask, it samples the mask boundary, triangulates
// the samples, and keeps the Voronoi edges that run along the middle of the
// corridor. Works better than thinning on very wide, smoothly-curving
// corridors; worse on dense urban grids.
package voronoi

import (
	"context"
	"math"

	"github.com/charmbracelet/log"
	"github.com/fogleman/delaunay"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
	"github.com/paulmach/orb/simplify"

	"github.com/tgrayson/netskel/pkg/errors"
	"github.com/tgrayson/netskel/pkg/geometry"
	"github.com/tgrayson/netskel/pkg/raster"
)

// Options holds the Voronoi strategy parameters.
type Options struct {
	// Buffer is the corridor half-width in geographic units.
	Buffer float64
	// CellSize is the raster resolution used for the mask.
	CellSize float64
	// Spacing is the approximate distance between boundary samples.
	// Zero means 2x the cell size.
	Spacing float64
	// Tolerance is the Douglas-Peucker tolerance for the output.
	// Zero disables simplification.
	Tolerance float64
	// Precision snaps output coordinates to a grid. Zero disables snapping.
	Precision float64
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
	if err := errors.ValidateNonNegative(stage, "spacing", o.Spacing); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative(stage, "tolerance", o.Tolerance); err != nil {
		return err
	}
	return errors.ValidateNonNegative(stage, "precision", o.Precision)
}

// Result is the output of a Voronoi run.
type Result struct {
	Lines orb.MultiLineString
	// Samples is the number of boundary samples triangulated.
	Samples int
	// RawEdges is the number of Voronoi edges before filtering.
	RawEdges int
}

// Run derives the corridor centerline from the Voronoi diagram of the mask
// boundary. Edges whose endpoints leave the mask or come within half a
// buffer of the boundary are discarded (the dewhisker step), the survivors
// are merged end-to-end and optionally simplified.
func Run(ctx context.Context, lines []orb.LineString, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	spacing := opts.Spacing
	if spacing == 0 {
		spacing = 2 * opts.CellSize
	}
	logger := log.FromContext(ctx)

	mask, err := raster.Rasterize(lines, raster.Options{Buffer: opts.Buffer, CellSize: opts.CellSize})
	if err != nil {
		return nil, err
	}
	raster.FillHoles(mask, 4)

	samples := boundarySamples(mask, spacing)
	if len(samples) < 3 {
		return nil, errors.New(errors.ErrCodeEmptySkeleton, "voronoi", "mask boundary yielded %d samples, need at least 3", len(samples))
	}
	logger.Debug("sampled mask boundary", "samples", len(samples), "spacing", spacing)

	pts := make([]delaunay.Point, len(samples))
	for i, p := range samples {
		pts[i] = delaunay.Point{X: p[0], Y: p[1]}
	}
	tri, err := delaunay.Triangulate(pts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "voronoi", err, "triangulating %d boundary samples", len(samples))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges := voronoiEdges(tri)
	kept := dewhisker(edges, mask, samples, opts.Buffer/2)
	logger.Debug("filtered voronoi edges", "raw", len(edges), "kept", len(kept))
	if len(kept) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySkeleton, "voronoi", "no voronoi edge survived filtering")
	}

	out := geometry.Combine(kept)
	out = geometry.SnapToGrid(out, opts.Precision)
	if opts.Tolerance > 0 {
		simplifier := simplify.DouglasPeucker(opts.Tolerance)
		for i, l := range out {
			out[i] = simplifier.LineString(l)
		}
	}

	return &Result{Lines: orb.MultiLineString(out), Samples: len(samples), RawEdges: len(edges)}, nil
}

// boundarySamples returns cell centers of foreground cells with at least
// one 4-neighbor background cell, thinned so no two samples share a
// spacing-sized grid bucket.
func boundarySamples(b *raster.Bitmap, spacing float64) []orb.Point {
	type bucket struct{ bx, by int }
	seen := make(map[bucket]bool)
	var out []orb.Point
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if !b.Get(x, y) {
				continue
			}
			if b.Get(x-1, y) && b.Get(x+1, y) && b.Get(x, y-1) && b.Get(x, y+1) {
				continue
			}
			p := b.Transform.Geo(x, y)
			k := bucket{int(math.Floor(p[0] / spacing)), int(math.Floor(p[1] / spacing))}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, p)
		}
	}
	return out
}

// voronoiEdges extracts the finite Voronoi edges as segments between
// circumcenters of triangles sharing a halfedge.
func voronoiEdges(t *delaunay.Triangulation) []orb.LineString {
	var out []orb.LineString
	for e, opp := range t.Halfedges {
		// Each interior halfedge pair appears twice; emit once and skip
		// hull edges, which have no twin.
		if opp < e {
			continue
		}
		a := circumcenter(t, e/3)
		b := circumcenter(t, opp/3)
		if a == b {
			continue
		}
		out = append(out, orb.LineString{a, b})
	}
	return out
}

// circumcenter returns the circumcenter of triangle ti.
func circumcenter(t *delaunay.Triangulation, ti int) orb.Point {
	a := t.Points[t.Triangles[3*ti]]
	b := t.Points[t.Triangles[3*ti+1]]
	c := t.Points[t.Triangles[3*ti+2]]

	ad := a.X*a.X + a.Y*a.Y
	bd := b.X*b.X + b.Y*b.Y
	cd := c.X*c.X + c.Y*c.Y
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	return orb.Point{
		(ad*(b.Y-c.Y) + bd*(c.Y-a.Y) + cd*(a.Y-b.Y)) / d,
		(ad*(c.X-b.X) + bd*(a.X-c.X) + cd*(b.X-a.X)) / d,
	}
}

// samplePtr adapts a boundary sample for quadtree storage.
type samplePtr orb.Point

func (s samplePtr) Point() orb.Point { return orb.Point(s) }

// dewhisker keeps edges that stay inside the mask and at least minDist away
// from every boundary sample. Whiskers (edges running from the centerline
// out toward a boundary notch) fail the distance test at one endpoint.
func dewhisker(edges []orb.LineString, mask *raster.Bitmap, samples []orb.Point, minDist float64) []orb.LineString {
	qt := quadtree.New(mask.Transform.Geo(0, 0).Bound().Extend(mask.Transform.Geo(mask.Width-1, mask.Height-1)).Pad(1))
	for _, s := range samples {
		_ = qt.Add(samplePtr(s))
	}

	minSq := minDist * minDist
	inside := func(p orb.Point) bool {
		col, row := mask.Transform.Cell(p)
		if !mask.Get(col, row) {
			return false
		}
		nearest := qt.Find(p)
		return planar.DistanceSquared(nearest.Point(), p) >= minSq
	}

	var out []orb.LineString
	for _, e := range edges {
		if inside(e[0]) && inside(e[1]) {
			out = append(out, e)
		}
	}
	return out
}
