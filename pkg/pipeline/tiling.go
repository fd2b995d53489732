package pipeline

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"
	"github.com/paulmach/orb/simplify"
	"golang.org/x/sync/errgroup"

	"github.com/tgrayson/netskel/pkg/errors"
	"github.com/tgrayson/netskel/pkg/geometry"
	"github.com/tgrayson/netskel/pkg/observability"
	"github.com/tgrayson/netskel/pkg/skeleton"
)

// TileOptions extends [Options] for tiled runs.
type TileOptions struct {
	Options

	// TileSize is the square tile edge length in geographic units.
	TileSize float64
	// Overlap pads each tile's read extent so corridors crossing a tile
	// boundary rasterize with their full width on both sides.
	// Zero means 3x the buffer.
	Overlap float64
	// Workers bounds tile concurrency. Zero means GOMAXPROCS.
	Workers int
}

// Validate checks the tiling parameters on top of the base options.
func (o TileOptions) Validate() error {
	if err := o.Options.Validate(); err != nil {
		return err
	}
	const stage = "options"
	if err := errors.ValidatePositive(stage, "tile size", o.TileSize); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative(stage, "overlap", o.Overlap); err != nil {
		return err
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidParameter, stage, "workers must be non-negative, got %d", o.Workers)
	}
	return nil
}

// RunTiled executes the pipeline per tile and stitches the results.
//
// The input bound is covered with square tiles; each tile reads the input
// clipped to its extent padded by Overlap, runs the full single-threaded
// pipeline, and keeps only output clipped back to the unpadded tile. Tiles
// whose corridor slice is empty are skipped. Skeleton endpoints that the
// tile cut apart are rejoined when they lie within Buffer/2 of each other,
// then the stitched set is merged end-to-end.
func RunTiled(ctx context.Context, lines []orb.LineString, opts TileOptions) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "tile", "no input lines")
	}
	overlap := opts.Overlap
	if overlap == 0 {
		overlap = 3 * opts.Buffer
	}
	workers := opts.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// The skeleton can extend a full buffer beyond the input bound, so the
	// tile grid covers the padded extent; tiles still partition the plane.
	bound := orb.MultiLineString(lines).Bound().Pad(opts.Buffer + 2*opts.CellSize)
	cols := int(math.Ceil((bound.Max[0] - bound.Min[0]) / opts.TileSize))
	rows := int(math.Ceil((bound.Max[1] - bound.Min[1]) / opts.TileSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	logger := log.FromContext(ctx)
	logger.Debug("tiling input", "cols", cols, "rows", rows, "tile_size", opts.TileSize, "workers", workers)

	var (
		mu       sync.Mutex
		stitched []orb.LineString
		stats    Stats
	)

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			tile := orb.Bound{
				Min: orb.Point{bound.Min[0] + float64(col)*opts.TileSize, bound.Min[1] + float64(row)*opts.TileSize},
				Max: orb.Point{bound.Min[0] + float64(col+1)*opts.TileSize, bound.Min[1] + float64(row+1)*opts.TileSize},
			}
			grp.Go(func() error {
				return runTile(gctx, lines, tile, col, row, overlap, opts, func(tileLines []orb.LineString, s Stats) {
					mu.Lock()
					defer mu.Unlock()
					stitched = append(stitched, tileLines...)
					stats.add(s)
				})
			})
		}
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	if len(stitched) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySkeleton, "tile", "every tile produced an empty skeleton")
	}

	out := fillGaps(stitched, opts.Buffer/2)
	out = geometry.Combine(out)
	switch {
	case opts.Primal:
		out = skeleton.Primal(out)
	case opts.Tolerance > 0:
		simplifier := simplify.DouglasPeucker(opts.Tolerance)
		for i, l := range out {
			out[i] = simplifier.LineString(l)
		}
	}

	stats.OutputComponents = componentCount(out)
	stats.Disconnected = stats.OutputComponents > stats.MaskComponents
	return &Result{Lines: orb.MultiLineString(out), Stats: stats}, nil
}

// runTile processes one tile end to end, invoking collect with the clipped
// output. Empty-corridor conditions skip the tile instead of failing.
func runTile(ctx context.Context, lines []orb.LineString, tile orb.Bound, col, row int, overlap float64, opts TileOptions, collect func([]orb.LineString, Stats)) error {
	extent := tile.Pad(overlap)
	var slice []orb.LineString
	for _, l := range lines {
		for _, part := range clip.LineString(extent, l.Clone()) {
			if len(part) >= 2 {
				slice = append(slice, part)
			}
		}
	}
	if len(slice) == 0 {
		observability.Tile().OnTileSkipped(ctx, col, row)
		return nil
	}

	observability.Tile().OnTileStart(ctx, col, row)
	start := time.Now()
	// Primal reduction happens on the stitched network, not per tile:
	// Combine would re-introduce multi-vertex lines across tile seams.
	tileOpts := opts.Options
	tileOpts.Primal = false
	res, err := Run(ctx, slice, tileOpts)
	if err != nil {
		// A corridor slice thinner than a cell is expected at the margin.
		if errors.Is(err, errors.ErrCodeEmptyInput) || errors.Is(err, errors.ErrCodeEmptySkeleton) {
			observability.Tile().OnTileSkipped(ctx, col, row)
			return nil
		}
		return err
	}

	var kept []orb.LineString
	for _, l := range res.Lines {
		for _, part := range clip.LineString(tile, l) {
			if len(part) >= 2 {
				kept = append(kept, part)
			}
		}
	}
	observability.Tile().OnTileComplete(ctx, col, row, len(kept), time.Since(start))
	collect(kept, res.Stats)
	return nil
}

// add accumulates per-tile stats. Component counts are summed because each
// tile's raster is independent; the stitched output component count is
// recomputed afterwards.
func (s *Stats) add(t Stats) {
	s.ForegroundPixels += t.ForegroundPixels
	s.SkeletonPixels += t.SkeletonPixels
	s.MaskComponents += t.MaskComponents
	s.SkeletonComponents += t.SkeletonComponents
	s.Nodes += t.Nodes
	s.Edges += t.Edges
	s.DroppedEdges += t.DroppedEdges
}

// lineEnd is a quadtree item: one endpoint of a stitched line.
type lineEnd struct {
	pt   orb.Point
	line int
}

func (e *lineEnd) Point() orb.Point { return e.pt }

// fillGaps joins endpoints of different lines lying within maxGap of each
// other with straight segments. Tile clipping cuts the skeleton exactly at
// tile boundaries, so matching endpoints sit a small raster-wobble distance
// apart rather than coinciding. Each endpoint joins at most once.
func fillGaps(lines []orb.LineString, maxGap float64) []orb.LineString {
	if maxGap <= 0 || len(lines) < 2 {
		return lines
	}

	bound := orb.MultiLineString(lines).Bound().Pad(maxGap)
	qt := quadtree.New(bound)
	ends := make([]*lineEnd, 0, 2*len(lines))
	for i, l := range lines {
		s, e := geometry.EndPoints(l)
		for _, p := range []orb.Point{s, e} {
			le := &lineEnd{pt: p, line: i}
			ends = append(ends, le)
			_ = qt.Add(le) // bound is padded, Add cannot miss
		}
	}

	joined := make(map[*lineEnd]bool)
	maxGapSq := maxGap * maxGap
	out := lines
	var buf []orb.Pointer
	for _, e := range ends {
		if joined[e] {
			continue
		}
		var match *lineEnd
		buf = qt.KNearestMatching(buf[:0], e.pt, 4, func(p orb.Pointer) bool {
			o := p.(*lineEnd)
			return o.line != e.line && !joined[o]
		}, maxGap)
		for _, p := range buf {
			o := p.(*lineEnd)
			if planar.DistanceSquared(e.pt, o.pt) <= maxGapSq {
				match = o
				break
			}
		}
		if match == nil {
			continue
		}
		joined[e], joined[match] = true, true
		if e.pt == match.pt {
			continue // already touching; Combine handles it
		}
		out = append(out, orb.LineString{e.pt, match.pt})
	}
	return out
}
