package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgrayson/netskel/pkg/pipeline"
	"github.com/tgrayson/netskel/pkg/skeleton"
)

// tileOpts extends the skeletonize flags with the tiling parameters.
type tileOpts struct {
	skeletonizeOpts
	tileSize float64 // square tile edge length in input units
	overlap  float64 // tile read padding, 0 means 3x buffer
	workers  int     // concurrent tiles, 0 means GOMAXPROCS
}

// tileCommand creates the tile command: the skeletonize pipeline run per
// overlapping tile for inputs too large to rasterize in one piece.
func (c *CLI) tileCommand() *cobra.Command {
	defaults := pipeline.DefaultOptions()
	opts := tileOpts{
		skeletonizeOpts: skeletonizeOpts{
			buffer:    defaults.Buffer,
			cellSize:  defaults.CellSize,
			precision: defaults.Precision,
			holeArea:  defaults.HoleArea,
		},
		tileSize: 1000,
	}

	cmd := &cobra.Command{
		Use:   "tile [file]",
		Short: "Skeletonize a large network tile by tile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			applySkeletonizeConfig(cmd, &opts.skeletonizeOpts, cfg.Skeletonize)
			applyFloat(cmd, "tile-size", &opts.tileSize, cfg.Tile.TileSize)
			applyFloat(cmd, "overlap", &opts.overlap, cfg.Tile.Overlap)
			applyInt(cmd, "workers", &opts.workers, cfg.Tile.Workers)
			return c.runTile(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Float64VarP(&opts.buffer, "buffer", "b", opts.buffer, "corridor half-width in input units")
	cmd.Flags().Float64Var(&opts.cellSize, "cell-size", opts.cellSize, "raster cell size in input units")
	cmd.Flags().Float64VarP(&opts.simplify, "simplify", "s", 0, "simplification tolerance (0 disables)")
	cmd.Flags().Float64Var(&opts.precision, "precision", opts.precision, "output coordinate grid (0 disables)")
	cmd.Flags().IntVar(&opts.holeArea, "hole-area", opts.holeArea, "largest mask hole filled, in cells")
	cmd.Flags().BoolVar(&opts.primal, "primal", false, "additionally write the endpoint-only network")
	cmd.Flags().BoolVar(&opts.knot, "knot", false, "keep junction knots instead of collapsing them")
	cmd.Flags().BoolVar(&opts.segment, "segment", false, "buffer solitary lines at a token width")
	cmd.Flags().Float64Var(&opts.tileSize, "tile-size", opts.tileSize, "square tile edge length in input units")
	cmd.Flags().Float64Var(&opts.overlap, "overlap", 0, "tile read padding (default: 3x buffer)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent tiles (default: all CPUs)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML parameter file (default: ./"+defaultConfigFile+")")

	return cmd
}

// runTile loads the input network, runs the tiled pipeline, and writes the
// stitched result. With --primal a second, endpoint-only file is derived
// from the stitched network, never from individual tiles.
func (c *CLI) runTile(ctx context.Context, input string, opts *tileOpts) error {
	if opts.primal && opts.output == "" {
		return fmt.Errorf("--primal writes a second file next to the main output; set --output")
	}
	ctx = withLogger(ctx, c.Logger)
	logger := loggerFromContext(ctx)

	lines, skipped, err := readLines(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded %s: %d lines", input, len(lines))
	if skipped > 0 {
		logger.Warnf("Ignored %d non-line features", skipped)
	}

	topts := pipeline.TileOptions{
		Options:  opts.pipelineOptions(),
		TileSize: opts.tileSize,
		Overlap:  opts.overlap,
		Workers:  opts.workers,
	}

	prog := newProgress(logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Skeletonizing %d lines in tiles...", len(lines)))
	spin.Start()
	res, err := pipeline.RunTiled(ctx, lines, topts)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Skeletonized %d lines into %d", len(lines), len(res.Lines)))

	if err := writeLines(opts.output, res.Lines); err != nil {
		return err
	}
	reportResult(opts.output, res)

	if opts.primal {
		path := primalPath(opts.output)
		if err := writeLines(path, skeleton.Primal(res.Lines)); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}
