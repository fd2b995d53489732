package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgrayson/netskel/pkg/geometry"
	"github.com/tgrayson/netskel/pkg/voronoi"
)

// voronoiOpts holds the command-line flags for the voronoi command.
type voronoiOpts struct {
	output     string
	buffer     float64
	cellSize   float64
	spacing    float64 // boundary sample spacing, 0 means 2x cell size
	simplify   float64
	snap       float64 // output coordinate grid, 0 disables
	configPath string
}

// voronoiCommand creates the voronoi command: the alternative centerline
// strategy built on the Voronoi diagram of the corridor boundary.
func (c *CLI) voronoiCommand() *cobra.Command {
	opts := voronoiOpts{buffer: 8, cellSize: 1, snap: 0.1}

	cmd := &cobra.Command{
		Use:   "voronoi [file]",
		Short: "Derive centerlines from the corridor's Voronoi diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			applyFloat(cmd, "buffer", &opts.buffer, cfg.Skeletonize.Buffer)
			applyFloat(cmd, "cell-size", &opts.cellSize, cfg.Skeletonize.CellSize)
			applyFloat(cmd, "simplify", &opts.simplify, cfg.Skeletonize.Simplify)
			applyFloat(cmd, "spacing", &opts.spacing, cfg.Voronoi.Spacing)
			applyFloat(cmd, "snap", &opts.snap, cfg.Voronoi.Snap)
			return c.runVoronoi(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Float64VarP(&opts.buffer, "buffer", "b", opts.buffer, "corridor half-width in input units")
	cmd.Flags().Float64Var(&opts.cellSize, "cell-size", opts.cellSize, "raster cell size in input units")
	cmd.Flags().Float64Var(&opts.spacing, "spacing", 0, "boundary sample spacing (default: 2x cell size)")
	cmd.Flags().Float64VarP(&opts.simplify, "simplify", "s", 0, "simplification tolerance (0 disables)")
	cmd.Flags().Float64Var(&opts.snap, "snap", opts.snap, "output coordinate grid (0 disables)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML parameter file (default: ./"+defaultConfigFile+")")

	return cmd
}

// runVoronoi loads the input network, runs the Voronoi strategy, and writes
// the centerlines.
func (c *CLI) runVoronoi(ctx context.Context, input string, opts *voronoiOpts) error {
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

	vopts := voronoi.Options{
		Buffer:    opts.buffer,
		CellSize:  opts.cellSize,
		Spacing:   opts.spacing,
		Tolerance: opts.simplify,
		Precision: opts.snap,
	}

	prog := newProgress(logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Computing Voronoi centerlines for %d lines...", len(lines)))
	spin.Start()
	res, err := voronoi.Run(ctx, lines, vopts)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Reduced %d lines to %d centerlines", len(lines), len(res.Lines)))
	logger.Debugf("Voronoi diagram: %d boundary samples, %d raw edges", res.Samples, res.RawEdges)

	if err := writeLines(opts.output, res.Lines); err != nil {
		return err
	}
	if opts.output != "" {
		printSuccess("Wrote %s", opts.output)
		printFile(opts.output)
	}
	ns := geometry.SourceTarget(res.Lines)
	printStats(len(res.Lines), len(ns.Nodes), len(res.Lines))
	return nil
}
