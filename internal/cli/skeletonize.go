package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgrayson/netskel/pkg/pipeline"
	"github.com/tgrayson/netskel/pkg/skeleton"
)

// skeletonizeOpts holds the command-line flags for the skeletonize command.
type skeletonizeOpts struct {
	output     string  // output file path (stdout when empty)
	buffer     float64 // corridor half-width in input units
	cellSize   float64 // raster resolution in input units
	simplify   float64 // Douglas-Peucker tolerance, 0 disables
	precision  float64 // output coordinate grid, 0 disables
	holeArea   int     // largest hole filled before thinning, in cells
	primal     bool    // also write the endpoint-only network
	knot       bool    // keep junction knots instead of collapsing them
	segment    bool    // variable-width buffering per line
	configPath string  // TOML parameter file
}

// skeletonizeCommand creates the skeletonize command, the main entry point
// of the tool: GeoJSON in, simplified GeoJSON network out.
func (c *CLI) skeletonizeCommand() *cobra.Command {
	defaults := pipeline.DefaultOptions()
	opts := skeletonizeOpts{
		buffer:    defaults.Buffer,
		cellSize:  defaults.CellSize,
		precision: defaults.Precision,
		holeArea:  defaults.HoleArea,
	}

	cmd := &cobra.Command{
		Use:   "skeletonize [file]",
		Short: "Collapse a line network into raster-skeleton centerlines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			applySkeletonizeConfig(cmd, &opts, cfg.Skeletonize)
			return c.runSkeletonize(cmd.Context(), args[0], &opts)
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
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML parameter file (default: ./"+defaultConfigFile+")")

	return cmd
}

// applySkeletonizeConfig fills opts from the [skeletonize] config table for
// every flag not set on the command line.
func applySkeletonizeConfig(cmd *cobra.Command, opts *skeletonizeOpts, cfg skeletonizeSection) {
	applyFloat(cmd, "buffer", &opts.buffer, cfg.Buffer)
	applyFloat(cmd, "cell-size", &opts.cellSize, cfg.CellSize)
	applyFloat(cmd, "simplify", &opts.simplify, cfg.Simplify)
	applyFloat(cmd, "precision", &opts.precision, cfg.Precision)
	applyInt(cmd, "hole-area", &opts.holeArea, cfg.HoleArea)
	applyBool(cmd, "primal", &opts.primal, cfg.Primal)
	applyBool(cmd, "knot", &opts.knot, cfg.Knot)
	applyBool(cmd, "segment", &opts.segment, cfg.Segment)
}

// pipelineOptions converts the flag set into pipeline options.
func (o *skeletonizeOpts) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Buffer:    o.buffer,
		CellSize:  o.cellSize,
		Tolerance: o.simplify,
		Knots:     o.knot,
		Segment:   o.segment,
		HoleArea:  o.holeArea,
		Precision: o.precision,
	}
}

// runSkeletonize loads the input network, runs the pipeline, and writes the
// simplified network. With --primal a second, endpoint-only file is written
// next to the main output.
func (c *CLI) runSkeletonize(ctx context.Context, input string, opts *skeletonizeOpts) error {
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

	prog := newProgress(logger)
	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Skeletonizing %d lines...", len(lines)))
	spin.Start()
	res, err := pipeline.Run(ctx, lines, opts.pipelineOptions())
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

// reportResult prints the outcome summary for a pipeline run.
func reportResult(output string, res *pipeline.Result) {
	if output != "" {
		printSuccess("Wrote %s", output)
		printFile(output)
	}
	printStats(len(res.Lines), res.Stats.Nodes, res.Stats.Edges)
	if res.Stats.Disconnected {
		printWarning("output has %d components but the corridor only %d; consider a larger --buffer",
			res.Stats.OutputComponents, res.Stats.MaskComponents)
	}
	if res.Stats.DroppedEdges > 0 {
		printDetail("dropped %d degenerate edges", res.Stats.DroppedEdges)
	}
	if output != "" {
		printNextStep("Preview the network", appName+" render "+output)
	}
}

// primalPath derives the endpoint-only output path: out.geojson becomes
// out_primal.geojson.
func primalPath(output string) string {
	if output == "" {
		return ""
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "_primal" + ext
}
