package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgrayson/netskel/pkg/cache"
	"github.com/tgrayson/netskel/pkg/render"
)

const (
	formatSVG = "svg"
	formatPNG = "png"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path; extension picks the format
	format   string // explicit format override: svg, png, dot
	detailed bool   // label nodes with their coordinates
	noCache  bool   // bypass the render cache
}

// renderCommand creates the render command for network previews.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a network preview via Graphviz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], format, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg (default), png, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their coordinates")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "re-render even when a cached artifact exists")

	return cmd
}

// resolveFormat picks the output format from the --format flag or, failing
// that, the output file extension.
func resolveFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(output), ".")
	}
	switch format {
	case "":
		return formatSVG, nil
	case formatSVG, formatPNG, formatDOT:
		return format, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'svg', 'png', or 'dot')", format)
	}
}

// runRender loads the network and writes its Graphviz preview.
func (c *CLI) runRender(ctx context.Context, input, format string, opts *renderOpts) error {
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

	dot := render.ToDOT(lines, render.Options{Detailed: opts.detailed})

	store := openCache(opts.noCache)
	defer store.Close()
	key := cache.RenderKey(format, []byte(dot))

	data, hit, err := store.Get(ctx, key)
	if err != nil {
		logger.Debugf("Cache lookup failed: %v", err)
	}
	if hit {
		logger.Debugf("Cache hit for %s", format)
	} else {
		switch format {
		case formatDOT:
			data = []byte(dot)
		case formatSVG:
			data, err = render.SVG(ctx, dot)
		case formatPNG:
			data, err = render.PNG(ctx, dot)
		}
		if err != nil {
			return err
		}
		if err := store.Set(ctx, key, data); err != nil {
			logger.Debugf("Cache store failed: %v", err)
		}
	}
	logger.Debugf("Generated %s: %d bytes", format, len(data))

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := out.Write(data); err != nil {
		return err
	}

	printSuccess("Wrote %s", path)
	printFile(path)
	return nil
}
