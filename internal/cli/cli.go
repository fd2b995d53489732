// Package cli implements the netskel command-line interface.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/tgrayson/netskel/pkg/buildinfo"
	netio "github.com/tgrayson/netskel/pkg/io"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for config lookup and display.
const appName = "netskel"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Netskel simplifies geographic line networks through raster skeletons",
		Long:         `Netskel collapses parallel carriageways, slip roads, and junction tangles in a geographic line network into single centerlines by buffering the network, thinning the buffer to a raster skeleton, and vectorizing the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.skeletonizeCommand())
	root.AddCommand(c.tileCommand())
	root.AddCommand(c.voronoiCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Input / Output helpers
// =============================================================================

// readLines loads the linestrings of a GeoJSON file.
func readLines(path string) ([]orb.LineString, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return netio.ReadLines(f)
}

// writeLines writes lines as GeoJSON to path, or stdout when path is empty.
func writeLines(path string, lines []orb.LineString) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return netio.WriteLines(out, lines)
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
