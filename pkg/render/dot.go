// Package render turns a simplified network into a quick visual preview:
// a Graphviz DOT document with every node pinned at its geographic
// position, rendered with the neato engine to SVG or PNG.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/goccy/go-graphviz"
	"github.com/paulmach/orb"

	"github.com/tgrayson/netskel/pkg/errors"
	"github.com/tgrayson/netskel/pkg/geometry"
	"github.com/tgrayson/netskel/pkg/observability"
)

// Options configures preview rendering.
type Options struct {
	// Detailed labels every node with its coordinates. When false, nodes
	// are drawn as bare points.
	Detailed bool
}

// ToDOT converts a line network to Graphviz DOT format. Each unique line
// endpoint becomes a node pinned at its geographic position (pos="x,y!"),
// each line an undirected edge, so the neato engine reproduces the network's
// true shape instead of inventing a layout.
func ToDOT(lines []orb.LineString, opts Options) string {
	ns := geometry.SourceTarget(lines)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=point, width=0.08, color=\"#1a6b43\"];\n")
	buf.WriteString("  edge [color=\"#2d2d2d\"];\n")
	buf.WriteString("\n")

	for i, p := range ns.Nodes {
		if opts.Detailed {
			fmt.Fprintf(&buf, "  n%d [pos=\"%g,%g!\", shape=circle, label=\"%.1f,%.1f\", fontsize=8];\n",
				i, p[0], p[1], p[0], p[1])
			continue
		}
		fmt.Fprintf(&buf, "  n%d [pos=\"%g,%g!\"];\n", i, p[0], p[1])
	}

	buf.WriteString("\n")
	for i := range lines {
		fmt.Fprintf(&buf, "  n%d -- n%d;\n", ns.Source[i], ns.Target[i])
	}

	buf.WriteString("}\n")
	return buf.String()
}

// SVG renders a DOT graph to SVG using the neato engine.
func SVG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.SVG)
}

// PNG renders a DOT graph to PNG using the neato engine.
func PNG(ctx context.Context, dot string) ([]byte, error) {
	return renderFormat(ctx, dot, graphviz.PNG)
}

func renderFormat(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	const stage = "render"
	observability.Render().OnRenderStart(ctx, string(format))
	start := time.Now()

	out, err := func() ([]byte, error) {
		gv, err := graphviz.New(ctx)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, stage, err, "initializing graphviz")
		}
		defer gv.Close()
		gv.SetLayout(graphviz.NEATO)

		g, err := graphviz.ParseBytes([]byte(dot))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, stage, err, "parsing DOT")
		}
		defer func() { _ = g.Close() }()

		var buf bytes.Buffer
		if err := gv.Render(ctx, g, format, &buf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, stage, err, "rendering %s", format)
		}
		b := buf.Bytes()
		if format == graphviz.SVG {
			b = normalizeViewBox(b)
		}
		return b, nil
	}()

	observability.Render().OnRenderComplete(ctx, string(format), len(out), time.Since(start), err)
	return out, err
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the drawing starts at
// origin and the pixel size matches the viewBox, which makes the output
// embed cleanly regardless of the coordinate range of the network.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
