package render

import (
	"context"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var previewLines = []orb.LineString{
	{{0, 0}, {10, 0}},
	{{10, 0}, {10, 10}},
	{{10, 0}, {20, 0}},
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(previewLines, Options{})

	assert.True(t, strings.HasPrefix(dot, "graph G {"))
	assert.Contains(t, dot, "layout=neato")
	// Four unique endpoints, pinned.
	assert.Contains(t, dot, `n0 [pos="0,0!"]`)
	assert.Contains(t, dot, `n1 [pos="10,0!"]`)
	assert.Equal(t, 4, strings.Count(dot, "pos="))
	assert.Equal(t, 3, strings.Count(dot, " -- "))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(dot), "}"))
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(previewLines, Options{Detailed: true})

	assert.Contains(t, dot, `label="0.0,0.0"`)
	assert.Contains(t, dot, "shape=circle")
}

func TestSVG(t *testing.T) {
	dot := ToDOT(previewLines, Options{})

	svg, err := SVG(context.Background(), dot)
	require.NoError(t, err)

	s := string(svg)
	assert.Contains(t, s, "<svg")
	assert.Contains(t, s, `viewBox="0 0`)
}

func TestSVG_MalformedDOT(t *testing.T) {
	_, err := SVG(context.Background(), "graph G { n0 --")

	assert.Error(t, err)
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<?xml version="1.0"?><svg width="8pt" height="6pt" viewBox="0.00 0.00 128.00 64.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)

	out := normalizeViewBox(in)

	s := string(out)
	assert.Contains(t, s, `viewBox="0 0 128.00 64.00"`)
	assert.Contains(t, s, `width="128" height="64"`)
}

func TestNormalizeViewBox_NoViewBox(t *testing.T) {
	in := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	assert.Equal(t, in, normalizeViewBox(in))
}
