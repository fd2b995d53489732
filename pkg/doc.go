// Package pkg provides the core libraries for netskel network simplification.
//
// # Overview
//
// Netskel collapses bundles of roughly parallel linestrings (road casings,
// river banks, duplicated GPS traces) into a single centerline network. The
// pkg directory is organized into a handful of focused packages:
//
//  1. [raster] - Bitmap mask construction (buffering, hole filling, thinning)
//  2. [skeleton] - Pixel graph extraction and topology cleanup
//  3. [geometry] - Linestring utilities (joining, snapping, node interning)
//  4. [voronoi] - Alternative centerline extraction via Voronoi edges
//  5. [pipeline] - Orchestration (rasterize → thin → trace → simplify)
//  6. [io] - GeoJSON reading and writing
//  7. [render] - Graphviz previews of extracted networks
//
// # Architecture
//
// The typical data flow through netskel:
//
//	GeoJSON linestrings
//	         ↓
//	    [raster] package (buffer to a mask, fill holes, thin to a skeleton)
//	         ↓
//	    [skeleton] package (trace the pixel graph, collapse knots)
//	         ↓
//	    [geometry] package (join, snap, simplify)
//	         ↓
//	    GeoJSON/SVG/PNG output
//
// Supporting packages: [cache] for render artifacts, [errors] for the shared
// error taxonomy, [observability] for instrumentation hooks, and [buildinfo]
// for version stamping.
package pkg
