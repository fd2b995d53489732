// Package raster turns buffered line geometry into binary masks and thins
// them to one-pixel-wide skeletons.
//
// The package owns the first two stages of the simplification pipeline:
//
//  1. [Rasterize] buffers every input linestring by the corridor half-width
//     and burns the union into a [Bitmap], recording the affine [Transform]
//     between cell indices and geographic coordinates.
//  2. A [Thinner] (by default [ZhangSuen]) reduces the mask to a skeleton
//     that preserves the mask's connectivity and branch structure.
//
// [FillHoles] sits between the two and removes small interior background
// holes that would otherwise turn into spurious skeleton loops.
//
// The Transform is threaded through explicitly rather than held as shared
// state, so independent tiles can rasterize and skeletonize concurrently.
package raster
