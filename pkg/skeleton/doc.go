// Package skeleton reconstructs a vector graph from a raster skeleton mask.
//
// The builder classifies every foreground pixel by its connected-neighbor
// count (isolated, endpoint, chain, junction), seeds graph nodes at endpoint
// and junction pixels, and walks chains of degree-2 pixels to form edges.
// Every chain pixel is consumed by exactly one edge, so the edges partition
// the skeleton's foreground. Closed chains with no junction become self-loop
// edges rooted at an arbitrary loop pixel.
//
// # Connectivity
//
// Eight-connectivity with one restriction: a diagonal neighbor counts as
// connected only when both orthogonal cells bridging the diagonal are
// background. Without the restriction, every staircase step next to a
// junction double-counts as an extra branch and the degree classification
// falls apart. The rule is symmetric, so adjacency stays undirected.
//
// # Cleanup
//
// Thinning noise shows up as clusters of very short edges around what should
// be a single junction ("knots"). [CollapseKnots] merges each cluster into
// its centroid. [MergePassThrough] then removes nodes that connect exactly
// two edges, concatenating the edges, which leaves only true endpoints and
// branch points as graph nodes.
package skeleton
