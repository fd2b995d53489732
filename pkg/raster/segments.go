package raster

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// solitaryScale sets the token half-width, in cells, for lines that run
// alone in segment mode. Just over half a cell, so a solitary line still
// burns an unbroken one-cell-wide trace.
const solitaryScale = 0.612

// segmentRadii assigns each line its burn radius for segment mode. A line
// gets the full buffer when it passes within Buffer of another line's centre
// portion (the line with sqrt(1.5)*Buffer trimmed off each end); a line with
// no such neighbor gets the token width. Trimming the ends keeps lines that
// merely touch at a shared junction from counting as parallel bundles.
func segmentRadii(lines []orb.LineString, opts Options) []float64 {
	offset := math.Sqrt(1.5) * opts.Buffer
	centres := make([]orb.LineString, len(lines))
	for i, l := range lines {
		centres[i] = trimEnds(l, offset)
	}

	narrow := solitaryScale * opts.CellSize
	if narrow > opts.Buffer {
		narrow = opts.Buffer
	}

	radii := make([]float64, len(lines))
	for i := range lines {
		radii[i] = narrow
		for j := range lines {
			if j == i || len(centres[j]) < 2 {
				continue
			}
			if lineDistance(lines[i], centres[j]) <= opts.Buffer {
				radii[i] = opts.Buffer
				break
			}
		}
	}
	return radii
}

// trimEnds returns the centre portion of l with offset arc length removed
// from each end, or nil when the line is too short to have one.
func trimEnds(l orb.LineString, offset float64) orb.LineString {
	if len(l) < 2 {
		return nil
	}
	total := planar.Length(l)
	if total <= 2*offset {
		return nil
	}
	return substring(l, offset, total-offset)
}

// substring extracts the part of l between arc lengths from and to,
// interpolating new endpoints inside the boundary segments.
func substring(l orb.LineString, from, to float64) orb.LineString {
	var out orb.LineString
	pos := 0.0
	for i := 0; i+1 < len(l); i++ {
		seg := planar.Distance(l[i], l[i+1])
		if seg == 0 {
			continue
		}
		segEnd := pos + seg
		if segEnd <= from {
			pos = segEnd
			continue
		}
		if pos >= to {
			break
		}
		start, end := l[i], l[i+1]
		if pos < from {
			start = interpolate(l[i], l[i+1], (from-pos)/seg)
		}
		if segEnd > to {
			end = interpolate(l[i], l[i+1], (to-pos)/seg)
		}
		if len(out) == 0 {
			out = append(out, start)
		}
		out = append(out, end)
		pos = segEnd
	}
	return out
}

func interpolate(p, q orb.Point, t float64) orb.Point {
	return orb.Point{p[0] + (q[0]-p[0])*t, p[1] + (q[1]-p[1])*t}
}

// lineDistance returns the minimum planar distance between two linestrings.
// A single-point line is treated as a degenerate segment.
func lineDistance(a, b orb.LineString) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	best := math.Inf(1)
	for i := 0; i < max(len(a)-1, 1); i++ {
		p1, p2 := a[i], a[min(i+1, len(a)-1)]
		for j := 0; j < max(len(b)-1, 1); j++ {
			q1, q2 := b[j], b[min(j+1, len(b)-1)]
			d := segmentDistance(p1, p2, q1, q2)
			if d < best {
				best = d
			}
			if best == 0 {
				return 0
			}
		}
	}
	return best
}

// segmentDistance returns the minimum distance between segments (p1,p2) and
// (q1,q2). Crossing segments are at distance zero; otherwise the minimum is
// attained at one of the four endpoints.
func segmentDistance(p1, p2, q1, q2 orb.Point) float64 {
	if segmentsCross(p1, p2, q1, q2) {
		return 0
	}
	d := planar.DistanceFromSegment(q1, q2, p1)
	if v := planar.DistanceFromSegment(q1, q2, p2); v < d {
		d = v
	}
	if v := planar.DistanceFromSegment(p1, p2, q1); v < d {
		d = v
	}
	if v := planar.DistanceFromSegment(p1, p2, q2); v < d {
		d = v
	}
	return d
}

// segmentsCross reports whether the two segments properly intersect. Touching
// or collinear overlap need no special case here: those configurations put an
// endpoint at distance zero from the other segment.
func segmentsCross(p1, p2, q1, q2 orb.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// cross is the z component of (b-a) x (p-a).
func cross(a, b, p orb.Point) float64 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}
