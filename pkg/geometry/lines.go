// Package geometry provides the line and node helpers shared by the
// skeleton and Voronoi pipelines: endpoint extraction, line merging at
// shared endpoints, node indexing, and grid snapping.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
)

// EndPoints returns the first and last coordinate of ls.
// The line must have at least one coordinate.
func EndPoints(ls orb.LineString) (start, end orb.Point) {
	return ls[0], ls[len(ls)-1]
}

// Combine merges lines that meet end-to-end at points where exactly two
// line endpoints coincide, repeating until no such point remains. Points
// shared by three or more endpoints are junctions and are left intact, as
// are closed loops. Coordinate comparison is exact; snap first when inputs
// come from different floating-point paths.
func Combine(lines []orb.LineString) []orb.LineString {
	work := make([]orb.LineString, 0, len(lines))
	for _, l := range lines {
		if len(l) >= 2 {
			work = append(work, l)
		}
	}

	for {
		merged := combinePass(work)
		if merged == nil {
			return work
		}
		work = merged
	}
}

type endRef struct {
	line  int
	atEnd bool
}

// combinePass performs one greedy sweep of endpoint merges. It returns nil
// when nothing merged.
func combinePass(lines []orb.LineString) []orb.LineString {
	byPoint := make(map[orb.Point][]endRef, 2*len(lines))
	for i, l := range lines {
		s, e := EndPoints(l)
		if s == e {
			continue // closed loop
		}
		byPoint[s] = append(byPoint[s], endRef{line: i, atEnd: false})
		byPoint[e] = append(byPoint[e], endRef{line: i, atEnd: true})
	}

	used := make([]bool, len(lines))
	var out []orb.LineString
	changed := false
	for p, refs := range byPoint {
		if len(refs) != 2 || refs[0].line == refs[1].line {
			continue
		}
		a, b := refs[0], refs[1]
		if used[a.line] || used[b.line] {
			continue
		}
		used[a.line], used[b.line] = true, true
		out = append(out, splice(lines[a.line], a.atEnd, lines[b.line], b.atEnd, p))
		changed = true
	}
	if !changed {
		return nil
	}
	for i, l := range lines {
		if !used[i] {
			out = append(out, l)
		}
	}
	return out
}

// splice joins la and lb at their shared endpoint p, orienting la to end at
// p and lb to start at p.
func splice(la orb.LineString, aEnd bool, lb orb.LineString, bEnd bool, p orb.Point) orb.LineString {
	if !aEnd {
		la = reversed(la)
	}
	if bEnd {
		lb = reversed(lb)
	}
	out := make(orb.LineString, 0, len(la)+len(lb)-1)
	out = append(out, la...)
	out = append(out, lb[1:]...)
	return out
}

func reversed(l orb.LineString) orb.LineString {
	out := make(orb.LineString, len(l))
	for i, p := range l {
		out[len(l)-1-i] = p
	}
	return out
}

// SnapToGrid rounds every coordinate to the nearest multiple of precision
// and drops the consecutive duplicates the rounding produces. Lines that
// collapse to a single point are dropped. precision <= 0 returns the input
// unchanged.
func SnapToGrid(lines []orb.LineString, precision float64) []orb.LineString {
	if precision <= 0 {
		return lines
	}
	out := make([]orb.LineString, 0, len(lines))
	for _, l := range lines {
		snapped := make(orb.LineString, 0, len(l))
		for _, p := range l {
			q := orb.Point{snap(p[0], precision), snap(p[1], precision)}
			if len(snapped) > 0 && snapped[len(snapped)-1] == q {
				continue
			}
			snapped = append(snapped, q)
		}
		if len(snapped) >= 2 {
			out = append(out, snapped)
		}
	}
	return out
}

func snap(v, precision float64) float64 {
	return math.Round(v/precision) * precision
}
