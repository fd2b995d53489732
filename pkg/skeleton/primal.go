package skeleton

import "github.com/paulmach/orb"

// Primal reduces every line to the straight segment between its first and
// last coordinate, discarding interior geometry while keeping connectivity.
// Applying it twice yields the same result as applying it once.
func Primal(lines []orb.LineString) []orb.LineString {
	out := make([]orb.LineString, 0, len(lines))
	for _, l := range lines {
		if len(l) < 2 {
			continue
		}
		out = append(out, orb.LineString{l[0], l[len(l)-1]})
	}
	return out
}
