package raster

// Thinner reduces a binary mask to a one-pixel-wide skeleton.
//
// Implementations must preserve topology: every foreground 8-connected
// component of the input maps to exactly one 8-connected component of the
// output, isolated single pixels survive unchanged, and the result is
// deterministic for a given input. The returned bitmap has the same shape and
// transform as the input.
type Thinner interface {
	Thin(b *Bitmap) *Bitmap
}

// ZhangSuen implements [Thinner] with the Zhang-Suen two-subiteration
// morphological thinning algorithm. Each subiteration gathers its candidates
// against the frozen image and deletes them simultaneously, so the result is
// independent of scan order and the skeleton erodes symmetrically from all
// sides. The two-subiteration split (south/east boundary, then north/west) is
// what keeps simultaneous deletion from disconnecting a component.
//
// Simultaneous deletion can annihilate components too small to hold a
// skeleton, a 2x2 block being the classic case. [restoreLost] re-seeds one
// pixel for every input component the subiterations erased, which upholds the
// component-count contract.
type ZhangSuen struct{}

// Thin returns the skeleton of b. The input bitmap is not modified.
func (ZhangSuen) Thin(b *Bitmap) *Bitmap {
	s := b.Clone()
	var candidates []int

	for {
		changed := false
		for pass := 0; pass < 2; pass++ {
			candidates = candidates[:0]
			for y := 0; y < s.Height; y++ {
				for x := 0; x < s.Width; x++ {
					if s.Get(x, y) && removable(s, x, y, pass) {
						candidates = append(candidates, y*s.Width+x)
					}
				}
			}
			for _, i := range candidates {
				s.cells[i] = 0
			}
			if len(candidates) > 0 {
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	restoreLost(b, s)
	return s
}

// restoreLost re-seeds every foreground component of the input mask that
// thinning erased completely, marking its first pixel in scan order. The
// restored pixel is isolated in the skeleton: its whole component vanished,
// and pixels of other components are never adjacent to it.
func restoreLost(b, s *Bitmap) {
	seen := make([]bool, len(b.cells))
	var queue []int
	for first := range b.cells {
		if b.cells[first] == 0 || seen[first] {
			continue
		}
		survived := false
		queue = append(queue[:0], first)
		seen[first] = true
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			if s.cells[u] != 0 {
				survived = true
			}
			ux, uy := u%b.Width, u/b.Width
			for _, d := range neighbors8 {
				vx, vy := ux+d[0], uy+d[1]
				if !b.Get(vx, vy) {
					continue
				}
				v := vy*b.Width + vx
				if !seen[v] {
					seen[v] = true
					queue = append(queue, v)
				}
			}
		}
		if !survived {
			s.cells[first] = 1
		}
	}
}

// removable evaluates the Zhang-Suen deletion conditions for the foreground
// pixel at (x, y). Neighbors follow the classical numbering p2..p9 clockwise
// from north; pass 0 and pass 1 use the mirrored condition pairs.
func removable(s *Bitmap, x, y, pass int) bool {
	p := [8]bool{
		s.Get(x, y-1),   // p2 N
		s.Get(x+1, y-1), // p3 NE
		s.Get(x+1, y),   // p4 E
		s.Get(x+1, y+1), // p5 SE
		s.Get(x, y+1),   // p6 S
		s.Get(x-1, y+1), // p7 SW
		s.Get(x-1, y),   // p8 W
		s.Get(x-1, y-1), // p9 NW
	}

	count := 0
	for _, v := range p {
		if v {
			count++
		}
	}
	if count < 2 || count > 6 {
		return false
	}

	transitions := 0
	for i := 0; i < 8; i++ {
		if !p[i] && p[(i+1)%8] {
			transitions++
		}
	}
	if transitions != 1 {
		return false
	}

	n, e, so, w := p[0], p[2], p[4], p[6]
	if pass == 0 {
		return !(n && e && so) && !(e && so && w)
	}
	return !(n && e && w) && !(n && so && w)
}
