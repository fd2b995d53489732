package raster

// neighbors4 enumerates the orthogonal neighborhood: N, E, S, W.
var neighbors4 = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// FillHoles fills 4-connected background components of at most maxArea cells
// that do not touch the raster border. Small interior holes left by
// overlapping capsule boundaries would otherwise survive thinning as spurious
// loops in the skeleton.
//
// A maxArea of zero or less leaves the bitmap unchanged.
func FillHoles(b *Bitmap, maxArea int) {
	if maxArea <= 0 {
		return
	}

	seen := make([]bool, len(b.cells))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			i := y*b.Width + x
			if b.cells[i] != 0 || seen[i] {
				continue
			}

			// Flood the background component, tracking whether it leaks to the
			// border. Components beyond maxArea cells are still flooded fully so
			// their cells are not revisited.
			component := []int{i}
			seen[i] = true
			touchesBorder := false
			for qi := 0; qi < len(component); qi++ {
				u := component[qi]
				ux, uy := u%b.Width, u/b.Width
				if ux == 0 || uy == 0 || ux == b.Width-1 || uy == b.Height-1 {
					touchesBorder = true
				}
				for _, d := range neighbors4 {
					vx, vy := ux+d[0], uy+d[1]
					if !b.InBounds(vx, vy) {
						continue
					}
					v := vy*b.Width + vx
					if b.cells[v] == 0 && !seen[v] {
						seen[v] = true
						component = append(component, v)
					}
				}
			}

			if !touchesBorder && len(component) <= maxArea {
				for _, u := range component {
					b.cells[u] = 1
				}
			}
		}
	}
}
