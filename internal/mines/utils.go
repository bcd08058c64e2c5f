package mines

import "iter"

// neighbors yields the up to 8 in-bounds cells at Chebyshev distance 1.
func (g *Grid) neighbors(row, col int) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				r, c := row+dr, col+dc
				if !g.InBounds(r, c) {
					continue
				}
				if !yield(Point{r, c}) {
					return
				}
			}
		}
	}
}
