// Package render draws board snapshots as text.
package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vancomm/gridsweep/internal/mines"
)

const (
	glyphHidden    = "■"
	glyphFlag      = "F"
	glyphWrongFlag = "X"
	glyphHazard    = "*"
	glyphZero      = "."
)

func glyph(s mines.Snapshot, row, col int) string {
	state := s.At(row, col)
	switch {
	case state == mines.Flagged:
		if len(s.Hazards) > 0 && !s.IsHazard(row, col) {
			return glyphWrongFlag
		}
		return glyphFlag
	case state == mines.Hidden:
		return glyphHidden
	case state == mines.RevealedHazard:
		return glyphHazard
	case state == 0:
		return glyphZero
	default:
		return state.String()
	}
}

// Text writes the board with column numbers on top, row numbers on the left
// and the remaining hazard count below. Once the board is exposed, flags on
// safe cells are drawn as X.
func Text(w io.Writer, s mines.Snapshot) error {
	bw := bufio.NewWriter(w)

	fmt.Fprint(bw, "   ")
	for col := range s.Cols {
		fmt.Fprintf(bw, "%2d ", col)
	}
	fmt.Fprintln(bw)

	for row := range s.Rows {
		fmt.Fprintf(bw, "%2d ", row)
		for col := range s.Cols {
			fmt.Fprintf(bw, " %s ", glyph(s, row, col))
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintf(bw, "Hazards left: %d\n", s.RemainingHazards)
	return bw.Flush()
}
