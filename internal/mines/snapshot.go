package mines

import "strings"

// Snapshot is a self-contained, serialisable view of a board as the player
// sees it. Cells are row-major.
//
// Won and Lost mirror [Board.Won] and [Board.Lost] and are not exclusive: a
// hazard revealed while the counter sits one short of the target sets both.
// Callers that need a single verdict check Lost first.
type Snapshot struct {
	GameParams
	RemainingHazards int         `json:"remaining_hazards"`
	Revealed         int         `json:"revealed"`
	Won              bool        `json:"won"`
	Lost             bool        `json:"lost"`
	Cells            []CellState `json:"cells"`
	Hazards          []Point     `json:"hazards,omitempty"` /* only once exposed */
}

func (b *Board) Snapshot() Snapshot {
	s := Snapshot{
		GameParams:       b.params,
		RemainingHazards: b.RemainingHazards(),
		Revealed:         b.revealed,
		Won:              b.Won(),
		Lost:             b.Lost(),
		Cells:            make([]CellState, len(b.grid.cells)),
	}
	for i, c := range b.grid.cells {
		s.Cells[i] = c.state()
		if b.exposed && c.hazard {
			s.Hazards = append(s.Hazards, Point{i / b.grid.cols, i % b.grid.cols})
		}
	}
	return s
}

// At returns the state of (row, col); out-of-range positions read as
// [Hidden].
func (s Snapshot) At(row, col int) CellState {
	if !s.PointInBounds(row, col) {
		return Hidden
	}
	return s.Cells[row*s.Cols+col]
}

// IsHazard reports whether (row, col) is listed in [Snapshot.Hazards].
func (s Snapshot) IsHazard(row, col int) bool {
	for _, p := range s.Hazards {
		if p.Row == row && p.Col == col {
			return true
		}
	}
	return false
}

func (s Snapshot) ToString() string {
	var b strings.Builder
	for row := range s.Rows {
		for col := range s.Cols {
			b.WriteString(s.At(row, col).String())
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String()
}
