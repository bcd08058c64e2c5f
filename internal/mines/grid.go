package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type CellState int8

const (
	Hidden         CellState = -2
	Flagged        CellState = -1
	RevealedHazard CellState = 65
	/*
	 * A cell as seen by the player is one of:
	 *
	 * 	- 0 to 8: revealed, with its adjacent hazard count.
	 *
	 * 	- -1: flagged by the player.
	 *
	 * 	- -2: not revealed yet.
	 *
	 * 	- 65: a revealed hazard.
	 */
)

func (s CellState) String() string {
	switch {
	case s == Hidden:
		return " "
	case s == Flagged:
		return "F"
	case s == RevealedHazard:
		return "*"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

// Revealed reports the adjacent hazard count of a revealed safe cell.
func (s CellState) Revealed() (adjacent int, ok bool) {
	if 0 <= s && s <= 8 {
		return int(s), true
	}
	return 0, false
}

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Col)
}

type Cell struct {
	hazard   bool
	revealed bool
	flagged  bool
	adjacent int8
}

func (c Cell) Hazard() bool   { return c.hazard }
func (c Cell) Revealed() bool { return c.revealed }
func (c Cell) Flagged() bool  { return c.flagged }

// Adjacent is the number of hazards among the cell's neighbours. It is left
// at zero for hazard cells.
func (c Cell) Adjacent() int { return int(c.adjacent) }

func (c Cell) state() CellState {
	switch {
	case c.flagged:
		return Flagged
	case !c.revealed:
		return Hidden
	case c.hazard:
		return RevealedHazard
	default:
		return CellState(c.adjacent)
	}
}

// Grid is a fixed rows x cols arrangement of cells stored row-major. Its
// shape never changes after construction.
type Grid struct {
	rows, cols int
	cells      []Cell
}

func newEmptyGrid(rows, cols int) *Grid {
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

func (g *Grid) InBounds(row, col int) bool {
	return 0 <= row && row < g.rows && 0 <= col && col < g.cols
}

// Cell returns a copy of the cell at (row, col).
func (g *Grid) Cell(row, col int) (Cell, bool) {
	if !g.InBounds(row, col) {
		return Cell{}, false
	}
	return g.cells[row*g.cols+col], true
}

func (g *Grid) at(row, col int) *Cell {
	return &g.cells[row*g.cols+col]
}

// HazardCount counts hazard cells.
func (g *Grid) HazardCount() (n int) {
	for _, c := range g.cells {
		if c.hazard {
			n++
		}
	}
	return
}

func (g *Grid) computeAdjacency() {
	for row := range g.rows {
		for col := range g.cols {
			c := g.at(row, col)
			if c.hazard {
				continue
			}
			var v int8
			for p := range g.neighbors(row, col) {
				if g.at(p.Row, p.Col).hazard {
					v++
				}
			}
			c.adjacent = v
		}
	}
}

// ToString draws the hidden layout: '*' for hazards, digits for the rest.
func (g *Grid) ToString() string {
	var b strings.Builder
	for row := range g.rows {
		for col := range g.cols {
			c := g.at(row, col)
			if c.hazard {
				b.WriteString("* ")
			} else {
				fmt.Fprintf(&b, "%d ", c.adjacent)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
