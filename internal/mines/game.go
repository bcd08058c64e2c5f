package mines

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
)

var Log *slog.Logger = slog.Default()

type OutcomeKind int8

const (
	Unchanged OutcomeKind = iota
	RevealedSingle
	Cascaded
	HitHazard
)

func (k OutcomeKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case RevealedSingle:
		return "revealed"
	case Cascaded:
		return "cascaded"
	case HitHazard:
		return "hit_hazard"
	default:
		return fmt.Sprintf("outcome(%d)", int8(k))
	}
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *OutcomeKind) UnmarshalText(text []byte) error {
	for _, kind := range []OutcomeKind{Unchanged, RevealedSingle, Cascaded, HitHazard} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// RevealOutcome is the result of a reveal. Count is the number of cells the
// call newly revealed; for [Cascaded] it includes the target cell.
type RevealOutcome struct {
	Kind  OutcomeKind `json:"kind"`
	Count int         `json:"count"`
}

func (o RevealOutcome) String() string {
	if o.Kind == Cascaded {
		return fmt.Sprintf("%s(%d)", o.Kind, o.Count)
	}
	return o.Kind.String()
}

// Board owns a grid and the running counters of one game. It is not safe for
// concurrent use.
type Board struct {
	grid      *Grid
	params    GameParams
	revealed  int
	flagged   int
	hitHazard bool
	exposed   bool
}

func NewBoard(params GameParams, r *rand.Rand) (*Board, error) {
	grid, err := NewGrid(params, r)
	if err != nil {
		return nil, err
	}
	return &Board{grid: grid, params: params}, nil
}

func NewBoardWithHazards(rows, cols int, hazards []Point) (*Board, error) {
	grid, err := NewGridWithHazards(rows, cols, hazards)
	if err != nil {
		return nil, err
	}
	params := GameParams{Rows: rows, Cols: cols, HazardCount: len(hazards)}
	return &Board{grid: grid, params: params}, nil
}

func (b *Board) Params() GameParams { return b.params }
func (b *Board) Grid() *Grid        { return b.grid }
func (b *Board) RevealedCount() int { return b.revealed }
func (b *Board) FlaggedCount() int  { return b.flagged }

func (b *Board) Reveal(row, col int) RevealOutcome {
	if !b.grid.InBounds(row, col) {
		return RevealOutcome{Kind: Unchanged}
	}
	c := b.grid.at(row, col)
	if c.revealed || c.flagged {
		return RevealOutcome{Kind: Unchanged}
	}

	c.revealed = true
	b.revealed++

	if c.hazard {
		b.hitHazard = true
		Log.Debug("hazard hit", "row", row, "col", col)
		return RevealOutcome{Kind: HitHazard, Count: 1}
	}

	if c.adjacent != 0 {
		return RevealOutcome{Kind: RevealedSingle, Count: 1}
	}

	return RevealOutcome{Kind: Cascaded, Count: 1 + b.cascade(row, col)}
}

// cascade opens the region around an already revealed zero cell and returns
// how many cells it revealed. The revealed flag doubles as the visited mark,
// so every cell is pushed at most once.
func (b *Board) cascade(row, col int) (n int) {
	stack := []Point{{row, col}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for q := range b.grid.neighbors(p.Row, p.Col) {
			c := b.grid.at(q.Row, q.Col)
			if c.revealed || c.flagged {
				continue
			}
			c.revealed = true
			b.revealed++
			n++
			if c.adjacent == 0 {
				stack = append(stack, q)
			}
		}
	}
	return
}

func (b *Board) ToggleFlag(row, col int) {
	if !b.grid.InBounds(row, col) {
		return
	}
	c := b.grid.at(row, col)
	if c.revealed {
		return
	}
	c.flagged = !c.flagged
	if c.flagged {
		b.flagged++
	} else {
		b.flagged--
	}
}

// Chord reveals every hidden unflagged neighbour of a revealed numbered cell
// once the player has flagged as many neighbours as the number says. It
// stops at the first hazard.
func (b *Board) Chord(row, col int) RevealOutcome {
	c, ok := b.grid.Cell(row, col)
	if !ok || !c.revealed || c.hazard || c.adjacent == 0 {
		return RevealOutcome{Kind: Unchanged}
	}

	flags := 0
	for q := range b.grid.neighbors(row, col) {
		if b.grid.at(q.Row, q.Col).flagged {
			flags++
		}
	}
	if flags != int(c.adjacent) {
		return RevealOutcome{Kind: Unchanged}
	}

	total := 0
	for q := range b.grid.neighbors(row, col) {
		o := b.Reveal(q.Row, q.Col)
		if o.Kind == HitHazard {
			return RevealOutcome{Kind: HitHazard, Count: total + o.Count}
		}
		total += o.Count
	}

	switch total {
	case 0:
		return RevealOutcome{Kind: Unchanged}
	case 1:
		return RevealOutcome{Kind: RevealedSingle, Count: 1}
	default:
		return RevealOutcome{Kind: Cascaded, Count: total}
	}
}

func (b *Board) CellState(row, col int) (CellState, error) {
	c, ok := b.grid.Cell(row, col)
	if !ok {
		return 0, &OutOfRangeError{row, col}
	}
	return c.state(), nil
}

// RemainingHazards may go negative when the player over-flags.
func (b *Board) RemainingHazards() int {
	return b.params.HazardCount - b.flagged
}

func (b *Board) Lost() bool {
	return b.hitHazard
}

// Won reports whether the reveal counter reached rows*cols-hazards. Revealed
// hazards count too, so Won and Lost can both be true.
func (b *Board) Won() bool {
	return b.revealed == b.params.Size()-b.params.HazardCount
}

// RevealAll exposes the board for end-of-game display. Counters and the
// hit-hazard flag are left untouched. Flagged cells keep their flag; the
// hazard layout is reported through [Snapshot.Hazards] instead.
func (b *Board) RevealAll() {
	for i := range b.grid.cells {
		if !b.grid.cells[i].flagged {
			b.grid.cells[i].revealed = true
		}
	}
	b.exposed = true
}

func (b *Board) Exposed() bool {
	return b.exposed
}
