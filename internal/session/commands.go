package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/gridsweep/internal/mines"
)

type Op byte

const (
	Get     Op = 'g'
	Open    Op = 'o'
	Flag    Op = 'f'
	Chord   Op = 'c'
	Forfeit Op = 'r'
)

func (op Op) String() string {
	switch op {
	case Get:
		return "get"
	case Open:
		return "open"
	case Flag:
		return "flag"
	case Chord:
		return "chord"
	case Forfeit:
		return "forfeit"
	default:
		return fmt.Sprintf("op(%q)", byte(op))
	}
}

// Maps known commands to number of arguments
var commandNargs = map[Op]int{
	Get:     0,
	Open:    2,
	Flag:    2,
	Chord:   2,
	Forfeit: 0,
}

var (
	ErrUnknownCommand = fmt.Errorf("unknown command")
	ErrBadArgCount    = fmt.Errorf("invalid number of arguments")
)

type Command struct {
	Op       Op
	Row, Col int
}

func (c Command) String() string {
	if commandNargs[c.Op] == 0 {
		return string(c.Op)
	}
	return fmt.Sprintf("%c %d %d", c.Op, c.Row, c.Col)
}

func parseRowCol(twoStrings []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(twoStrings[0]); err != nil {
		err = fmt.Errorf("row must be an int")
		return
	}
	if col, err = strconv.Atoi(twoStrings[1]); err != nil {
		err = fmt.Errorf("column must be an int")
		return
	}
	return
}

// ParseCommand reads one command line. Two forms are understood:
//
//	o 3 4    open (reveal) row 3, column 4; also f (flag), c (chord)
//	g        fetch state only
//	r        forfeit and expose the board
//	3 4 r    row, column, then r (reveal) or f (flag)
//
// Coordinates are not range-checked; the board ignores moves outside it.
func ParseCommand(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrUnknownCommand
	}

	if len(parts) == 3 && len(parts[2]) == 1 {
		if _, err := strconv.Atoi(parts[0]); err == nil {
			return parseTrailing(parts)
		}
	}

	if len(parts[0]) != 1 {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, parts[0])
	}
	op := Op(parts[0][0])
	nargs, ok := commandNargs[op]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return Command{}, ErrBadArgCount
	}

	cmd := Command{Op: op}
	if nargs == 2 {
		row, col, err := parseRowCol(parts[1:])
		if err != nil {
			return Command{}, err
		}
		cmd.Row, cmd.Col = row, col
	}
	return cmd, nil
}

func parseTrailing(parts []string) (Command, error) {
	row, col, err := parseRowCol(parts[:2])
	if err != nil {
		return Command{}, err
	}
	switch parts[2] {
	case "r":
		return Command{Op: Open, Row: row, Col: col}, nil
	case "f":
		return Command{Op: Flag, Row: row, Col: col}, nil
	}
	return Command{}, fmt.Errorf("%w %q (use r to reveal or f to flag)", ErrUnknownCommand, parts[2])
}

func (s *Session) Execute(cmd Command) (mines.RevealOutcome, error) {
	switch cmd.Op {
	case Get:
		return mines.RevealOutcome{Kind: mines.Unchanged}, nil
	case Open:
		return s.Reveal(cmd.Row, cmd.Col)
	case Flag:
		return mines.RevealOutcome{Kind: mines.Unchanged}, s.ToggleFlag(cmd.Row, cmd.Col)
	case Chord:
		return s.Chord(cmd.Row, cmd.Col)
	case Forfeit:
		s.Forfeit()
		return mines.RevealOutcome{Kind: mines.Unchanged}, nil
	}
	return mines.RevealOutcome{Kind: mines.Unchanged}, ErrUnknownCommand
}

// ExecuteScript runs newline separated commands and stops at the first error
// or once the session is over. It returns the outcome of the last command
// executed.
func (s *Session) ExecuteScript(text string) (last mines.RevealOutcome, err error) {
	for _, line := range byPiece(strings.TrimSpace(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			return last, err
		}
		if last, err = s.Execute(cmd); err != nil {
			return last, err
		}
		if s.state.Terminal() {
			break
		}
	}
	return last, nil
}
