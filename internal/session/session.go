// Package session drives one play-through of a board from construction to a
// terminal state.
package session

import (
	"fmt"
	"math/rand/v2"

	"github.com/vancomm/gridsweep/internal/mines"
)

var ErrSessionOver = fmt.Errorf("session is over")

type State int

const (
	Playing State = iota
	Won
	Lost
	Abandoned
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Abandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, state := range []State{Playing, Won, Lost, Abandoned} {
		if state.String() == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

func (s State) Terminal() bool {
	return s != Playing
}

type Session struct {
	board *mines.Board
	state State
}

func New(params mines.GameParams, r *rand.Rand) (*Session, error) {
	board, err := mines.NewBoard(params, r)
	if err != nil {
		return nil, err
	}
	return FromBoard(board), nil
}

func FromBoard(b *mines.Board) *Session {
	s := &Session{board: b}
	s.settle()
	return s
}

func (s *Session) Board() *mines.Board { return s.board }
func (s *Session) State() State        { return s.state }

func (s *Session) Reveal(row, col int) (mines.RevealOutcome, error) {
	return s.move(func() mines.RevealOutcome { return s.board.Reveal(row, col) })
}

func (s *Session) Chord(row, col int) (mines.RevealOutcome, error) {
	return s.move(func() mines.RevealOutcome { return s.board.Chord(row, col) })
}

func (s *Session) ToggleFlag(row, col int) error {
	_, err := s.move(func() mines.RevealOutcome {
		s.board.ToggleFlag(row, col)
		return mines.RevealOutcome{Kind: mines.Unchanged}
	})
	return err
}

// Forfeit abandons a running session and exposes the board. Calling it on a
// finished session does nothing.
func (s *Session) Forfeit() {
	if s.state.Terminal() {
		return
	}
	s.state = Abandoned
	s.board.RevealAll()
}

func (s *Session) move(f func() mines.RevealOutcome) (mines.RevealOutcome, error) {
	if s.state.Terminal() {
		return mines.RevealOutcome{Kind: mines.Unchanged}, ErrSessionOver
	}
	o := f()
	s.settle()
	return o, nil
}

// settle re-evaluates the state; a loss wins over a simultaneous win.
func (s *Session) settle() {
	if s.state.Terminal() {
		return
	}
	switch {
	case s.board.Lost():
		s.state = Lost
	case s.board.Won():
		s.state = Won
	default:
		return
	}
	mines.Log.Debug("session finished", "state", s.state)
	s.board.RevealAll()
}

type Snapshot struct {
	mines.Snapshot
	State State `json:"state"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Snapshot: s.board.Snapshot(),
		State:    s.state,
	}
}
