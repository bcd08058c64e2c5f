package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vancomm/gridsweep/internal/mines"
	"github.com/vancomm/gridsweep/internal/render"
	"github.com/vancomm/gridsweep/internal/session"
)

const help = `commands:
  o <row> <col>    reveal a cell (also: <row> <col> r)
  f <row> <col>    toggle a flag (also: <row> <col> f)
  c <row> <col>    reveal around a satisfied number
  r                give up
  q                quit
`

// play runs the prompt loop until the session ends, the input runs out or
// the player quits. It returns the state the session was left in.
func play(in io.Reader, out io.Writer, s *session.Session) (session.State, error) {
	if err := render.Text(out, s.Snapshot().Snapshot); err != nil {
		return s.State(), err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return s.State(), scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			return s.State(), nil
		case "h", "help", "?":
			fmt.Fprint(out, help)
			continue
		}

		cmd, err := session.ParseCommand(line)
		if err != nil {
			fmt.Fprintf(out, "%s (type h for help)\n", err)
			continue
		}

		outcome, err := s.Execute(cmd)
		if errors.Is(err, session.ErrSessionOver) {
			return s.State(), nil
		}
		if err != nil {
			return s.State(), err
		}
		log.WithField("cmd", cmd.String()).WithField("outcome", outcome.String()).Debug("move")

		if err := render.Text(out, s.Snapshot().Snapshot); err != nil {
			return s.State(), err
		}
		if outcome.Kind == mines.Cascaded {
			fmt.Fprintf(out, "Opened %d cells\n", outcome.Count)
		}

		switch s.State() {
		case session.Won:
			fmt.Fprintln(out, "All safe cells revealed. You win!")
			return s.State(), nil
		case session.Lost:
			fmt.Fprintln(out, "Boom. You hit a hazard.")
			return s.State(), nil
		case session.Abandoned:
			fmt.Fprintln(out, "Game abandoned.")
			return s.State(), nil
		}
	}
}
