package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vancomm/gridsweep/internal/mines"
	"github.com/vancomm/gridsweep/internal/session"
)

type wsReply struct {
	*GameSessionDTO
	Error string `json:"error,omitempty"`
}

// ConnectWS streams commands over a websocket. Each text message is a
// newline separated script ("o 3 4", "f 0 0", "c 2 2", "r", "g"); the reply
// is the session after the script ran, with an error field when a command
// was rejected. The connection closes once the session is over.
func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	gs := g.lookup(r.Context(), w, r)
	if gs == nil {
		return
	}

	c, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("unable to upgrade connection", "error", err)
		return
	}
	defer c.Close()

	logger := g.logger.With("id", gs.GameSessionId)
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("unable to read message", "error", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			logger.Debug("ignoring non-text message", "type", mt)
			continue
		}

		var (
			reply wsReply
			over  bool
		)
		scriptErr := gs.Do(func(s *session.Session) error {
			outcome, err := s.ExecuteScript(string(message))
			reply.GameSessionDTO = NewGameSessionDTO(gs, s)
			if outcome.Kind != mines.Unchanged {
				reply.Outcome = &outcome
			}
			over = s.State().Terminal()
			return err
		})
		if scriptErr != nil {
			logger.Debug("rejected command", "error", scriptErr)
			reply.Error = scriptErr.Error()
		}

		if err := c.WriteJSON(reply); err != nil {
			logger.Warn("unable to write message", "error", err)
			return
		}
		if over {
			_ = c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session over"))
			return
		}
	}
}
