package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/gridsweep/internal/config"
	"github.com/vancomm/gridsweep/internal/middleware"
	"github.com/vancomm/gridsweep/internal/mines"
	"github.com/vancomm/gridsweep/internal/repository"
	"github.com/vancomm/gridsweep/internal/session"
)

const testMaxCells = 10000

type testEnv struct {
	handler *GameHandler
	server  http.Handler
}

func newTestEnv(t *testing.T, maxSessions int) *testEnv {
	t.Helper()

	j, err := config.NewEphemeralJWT(time.Hour)
	require.NoError(t, err)
	cookies := config.NewCookies(j)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewGameHandler(
		logger, repository.New(maxSessions), j, cookies,
		config.NewWebSocket(nil), "", testMaxCells, rand.New(rand.NewPCG(1, 2)),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /presets", h.Presets)
	mux.HandleFunc("POST /game", h.NewGame)
	mux.HandleFunc("GET /game/{id}", h.Fetch)
	mux.HandleFunc("POST /game/{id}/move", h.MakeAMove)
	mux.HandleFunc("POST /game/{id}/forfeit", h.Forfeit)
	mux.HandleFunc("DELETE /game/{id}", h.Close)
	mux.HandleFunc("/game/{id}/connect", h.ConnectWS)

	return &testEnv{
		handler: h,
		server:  middleware.Wrap(mux, middleware.Auth(logger, cookies)),
	}
}

// addSession registers a 3x3 session with a known layout and returns its id
// and token.
func (e *testEnv) addSession(t *testing.T, hazards ...mines.Point) (string, string) {
	t.Helper()

	b, err := mines.NewBoardWithHazards(3, 3, hazards)
	require.NoError(t, err)
	gs, err := e.handler.repo.CreateGameSession(
		context.Background(), session.FromBoard(b),
		repository.CreateGameSessionParams{Difficulty: mines.Custom},
	)
	require.NoError(t, err)

	id := gs.GameSessionId.String()
	token, err := e.handler.jwt.Sign(e.handler.jwt.NewSessionClaims(id))
	require.NoError(t, err)
	return id, token
}

func (e *testEnv) do(method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) GameSessionDTO {
	t.Helper()

	var dto GameSessionDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto), rec.Body.String())
	return dto
}

func TestPresets(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(http.MethodGet, "/presets", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var presets []struct {
		Difficulty  string `json:"difficulty"`
		Rows        int    `json:"rows"`
		Cols        int    `json:"cols"`
		HazardCount int    `json:"hazard_count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&presets))
	require.Len(t, presets, 3)
	assert.Equal(t, "beginner", presets[0].Difficulty)
	assert.Equal(t, 10, presets[0].HazardCount)
	assert.Equal(t, "expert", presets[2].Difficulty)
	assert.Equal(t, 30, presets[2].Cols)
}

func TestNewGame(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		difficulty mines.Difficulty
		params     mines.GameParams
	}{
		{"default", "", mines.Beginner, mines.GameParams{Rows: 8, Cols: 8, HazardCount: 10}},
		{"preset", "?difficulty=expert", mines.Expert, mines.GameParams{Rows: 16, Cols: 30, HazardCount: 99}},
		{"custom", "?rows=5&cols=7&hazards=3", mines.Custom, mines.GameParams{Rows: 5, Cols: 7, HazardCount: 3}},
		{"seed", "?seed=4:4:15", mines.Custom, mines.GameParams{Rows: 4, Cols: 4, HazardCount: 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 0)

			rec := env.do(http.MethodPost, "/game"+tt.query, "")
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			cookies := rec.Result().Cookies()
			dto := decodeSession(t, rec)
			assert.Equal(t, tt.difficulty, dto.Difficulty)
			assert.Equal(t, tt.params, dto.Board.GameParams)
			assert.Equal(t, session.Playing, dto.Board.State)
			assert.Equal(t, tt.params.HazardCount, dto.Board.RemainingHazards)
			assert.Empty(t, dto.Board.Hazards)
			assert.NotEmpty(t, dto.Token)

			names := map[string]string{}
			for _, c := range cookies {
				names[c.Name] = c.Path
			}
			assert.Equal(t, "/game/"+dto.GameSessionId, names["auth"])
			assert.Equal(t, "/game/"+dto.GameSessionId, names["sign"])

			rec = env.do(http.MethodGet, "/game/"+dto.GameSessionId, dto.Token)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestNewGameRejects(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"unknown difficulty", "?difficulty=nightmare", http.StatusBadRequest},
		{"malformed rows", "?rows=many&cols=3&hazards=1", http.StatusBadRequest},
		{"malformed seed", "?seed=3x3", http.StatusBadRequest},
		{"too many hazards", "?rows=3&cols=3&hazards=10", http.StatusUnprocessableEntity},
		{"zero rows", "?difficulty=custom&rows=0&cols=3&hazards=1", http.StatusUnprocessableEntity},
		{"negative hazards", "?rows=3&cols=3&hazards=-1", http.StatusUnprocessableEntity},
		{"size overflows", fmt.Sprintf("?seed=%d:4:1", math.MaxInt/2+2), http.StatusUnprocessableEntity},
		{"too many cells", "?rows=101&cols=100&hazards=1", http.StatusUnprocessableEntity},
		{"huge board", "?rows=100000&cols=100000&hazards=1", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 0)
			rec := env.do(http.MethodPost, "/game"+tt.query, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestNewGameRegistryFull(t *testing.T) {
	env := newTestEnv(t, 1)

	rec := env.do(http.MethodPost, "/game", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodPost, "/game", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestOwnership(t *testing.T) {
	env := newTestEnv(t, 0)
	id, token := env.addSession(t, mines.Point{Row: 0, Col: 0})
	_, otherToken := env.addSession(t, mines.Point{Row: 1, Col: 1})

	tests := []struct {
		name   string
		target string
		token  string
		status int
	}{
		{"owner", "/game/" + id, token, http.StatusOK},
		{"no token", "/game/" + id, "", http.StatusUnauthorized},
		{"foreign token", "/game/" + id, otherToken, http.StatusForbidden},
		{"garbage token", "/game/" + id, "not.a.token", http.StatusUnauthorized},
		{"unknown session", "/game/6f1c3a52-8a51-4f0e-9a57-0d0c3c1f4b11", token, http.StatusNotFound},
		{"malformed id", "/game/42", token, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.target, tt.token)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestMakeAMoveWin(t *testing.T) {
	env := newTestEnv(t, 0)
	id, token := env.addSession(t, mines.Point{Row: 0, Col: 0})

	rec := env.do(http.MethodPost, "/game/"+id+"/move?move=flag&row=0&col=0", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dto := decodeSession(t, rec)
	assert.Equal(t, 0, dto.Board.RemainingHazards)
	assert.Equal(t, mines.Flagged, dto.Board.At(0, 0))

	rec = env.do(http.MethodPost, "/game/"+id+"/move?move=open&row=2&col=2", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dto = decodeSession(t, rec)
	require.NotNil(t, dto.Outcome)
	assert.Equal(t, mines.RevealOutcome{Kind: mines.Cascaded, Count: 8}, *dto.Outcome)
	assert.Equal(t, session.Won, dto.Board.State)
	assert.True(t, dto.Board.Won)
	assert.Equal(t, []mines.Point{{Row: 0, Col: 0}}, dto.Board.Hazards)

	rec = env.do(http.MethodPost, "/game/"+id+"/move?move=open&row=0&col=0", token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMakeAMoveLose(t *testing.T) {
	env := newTestEnv(t, 0)
	id, token := env.addSession(t, mines.Point{Row: 1, Col: 1})

	rec := env.do(http.MethodPost, "/game/"+id+"/move?move=o&row=1&col=1", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	dto := decodeSession(t, rec)
	assert.Equal(t, mines.HitHazard, dto.Outcome.Kind)
	assert.Equal(t, session.Lost, dto.Board.State)
	assert.Equal(t, mines.RevealedHazard, dto.Board.At(1, 1))
}

func TestMakeAMoveRejects(t *testing.T) {
	env := newTestEnv(t, 0)
	id, token := env.addSession(t, mines.Point{Row: 0, Col: 0})

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"unknown move", "?move=dig&row=1&col=1", http.StatusBadRequest},
		{"missing move", "?row=1&col=1", http.StatusBadRequest},
		{"missing col", "?move=open&row=1", http.StatusBadRequest},
		{"malformed row", "?move=open&row=x&col=1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/game/"+id+"/move"+tt.query, token)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	// out of range coordinates leave the board alone
	rec := env.do(http.MethodPost, "/game/"+id+"/move?move=open&row=7&col=7", token)
	require.Equal(t, http.StatusOK, rec.Code)
	dto := decodeSession(t, rec)
	assert.Equal(t, mines.Unchanged, dto.Outcome.Kind)
	assert.Equal(t, 0, dto.Board.Revealed)
}

func TestForfeit(t *testing.T) {
	env := newTestEnv(t, 0)
	id, token := env.addSession(t, mines.Point{Row: 2, Col: 0})

	rec := env.do(http.MethodPost, "/game/"+id+"/forfeit", token)
	require.Equal(t, http.StatusOK, rec.Code)
	dto := decodeSession(t, rec)
	assert.Equal(t, session.Abandoned, dto.Board.State)
	assert.Equal(t, []mines.Point{{Row: 2, Col: 0}}, dto.Board.Hazards)

	rec = env.do(http.MethodPost, "/game/"+id+"/forfeit", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, session.Abandoned, decodeSession(t, rec).Board.State)

	rec = env.do(http.MethodPost, "/game/"+id+"/move?move=open&row=0&col=0", token)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestClose(t *testing.T) {
	env := newTestEnv(t, 0)
	id, token := env.addSession(t, mines.Point{Row: 0, Col: 0})
	_, otherToken := env.addSession(t, mines.Point{Row: 0, Col: 0})

	rec := env.do(http.MethodDelete, "/game/"+id, otherToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodDelete, "/game/"+id, token)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	cleared := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cleared[c.Name] = c
	}
	for _, name := range []string{"auth", "sign"} {
		require.Contains(t, cleared, name)
		assert.Equal(t, "/game/"+id, cleared[name].Path)
		assert.Negative(t, cleared[name].MaxAge)
	}

	assert.Equal(t, 1, env.handler.repo.Count())
	rec = env.do(http.MethodGet, "/game/"+id, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodDelete, "/game/"+id, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func dialSession(t *testing.T, env *testEnv, id, token string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(env.server)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + id + "/connect"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	c, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { c.Close() })
	return c
}

type wsTestReply struct {
	GameSessionDTO
	Error string `json:"error"`
}

func TestConnectWS(t *testing.T) {
	env := newTestEnv(t, 0)
	id, token := env.addSession(t, mines.Point{Row: 0, Col: 0})
	c := dialSession(t, env, id, token)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("f 0 0")))
	var reply wsTestReply
	require.NoError(t, c.ReadJSON(&reply))
	assert.Empty(t, reply.Error)
	assert.Nil(t, reply.Outcome)
	assert.Equal(t, mines.Flagged, reply.Board.At(0, 0))

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("bogus")))
	reply = wsTestReply{}
	require.NoError(t, c.ReadJSON(&reply))
	assert.Contains(t, reply.Error, "unknown command")
	assert.Equal(t, session.Playing, reply.Board.State)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("g\no 2 2\no 1 1")))
	reply = wsTestReply{}
	require.NoError(t, c.ReadJSON(&reply))
	assert.Empty(t, reply.Error)
	require.NotNil(t, reply.Outcome)
	assert.Equal(t, mines.Cascaded, reply.Outcome.Kind)
	assert.Equal(t, session.Won, reply.Board.State)

	_, _, err := c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestConnectWSRequiresToken(t *testing.T) {
	env := newTestEnv(t, 0)
	id, _ := env.addSession(t, mines.Point{Row: 0, Col: 0})

	srv := httptest.NewServer(env.server)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + id + "/connect"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
