package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vancomm/gridsweep/internal/config"
	"github.com/vancomm/gridsweep/internal/middleware"
	"github.com/vancomm/gridsweep/internal/mines"
	"github.com/vancomm/gridsweep/internal/repository"
	"github.com/vancomm/gridsweep/internal/session"
	"github.com/vancomm/gridsweep/internal/telemetry"
)

var (
	errUnauthorized = fmt.Errorf("missing session token")
	errForbidden    = fmt.Errorf("token does not belong to this session")
)

type GameHandler struct {
	logger   *slog.Logger
	repo     *repository.Queries
	jwt      *config.JWT
	cookies  *config.Cookies
	ws       *config.WebSocket
	basePath string
	maxCells int
	tracer   trace.Tracer

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewGameHandler(
	logger *slog.Logger,
	repo *repository.Queries,
	jwt *config.JWT,
	cookies *config.Cookies,
	ws *config.WebSocket,
	basePath string,
	maxCells int,
	rnd *rand.Rand,
) *GameHandler {
	return &GameHandler{
		logger:   logger,
		repo:     repo,
		jwt:      jwt,
		cookies:  cookies,
		ws:       ws,
		basePath: basePath,
		maxCells: maxCells,
		tracer:   telemetry.Tracer("handlers"),
		rnd:      rnd,
	}
}

// sessionRand derives an independent source for one session so that the
// shared generator is only touched under lock.
func (g *GameHandler) sessionRand() *rand.Rand {
	g.rndMu.Lock()
	defer g.rndMu.Unlock()
	return rand.New(rand.NewPCG(g.rnd.Uint64(), g.rnd.Uint64()))
}

func (g *GameHandler) sessionPath(id uuid.UUID) string {
	return g.basePath + "/game/" + id.String()
}

func (g *GameHandler) Presets(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, g.logger, Presets())
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := g.tracer.Start(r.Context(), "game.new")
	defer span.End()

	create, err := ParseCreateNewGameDTO(r.URL.Query())
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	difficulty, params, err := create.Resolve()
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, mines.ErrInvalidConfiguration) {
			status = http.StatusUnprocessableEntity
		}
		sendErrorOrLog(w, g.logger, status, err)
		return
	}
	span.SetAttributes(
		attribute.String("difficulty", difficulty.String()),
		attribute.String("params", params.Seed()),
	)
	if g.maxCells > 0 && params.Size() > g.maxCells {
		err := &mines.ConfigurationError{
			Params: params,
			Reason: fmt.Sprintf("board exceeds %d cells", g.maxCells),
		}
		sendErrorOrLog(w, g.logger, http.StatusUnprocessableEntity, err)
		return
	}

	s, err := session.New(params, g.sessionRand())
	if err != nil {
		recordError(span, err)
		sendErrorOrLog(w, g.logger, http.StatusUnprocessableEntity, err)
		return
	}

	gs, err := g.repo.CreateGameSession(ctx, s, repository.CreateGameSessionParams{
		Difficulty: difficulty,
	})
	if errors.Is(err, repository.ErrTooManySessions) {
		sendErrorOrLog(w, g.logger, http.StatusServiceUnavailable, err)
		return
	}
	if err != nil {
		recordError(span, err)
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to register game session", "error", err)
		return
	}
	span.SetAttributes(attribute.String("session.id", gs.GameSessionId.String()))

	token, err := g.jwt.Sign(g.jwt.NewSessionClaims(gs.GameSessionId.String()))
	if err != nil {
		recordError(span, err)
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to sign session token", "error", err)
		return
	}
	if err := g.cookies.Refresh(w, g.sessionPath(gs.GameSessionId), token); err != nil {
		recordError(span, err)
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to set session cookies", "error", err)
		return
	}

	g.logger.Debug("created game session",
		"id", gs.GameSessionId, "difficulty", difficulty, "params", params)

	var dto *GameSessionDTO
	_ = gs.Do(func(s *session.Session) error {
		dto = NewGameSessionDTO(gs, s)
		return nil
	})
	dto.Token = token
	sendStatusOrLog(w, g.logger, http.StatusCreated, dto)
}

// lookup resolves the {id} path value and checks that the caller holds the
// session's token. It writes the error response itself and returns nil on
// failure.
func (g *GameHandler) lookup(ctx context.Context, w http.ResponseWriter, r *http.Request) *repository.GameSession {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, fmt.Errorf("invalid session id: %w", err))
		return nil
	}

	gs, err := g.repo.FetchGameSession(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		sendErrorOrLog(w, g.logger, http.StatusNotFound, err)
		return nil
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to fetch game session", "error", err)
		return nil
	}

	claims, ok := middleware.SessionClaims(r.Context())
	if !ok {
		sendErrorOrLog(w, g.logger, http.StatusUnauthorized, errUnauthorized)
		return nil
	}
	if claims.SessionId != id.String() {
		g.logger.Debug("foreign session token", "id", id, "claims", claims.SessionId)
		sendErrorOrLog(w, g.logger, http.StatusForbidden, errForbidden)
		return nil
	}

	return gs
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	gs := g.lookup(r.Context(), w, r)
	if gs == nil {
		return
	}

	var dto *GameSessionDTO
	_ = gs.Do(func(s *session.Session) error {
		dto = NewGameSessionDTO(gs, s)
		return nil
	})
	sendJSONOrLog(w, g.logger, dto)
}

func (g *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	ctx, span := g.tracer.Start(r.Context(), "game.move")
	defer span.End()

	query := r.URL.Query()

	op, err := ParseGameMove(query.Get("move"))
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	pos, err := ParsePosition(query)
	if err != nil {
		sendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}

	gs := g.lookup(ctx, w, r)
	if gs == nil {
		return
	}
	span.SetAttributes(
		attribute.String("session.id", gs.GameSessionId.String()),
		attribute.String("move", op.String()),
		attribute.Int("row", pos.Row),
		attribute.Int("col", pos.Col),
	)

	var dto *GameSessionDTO
	err = gs.Do(func(s *session.Session) error {
		outcome, err := s.Execute(session.Command{Op: op, Row: pos.Row, Col: pos.Col})
		if err != nil {
			return err
		}
		dto = NewGameSessionDTO(gs, s)
		dto.Outcome = &outcome
		return nil
	})
	if errors.Is(err, session.ErrSessionOver) {
		sendErrorOrLog(w, g.logger, http.StatusConflict, err)
		return
	}
	if err != nil {
		recordError(span, err)
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to apply move", "error", err)
		return
	}

	span.SetAttributes(
		attribute.String("outcome", dto.Outcome.Kind.String()),
		attribute.String("state", dto.Board.State.String()),
	)
	sendJSONOrLog(w, g.logger, dto)
}

func (g *GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	ctx, span := g.tracer.Start(r.Context(), "game.forfeit")
	defer span.End()

	gs := g.lookup(ctx, w, r)
	if gs == nil {
		return
	}

	var dto *GameSessionDTO
	_ = gs.Do(func(s *session.Session) error {
		s.Forfeit()
		dto = NewGameSessionDTO(gs, s)
		return nil
	})
	sendJSONOrLog(w, g.logger, dto)
}

// Close drops the session from the registry and clears its cookies.
func (g *GameHandler) Close(w http.ResponseWriter, r *http.Request) {
	ctx, span := g.tracer.Start(r.Context(), "game.close")
	defer span.End()

	gs := g.lookup(ctx, w, r)
	if gs == nil {
		return
	}

	err := g.repo.DeleteGameSession(ctx, gs.GameSessionId)
	if errors.Is(err, repository.ErrNotFound) {
		sendErrorOrLog(w, g.logger, http.StatusNotFound, err)
		return
	}
	if err != nil {
		recordError(span, err)
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to delete game session", "error", err)
		return
	}

	g.cookies.Clear(w, g.sessionPath(gs.GameSessionId))
	g.logger.Debug("closed game session", "id", gs.GameSessionId)
	w.WriteHeader(http.StatusNoContent)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
