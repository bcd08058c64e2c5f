package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/gridsweep/internal/mines"
	"github.com/vancomm/gridsweep/internal/session"
)

var (
	ErrNotFound        = fmt.Errorf("game session not found")
	ErrTooManySessions = fmt.Errorf("too many live game sessions")
)

// GameSession is a registry entry. The session it wraps is single-threaded;
// every access goes through [GameSession.Do].
type GameSession struct {
	GameSessionId uuid.UUID
	Difficulty    mines.Difficulty
	CreatedAt     time.Time

	mu        sync.Mutex
	session   *session.Session
	updatedAt time.Time
}

// Do runs f with exclusive access to the session and bumps UpdatedAt.
func (g *GameSession) Do(f func(s *session.Session) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.updatedAt = time.Now().UTC()
	return f(g.session)
}

func (g *GameSession) UpdatedAt() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.updatedAt
}

type Queries struct {
	mu          sync.RWMutex
	sessions    map[uuid.UUID]*GameSession
	maxSessions int
}

func New(maxSessions int) *Queries {
	return &Queries{
		sessions:    make(map[uuid.UUID]*GameSession),
		maxSessions: maxSessions,
	}
}

type CreateGameSessionParams struct {
	Difficulty mines.Difficulty
}

func (q *Queries) CreateGameSession(
	ctx context.Context, s *session.Session, params CreateGameSessionParams,
) (*GameSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.maxSessions > 0 && len(q.sessions) >= q.maxSessions {
		return nil, ErrTooManySessions
	}

	now := time.Now().UTC()
	gs := &GameSession{
		GameSessionId: uuid.New(),
		Difficulty:    params.Difficulty,
		CreatedAt:     now,
		session:       s,
		updatedAt:     now,
	}
	q.sessions[gs.GameSessionId] = gs
	return gs, nil
}

func (q *Queries) FetchGameSession(ctx context.Context, gameSessionId uuid.UUID) (*GameSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	gs, ok := q.sessions[gameSessionId]
	if !ok {
		return nil, ErrNotFound
	}
	return gs, nil
}

func (q *Queries) DeleteGameSession(ctx context.Context, gameSessionId uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.sessions[gameSessionId]; !ok {
		return ErrNotFound
	}
	delete(q.sessions, gameSessionId)
	return nil
}

// Sweep drops sessions that have not been touched since before now-idle and
// returns how many it removed.
func (q *Queries) Sweep(idle time.Duration) int {
	cutoff := time.Now().UTC().Add(-idle)

	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for id, gs := range q.sessions {
		if gs.UpdatedAt().Before(cutoff) {
			delete(q.sessions, id)
			n++
		}
	}
	return n
}

func (q *Queries) Count() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return len(q.sessions)
}
