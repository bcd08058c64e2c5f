package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/gridsweep/internal/config"
)

func newTestApp(t *testing.T, cfg *config.Server) *App {
	t.Helper()

	j, err := config.NewEphemeralJWT(cfg.TokenLifetime.Duration)
	require.NoError(t, err)
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, j)
}

func TestRoutesUnderBasePath(t *testing.T) {
	cfg := config.Default()
	cfg.BasePath = "/api"
	a := newTestApp(t, cfg)
	h := a.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/presets", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/game?difficulty=intermediate", nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, a.repo.Count())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/presets", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/game", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStartSweepsAndShutsDown(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.Sessions.TTL = config.Duration{Duration: time.Millisecond}
	cfg.Sessions.SweepInterval = config.Duration{Duration: 5 * time.Millisecond}
	a := newTestApp(t, cfg)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/game", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 1, a.repo.Count())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Start(ctx) }()

	assert.Eventually(t, func() bool { return a.repo.Count() == 0 },
		time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
