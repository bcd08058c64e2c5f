package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vancomm/gridsweep/internal/config"
	"github.com/vancomm/gridsweep/internal/middleware"
	"github.com/vancomm/gridsweep/internal/repository"
)

type App struct {
	logger  *slog.Logger
	cfg     *config.Server
	router  *http.ServeMux
	repo    *repository.Queries
	jwt     *config.JWT
	cookies *config.Cookies
	ws      *config.WebSocket
}

func New(logger *slog.Logger, cfg *config.Server, jwt *config.JWT) *App {
	app := &App{
		logger:  logger,
		cfg:     cfg,
		router:  http.NewServeMux(),
		repo:    repository.New(cfg.Sessions.MaxSessions),
		jwt:     jwt,
		cookies: config.NewCookies(jwt),
		ws:      config.NewWebSocket(cfg.AllowedOrigins),
	}

	app.loadRoutes()

	return app
}

// Handler is the router with the full middleware stack applied.
func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Auth(a.logger, a.cookies),
		middleware.Cors(a.cfg.AllowedOrigins),
		middleware.Logging(a.logger),
	)
}

// Start serves until ctx is cancelled, then shuts the server down. Idle
// sessions are swept in the background for as long as the server runs.
func (a *App) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         a.cfg.Addr,
		Handler:      a.Handler(),
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info(fmt.Sprintf("gridsweep server listening at http://localhost%s%s", a.cfg.Addr, a.cfg.BasePath))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to listen and serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), time.Second*15)
		defer cancel()
		return server.Shutdown(sCtx)
	})
	g.Go(func() error {
		a.sweep(gCtx)
		return nil
	})

	return g.Wait()
}

func (a *App) sweep(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.Sessions.SweepInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.repo.Sweep(a.cfg.Sessions.TTL.Duration); n > 0 {
				a.logger.Info("swept idle game sessions",
					slog.Int("removed", n), slog.Int("live", a.repo.Count()))
			}
		}
	}
}
