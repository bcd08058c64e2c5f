package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/vancomm/gridsweep/internal/app"
	"github.com/vancomm/gridsweep/internal/config"
	"github.com/vancomm/gridsweep/internal/mines"
	"github.com/vancomm/gridsweep/internal/telemetry"
)

var configPath string

func init() {
	const usage = "YAML config file path"
	flag.StringVar(&configPath, "config", "", usage)
	flag.StringVar(&configPath, "c", "", usage+" (shorthand)")
}

func newLogger(development bool) *slog.Logger {
	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, nil)
	if development {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		})
	}
	return slog.New(handler)
}

func main() {
	flag.Parse()

	// a missing .env is fine; the environment may be set by other means
	envErr := godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		newLogger(true).Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Development)
	mines.Log = logger.With("component", "mines")
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warn("failed to read .env", "error", envErr)
	}
	logger.Debug("config", "config", cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx)
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	jwt, err := config.NewJWT(cfg.TokenLifetime.Duration)
	if errors.Is(err, config.ErrNoKeys) {
		logger.Warn("no JWT keys configured, session tokens will not survive a restart")
		jwt, err = config.NewEphemeralJWT(cfg.TokenLifetime.Duration)
	}
	if err != nil {
		logger.Error("failed to read jwt config", "error", err)
		os.Exit(1)
	}

	if err := app.New(logger, cfg, jwt).Start(ctx); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
