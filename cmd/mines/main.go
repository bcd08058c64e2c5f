package main

import (
	"errors"
	"flag"
	"fmt"
	"hash/maphash"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/gridsweep/internal/config"
	"github.com/vancomm/gridsweep/internal/mines"
	"github.com/vancomm/gridsweep/internal/session"
)

var (
	log = logrus.New()

	difficulty string
	rows       int
	cols       int
	hazards    int
	seed       uint64
	logPath    string
)

func init() {
	flag.StringVar(&difficulty, "difficulty", "beginner", "beginner, intermediate, expert or custom")
	flag.StringVar(&difficulty, "d", "beginner", "difficulty (shorthand)")
	flag.IntVar(&rows, "rows", 0, "rows for a custom board")
	flag.IntVar(&cols, "cols", 0, "columns for a custom board")
	flag.IntVar(&hazards, "hazards", 0, "hazards for a custom board")
	flag.Uint64Var(&seed, "seed", 0, "random seed; 0 picks one")
	flag.StringVar(&logPath, "log", "", "write logs to this rotating file instead of stderr")
}

func setupLogging() error {
	logLevel := logrus.WarnLevel
	if development, _ := config.Development(); development {
		logLevel = logrus.DebugLevel
	}
	log.SetLevel(logLevel)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	if logPath != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   logPath,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Level:      logLevel,
			Formatter:  &logrus.TextFormatter{DisableColors: true},
		})
		if err != nil {
			return fmt.Errorf("unable to open log file: %w", err)
		}
		log.SetOutput(io.Discard)
		log.AddHook(hook)
	}

	// engine traces go through the same sink
	mines.Log = slog.New(slog.NewTextHandler(
		log.WriterLevel(logrus.DebugLevel),
		&slog.HandlerOptions{Level: slog.LevelDebug},
	))
	return nil
}

func resolveParams() (mines.GameParams, error) {
	d, err := mines.ParseDifficulty(difficulty)
	if err != nil {
		return mines.GameParams{}, err
	}
	if d != mines.Custom && (rows != 0 || cols != 0 || hazards != 0) {
		d = mines.Custom
	}
	return mines.Resolve(d, mines.GameParams{Rows: rows, Cols: cols, HazardCount: hazards})
}

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "unable to read .env:", err)
	}

	if err := setupLogging(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	params, err := resolveParams()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}
	log.WithFields(logrus.Fields{
		"params": params.Seed(),
		"seed":   seed,
	}).Info("new game")

	s, err := session.New(params, rand.New(rand.NewPCG(seed, seed)))
	if err != nil {
		log.Fatal("unable to create game: ", err)
	}

	state, err := play(os.Stdin, os.Stdout, s)
	if err != nil {
		log.Error("console: ", err)
		os.Exit(1)
	}
	log.WithField("state", state).Info("game over")
}
