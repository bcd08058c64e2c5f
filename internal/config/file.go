package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Duration struct{ time.Duration }

// [Duration] implements [yaml.Marshaler]
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var v any
	if err := value.Decode(&v); err != nil {
		return err
	}
	switch value := v.(type) {
	case int:
		d.Duration = time.Duration(value) * time.Second
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		return err
	default:
		return errors.New("invalid duration")
	}
}

type Sessions struct {
	TTL           Duration `yaml:"ttl"`
	SweepInterval Duration `yaml:"sweep_interval"`
	MaxSessions   int      `yaml:"max_sessions"`
	MaxCells      int      `yaml:"max_cells"` // per board
}

type Server struct {
	Addr           string   `yaml:"addr"`
	BasePath       string   `yaml:"base_path"`
	Development    bool     `yaml:"development"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	TokenLifetime  Duration `yaml:"token_lifetime"`
	Sessions       Sessions `yaml:"sessions"`
}

func Default() *Server {
	return &Server{
		Addr:          ":8080",
		TokenLifetime: Duration{24 * time.Hour},
		Sessions: Sessions{
			TTL:           Duration{time.Hour},
			SweepInterval: Duration{time.Minute},
			MaxSessions:   10000,
			MaxCells:      250000,
		},
	}
}

// Load reads the YAML file at path on top of [Default] and then applies the
// APP_PORT, APP_BASE_PATH and DEVELOPMENT environment variables. An empty
// path skips the file.
func Load(path string) (*Server, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if port := Port(); port != "" {
		cfg.Addr = port
	}
	if basePath := BasePath(); basePath != "" {
		cfg.BasePath = basePath
	}
	if development, ok := Development(); ok {
		cfg.Development = development
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	switch {
	case c.Sessions.TTL.Duration <= 0:
		return fmt.Errorf("sessions.ttl must be positive")
	case c.Sessions.SweepInterval.Duration <= 0:
		return fmt.Errorf("sessions.sweep_interval must be positive")
	case c.Sessions.MaxSessions <= 0:
		return fmt.Errorf("sessions.max_sessions must be positive")
	case c.Sessions.MaxCells <= 0:
		return fmt.Errorf("sessions.max_cells must be positive")
	case c.TokenLifetime.Duration <= 0:
		return fmt.Errorf("token_lifetime must be positive")
	}
	return nil
}

// [Server] implements [slog.LogValuer]
func (c Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.Addr),
		slog.String("base_path", c.BasePath),
		slog.Bool("development", c.Development),
		slog.Any("allowed_origins", c.AllowedOrigins),
		slog.String("token_lifetime", c.TokenLifetime.String()),
		slog.String("session_ttl", c.Sessions.TTL.String()),
		slog.String("sweep_interval", c.Sessions.SweepInterval.String()),
		slog.Int("max_sessions", c.Sessions.MaxSessions),
		slog.Int("max_cells", c.Sessions.MaxCells),
	)
}
