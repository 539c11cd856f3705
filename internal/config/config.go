package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const appName = "semplan"

type Config struct {
	Server    ServerConfig
	API       APIConfig
	Storage   StorageConfig
	Log       LogConfig
	Planner   PlannerConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port int
	// AllowedOrigins is a comma-separated list of CORS origins.
	AllowedOrigins string
}

type APIConfig struct {
	BaseURL string
	Timeout string
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

type PlannerConfig struct {
	DefaultMinSearchVolume int
}

type TelemetryConfig struct {
	// OTLPEndpoint is the host:port of an OTLP gRPC collector. Empty
	// disables trace export.
	OTLPEndpoint string
	SampleRatio  float64
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           4000,
			AllowedOrigins: "http://localhost:5173,http://localhost:3000",
		},
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "30s",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Planner: PlannerConfig{
			DefaultMinSearchVolume: 100,
		},
		Telemetry: TelemetryConfig{
			SampleRatio: 1,
		},
	}
}

// Load builds the configuration from, in increasing precedence: defaults,
// the JSON file at $XDG_CONFIG_HOME/semplan/config.json, and SEMPLAN_*
// environment variables. A .env file in the working directory is loaded
// into the environment first; variables already set are not overridden.
func Load() (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}
	return loadWith(newFileBackend(configFilePath()))
}

func loadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", strings.Join(files, ", "), err)
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}
	if c.API.BaseURL == "" {
		return errors.New("missing required config: api.base_url")
	}
	if _, err := time.ParseDuration(c.API.Timeout); err != nil {
		return fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Planner.DefaultMinSearchVolume < 0 {
		return fmt.Errorf("invalid planner.default_min_search_volume %d: must not be negative", c.Planner.DefaultMinSearchVolume)
	}
	if r := c.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("invalid telemetry.sample_ratio %v: must be between 0 and 1", r)
	}
	return nil
}

// APITimeout returns the parsed remote API timeout.
func (c Config) APITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Origins returns the configured CORS origins.
func (c Config) Origins() []string {
	var out []string
	for o := range strings.SplitSeq(c.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log.level %q: must be debug, info, warn or error", s)
}
