package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
)

func (k valueKind) String() string {
	switch k {
	case kindInt:
		return "integer"
	case kindFloat:
		return "number"
	default:
		return "string"
	}
}

func (k valueKind) parse(raw string) (any, error) {
	switch k {
	case kindInt:
		i, err := strconv.Atoi(strings.TrimSpace(raw))
		return i, err
	case kindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err == nil && (math.IsNaN(f) || math.IsInf(f, 0)) {
			err = fmt.Errorf("%q is not finite", raw)
		}
		return f, err
	default:
		return raw, nil
	}
}

type keySpec struct {
	key     string
	kind    valueKind
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

func (s keySpec) parse(raw string) (any, error) {
	v, err := s.kind.parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value for %s: %w", s.kind, s.key, err)
	}
	return v, nil
}

var specs = []keySpec{
	{
		key: "server.port", kind: kindInt, env: "SEMPLAN_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.allowed_origins", kind: kindString, env: "SEMPLAN_SERVER_ALLOWED_ORIGINS",
		apply:   func(cfg *Config, v any) { cfg.Server.AllowedOrigins = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.AllowedOrigins },
	},
	{
		key: "api.base_url", kind: kindString, env: "SEMPLAN_API_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.API.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.API.BaseURL },
	},
	{
		key: "api.timeout", kind: kindString, env: "SEMPLAN_API_TIMEOUT",
		apply:   func(cfg *Config, v any) { cfg.API.Timeout = v.(string) },
		extract: func(cfg Config) any { return cfg.API.Timeout },
	},
	{
		key: "storage.data_dir", kind: kindString, env: "SEMPLAN_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", kind: kindString, env: "SEMPLAN_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "planner.default_min_search_volume", kind: kindInt, env: "SEMPLAN_PLANNER_DEFAULT_MIN_SEARCH_VOLUME",
		apply:   func(cfg *Config, v any) { cfg.Planner.DefaultMinSearchVolume = v.(int) },
		extract: func(cfg Config) any { return cfg.Planner.DefaultMinSearchVolume },
	},
	{
		key: "telemetry.otlp_endpoint", kind: kindString, env: "SEMPLAN_TELEMETRY_OTLP_ENDPOINT",
		apply:   func(cfg *Config, v any) { cfg.Telemetry.OTLPEndpoint = v.(string) },
		extract: func(cfg Config) any { return cfg.Telemetry.OTLPEndpoint },
	},
	{
		key: "telemetry.sample_ratio", kind: kindFloat, env: "SEMPLAN_TELEMETRY_SAMPLE_RATIO",
		apply:   func(cfg *Config, v any) { cfg.Telemetry.SampleRatio = v.(float64) },
		extract: func(cfg Config) any { return cfg.Telemetry.SampleRatio },
	},
}

func lookupKey(key string) (keySpec, error) {
	for _, s := range specs {
		if s.key == key {
			return s, nil
		}
	}
	return keySpec{}, fmt.Errorf("unknown config key: %q", key)
}

// applyBackend fails on a stored value that does not parse, since the file
// was written by hand or by an older version.
func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		raw, ok, err := b.Get(s.key)
		if err != nil {
			return fmt.Errorf("reading %s: %w", s.key, err)
		}
		if !ok {
			continue
		}
		v, err := s.parse(raw)
		if err != nil {
			return err
		}
		s.apply(cfg, v)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		v, err := s.kind.parse(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not parse %s from env var %s=%q: %v. Using default value.\n", s.kind, s.env, raw, err)
			continue
		}
		s.apply(cfg, v)
	}
}
