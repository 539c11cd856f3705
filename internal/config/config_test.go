package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// memBackend is an in-memory ConfigBackend.
type memBackend struct {
	data map[string]any
}

func newMemBackend(kv map[string]any) *memBackend {
	if kv == nil {
		kv = map[string]any{}
	}
	return &memBackend{data: kv}
}

func (m *memBackend) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	if !ok {
		return "", false, nil
	}
	return fmt.Sprint(v), true, nil
}

func (m *memBackend) Set(key string, val any) error { m.data[key] = val; return nil }
func (m *memBackend) Delete(key string) error        { delete(m.data, key); return nil }

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

// TestDefaults verifies all default values are applied with an empty backend.
func TestDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	cfg, err := loadWith(newMemBackend(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://localhost:8000")
	}
	if cfg.APITimeout() != 30*time.Second {
		t.Errorf("APITimeout() = %v, want 30s", cfg.APITimeout())
	}
	if cfg.Storage.DataDir != "/tmp/xdg-data/semplan" {
		t.Errorf("Storage.DataDir = %q, want /tmp/xdg-data/semplan", cfg.Storage.DataDir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Planner.DefaultMinSearchVolume != 100 {
		t.Errorf("Planner.DefaultMinSearchVolume = %d, want 100", cfg.Planner.DefaultMinSearchVolume)
	}
	if cfg.Telemetry.OTLPEndpoint != "" || cfg.Telemetry.SampleRatio != 1 {
		t.Errorf("Telemetry = %+v, want export disabled with ratio 1", cfg.Telemetry)
	}
	if diff := cmp.Diff([]string{"http://localhost:5173", "http://localhost:3000"}, cfg.Origins()); diff != "" {
		t.Errorf("Origins mismatch (-want +got):\n%s", diff)
	}
}

// TestBackendValues verifies backend values replace defaults.
func TestBackendValues(t *testing.T) {
	clearEnv(t)

	cfg, err := loadWith(newMemBackend(map[string]any{
		"server.port":  4321,
		"api.base_url": "https://planner.example.com",
		"api.timeout":  "5s",
		"log.level":    "debug",

		"telemetry.otlp_endpoint": "collector:4317",
		"telemetry.sample_ratio":  0.25,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4321 {
		t.Errorf("Server.Port = %d, want 4321", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "https://planner.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.APITimeout() != 5*time.Second {
		t.Errorf("APITimeout() = %v, want 5s", cfg.APITimeout())
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	want := TelemetryConfig{OTLPEndpoint: "collector:4317", SampleRatio: 0.25}
	if diff := cmp.Diff(want, cfg.Telemetry); diff != "" {
		t.Errorf("Telemetry mismatch (-want +got):\n%s", diff)
	}
}

func TestBackendValueDoesNotParse(t *testing.T) {
	clearEnv(t)
	_, err := loadWith(newMemBackend(map[string]any{"server.port": "forty"}))
	if err == nil || !strings.Contains(err.Error(), "invalid integer value for server.port") {
		t.Errorf("err = %v, want invalid integer error", err)
	}
}

// TestEnvOverride verifies that environment variables override backend values.
func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEMPLAN_API_BASE_URL", "http://env:9000")
	t.Setenv("SEMPLAN_SERVER_PORT", "5000")

	cfg, err := loadWith(newMemBackend(map[string]any{
		"api.base_url": "http://file:8000",
		"server.port":  4321,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://env:9000" {
		t.Errorf("API.BaseURL = %q, want env value", cfg.API.BaseURL)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
}

// TestEnvInvalidNumberIgnored verifies an unparsable numeric env var keeps the previous value.
func TestEnvInvalidNumberIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEMPLAN_SERVER_PORT", "not-a-port")
	t.Setenv("SEMPLAN_TELEMETRY_SAMPLE_RATIO", "NaN")

	cfg, err := loadWith(newMemBackend(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Telemetry.SampleRatio != 1 {
		t.Errorf("Telemetry.SampleRatio = %v, want 1", cfg.Telemetry.SampleRatio)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		kv   map[string]any
		want string
	}{
		{"port out of range", map[string]any{"server.port": 70000}, "server.port"},
		{"bad timeout", map[string]any{"api.timeout": "soon"}, "api.timeout"},
		{"bad level", map[string]any{"log.level": "loud"}, "log.level"},
		{"empty base url", map[string]any{"api.base_url": ""}, "api.base_url"},
		{"negative volume", map[string]any{"planner.default_min_search_volume": -1}, "planner.default_min_search_volume"},
		{"sample ratio above one", map[string]any{"telemetry.sample_ratio": 1.5}, "telemetry.sample_ratio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := loadWith(newMemBackend(tt.kv))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %s", err, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFileBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "semplan", "config.json")

	b := newFileBackend(path)
	if err := setKeyIn(b, "server.port", "4555"); err != nil {
		t.Fatalf("setKeyIn: %v", err)
	}
	if err := setKeyIn(b, "api.base_url", "http://remote:8000"); err != nil {
		t.Fatalf("setKeyIn: %v", err)
	}

	if err := setKeyIn(b, "telemetry.sample_ratio", "0.5"); err != nil {
		t.Fatalf("setKeyIn: %v", err)
	}

	reloaded := newFileBackend(path)
	for key, want := range map[string]string{
		"server.port":            "4555",
		"api.base_url":           "http://remote:8000",
		"telemetry.sample_ratio": "0.5",
	} {
		got, ok, err := reloaded.Get(key)
		if err != nil || !ok || got != want {
			t.Errorf("Get(%s) = %q, %v, %v; want %q", key, got, ok, err, want)
		}
	}

	cfg, err := loadWith(reloaded)
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.Server.Port != 4555 || cfg.Telemetry.SampleRatio != 0.5 {
		t.Errorf("loaded port %d ratio %v, want 4555 and 0.5", cfg.Server.Port, cfg.Telemetry.SampleRatio)
	}

	if err := unsetKeyIn(reloaded, "server.port"); err != nil {
		t.Fatalf("unsetKeyIn: %v", err)
	}
	if _, ok, _ := newFileBackend(path).Get("server.port"); ok {
		t.Error("server.port still present after unset")
	}
}

func TestFileBackend_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	b := newFileBackend(path)
	if _, ok, _ := b.Get("api.base_url"); ok {
		t.Error("malformed file produced a value")
	}
}

func TestSetKey_Errors(t *testing.T) {
	b := newMemBackend(nil)
	if err := setKeyIn(b, "server.port", "abc"); err == nil {
		t.Error("expected error for non-integer port")
	}
	if err := setKeyIn(b, "telemetry.sample_ratio", "Inf"); err == nil {
		t.Error("expected error for non-finite ratio")
	}
	if len(b.data) != 0 {
		t.Errorf("rejected values were stored: %v", b.data)
	}
	if err := setKeyIn(b, "nope.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := unsetKeyIn(b, "nope.key"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestSetKey_UsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if err := SetKey("log.level", "debug"); err != nil {
		t.Fatalf("SetKey: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "semplan", "config.json"))
	if err != nil {
		t.Fatalf("reading config file: %v", err)
	}
	if !strings.Contains(string(data), `"log.level": "debug"`) {
		t.Errorf("config file = %s", data)
	}
	if err := UnsetKey("log.level"); err != nil {
		t.Fatalf("UnsetKey: %v", err)
	}
}

func TestShowAllAndValidKeys(t *testing.T) {
	cfg := defaults()
	infos := ShowAll(cfg)
	keys := ValidKeys()
	if len(infos) != len(keys) {
		t.Fatalf("ShowAll = %d entries, ValidKeys = %d", len(infos), len(keys))
	}
	for i, info := range infos {
		if info.Key != keys[i] {
			t.Errorf("entry %d key = %q, want %q", i, info.Key, keys[i])
		}
		if !strings.HasPrefix(info.EnvVar, "SEMPLAN_") {
			t.Errorf("%s env = %q, want SEMPLAN_ prefix", info.Key, info.EnvVar)
		}
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SEMPLAN_API_BASE_URL=http://dotenv:8000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// clearEnv set the var to "", which godotenv treats as already present.
	os.Unsetenv("SEMPLAN_API_BASE_URL")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	cfg, err := loadWith(newMemBackend(nil))
	if err != nil {
		t.Fatalf("loadWith: %v", err)
	}
	if cfg.API.BaseURL != "http://dotenv:8000" {
		t.Errorf("API.BaseURL = %q, want dotenv value", cfg.API.BaseURL)
	}

	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}
