package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/i474232898/weather-now/internal/weather"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PREFERENCES_BACKEND", "")
	t.Setenv("LOCATION_LATITUDE", "")
	t.Setenv("LOCATION_LONGITUDE", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPTimeout != 60*time.Second {
		t.Fatalf("expected 60s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.PreferencesBackend != "memory" {
		t.Fatalf("expected memory backend, got %s", cfg.PreferencesBackend)
	}
	if cfg.IconCacheCapacity != 20 {
		t.Fatalf("expected icon capacity 20, got %d", cfg.IconCacheCapacity)
	}
	if cfg.Location.Coordinate != nil {
		t.Fatal("expected no static coordinate")
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("expected kafka disabled, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PREFERENCES_BACKEND", "SQLite")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("LOCATION_AUTHORIZATION", "authorized_when_in_use")
	t.Setenv("LOCATION_LATITUDE", "33.02")
	t.Setenv("LOCATION_LONGITUDE", "-96.7")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PreferencesBackend != "sqlite" {
		t.Fatalf("expected sqlite, got %s", cfg.PreferencesBackend)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("expected 5s, got %s", cfg.HTTPTimeout)
	}
	if cfg.Location.InitialStatus != weather.AuthorizationAuthorized {
		t.Fatalf("expected authorized, got %s", cfg.Location.InitialStatus)
	}
	if c := cfg.Location.Coordinate; c == nil || c.Latitude != 33.02 || c.Longitude != -96.7 {
		t.Fatalf("unexpected coordinate %+v", c)
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("expected 2 brokers, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"preferences backend", "PREFERENCES_BACKEND", "postgres"},
		{"location backend", "LOCATION_BACKEND", "gps"},
		{"authorization", "LOCATION_AUTHORIZATION", "maybe"},
		{"timeout", "HTTP_TIMEOUT", "soon"},
		{"rate", "FETCH_RATE_LIMIT_RPS", "-1"},
		{"latitude", "LOCATION_LATITUDE", "north"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.val)
			}
		})
	}
}

func TestFileSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.env")
	if err := os.WriteFile(path, []byte("openWeatherMapKey=abc123\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	key, err := FileSecrets{Path: path}.Secret(weather.SecretKeyName)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "abc123" {
		t.Fatalf("expected abc123, got %q", key)
	}

	if _, err := (FileSecrets{Path: path}).Secret("otherKey"); !errors.Is(err, weather.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for missing name, got %v", err)
	}
	if _, err := (FileSecrets{Path: filepath.Join(t.TempDir(), "absent")}).Secret(weather.SecretKeyName); !errors.Is(err, weather.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for missing file, got %v", err)
	}
}

func TestEnvSecrets(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "from-env")

	cfg := &AppConfig{}
	key, err := cfg.Secrets().Secret(weather.SecretKeyName)
	if err != nil || key != "from-env" {
		t.Fatalf("expected from-env, got %q (%v)", key, err)
	}

	if _, err := (EnvSecrets{}).Secret(weather.SecretKeyName); !errors.Is(err, weather.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PREFERENCES_BACKEND=redis\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	chdir(t, dir)
	t.Setenv("PREFERENCES_BACKEND", "")
	os.Unsetenv("PREFERENCES_BACKEND")

	if err := LoadDotenv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PreferencesBackend != "redis" {
		t.Fatalf("expected redis from .env, got %s", cfg.PreferencesBackend)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	if err := LoadDotenv(); err == nil {
		t.Fatal("expected an error without a .env file")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
