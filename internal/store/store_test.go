package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/i474232898/weather-now/internal/weather"
)

func testPreferenceStore(t *testing.T, s weather.PreferenceStore) {
	t.Helper()
	ctx := context.Background()

	city, err := s.PreferredLocation(ctx)
	if err != nil {
		t.Fatalf("read empty store: %v", err)
	}
	if city != "" {
		t.Fatalf("expected no preferred city, got %q", city)
	}

	if err := s.SetPreferredLocation(ctx, "Denver"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetPreferredLocation(ctx, "Austin"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if city, _ := s.PreferredLocation(ctx); city != "Austin" {
		t.Fatalf("expected Austin, got %q", city)
	}

	// Clearing stores an empty value rather than deleting the key.
	if err := s.SetPreferredLocation(ctx, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if city, _ := s.PreferredLocation(ctx); city != "" {
		t.Fatalf("expected cleared city, got %q", city)
	}
}

func TestMemoryStore(t *testing.T) {
	testPreferenceStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLite(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	testPreferenceStore(t, s)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SetPreferredLocation(ctx, "Boise"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	reopened, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if city, _ := reopened.PreferredLocation(ctx); city != "Boise" {
		t.Fatalf("expected Boise after reopen, got %q", city)
	}
}

func TestConnectRedisInvalidURL(t *testing.T) {
	if _, err := ConnectRedis(context.Background(), "not-a-redis-url"); err == nil {
		t.Fatal("expected an error for an invalid redis url")
	}
}
