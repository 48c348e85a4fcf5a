package store

import (
	"context"
	"sync"

	"github.com/i474232898/weather-now/internal/weather"
)

// PreferredLocationKey is the fixed key the preferred city is stored under.
const PreferredLocationKey = "defaultLocation"

// MemoryStore is a concurrency-safe in-memory preference store. Values do not
// survive a restart.
type MemoryStore struct {
	mu sync.RWMutex

	// key: preference key, value: stored string
	data map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
	}
}

// PreferredLocation returns the stored city, or "" when none is saved.
func (s *MemoryStore) PreferredLocation(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[PreferredLocationKey], nil
}

// SetPreferredLocation overwrites the stored city.
func (s *MemoryStore) SetPreferredLocation(ctx context.Context, city string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[PreferredLocationKey] = city
	return nil
}

var _ weather.PreferenceStore = (*MemoryStore)(nil)
