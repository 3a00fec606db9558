package memory

import (
	"context"
	"sync"

	"superset-embed/internal/features/superset/domain"
)

// Store implements domain.ParameterStore in process memory
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates a store seeded with the given values
func NewStore(seed map[string]string) *Store {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &Store{values: values}
}

var _ domain.ParameterStore = (*Store)(nil)

// GetParams returns the requested keys that are present
func (s *Store) GetParams(_ context.Context, keys []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	selected := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := s.values[key]; ok {
			selected[key] = value
		}
	}
	return selected, nil
}

// SetParams overwrites the given keys
func (s *Store) SetParams(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range values {
		s.values[k] = v
	}
	return nil
}
