package memory

import (
	"context"
	"sync"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/storage"
)

// IdentifierStore is an in-memory implementation of storage.IdentifierStore.
type IdentifierStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ProfileIdentifier // keyed by platform + handle
}

// NewIdentifierStore creates a new in-memory identifier store.
func NewIdentifierStore() *IdentifierStore {
	return &IdentifierStore{
		data: make(map[string]*domain.ProfileIdentifier),
	}
}

// Put stores or replaces the identifier for (platform, handle).
func (s *IdentifierStore) Put(_ context.Context, platform domain.Platform, handle string, id *domain.ProfileIdentifier) error {
	if !platform.Valid() || handle == "" || id.Empty() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutation
	idCopy := *id
	s.data[key(platform, handle)] = &idCopy
	return nil
}

// Get retrieves the identifier for (platform, handle). Returns ErrNotFound
// if no entry exists.
func (s *IdentifierStore) Get(_ context.Context, platform domain.Platform, handle string) (*domain.ProfileIdentifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.data[key(platform, handle)]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy
	idCopy := *id
	return &idCopy, nil
}

func key(platform domain.Platform, handle string) string {
	return string(platform) + "/" + handle
}

// Verify interface compliance at compile time.
var _ storage.IdentifierStore = (*IdentifierStore)(nil)
