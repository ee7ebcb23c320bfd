package cache

import (
	"context"
	"sync"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
)

// Ensure InMemorySeenStore implements SeenStore
var _ appaccounting.SeenStore = (*InMemorySeenStore)(nil)

// InMemorySeenStore remembers ingested exchange references in a map.
// Suitable for single-instance deployments and testing.
type InMemorySeenStore struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewInMemorySeenStore creates a new in-memory seen store
func NewInMemorySeenStore() *InMemorySeenStore {
	return &InMemorySeenStore{seen: make(map[string]struct{})}
}

// IsSeen checks whether an exchange reference was already ingested
func (s *InMemorySeenStore) IsSeen(ctx context.Context, externalRef string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[externalRef]
	return ok, nil
}

// MarkSeen remembers an exchange reference
func (s *InMemorySeenStore) MarkSeen(ctx context.Context, externalRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[externalRef] = struct{}{}
	return nil
}
