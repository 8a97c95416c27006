package payout

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"instructorhub/internal/onboarding/models"
	"instructorhub/pkg/platform/sentinel"
)

// InMemoryStore keeps one payout destination per owner.
type InMemoryStore struct {
	mu    sync.RWMutex
	dests map[string]models.PayoutDestination
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{dests: make(map[string]models.PayoutDestination)}
}

// Upsert inserts or replaces the owner's destination. CreatedAt of an
// existing destination is preserved.
func (s *InMemoryStore) Upsert(_ context.Context, dest models.PayoutDestination) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.dests[dest.OwnerID]; ok {
		dest.CreatedAt = existing.CreatedAt
	}
	s.dests[dest.OwnerID] = dest
	return nil
}

func (s *InMemoryStore) FindByOwner(_ context.Context, ownerID string) (*models.PayoutDestination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dest, ok := s.dests[ownerID]
	if !ok {
		return nil, fmt.Errorf("payout destination not found: %w", sentinel.ErrNotFound)
	}
	return &dest, nil
}

// List returns all destinations ordered by owner id.
func (s *InMemoryStore) List(_ context.Context) ([]models.PayoutDestination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PayoutDestination, 0, len(s.dests))
	for _, d := range s.dests {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })
	return out, nil
}
