package credential

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"instructorhub/internal/onboarding/models"
	"instructorhub/pkg/platform/sentinel"
)

// Error contract for every credential store:
//   - ErrNotFound when no credential has the token
//   - ErrAlreadyUsed when a conditional consume loses to an earlier one
//   - ErrSuperseded when a conditional consume targets a superseded credential
//   - wrapped infrastructure errors otherwise

// InMemoryStore keeps credentials in process for tests and single-node dev.
type InMemoryStore struct {
	mu    sync.RWMutex
	creds map[string]*models.SetupCredential
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{creds: make(map[string]*models.SetupCredential)}
}

func (s *InMemoryStore) Create(_ context.Context, cred *models.SetupCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[cred.Token]; exists {
		return fmt.Errorf("setup credential already exists: %w", sentinel.ErrConflict)
	}
	clone := *cred
	s.creds[cred.Token] = &clone
	return nil
}

func (s *InMemoryStore) FindByToken(_ context.Context, token string) (*models.SetupCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[token]
	if !ok {
		return nil, fmt.Errorf("setup credential not found: %w", sentinel.ErrNotFound)
	}
	clone := *cred
	return &clone, nil
}

// MarkUsed flips used from false to true. Only one caller can win.
func (s *InMemoryStore) MarkUsed(_ context.Context, token string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.creds[token]
	if !ok {
		return fmt.Errorf("setup credential not found: %w", sentinel.ErrNotFound)
	}
	if cred.Used {
		return fmt.Errorf("setup credential consumed: %w", sentinel.ErrAlreadyUsed)
	}
	if cred.SupersededAt != nil {
		return fmt.Errorf("setup credential replaced: %w", sentinel.ErrSuperseded)
	}
	cred.Used = true
	usedAt := now
	cred.UsedAt = &usedAt
	return nil
}

// SupersedeLive marks every unused, unsuperseded credential for email other
// than keep as superseded and returns how many changed.
func (s *InMemoryStore) SupersedeLive(_ context.Context, email, keep string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for token, cred := range s.creds {
		if token == keep || cred.Email != email || cred.Used || cred.SupersededAt != nil {
			continue
		}
		at := now
		cred.SupersededAt = &at
		n++
	}
	return n, nil
}

// FindLatestLive returns the most recently issued credential for email that
// is still redeemable at now.
func (s *InMemoryStore) FindLatestLive(_ context.Context, email string, now time.Time) (*models.SetupCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var live []*models.SetupCredential
	for _, cred := range s.creds {
		if cred.Email == email && cred.IsLive(now) {
			live = append(live, cred)
		}
	}
	if len(live) == 0 {
		return nil, fmt.Errorf("no live setup credential: %w", sentinel.ErrNotFound)
	}
	sort.Slice(live, func(i, j int) bool { return live[i].CreatedAt.After(live[j].CreatedAt) })
	clone := *live[0]
	return &clone, nil
}
