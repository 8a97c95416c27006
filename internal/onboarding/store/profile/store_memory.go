package profile

import (
	"context"
	"fmt"
	"sync"

	"instructorhub/internal/onboarding/models"
	"instructorhub/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]models.InstructorProfile
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[string]models.InstructorProfile)}
}

func (s *InMemoryStore) Upsert(_ context.Context, p models.InstructorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.SubjectID] = p
	return nil
}

func (s *InMemoryStore) FindBySubject(_ context.Context, subjectID string) (*models.InstructorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[subjectID]
	if !ok {
		return nil, fmt.Errorf("instructor profile not found: %w", sentinel.ErrNotFound)
	}
	return &p, nil
}
