// Package store persists instructor applications and the admin notification
// feed. Both backends satisfy the same method set.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"instructorhub/internal/applications/models"
	"instructorhub/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu            sync.RWMutex
	applications  map[string]models.Application
	notifications []models.AdminNotification
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{applications: make(map[string]models.Application)}
}

// Create stores the application together with its feed entry.
func (s *InMemoryStore) Create(_ context.Context, app *models.Application, notice models.AdminNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[app.ID]; ok {
		return fmt.Errorf("application %s exists: %w", app.ID, sentinel.ErrConflict)
	}
	s.applications[app.ID] = *app
	s.notifications = append(s.notifications, notice)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, fmt.Errorf("application not found: %w", sentinel.ErrNotFound)
	}
	return &app, nil
}

// List returns applications newest first, filtered by status when set.
func (s *InMemoryStore) List(_ context.Context, status models.Status) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Application, 0, len(s.applications))
	for _, app := range s.applications {
		if status != "" && app.Status != status {
			continue
		}
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// Decide moves a pending application to status. A decided application is
// left untouched and ErrConflict is returned.
func (s *InMemoryStore) Decide(_ context.Context, id string, status models.Status, reason string, at time.Time) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return nil, fmt.Errorf("application not found: %w", sentinel.ErrNotFound)
	}
	if app.Decided() {
		return nil, fmt.Errorf("application already %s: %w", app.Status, sentinel.ErrConflict)
	}
	app.Status = status
	app.DecisionReason = reason
	app.DecidedAt = &at
	s.applications[id] = app
	return &app, nil
}

// ListNotifications returns the feed newest first.
func (s *InMemoryStore) ListNotifications(_ context.Context) ([]models.AdminNotification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AdminNotification, len(s.notifications))
	for i, n := range s.notifications {
		out[len(out)-1-i] = n
	}
	return out, nil
}
