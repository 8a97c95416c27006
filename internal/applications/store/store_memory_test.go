package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"instructorhub/internal/applications/models"
	"instructorhub/pkg/platform/sentinel"
)

type ApplicationStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestApplicationStoreSuite(t *testing.T) {
	suite.Run(t, new(ApplicationStoreSuite))
}

func (s *ApplicationStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
}

func (s *ApplicationStoreSuite) create(id string, submittedAt time.Time) *models.Application {
	app := &models.Application{
		ID:             id,
		FullName:       "Applicant " + id,
		Email:          id + "@example.com",
		Expertise:      "Go",
		TeachingFormat: models.DefaultTeachingFormat,
		Status:         models.StatusPending,
		SubmittedAt:    submittedAt,
	}
	s.Require().NoError(s.store.Create(s.ctx, app, models.NewApplicationNotice("n-"+id, app)))
	return app
}

func (s *ApplicationStoreSuite) TestCreateAndFind() {
	s.create("a1", s.now)

	found, err := s.store.FindByID(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal("Applicant a1", found.FullName)

	s.ErrorIs(s.store.Create(s.ctx, found, models.AdminNotification{}), sentinel.ErrConflict)

	_, err = s.store.FindByID(s.ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ApplicationStoreSuite) TestListOrderAndFilter() {
	s.create("old", s.now)
	s.create("new", s.now.Add(time.Hour))
	_, err := s.store.Decide(s.ctx, "old", models.StatusRejected, "incomplete", s.now)
	s.Require().NoError(err)

	all, err := s.store.List(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("new", all[0].ID)

	pending, err := s.store.List(s.ctx, models.StatusPending)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("new", pending[0].ID)
}

func (s *ApplicationStoreSuite) TestDecideOnce() {
	s.create("a1", s.now)

	decided, err := s.store.Decide(s.ctx, "a1", models.StatusApproved, "", s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, decided.Status)
	s.Require().NotNil(decided.DecidedAt)

	_, err = s.store.Decide(s.ctx, "a1", models.StatusRejected, "changed mind", s.now)
	s.ErrorIs(err, sentinel.ErrConflict)

	found, err := s.store.FindByID(s.ctx, "a1")
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, found.Status)

	_, err = s.store.Decide(s.ctx, "missing", models.StatusApproved, "", s.now)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ApplicationStoreSuite) TestNotificationsNewestFirst() {
	s.create("a1", s.now)
	s.create("a2", s.now.Add(time.Minute))

	feed, err := s.store.ListNotifications(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(feed, 2)
	s.Equal("a2", feed[0].ApplicationID)
	s.Equal("Applicant a2 has applied to become an instructor", feed[0].Message)
}
