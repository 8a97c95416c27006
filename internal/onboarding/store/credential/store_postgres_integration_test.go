//go:build integration

package credential

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"instructorhub/internal/onboarding/models"
	"instructorhub/pkg/platform/sentinel"
	"instructorhub/pkg/testutil/containers"
)

type PostgresCredentialStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
	now   time.Time
}

func TestPostgresCredentialStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresCredentialStoreSuite))
}

func (s *PostgresCredentialStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
	s.now = time.Now().UTC().Truncate(time.Millisecond)
}

func (s *PostgresCredentialStoreSuite) SetupTest() {
	s.pg.Truncate(s.T(), "setup_credentials")
}

func (s *PostgresCredentialStoreSuite) create(token, email string, createdAt time.Time) {
	s.Require().NoError(s.store.Create(s.ctx, &models.SetupCredential{
		Token:       token,
		Email:       email,
		DisplayName: "Jane",
		Purpose:     models.PurposeInstructorSetup,
		CreatedAt:   createdAt,
		ExpiresAt:   createdAt.Add(7 * 24 * time.Hour),
	}))
}

func (s *PostgresCredentialStoreSuite) TestRoundTrip() {
	s.create("tok-pg", "a@b.com", s.now)
	found, err := s.store.FindByToken(s.ctx, "tok-pg")
	s.Require().NoError(err)
	s.Equal("a@b.com", found.Email)
	s.Equal(models.PurposeInstructorSetup, found.Purpose)
	s.False(found.Used)
	s.Nil(found.UsedAt)

	_, err = s.store.FindByToken(s.ctx, "nope")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresCredentialStoreSuite) TestConditionalConsume() {
	s.create("race-pg", "a@b.com", s.now)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.store.MarkUsed(s.ctx, "race-pg", s.now) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())
	s.ErrorIs(s.store.MarkUsed(s.ctx, "race-pg", s.now), sentinel.ErrAlreadyUsed)
	s.ErrorIs(s.store.MarkUsed(s.ctx, "ghost", s.now), sentinel.ErrNotFound)
}

func (s *PostgresCredentialStoreSuite) TestSupersede() {
	s.create("first", "x@y.com", s.now.Add(-time.Hour))
	s.create("second", "x@y.com", s.now)

	n, err := s.store.SupersedeLive(s.ctx, "x@y.com", "second", s.now)
	s.Require().NoError(err)
	s.Equal(1, n)
	s.ErrorIs(s.store.MarkUsed(s.ctx, "first", s.now), sentinel.ErrSuperseded)

	latest, err := s.store.FindLatestLive(s.ctx, "x@y.com", s.now)
	s.Require().NoError(err)
	s.Equal("second", latest.Token)
}
