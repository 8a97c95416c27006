//go:build integration

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"instructorhub/internal/onboarding/models"
	"instructorhub/pkg/platform/sentinel"
	"instructorhub/pkg/testutil/containers"
)

type PostgresTxSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	stores Stores
	tx     *PostgresTx
	ctx    context.Context
	now    time.Time
}

func TestPostgresTxSuite(t *testing.T) {
	suite.Run(t, new(PostgresTxSuite))
}

func (s *PostgresTxSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.stores = NewPostgresStores(s.pg.DB)
	s.tx = NewPostgresTx(s.pg.DB, s.stores, 5*time.Second)
	s.ctx = context.Background()
	s.now = time.Now().UTC().Truncate(time.Millisecond)
}

func (s *PostgresTxSuite) SetupTest() {
	s.pg.Truncate(s.T(), "setup_credentials", "payout_destinations", "instructor_profiles")
}

func (s *PostgresTxSuite) TestRollbackKeepsCredentialUnused() {
	s.Require().NoError(s.stores.Credentials.Create(s.ctx, &models.SetupCredential{
		Token: "rb", Email: "a@b.com", Purpose: models.PurposeInstructorSetup,
		CreatedAt: s.now, ExpiresAt: s.now.Add(time.Hour),
	}))

	boom := errors.New("profile write failed")
	err := s.tx.RunInTx(s.ctx, func(ctx context.Context, st Stores) error {
		if err := st.Credentials.MarkUsed(ctx, "rb", s.now); err != nil {
			return err
		}
		if err := st.Payouts.Upsert(ctx, models.PayoutDestination{
			OwnerID: "subj", SubaccountCode: "ACCT_rb", RevenueSharePercent: 90,
			Status: models.DestinationStatusActive, CreatedAt: s.now, UpdatedAt: s.now,
		}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	cred, err := s.stores.Credentials.FindByToken(s.ctx, "rb")
	s.Require().NoError(err)
	s.False(cred.Used)
	_, err = s.stores.Payouts.FindByOwner(s.ctx, "subj")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresTxSuite) TestUpsertsAreIdempotent() {
	dest := models.PayoutDestination{
		OwnerID: "subj", SubaccountCode: "ACCT_1", SubaccountID: 7, BankCode: "057",
		AccountNumber: "0123456789", AccountName: "Jane Doe", BusinessName: "Jane Teaches",
		RevenueSharePercent: 90, Status: models.DestinationStatusActive, CreatedAt: s.now, UpdatedAt: s.now,
	}
	s.Require().NoError(s.stores.Payouts.Upsert(s.ctx, dest))
	dest.BankCode = "058"
	dest.CreatedAt = s.now.Add(time.Hour)
	s.Require().NoError(s.stores.Payouts.Upsert(s.ctx, dest))

	all, err := s.stores.Payouts.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal("058", all[0].BankCode)
	s.True(all[0].CreatedAt.Equal(s.now))

	profile := models.InstructorProfile{
		SubjectID: "subj", Email: "a@b.com", Role: models.RoleInstructor,
		ProfileStatus: models.ProfileStatusActive, SubaccountCode: "ACCT_1", UpdatedAt: s.now,
	}
	s.Require().NoError(s.stores.Profiles.Upsert(s.ctx, profile))
	s.Require().NoError(s.stores.Profiles.Upsert(s.ctx, profile))
	got, err := s.stores.Profiles.FindBySubject(s.ctx, "subj")
	s.Require().NoError(err)
	s.Equal(models.RoleInstructor, got.Role)
}
