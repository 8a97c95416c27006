package service

import (
	"context"
	"time"

	"instructorhub/internal/identity"
	"instructorhub/internal/onboarding/models"
	"instructorhub/internal/onboarding/store"
	dErrors "instructorhub/pkg/domain-errors"
	txcontext "instructorhub/pkg/platform/tx"
)

// Store and directory calls made outside RunInTx each get their own deadline.
// Calls inside a unit of work are bounded by the transaction instead.

func boundStores(stores store.Stores, d time.Duration) store.Stores {
	return store.Stores{
		Credentials: boundedCredentials{next: stores.Credentials, timeout: d},
		Payouts:     boundedPayouts{next: stores.Payouts, timeout: d},
		Profiles:    boundedProfiles{next: stores.Profiles, timeout: d},
	}
}

type boundedCredentials struct {
	next    store.CredentialStore
	timeout time.Duration
}

func (b boundedCredentials) Create(ctx context.Context, cred *models.SetupCredential) error {
	return txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) error {
		return b.next.Create(ctx, cred)
	})
}

func (b boundedCredentials) FindByToken(ctx context.Context, token string) (*models.SetupCredential, error) {
	var cred *models.SetupCredential
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		cred, err = b.next.FindByToken(ctx, token)
		return err
	})
	return cred, err
}

func (b boundedCredentials) MarkUsed(ctx context.Context, token string, now time.Time) error {
	return txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) error {
		return b.next.MarkUsed(ctx, token, now)
	})
}

func (b boundedCredentials) SupersedeLive(ctx context.Context, email, keep string, now time.Time) (int, error) {
	var n int
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		n, err = b.next.SupersedeLive(ctx, email, keep, now)
		return err
	})
	return n, err
}

func (b boundedCredentials) FindLatestLive(ctx context.Context, email string, now time.Time) (*models.SetupCredential, error) {
	var cred *models.SetupCredential
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		cred, err = b.next.FindLatestLive(ctx, email, now)
		return err
	})
	return cred, err
}

type boundedPayouts struct {
	next    store.PayoutStore
	timeout time.Duration
}

func (b boundedPayouts) Upsert(ctx context.Context, dest models.PayoutDestination) error {
	return txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) error {
		return b.next.Upsert(ctx, dest)
	})
}

func (b boundedPayouts) FindByOwner(ctx context.Context, ownerID string) (*models.PayoutDestination, error) {
	var dest *models.PayoutDestination
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		dest, err = b.next.FindByOwner(ctx, ownerID)
		return err
	})
	return dest, err
}

func (b boundedPayouts) List(ctx context.Context) ([]models.PayoutDestination, error) {
	var dests []models.PayoutDestination
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		dests, err = b.next.List(ctx)
		return err
	})
	return dests, err
}

type boundedProfiles struct {
	next    store.ProfileStore
	timeout time.Duration
}

func (b boundedProfiles) Upsert(ctx context.Context, p models.InstructorProfile) error {
	return txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) error {
		return b.next.Upsert(ctx, p)
	})
}

func (b boundedProfiles) FindBySubject(ctx context.Context, subjectID string) (*models.InstructorProfile, error) {
	var p *models.InstructorProfile
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		p, err = b.next.FindBySubject(ctx, subjectID)
		return err
	})
	return p, err
}

type boundedDirectory struct {
	next    Directory
	timeout time.Duration
}

func (b boundedDirectory) EnsureAccount(ctx context.Context, email, displayName string, now time.Time) (*identity.Account, error) {
	var acct *identity.Account
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		acct, err = b.next.EnsureAccount(ctx, email, displayName, now)
		return err
	})
	return acct, err
}

func (b boundedDirectory) FindBySubject(ctx context.Context, subjectID string) (*identity.Account, error) {
	var acct *identity.Account
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		acct, err = b.next.FindBySubject(ctx, subjectID)
		return err
	})
	return acct, err
}

func (b boundedDirectory) FindByEmail(ctx context.Context, email string) (*identity.Account, error) {
	var acct *identity.Account
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		acct, err = b.next.FindByEmail(ctx, email)
		return err
	})
	return acct, err
}

func (b boundedDirectory) SetClaims(ctx context.Context, subjectID string, claims identity.Claims, now time.Time) error {
	return txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) error {
		return b.next.SetClaims(ctx, subjectID, claims, now)
	})
}

func (b boundedDirectory) ListWithBankDetails(ctx context.Context) ([]identity.Account, error) {
	var accts []identity.Account
	err := txcontext.Bounded(ctx, b.timeout, func(ctx context.Context) (err error) {
		accts, err = b.next.ListWithBankDetails(ctx)
		return err
	})
	return accts, err
}

// storeError wraps a store failure for the caller, keeping an expired
// deadline visible as a timeout.
func storeError(err error, message string) error {
	if dErrors.HasCode(err, dErrors.CodeTimeout) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "Storage timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, message)
}
