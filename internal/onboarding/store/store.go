// Package store groups the onboarding stores behind one transactional boundary.
package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"instructorhub/internal/onboarding/models"
	"instructorhub/internal/onboarding/store/credential"
	"instructorhub/internal/onboarding/store/payout"
	"instructorhub/internal/onboarding/store/profile"
	"instructorhub/internal/platform/postgres"
	dErrors "instructorhub/pkg/domain-errors"
	txcontext "instructorhub/pkg/platform/tx"
)

const defaultTxTimeout = 5 * time.Second

type CredentialStore interface {
	Create(ctx context.Context, cred *models.SetupCredential) error
	FindByToken(ctx context.Context, token string) (*models.SetupCredential, error)
	MarkUsed(ctx context.Context, token string, now time.Time) error
	SupersedeLive(ctx context.Context, email, keep string, now time.Time) (int, error)
	FindLatestLive(ctx context.Context, email string, now time.Time) (*models.SetupCredential, error)
}

type PayoutStore interface {
	Upsert(ctx context.Context, dest models.PayoutDestination) error
	FindByOwner(ctx context.Context, ownerID string) (*models.PayoutDestination, error)
	List(ctx context.Context) ([]models.PayoutDestination, error)
}

type ProfileStore interface {
	Upsert(ctx context.Context, p models.InstructorProfile) error
	FindBySubject(ctx context.Context, subjectID string) (*models.InstructorProfile, error)
}

// Stores is the set of stores a transaction may touch.
type Stores struct {
	Credentials CredentialStore
	Payouts     PayoutStore
	Profiles    ProfileStore
}

// NewInMemoryStores builds process-local stores for dev and tests.
func NewInMemoryStores() Stores {
	return Stores{
		Credentials: credential.NewInMemory(),
		Payouts:     payout.NewInMemory(),
		Profiles:    profile.NewInMemory(),
	}
}

// NewPostgresStores builds stores backed by db.
func NewPostgresStores(db *sql.DB) Stores {
	return Stores{
		Credentials: credential.NewPostgres(db),
		Payouts:     payout.NewPostgres(db),
		Profiles:    profile.NewPostgres(db),
	}
}

// MemoryTx serializes units of work with a coarse lock. It cannot roll back,
// so callers put the conditional write first and infallible upserts after it.
type MemoryTx struct {
	mu     sync.Mutex
	stores Stores
}

func NewMemoryTx(stores Stores) *MemoryTx {
	return &MemoryTx{stores: stores}
}

func (t *MemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx, t.stores)
}

// PostgresTx opens a database transaction and exposes it to the stores
// through the context.
type PostgresTx struct {
	db      *sql.DB
	stores  Stores
	timeout time.Duration
}

func NewPostgresTx(db *sql.DB, stores Stores, timeout time.Duration) *PostgresTx {
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}
	return &PostgresTx{db: db, stores: stores, timeout: timeout}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return postgres.RunInTx(ctx, t.db, t.timeout, func(tx *sql.Tx) error {
		return fn(txcontext.WithTx(ctx, tx), t.stores)
	})
}
