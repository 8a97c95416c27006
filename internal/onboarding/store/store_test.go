package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instructorhub/internal/onboarding/models"
	dErrors "instructorhub/pkg/domain-errors"
)

func TestMemoryTx(t *testing.T) {
	stores := NewInMemoryStores()
	tx := NewMemoryTx(stores)
	ctx := context.Background()
	now := time.Now()

	t.Run("writes are visible after the unit of work", func(t *testing.T) {
		err := tx.RunInTx(ctx, func(ctx context.Context, s Stores) error {
			return s.Payouts.Upsert(ctx, models.PayoutDestination{OwnerID: "o1", SubaccountCode: "ACCT_1", CreatedAt: now})
		})
		require.NoError(t, err)
		dest, err := stores.Payouts.FindByOwner(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, "ACCT_1", dest.SubaccountCode)
	})

	t.Run("fn error is returned unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		err := tx.RunInTx(ctx, func(context.Context, Stores) error { return boom })
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context is a timeout", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := tx.RunInTx(cctx, func(context.Context, Stores) error { return nil })
		assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func TestPayoutUpsertPreservesCreatedAt(t *testing.T) {
	stores := NewInMemoryStores()
	ctx := context.Background()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, stores.Payouts.Upsert(ctx, models.PayoutDestination{OwnerID: "o", SubaccountCode: "A", CreatedAt: first}))
	require.NoError(t, stores.Payouts.Upsert(ctx, models.PayoutDestination{OwnerID: "o", SubaccountCode: "B", CreatedAt: first.Add(time.Hour)}))

	all, err := stores.Payouts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "B", all[0].SubaccountCode)
	assert.Equal(t, first, all[0].CreatedAt)
}
