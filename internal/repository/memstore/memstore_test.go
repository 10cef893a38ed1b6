package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository"
)

func TestOrderSaveDetectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := New()

	order := &models.Order{OrderNumber: "ORD2401010001", Status: models.StatusPending}
	require.NoError(t, store.Orders().Create(ctx, order))

	first, err := store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	second, err := store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)

	first.Status = models.StatusConfirmed
	first.StatusHistory = append(first.StatusHistory, models.OrderStatusEntry{Status: models.StatusConfirmed})
	require.NoError(t, store.Orders().Save(ctx, first))
	assert.Equal(t, 1, first.Version)

	second.Status = models.StatusCancelled
	assert.ErrorIs(t, store.Orders().Save(ctx, second), repository.ErrConflict)

	stored, err := store.Orders().FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
	require.Len(t, stored.StatusHistory, 1)
	assert.NotEqual(t, stored.StatusHistory[0].ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := New()

	limit := 1
	coupon := &models.Coupon{Code: "ONCE", UsageLimit: &limit, IsActive: true}
	require.NoError(t, store.Coupons().Create(ctx, coupon))

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Coupons().IncrementUsage(ctx, coupon.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := store.Coupons().FindByCode(ctx, "once")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UsedCount)

	require.NoError(t, store.Coupons().IncrementUsage(ctx, coupon.ID))
	assert.ErrorIs(t, store.Coupons().IncrementUsage(ctx, coupon.ID), repository.ErrLimitReached)
}

func TestLoginHistoryIsCapped(t *testing.T) {
	ctx := context.Background()
	store := New()

	user := &models.User{Phone: "9876543210"}
	require.NoError(t, store.Users().Save(ctx, user))

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Users().AddLogin(ctx, user.ID, models.LoginRecord{}, 3))
	}

	history, err := store.Users().LoginHistory(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}
