package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository/memstore"
	"github.com/example/arfood/internal/utils"
)

func newService(t *testing.T, coupons ...*models.Coupon) (*Service, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	for _, c := range coupons {
		require.NoError(t, store.Coupons().Create(context.Background(), c))
	}
	return NewService(store, func() time.Time { return now }), store
}

func TestValidate(t *testing.T) {
	svc, _ := newService(t,
		coupon(func(c *models.Coupon) { c.Code = "SAVE10"; c.MinOrderValue = 100 }),
		coupon(func(c *models.Coupon) { c.Code = "OLD"; c.ValidUntil = now.Add(-time.Hour) }),
	)
	ctx := context.Background()

	res, err := svc.Validate(ctx, "save10", ptr(500.0))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 50.0, res.Discount)

	res, err = svc.Validate(ctx, "SAVE10", ptr(50.0))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Zero(t, res.Discount)

	res, err = svc.Validate(ctx, "OLD", nil)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, utils.ReasonCouponExpired, res.Reason)

	res, err = svc.Validate(ctx, "MISSING", nil)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, utils.ReasonInvalidCoupon, res.Reason)
}

func TestApplyIncrementsUsage(t *testing.T) {
	c := coupon(func(c *models.Coupon) { c.Code = "TWICE"; c.UsageLimit = ptr(2); c.MinOrderValue = 100 })
	svc, store := newService(t, c)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "TWICE", 99)
	assert.ErrorIs(t, err, utils.ErrCouponMinimumNotMet)

	discount, err := svc.Apply(ctx, "twice", 200)
	require.NoError(t, err)
	assert.Equal(t, 20.0, discount)

	_, err = svc.Apply(ctx, "TWICE", 200)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, "TWICE", 200)
	assert.ErrorIs(t, err, utils.ErrCouponLimitReached)

	stored, err := store.Coupons().FindByCode(ctx, "TWICE")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.UsedCount)

	_, err = svc.Apply(ctx, "NOPE", 200)
	assert.ErrorIs(t, err, utils.ErrInvalidCoupon)

	_, err = svc.Apply(ctx, "", 200)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestCreateUpdateToggleDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	in := Input{
		Code:          " welcome ",
		Description:   "first order",
		DiscountType:  models.DiscountFixed,
		DiscountValue: 50,
		ValidFrom:     now,
		ValidUntil:    now.Add(48 * time.Hour),
	}
	created, err := svc.Create(ctx, in, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "WELCOME", created.Code)
	assert.True(t, created.IsActive)

	_, err = svc.Create(ctx, in, uuid.New())
	assert.ErrorIs(t, err, utils.ErrValidation)

	bad := in
	bad.DiscountType = models.DiscountPercentage
	bad.DiscountValue = 120
	_, err = svc.Create(ctx, bad, uuid.New())
	assert.ErrorIs(t, err, utils.ErrValidation)

	in.DiscountValue = 75
	updated, err := svc.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 75.0, updated.DiscountValue)

	toggled, err := svc.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	available, err := svc.Available(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), utils.ErrNotFound)
}
