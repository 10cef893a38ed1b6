// Package coupons evaluates and redeems discount codes.
package coupons

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/utils"
)

var hundred = decimal.NewFromInt(100)

// Check explains why a coupon cannot be redeemed at now, or returns nil.
func Check(c *models.Coupon, now time.Time) error {
	switch {
	case !c.IsActive:
		return utils.NewError(utils.ReasonInvalidCoupon, "coupon is not active")
	case now.Before(c.ValidFrom):
		return utils.NewError(utils.ReasonInvalidCoupon, "coupon is not yet valid")
	case now.After(c.ValidUntil):
		return utils.NewError(utils.ReasonCouponExpired, "coupon has expired")
	case c.HasUsageLimit() && c.UsedCount >= *c.UsageLimit:
		return utils.NewError(utils.ReasonCouponLimitReached, "coupon usage limit reached")
	}
	return nil
}

// IsValid reports whether the coupon is redeemable at now.
func IsValid(c *models.Coupon, now time.Time) bool {
	return Check(c, now) == nil
}

// CalculateDiscount returns the discount the coupon grants on orderValue.
// The result is never negative and never exceeds orderValue.
func CalculateDiscount(c *models.Coupon, orderValue float64, now time.Time) float64 {
	if !IsValid(c, now) || orderValue < c.MinOrderValue {
		return 0
	}

	value := decimal.NewFromFloat(orderValue)
	var discount decimal.Decimal
	if c.DiscountType == models.DiscountPercentage {
		discount = value.Mul(decimal.NewFromFloat(c.DiscountValue)).Div(hundred)
		if c.HasMaxDiscount() {
			discount = decimal.Min(discount, decimal.NewFromFloat(*c.MaxDiscount))
		}
	} else {
		discount = decimal.NewFromFloat(c.DiscountValue)
	}

	discount = decimal.Min(discount, value)
	if discount.IsNegative() {
		return 0
	}
	return discount.Round(2).InexactFloat64()
}
