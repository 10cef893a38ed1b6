package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a discount code redeemable at checkout.
type Coupon struct {
	BaseModel
	Code                 string         `gorm:"uniqueIndex;not null" json:"code"`
	Description          string         `json:"description"`
	DiscountType         string         `gorm:"type:varchar(16)" json:"discount_type"`
	DiscountValue        float64        `json:"discount_value"`
	MinOrderValue        float64        `json:"min_order_value"`
	MaxDiscount          *float64       `json:"max_discount,omitempty"`
	ValidFrom            time.Time      `json:"valid_from"`
	ValidUntil           time.Time      `json:"valid_until"`
	IsActive             bool           `gorm:"default:true" json:"is_active"`
	UsageLimit           *int           `json:"usage_limit,omitempty"`
	UsedCount            int            `gorm:"not null;default:0" json:"used_count"`
	ApplicableCategories pq.StringArray `gorm:"type:text[]" json:"applicable_categories,omitempty"`
	CreatedByID          *uuid.UUID     `gorm:"type:uuid" json:"created_by_id,omitempty"`
}

// HasUsageLimit reports whether the coupon caps its redemptions.
// A zero limit means unlimited.
func (c *Coupon) HasUsageLimit() bool {
	return c.UsageLimit != nil && *c.UsageLimit > 0
}

// HasMaxDiscount reports whether percentage discounts are capped.
func (c *Coupon) HasMaxDiscount() bool {
	return c.MaxDiscount != nil && *c.MaxDiscount > 0
}
