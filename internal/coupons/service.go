package coupons

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

// Service validates, redeems and administers coupons.
type Service struct {
	store repository.Store
	now   func() time.Time
}

// NewService constructs a Service. A nil clock falls back to time.Now.
func NewService(store repository.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

// Validation is the outcome of a coupon check that does not redeem it.
type Validation struct {
	Valid    bool           `json:"valid"`
	Discount float64        `json:"discount"`
	Reason   utils.Reason   `json:"reason,omitempty"`
	Message  string         `json:"message,omitempty"`
	Coupon   *models.Coupon `json:"coupon,omitempty"`
}

// Validate checks a code without redeeming it. orderValue is optional; when
// present the discount for it is reported. A value under the minimum still
// validates with a zero discount.
func (s *Service) Validate(ctx context.Context, code string, orderValue *float64) (*Validation, error) {
	c, err := s.store.Coupons().FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return &Validation{Reason: utils.ReasonInvalidCoupon, Message: "coupon not found"}, nil
	}
	if err != nil {
		return nil, utils.Persistence(err)
	}

	now := s.now()
	if err := Check(c, now); err != nil {
		var appErr *utils.AppError
		errors.As(err, &appErr)
		return &Validation{Reason: appErr.Reason, Message: appErr.Message}, nil
	}

	result := &Validation{Valid: true, Coupon: c}
	if orderValue != nil {
		result.Discount = CalculateDiscount(c, *orderValue, now)
	}
	return result, nil
}

// Apply redeems a code against orderValue and returns the discount. The usage
// counter is incremented in the same call.
func (s *Service) Apply(ctx context.Context, code string, orderValue float64) (float64, error) {
	if strings.TrimSpace(code) == "" || orderValue <= 0 {
		return 0, utils.NewError(utils.ReasonValidation, "coupon code and order value are required")
	}

	var discount float64
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		c, err := tx.Coupons().FindByCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NewError(utils.ReasonInvalidCoupon, "coupon not found")
		}
		if err != nil {
			return err
		}

		now := s.now()
		if err := Check(c, now); err != nil {
			return err
		}
		if orderValue < c.MinOrderValue {
			return utils.NewError(utils.ReasonCouponMinimumNotMet, "minimum order value of %.2f required", c.MinOrderValue)
		}

		if err := Redeem(ctx, tx, c); err != nil {
			return err
		}
		discount = CalculateDiscount(c, orderValue, now)
		return nil
	})
	if err != nil {
		return 0, utils.Persistence(err)
	}

	log.Printf("[Coupon] Applied %s, discount %.2f", strings.ToUpper(code), discount)
	return discount, nil
}

// Redeem increments usage of an already validated coupon inside tx.
func Redeem(ctx context.Context, tx repository.Store, c *models.Coupon) error {
	err := tx.Coupons().IncrementUsage(ctx, c.ID)
	if errors.Is(err, repository.ErrLimitReached) {
		return utils.NewError(utils.ReasonCouponLimitReached, "coupon usage limit reached")
	}
	return err
}

// Available lists coupons a customer can redeem right now.
func (s *Service) Available(ctx context.Context) ([]models.Coupon, error) {
	list, err := s.store.Coupons().ListActive(ctx, s.now())
	return list, utils.Persistence(err)
}

// List returns every coupon for administrators.
func (s *Service) List(ctx context.Context) ([]models.Coupon, error) {
	list, err := s.store.Coupons().List(ctx)
	return list, utils.Persistence(err)
}

// Input carries the editable coupon fields.
type Input struct {
	Code                 string    `json:"code" validate:"required,min=3,max=32"`
	Description          string    `json:"description" validate:"required"`
	DiscountType         string    `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue        float64   `json:"discount_value" validate:"gt=0"`
	MinOrderValue        float64   `json:"min_order_value" validate:"gte=0"`
	MaxDiscount          *float64  `json:"max_discount" validate:"omitempty,gte=0"`
	ValidFrom            time.Time `json:"valid_from" validate:"required"`
	ValidUntil           time.Time `json:"valid_until" validate:"required"`
	UsageLimit           *int      `json:"usage_limit" validate:"omitempty,gte=0"`
	ApplicableCategories []string  `json:"applicable_categories"`
	IsActive             *bool     `json:"is_active"`
}

func (in Input) check() error {
	if in.DiscountType == models.DiscountPercentage && in.DiscountValue > 100 {
		return utils.NewError(utils.ReasonValidation, "percentage discount cannot exceed 100")
	}
	if !in.ValidUntil.After(in.ValidFrom) {
		return utils.NewError(utils.ReasonValidation, "valid_until must be after valid_from")
	}
	return nil
}

func (in Input) applyTo(c *models.Coupon) {
	c.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	c.Description = in.Description
	c.DiscountType = in.DiscountType
	c.DiscountValue = in.DiscountValue
	c.MinOrderValue = in.MinOrderValue
	c.MaxDiscount = in.MaxDiscount
	c.ValidFrom = in.ValidFrom
	c.ValidUntil = in.ValidUntil
	c.UsageLimit = in.UsageLimit
	c.ApplicableCategories = in.ApplicableCategories
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}

// Create stores a new coupon. Codes are stored uppercase and must be unique.
func (s *Service) Create(ctx context.Context, in Input, createdBy uuid.UUID) (*models.Coupon, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	c := &models.Coupon{IsActive: true, CreatedByID: &createdBy}
	in.applyTo(c)

	err := s.store.Coupons().Create(ctx, c)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, utils.NewError(utils.ReasonValidation, "coupon code already exists")
	}
	if err != nil {
		return nil, utils.Persistence(err)
	}
	return c, nil
}

// Update replaces the editable fields of a coupon. Usage counts are kept.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*models.Coupon, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if code := strings.ToUpper(strings.TrimSpace(in.Code)); code != c.Code {
		if _, err := s.store.Coupons().FindByCode(ctx, code); err == nil {
			return nil, utils.NewError(utils.ReasonValidation, "coupon code already exists")
		}
	}

	in.applyTo(c)
	if err := s.store.Coupons().Update(ctx, c); err != nil {
		return nil, utils.Persistence(err)
	}
	return c, nil
}

// Delete removes a coupon. Orders keep their snapshot of the code.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.Coupons().Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NewError(utils.ReasonNotFound, "coupon not found")
	}
	return utils.Persistence(err)
}

// Toggle flips the active flag.
func (s *Service) Toggle(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	c.IsActive = !c.IsActive
	if err := s.store.Coupons().Update(ctx, c); err != nil {
		return nil, utils.Persistence(err)
	}
	return c, nil
}

func (s *Service) find(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	c, err := s.store.Coupons().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewError(utils.ReasonNotFound, "coupon not found")
	}
	if err != nil {
		return nil, utils.Persistence(err)
	}
	return c, nil
}
