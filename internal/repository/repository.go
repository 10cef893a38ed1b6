// Package repository defines the persistence contracts used by the domain
// services and their gorm-backed implementations.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/arfood/internal/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record was modified concurrently")
	ErrLimitReached = errors.New("usage limit reached")
	ErrDuplicate    = errors.New("duplicate record")
)

// OrderFilter narrows order queries. Zero values mean "no constraint".
type OrderFilter struct {
	UserID          *uuid.UUID
	CustomerPhone   string
	Statuses        []models.OrderStatus
	ExcludeStatuses []models.OrderStatus
	From            *time.Time
	To              *time.Time
	HasFeedback     *bool
	PaymentStatus   string
	Search          string
	OldestFirst     bool
	Limit           int
	Offset          int
}

// Orders persists order aggregates. FindByID and Find return orders with
// items and status history loaded, history ordered by timestamp.
type Orders interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Find(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	Create(ctx context.Context, order *models.Order) error
	// Save writes the mutable order fields and appends unsaved history
	// entries. It fails with ErrConflict when order.Version is stale and
	// bumps the version on success.
	Save(ctx context.Context, order *models.Order) error
}

// Coupons persists coupons.
type Coupons interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementUsage adds one redemption, failing with ErrLimitReached
	// when the coupon's usage limit is already exhausted.
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}

// Users persists user accounts.
type Users interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	AddLogin(ctx context.Context, userID uuid.UUID, record models.LoginRecord, keep int) error
	ListByRole(ctx context.Context, role models.Role, limit, offset int) ([]models.User, int64, error)
	ListOnline(ctx context.Context) ([]models.User, error)
	LoginHistory(ctx context.Context, limit int) ([]models.LoginRecord, error)
}

// FoodFilter narrows catalog queries.
type FoodFilter struct {
	Category      string
	IsVeg         *bool
	AvailableOnly bool
}

// Foods persists the menu.
type Foods interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.FoodItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.FoodItem, error)
	Find(ctx context.Context, filter FoodFilter) ([]models.FoodItem, error)
	Create(ctx context.Context, food *models.FoodItem) error
	Update(ctx context.Context, food *models.FoodItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ToggleLike flips the user's like and returns the new state and count.
	ToggleLike(ctx context.Context, foodID, userID uuid.UUID) (bool, int, error)
	// Rate upserts the user's rating and recomputes the item's average.
	Rate(ctx context.Context, rating models.FoodRating) (*models.FoodItem, error)
	Ratings(ctx context.Context, foodID uuid.UUID, limit int) ([]models.FoodRating, error)
}

// Feedback persists detailed order reviews.
type Feedback interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Feedback, error)
	List(ctx context.Context, limit, offset int) ([]models.Feedback, int64, error)
	All(ctx context.Context) ([]models.Feedback, error)
}

// Store groups the repositories and runs units of work.
type Store interface {
	Orders() Orders
	Coupons() Coupons
	Users() Users
	Foods() Foods
	Feedback() Feedback
	// Transaction runs fn against a store bound to a single transaction.
	Transaction(ctx context.Context, fn func(Store) error) error
}
