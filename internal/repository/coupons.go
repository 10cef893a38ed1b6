package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/arfood/internal/models"
)

type couponRepo struct {
	db *gorm.DB
}

const usageAvailable = "(usage_limit IS NULL OR usage_limit <= 0 OR used_count < usage_limit)"

func (r *couponRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &coupon, nil
}

func (r *couponRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return nil, translate(err)
	}
	return &coupon, nil
}

func (r *couponRepo) List(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}

func (r *couponRepo) ListActive(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND valid_from <= ? AND valid_until >= ?", true, now, now).
		Where(usageAvailable).
		Order("valid_until ASC").
		Find(&coupons).Error
	return coupons, err
}

func (r *couponRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	var existing int64
	if err := r.db.WithContext(ctx).Model(&models.Coupon{}).Where("code = ?", coupon.Code).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return ErrDuplicate
	}
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepo) Update(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Save(coupon).Error
}

func (r *couponRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *couponRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Coupon{}).
		Where("id = ?", id).
		Where(usageAvailable).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrLimitReached
	}
	return nil
}
