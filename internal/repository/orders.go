package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/arfood/internal/models"
)

type orderRepo struct {
	db *gorm.DB
}

func (r *orderRepo) preload(q *gorm.DB) *gorm.DB {
	return q.Preload("Items").Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("timestamp ASC")
	})
}

func (r *orderRepo) apply(q *gorm.DB, f OrderFilter) *gorm.DB {
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.CustomerPhone != "" {
		q = q.Where("customer_phone = ?", f.CustomerPhone)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if len(f.ExcludeStatuses) > 0 {
		q = q.Where("status NOT IN ?", f.ExcludeStatuses)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	if f.HasFeedback != nil {
		q = q.Where("has_feedback = ?", *f.HasFeedback)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("order_number ILIKE ? OR customer_name ILIKE ? OR customer_phone ILIKE ?", like, like, like)
	}
	return q
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.preload(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepo) Find(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := r.apply(r.db.WithContext(ctx).Model(&models.Order{}), filter)
	if filter.OldestFirst {
		q = q.Order("created_at ASC")
	} else {
		q = q.Order("created_at DESC")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var orders []models.Order
	if err := r.preload(q).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) Count(ctx context.Context, filter OrderFilter) (int64, error) {
	var total int64
	err := r.apply(r.db.WithContext(ctx).Model(&models.Order{}), filter).Count(&total).Error
	return total, err
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepo) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updatedAt := time.Now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", order.ID, order.Version).
			Updates(map[string]interface{}{
				"status":            order.Status,
				"payment_status":    order.PaymentStatus,
				"payment_method":    order.PaymentMethod,
				"payment_id":        order.PaymentID,
				"has_feedback":      order.HasFeedback,
				"feedback_id":       order.FeedbackID,
				"rating":            order.Rating,
				"customer_feedback": order.CustomerFeedback,
				"feedback_date":     order.FeedbackDate,
				"shop_feedback":     order.ShopFeedback,
				"version":           order.Version + 1,
				"updated_at":        updatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return ErrNotFound
			}
			return ErrConflict
		}

		for i := range order.StatusHistory {
			entry := &order.StatusHistory[i]
			if !entry.IsNew() {
				continue
			}
			entry.OrderID = order.ID
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}

		order.Version++
		order.UpdatedAt = updatedAt
		return nil
	})
}
