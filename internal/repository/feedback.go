package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/arfood/internal/models"
)

type feedbackRepo struct {
	db *gorm.DB
}

func (r *feedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Feedback, error) {
	var feedback models.Feedback
	if err := r.db.WithContext(ctx).Preload("ItemFeedbacks").First(&feedback, "order_id = ?", orderID).Error; err != nil {
		return nil, translate(err)
	}
	return &feedback, nil
}

func (r *feedbackRepo) List(ctx context.Context, limit, offset int) ([]models.Feedback, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Feedback{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []models.Feedback
	err := r.db.WithContext(ctx).Preload("ItemFeedbacks").
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&list).Error
	return list, total, err
}

func (r *feedbackRepo) All(ctx context.Context) ([]models.Feedback, error) {
	var list []models.Feedback
	err := r.db.WithContext(ctx).Preload("ItemFeedbacks").Order("created_at DESC").Find(&list).Error
	return list, err
}
