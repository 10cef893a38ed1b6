package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/arfood/internal/models"
)

type foodRepo struct {
	db *gorm.DB
}

func (r *foodRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.FoodItem, error) {
	var food models.FoodItem
	if err := r.db.WithContext(ctx).First(&food, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &food, nil
}

func (r *foodRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.FoodItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var foods []models.FoodItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&foods).Error
	return foods, err
}

func (r *foodRepo) Find(ctx context.Context, filter FoodFilter) ([]models.FoodItem, error) {
	q := r.db.WithContext(ctx).Model(&models.FoodItem{})
	if filter.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.IsVeg != nil {
		q = q.Where("is_veg = ?", *filter.IsVeg)
	}

	var foods []models.FoodItem
	err := q.Order("category ASC, name ASC").Find(&foods).Error
	return foods, err
}

func (r *foodRepo) Create(ctx context.Context, food *models.FoodItem) error {
	return r.db.WithContext(ctx).Create(food).Error
}

func (r *foodRepo) Update(ctx context.Context, food *models.FoodItem) error {
	return r.db.WithContext(ctx).Save(food).Error
}

func (r *foodRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.FoodItem{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *foodRepo) ToggleLike(ctx context.Context, foodID, userID uuid.UUID) (bool, int, error) {
	var liked bool
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var food models.FoodItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&food, "id = ?", foodID).Error; err != nil {
			return translate(err)
		}

		res := tx.Where("food_id = ? AND user_id = ?", foodID, userID).Delete(&models.FoodLike{})
		if res.Error != nil {
			return res.Error
		}

		delta := -1
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.FoodLike{FoodID: foodID, UserID: userID}).Error; err != nil {
				return err
			}
			delta = 1
			liked = true
		}

		count = food.LikeCount + delta
		if count < 0 {
			count = 0
		}
		return tx.Model(&food).UpdateColumn("like_count", count).Error
	})
	return liked, count, err
}

func (r *foodRepo) Rate(ctx context.Context, rating models.FoodRating) (*models.FoodItem, error) {
	var food models.FoodItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&food, "id = ?", rating.FoodID).Error; err != nil {
			return translate(err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "food_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "review", "order_id", "updated_at"}),
		}).Create(&rating).Error; err != nil {
			return err
		}

		var agg struct {
			Average float64
			Total   int
		}
		if err := tx.Model(&models.FoodRating{}).
			Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
			Where("food_id = ?", rating.FoodID).
			Scan(&agg).Error; err != nil {
			return err
		}

		food.AverageRating = agg.Average
		food.TotalRatings = agg.Total
		return tx.Model(&food).UpdateColumns(map[string]interface{}{
			"average_rating": agg.Average,
			"total_ratings":  agg.Total,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func (r *foodRepo) Ratings(ctx context.Context, foodID uuid.UUID, limit int) ([]models.FoodRating, error) {
	var ratings []models.FoodRating
	err := r.db.WithContext(ctx).Where("food_id = ?", foodID).Order("updated_at DESC").Limit(limit).Find(&ratings).Error
	return ratings, err
}
