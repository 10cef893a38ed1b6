package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/arfood/internal/models"
)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepo) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("LoginHistory").Save(user).Error
}

func (r *userRepo) AddLogin(ctx context.Context, userID uuid.UUID, record models.LoginRecord, keep int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record.UserID = userID
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM login_records WHERE user_id = ? AND id NOT IN (
			SELECT id FROM login_records WHERE user_id = ? ORDER BY login_time DESC LIMIT ?)`,
			userID, userID, keep).Error
	})
}

func (r *userRepo) ListByRole(ctx context.Context, role models.Role, limit, offset int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) ListOnline(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("is_online = ?", true).Order("last_login DESC").Find(&users).Error
	return users, err
}

func (r *userRepo) LoginHistory(ctx context.Context, limit int) ([]models.LoginRecord, error) {
	var records []models.LoginRecord
	err := r.db.WithContext(ctx).Order("login_time DESC").Limit(limit).Find(&records).Error
	return records, err
}
