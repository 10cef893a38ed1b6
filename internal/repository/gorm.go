package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// GormStore implements Store on top of a gorm connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Orders() Orders     { return &orderRepo{db: s.db} }
func (s *GormStore) Coupons() Coupons   { return &couponRepo{db: s.db} }
func (s *GormStore) Users() Users       { return &userRepo{db: s.db} }
func (s *GormStore) Foods() Foods       { return &foodRepo{db: s.db} }
func (s *GormStore) Feedback() Feedback { return &feedbackRepo{db: s.db} }

// Transaction runs fn inside a database transaction. Nested calls use savepoints.
func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
