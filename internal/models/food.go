package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// FoodCategories lists the menu sections.
var FoodCategories = []string{
	"Starters",
	"Tandoori",
	"Indian",
	"Special Platter",
	"Biryani",
	"Fast Food",
	"Desserts",
	"Beverages",
}

// IsFoodCategory reports whether name is a known menu section.
func IsFoodCategory(name string) bool {
	for _, c := range FoodCategories {
		if c == name {
			return true
		}
	}
	return false
}

// FoodItem is a menu entry.
type FoodItem struct {
	BaseModel
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `json:"description"`
	Category      string         `gorm:"index" json:"category"`
	Price         float64        `json:"price"`
	ImageURL      string         `json:"image_url"`
	ModelURL      string         `json:"model_url"`
	IsVeg         bool           `json:"is_veg"`
	IsAvailable   bool           `gorm:"default:true" json:"is_available"`
	PrepTime      int            `json:"prep_time"`
	Ingredients   pq.StringArray `gorm:"type:text[]" json:"ingredients"`
	LikeCount     int            `json:"like_count"`
	AverageRating float64        `json:"average_rating"`
	TotalRatings  int            `json:"total_ratings"`
}

// FoodLike records that a user liked a food item.
type FoodLike struct {
	BaseModel
	FoodID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_food_like" json:"food_id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_food_like" json:"user_id"`
}

// FoodRating is one user's rating of a food item.
type FoodRating struct {
	BaseModel
	FoodID  uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_food_rating" json:"food_id"`
	UserID  uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_food_rating" json:"user_id"`
	OrderID *uuid.UUID `gorm:"type:uuid" json:"order_id,omitempty"`
	Rating  int        `json:"rating"`
	Review  string     `json:"review"`
}

// FoodSummary is the catalog view embedded in assembled orders.
type FoodSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	ImageURL string    `json:"image_url"`
	IsVeg    bool      `json:"is_veg"`
}

// Summary returns the subset of the food item shown next to order lines.
func (f *FoodItem) Summary() FoodSummary {
	return FoodSummary{ID: f.ID, Name: f.Name, Category: f.Category, ImageURL: f.ImageURL, IsVeg: f.IsVeg}
}
