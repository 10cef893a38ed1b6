package models

import (
	"github.com/google/uuid"
)

// Feedback is the detailed review a customer leaves on a delivered order.
type Feedback struct {
	BaseModel
	OrderID        uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	UserID         uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	ShopRating     int            `json:"shop_rating"`
	ShopComment    string         `json:"shop_comment"`
	ServiceQuality int            `json:"service_quality,omitempty"`
	DeliverySpeed  int            `json:"delivery_speed,omitempty"`
	ItemFeedbacks  []ItemFeedback `gorm:"constraint:OnDelete:CASCADE" json:"item_feedbacks,omitempty"`
}

// ItemFeedback rates a single dish of the order.
type ItemFeedback struct {
	BaseModel
	FeedbackID uuid.UUID `gorm:"type:uuid;index" json:"feedback_id"`
	FoodID     uuid.UUID `gorm:"type:uuid;index" json:"food_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
}
