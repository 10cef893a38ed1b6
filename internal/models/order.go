package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// OrderStatus is a stage of the order lifecycle.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusReady,
	StatusDelivered,
	StatusCancelled,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further kitchen progress is possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

const (
	OrderTypeDineIn   = "dine-in"
	OrderTypeTakeaway = "takeaway"
)

// PaymentStatuses and PaymentMethods are informational; nothing in the
// lifecycle depends on them.
var (
	PaymentStatuses = []string{"pending", "incomplete", "completed", "success", "failed"}
	PaymentMethods  = []string{"phonepe", "card", "cash", "online"}
	SpiceLevels     = []string{"mild", "medium", "spicy", "extra-spicy"}
)

// Order is a customer's order together with its line items and status history.
type Order struct {
	BaseModel
	OrderNumber      string             `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID           uuid.UUID          `gorm:"type:uuid;index" json:"user_id"`
	CustomerName     string             `json:"customer_name"`
	CustomerPhone    string             `gorm:"index" json:"customer_phone"`
	OrderType        string             `gorm:"type:varchar(16)" json:"order_type"`
	TableNumber      string             `json:"table_number"`
	Comment          string             `json:"comment"`
	Items            []OrderItem        `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Subtotal         float64            `json:"subtotal"`
	Tax              float64            `json:"tax"`
	Discount         float64            `json:"discount"`
	CouponCode       string             `json:"coupon_code,omitempty"`
	CouponDiscount   float64            `json:"coupon_discount"`
	GrandTotal       float64            `json:"grand_total"`
	Status           OrderStatus        `gorm:"type:varchar(16);index" json:"status"`
	StatusHistory    []OrderStatusEntry `gorm:"constraint:OnDelete:CASCADE" json:"status_history"`
	PaymentStatus    string             `gorm:"type:varchar(16)" json:"payment_status"`
	PaymentMethod    string             `gorm:"type:varchar(16)" json:"payment_method"`
	PaymentID        string             `json:"payment_id,omitempty"`
	HasFeedback      bool               `json:"has_feedback"`
	FeedbackID       *uuid.UUID         `gorm:"type:uuid" json:"feedback_id,omitempty"`
	Rating           *int               `json:"rating,omitempty"`
	CustomerFeedback string             `json:"customer_feedback,omitempty"`
	FeedbackDate     *time.Time         `json:"feedback_date,omitempty"`
	ShopFeedback     string             `json:"shop_feedback,omitempty"`
	Version          int                `gorm:"not null;default:0" json:"version"`
}

// OrderItem is a snapshot of a menu entry at ordering time.
type OrderItem struct {
	BaseModel
	OrderID             uuid.UUID      `gorm:"type:uuid;index" json:"order_id"`
	FoodID              *uuid.UUID     `gorm:"type:uuid" json:"food_id,omitempty"`
	Name                string         `json:"name"`
	Price               float64        `json:"price"`
	Quantity            int            `json:"quantity"`
	Subtotal            float64        `json:"subtotal"`
	SpiceLevel          string         `json:"spice_level,omitempty"`
	Extras              pq.StringArray `gorm:"type:text[]" json:"extras,omitempty"`
	SpecialInstructions string         `json:"special_instructions,omitempty"`
}

// OrderStatusEntry is one row of an order's status history.
type OrderStatusEntry struct {
	BaseModel
	OrderID   uuid.UUID   `gorm:"type:uuid;index" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(16)" json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	UpdatedBy string      `json:"updated_by"`
}

// LastStatusAt returns the timestamp of the latest history entry.
func (o *Order) LastStatusAt() time.Time {
	if len(o.StatusHistory) == 0 {
		return time.Time{}
	}
	return o.StatusHistory[len(o.StatusHistory)-1].Timestamp
}

// ItemCount sums the quantities of all lines.
func (o *Order) ItemCount() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
