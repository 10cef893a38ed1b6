// Package notify delivers order lifecycle events to customers and to the
// kitchen/admin broadcast channel.
package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/arfood/internal/models"
)

// EventType names a lifecycle notification.
type EventType string

const (
	EventCreated      EventType = "created"
	EventStatusChange EventType = "statusChange"
	EventDelivered    EventType = "delivered"
)

// Event is published after an order change has been persisted.
type Event struct {
	Type           EventType          `json:"type"`
	Order          OrderSnapshot      `json:"order"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	NewStatus      models.OrderStatus `json:"new_status,omitempty"`
	Message        string             `json:"message"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// OrderSnapshot is the order as it looked when the event was raised.
type OrderSnapshot struct {
	ID            uuid.UUID                 `json:"id"`
	OrderNumber   string                    `json:"order_number"`
	UserID        uuid.UUID                 `json:"user_id"`
	CustomerName  string                    `json:"customer_name"`
	CustomerPhone string                    `json:"customer_phone"`
	OrderType     string                    `json:"order_type"`
	TableNumber   string                    `json:"table_number,omitempty"`
	Status        models.OrderStatus        `json:"status"`
	StatusHistory []models.OrderStatusEntry `json:"status_history"`
	Items         []SnapshotItem            `json:"items"`
	GrandTotal    float64                   `json:"grand_total"`
	PaymentMethod string                    `json:"payment_method"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// SnapshotItem is a condensed order line.
type SnapshotItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Snapshot copies the fields subscribers need out of an order.
func Snapshot(o *models.Order) OrderSnapshot {
	items := make([]SnapshotItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, SnapshotItem{Name: item.Name, Quantity: item.Quantity, Price: item.Price})
	}
	return OrderSnapshot{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		OrderType:     o.OrderType,
		TableNumber:   o.TableNumber,
		Status:        o.Status,
		StatusHistory: append([]models.OrderStatusEntry(nil), o.StatusHistory...),
		Items:         items,
		GrandTotal:    o.GrandTotal,
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// Audience selects the receivers of an event: one customer, or the
// kitchen/admin broadcast.
type Audience struct {
	UserID    uuid.UUID
	Broadcast bool
}

// Customer addresses a single user.
func Customer(id uuid.UUID) Audience { return Audience{UserID: id} }

// Kitchen addresses every chef and admin subscriber.
func Kitchen() Audience { return Audience{Broadcast: true} }

// String names the audience for logs and routing keys.
func (a Audience) String() string {
	if a.Broadcast {
		return "kitchen"
	}
	return "user:" + a.UserID.String()
}
