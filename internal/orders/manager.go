// Package orders implements the order lifecycle: creation, status
// transitions, feedback and the notifications they trigger.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/arfood/internal/coupons"
	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/notify"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

// Notifier receives events after a change has been persisted.
type Notifier interface {
	Dispatch(ctx context.Context, event notify.Event)
}

// Manager owns every mutation of an order.
type Manager struct {
	store    repository.Store
	notifier Notifier
	now      func() time.Time
	number   func(time.Time) string
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithOrderNumbers overrides order number generation.
func WithOrderNumbers(fn func(time.Time) string) Option {
	return func(m *Manager) { m.number = fn }
}

// NewManager constructs a Manager.
func NewManager(store repository.Store, notifier Notifier, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		number:   RandomOrderNumber,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ItemInput is one requested order line.
type ItemInput struct {
	FoodID              *uuid.UUID `json:"food_id"`
	Name                string     `json:"name"`
	Price               float64    `json:"price"`
	Quantity            int        `json:"quantity"`
	Subtotal            float64    `json:"subtotal"`
	SpiceLevel          string     `json:"spice_level"`
	Extras              []string   `json:"extras"`
	SpecialInstructions string     `json:"special_instructions"`
}

// CreateOrderInput is a checkout request. Monetary fields are taken as given.
type CreateOrderInput struct {
	CustomerID     uuid.UUID   `json:"-"`
	CustomerName   string      `json:"customer_name"`
	CustomerPhone  string      `json:"customer_phone"`
	OrderType      string      `json:"order_type"`
	TableNumber    string      `json:"table_number"`
	Items          []ItemInput `json:"items"`
	Subtotal       float64     `json:"subtotal"`
	Tax            float64     `json:"tax"`
	Discount       float64     `json:"discount"`
	CouponCode     string      `json:"coupon_code"`
	CouponDiscount float64     `json:"coupon_discount"`
	GrandTotal     float64     `json:"grand_total"`
	Comment        string      `json:"comment"`
	PaymentMethod  string      `json:"payment_method"`
}

func validationError(format string, args ...any) error {
	return utils.NewError(utils.ReasonValidation, format, args...)
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

func (in *CreateOrderInput) validate() error {
	if len(in.Items) == 0 {
		return validationError("order must contain at least one item")
	}
	for i, item := range in.Items {
		if strings.TrimSpace(item.Name) == "" {
			return validationError("item %d has no name", i+1)
		}
		if item.Quantity < 1 {
			return validationError("item %q must have a quantity of at least 1", item.Name)
		}
		if item.Price < 0 {
			return validationError("item %q has a negative price", item.Name)
		}
		if item.SpiceLevel != "" && !oneOf(item.SpiceLevel, models.SpiceLevels) {
			return validationError("item %q has unknown spice level %q", item.Name, item.SpiceLevel)
		}
	}
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerPhone) == "" {
		return validationError("customer name and phone are required")
	}
	switch in.OrderType {
	case models.OrderTypeDineIn:
		if strings.TrimSpace(in.TableNumber) == "" {
			return validationError("table number is required for dine-in orders")
		}
	case models.OrderTypeTakeaway:
	default:
		return validationError("order type must be %s or %s", models.OrderTypeDineIn, models.OrderTypeTakeaway)
	}
	if in.PaymentMethod != "" && !oneOf(in.PaymentMethod, models.PaymentMethods) {
		return validationError("unknown payment method %q", in.PaymentMethod)
	}
	return nil
}

func (in *CreateOrderInput) build(number string, now time.Time) *models.Order {
	order := &models.Order{
		OrderNumber:    number,
		UserID:         in.CustomerID,
		CustomerName:   strings.TrimSpace(in.CustomerName),
		CustomerPhone:  strings.TrimSpace(in.CustomerPhone),
		OrderType:      in.OrderType,
		Comment:        in.Comment,
		Subtotal:       in.Subtotal,
		Tax:            in.Tax,
		Discount:       in.Discount,
		CouponDiscount: in.CouponDiscount,
		GrandTotal:     in.GrandTotal,
		Status:         models.StatusPending,
		PaymentStatus:  "pending",
		PaymentMethod:  in.PaymentMethod,
		StatusHistory: []models.OrderStatusEntry{
			{Status: models.StatusPending, Timestamp: now, UpdatedBy: "customer"},
		},
	}
	order.CreatedAt = now
	if order.OrderType == models.OrderTypeDineIn {
		order.TableNumber = strings.TrimSpace(in.TableNumber)
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = "cash"
	}

	for _, item := range in.Items {
		subtotal := item.Subtotal
		if subtotal == 0 {
			subtotal = item.Price * float64(item.Quantity)
		}
		order.Items = append(order.Items, models.OrderItem{
			FoodID:              item.FoodID,
			Name:                item.Name,
			Price:               item.Price,
			Quantity:            item.Quantity,
			Subtotal:            subtotal,
			SpiceLevel:          item.SpiceLevel,
			Extras:              item.Extras,
			SpecialInstructions: item.SpecialInstructions,
		})
	}
	return order
}

// CreateOrder validates the request, redeems the coupon if any and stores a
// new pending order. Coupon redemption and insert share one transaction.
func (m *Manager) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := m.now()
	order := in.build(m.number(now), now)

	err := m.store.Transaction(ctx, func(tx repository.Store) error {
		if code := strings.TrimSpace(in.CouponCode); code != "" {
			c, err := m.redeemCoupon(ctx, tx, code, in.Subtotal, now)
			if err != nil {
				return err
			}
			order.CouponCode = c.Code
		}
		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, utils.Persistence(err)
	}

	log.Printf("[Order] Created %s for user %s (%s, %d items)", order.OrderNumber, order.UserID, order.OrderType, order.ItemCount())
	m.publish(ctx, notify.EventCreated, order, "", fmt.Sprintf("Order %s placed successfully", order.OrderNumber))
	return order, nil
}

func (m *Manager) redeemCoupon(ctx context.Context, tx repository.Store, code string, subtotal float64, now time.Time) (*models.Coupon, error) {
	c, err := tx.Coupons().FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewError(utils.ReasonInvalidCoupon, "coupon %s not found", strings.ToUpper(code))
	}
	if err != nil {
		return nil, err
	}

	if err := coupons.Check(c, now); err != nil {
		return nil, utils.Wrap(utils.ReasonInvalidCoupon, err, "coupon "+c.Code+" is not valid")
	}
	if subtotal < c.MinOrderValue {
		return nil, utils.NewError(utils.ReasonCouponMinimumNotMet, "minimum order value of %.2f required for %s", c.MinOrderValue, c.Code)
	}
	if err := coupons.Redeem(ctx, tx, c); err != nil {
		return nil, utils.Wrap(utils.ReasonInvalidCoupon, err, "coupon "+c.Code+" is not valid")
	}
	return c, nil
}

// OrderUpdate lists the fields an update may change. Nil means unchanged.
type OrderUpdate struct {
	Status        *models.OrderStatus
	PaymentStatus *string
	PaymentID     *string
}

// TransitionStatus moves an order to status on behalf of actor. Requesting
// the current status is a no-op.
func (m *Manager) TransitionStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, actor Actor) (*models.Order, error) {
	return m.UpdateOrder(ctx, id, actor, OrderUpdate{Status: &status})
}

// MarkDelivered is TransitionStatus to delivered.
func (m *Manager) MarkDelivered(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error) {
	return m.TransitionStatus(ctx, id, models.StatusDelivered, actor)
}

// UpdateOrder applies a status and/or payment change in a single write.
// Payment fields may be set by administrators or by the order's owner.
func (m *Manager) UpdateOrder(ctx context.Context, id uuid.UUID, actor Actor, upd OrderUpdate) (*models.Order, error) {
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, validationError("invalid status %q", *upd.Status)
		}
		if !CanChangeStatus(actor.Role) {
			return nil, utils.NewError(utils.ReasonForbidden, "role %q cannot change order status", actor.Role)
		}
	}
	if upd.PaymentStatus != nil && !oneOf(*upd.PaymentStatus, models.PaymentStatuses) {
		return nil, validationError("invalid payment status %q", *upd.PaymentStatus)
	}

	order, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if (upd.PaymentStatus != nil || upd.PaymentID != nil) && actor.Role != models.RoleAdmin && order.UserID != actor.ID {
		return nil, utils.NewError(utils.ReasonForbidden, "cannot update payment of another customer's order")
	}

	previous := order.Status
	statusChanged := false
	if upd.Status != nil && *upd.Status != order.Status {
		if err := Authorize(actor.Role, order.Status, *upd.Status); err != nil {
			return nil, err
		}
		order.Status = *upd.Status
		order.StatusHistory = append(order.StatusHistory, models.OrderStatusEntry{
			Status:    *upd.Status,
			Timestamp: m.stamp(order),
			UpdatedBy: actor.Label(),
		})
		statusChanged = true
	}

	paymentChanged := false
	if upd.PaymentStatus != nil && *upd.PaymentStatus != order.PaymentStatus {
		order.PaymentStatus = *upd.PaymentStatus
		paymentChanged = true
	}
	if upd.PaymentID != nil && *upd.PaymentID != order.PaymentID {
		order.PaymentID = *upd.PaymentID
		paymentChanged = true
	}

	if !statusChanged && !paymentChanged {
		return order, nil
	}

	if err := m.save(ctx, m.store, order); err != nil {
		return nil, err
	}

	if statusChanged {
		log.Printf("[Order] %s %s -> %s by %s", order.OrderNumber, previous, order.Status, actor.Label())
		eventType := notify.EventStatusChange
		if order.Status == models.StatusDelivered {
			eventType = notify.EventDelivered
		}
		m.publish(ctx, eventType, order, previous, StatusMessage(order.Status))
	}
	return order, nil
}

// FeedbackInput is a customer's review of a delivered order.
type FeedbackInput struct {
	OrderID        uuid.UUID
	Actor          Actor
	Rating         int
	Comment        string
	ServiceQuality int
	DeliverySpeed  int
	Items          []ItemRating
}

// ItemRating rates one dish of the order.
type ItemRating struct {
	FoodID  uuid.UUID `json:"food_id"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
}

func validRating(r int) bool { return r >= 1 && r <= 5 }

func (in FeedbackInput) validate() error {
	if !validRating(in.Rating) {
		return utils.ErrInvalidRating
	}
	if (in.ServiceQuality != 0 && !validRating(in.ServiceQuality)) || (in.DeliverySpeed != 0 && !validRating(in.DeliverySpeed)) {
		return utils.ErrInvalidRating
	}
	for _, item := range in.Items {
		if !validRating(item.Rating) {
			return utils.ErrInvalidRating
		}
	}
	return nil
}

// AttachFeedback records the customer's review. It is accepted once, and only
// for delivered orders. Dish ratings feed the catalog averages.
func (m *Manager) AttachFeedback(ctx context.Context, in FeedbackInput) (*models.Order, *models.Feedback, error) {
	if err := in.validate(); err != nil {
		return nil, nil, err
	}

	order, err := m.load(ctx, in.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if in.Actor.Role != models.RoleAdmin && order.UserID != in.Actor.ID {
		return nil, nil, utils.NewError(utils.ReasonForbidden, "cannot review another customer's order")
	}
	if order.Status != models.StatusDelivered {
		return nil, nil, utils.NewError(utils.ReasonNotDelivered, "order %s is %s, feedback opens after delivery", order.OrderNumber, order.Status)
	}
	if order.HasFeedback {
		return nil, nil, utils.ErrAlreadySubmitted
	}

	now := m.now()
	feedback := &models.Feedback{
		OrderID:        order.ID,
		UserID:         order.UserID,
		ShopRating:     in.Rating,
		ShopComment:    in.Comment,
		ServiceQuality: in.ServiceQuality,
		DeliverySpeed:  in.DeliverySpeed,
	}
	for _, item := range in.Items {
		feedback.ItemFeedbacks = append(feedback.ItemFeedbacks, models.ItemFeedback{
			FoodID: item.FoodID, Rating: item.Rating, Comment: item.Comment,
		})
	}

	err = m.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Feedback().Create(ctx, feedback); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return utils.ErrAlreadySubmitted
			}
			return err
		}

		rating := in.Rating
		order.HasFeedback = true
		order.FeedbackID = &feedback.ID
		order.Rating = &rating
		order.CustomerFeedback = in.Comment
		order.FeedbackDate = &now
		if err := m.save(ctx, tx, order); err != nil {
			return err
		}

		for _, item := range in.Items {
			_, err := tx.Foods().Rate(ctx, models.FoodRating{
				FoodID:  item.FoodID,
				UserID:  order.UserID,
				OrderID: &order.ID,
				Rating:  item.Rating,
				Review:  item.Comment,
			})
			if errors.Is(err, repository.ErrNotFound) {
				log.Printf("[Order] Skipping rating for removed food %s", item.FoodID)
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, utils.Persistence(err)
	}

	log.Printf("[Order] Feedback %d/5 on %s", in.Rating, order.OrderNumber)
	return order, feedback, nil
}

// AddShopNote stores the restaurant's internal note on an order.
func (m *Manager) AddShopNote(ctx context.Context, id uuid.UUID, note string) (*models.Order, error) {
	order, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	order.ShopFeedback = strings.TrimSpace(note)
	if err := m.save(ctx, m.store, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns an order visible to actor. Customers only see their own.
func (m *Manager) Get(ctx context.Context, id uuid.UUID, actor Actor) (*models.Order, error) {
	order, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCustomer && order.UserID != actor.ID {
		return nil, utils.NewError(utils.ReasonForbidden, "order belongs to another customer")
	}
	return order, nil
}

func (m *Manager) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := m.store.Orders().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewError(utils.ReasonNotFound, "order %s not found", id)
	}
	if err != nil {
		return nil, utils.Persistence(err)
	}
	return order, nil
}

func (m *Manager) save(ctx context.Context, store repository.Store, order *models.Order) error {
	err := store.Orders().Save(ctx, order)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrConflict):
		return utils.NewError(utils.ReasonConflict, "order %s was modified concurrently, reload and retry", order.OrderNumber)
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewError(utils.ReasonNotFound, "order %s not found", order.ID)
	default:
		return utils.Persistence(err)
	}
}

// stamp returns a history timestamp strictly after the previous entry.
func (m *Manager) stamp(order *models.Order) time.Time {
	now := m.now()
	if last := order.LastStatusAt(); !now.After(last) {
		now = last.Add(time.Millisecond)
	}
	return now
}

func (m *Manager) publish(ctx context.Context, t notify.EventType, order *models.Order, previous models.OrderStatus, message string) {
	if m.notifier == nil {
		return
	}
	m.notifier.Dispatch(ctx, notify.Event{
		Type:           t,
		Order:          notify.Snapshot(order),
		PreviousStatus: previous,
		NewStatus:      order.Status,
		Message:        message,
		OccurredAt:     m.now(),
	})
}

var statusMessages = map[models.OrderStatus]string{
	models.StatusPending:   "Your order is waiting for confirmation",
	models.StatusConfirmed: "Your order has been confirmed",
	models.StatusPreparing: "Your order is being prepared",
	models.StatusReady:     "Your order is ready",
	models.StatusDelivered: "Your order has been delivered. Enjoy your meal!",
	models.StatusCancelled: "Your order has been cancelled",
}

// StatusMessage is the customer-facing text for a status.
func StatusMessage(s models.OrderStatus) string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return "Your order status changed to " + string(s)
}
