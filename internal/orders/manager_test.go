package orders

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/notify"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/repository/memstore"
	"github.com/example/arfood/internal/utils"
)

var baseTime = time.Date(2024, 3, 7, 19, 30, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Dispatch(_ context.Context, e notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

type fixture struct {
	store    *memstore.Store
	events   *recorder
	manager  *Manager
	customer Actor
	chef     Actor
	admin    Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memstore.New(),
		events:   &recorder{},
		customer: Actor{ID: uuid.New(), Role: models.RoleCustomer},
		chef:     Actor{ID: uuid.New(), Role: models.RoleChef},
		admin:    Actor{ID: uuid.New(), Role: models.RoleAdmin},
	}
	f.manager = NewManager(f.store, f.events,
		WithClock(func() time.Time { return baseTime }),
		WithOrderNumbers(func(t time.Time) string { return FormatOrderNumber(t, int(uuid.New().ID()%10000)) }),
	)
	return f
}

func (f *fixture) addCoupon(t *testing.T, mutate func(*models.Coupon)) *models.Coupon {
	t.Helper()
	c := &models.Coupon{
		Code:          "SAVE10",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		MinOrderValue: 100,
		ValidFrom:     baseTime.Add(-24 * time.Hour),
		ValidUntil:    baseTime.Add(24 * time.Hour),
		IsActive:      true,
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, f.store.Coupons().Create(context.Background(), c))
	return c
}

func (f *fixture) usedCount(t *testing.T, code string) int {
	t.Helper()
	c, err := f.store.Coupons().FindByCode(context.Background(), code)
	require.NoError(t, err)
	return c.UsedCount
}

func (f *fixture) input() CreateOrderInput {
	return CreateOrderInput{
		CustomerID:    f.customer.ID,
		CustomerName:  "Asha",
		CustomerPhone: "9876543210",
		OrderType:     models.OrderTypeTakeaway,
		Items: []ItemInput{
			{Name: "Chicken Biryani", Price: 120, Quantity: 2, SpiceLevel: "medium"},
		},
		Subtotal:   240,
		GrandTotal: 240,
	}
}

// seedOrder stores an order directly in the given status.
func (f *fixture) seedOrder(t *testing.T, status models.OrderStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:   FormatOrderNumber(baseTime, int(uuid.New().ID()%10000)),
		UserID:        f.customer.ID,
		CustomerName:  "Asha",
		CustomerPhone: "9876543210",
		OrderType:     models.OrderTypeTakeaway,
		Status:        status,
		StatusHistory: []models.OrderStatusEntry{{Status: status, Timestamp: baseTime.Add(-time.Hour), UpdatedBy: "customer"}},
	}
	require.NoError(t, f.store.Orders().Create(context.Background(), order))
	return order
}

func TestCreateOrderWithCoupon(t *testing.T) {
	f := newFixture(t)
	f.addCoupon(t, nil)

	in := f.input()
	in.CouponCode = "save10"
	in.CouponDiscount = 24
	in.GrandTotal = 216
	in.TableNumber = "T4"

	order, err := f.manager.CreateOrder(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "SAVE10", order.CouponCode)
	assert.Equal(t, 24.0, order.CouponDiscount)
	assert.Equal(t, "cash", order.PaymentMethod)
	assert.Empty(t, order.TableNumber)
	assert.Equal(t, 240.0, order.Items[0].Subtotal)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, models.StatusPending, order.StatusHistory[0].Status)
	assert.Equal(t, "customer", order.StatusHistory[0].UpdatedBy)
	assert.Equal(t, 1, f.usedCount(t, "SAVE10"))

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventCreated, events[0].Type)
	assert.Equal(t, f.customer.ID, events[0].Order.UserID)

	stored, err := f.store.Orders().FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	f.addCoupon(t, nil)

	tests := []struct {
		name   string
		mutate func(*CreateOrderInput)
		want   error
	}{
		{name: "no items", mutate: func(in *CreateOrderInput) { in.Items = nil }, want: utils.ErrValidation},
		{name: "zero quantity", mutate: func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }, want: utils.ErrValidation},
		{name: "missing phone", mutate: func(in *CreateOrderInput) { in.CustomerPhone = " " }, want: utils.ErrValidation},
		{name: "unknown order type", mutate: func(in *CreateOrderInput) { in.OrderType = "delivery" }, want: utils.ErrValidation},
		{name: "dine-in without table", mutate: func(in *CreateOrderInput) { in.OrderType = models.OrderTypeDineIn }, want: utils.ErrValidation},
		{name: "unknown payment method", mutate: func(in *CreateOrderInput) { in.PaymentMethod = "barter" }, want: utils.ErrValidation},
		{name: "unknown coupon", mutate: func(in *CreateOrderInput) { in.CouponCode = "NOPE" }, want: utils.ErrInvalidCoupon},
		{name: "minimum not met", mutate: func(in *CreateOrderInput) { in.Subtotal = 80 }, want: utils.ErrCouponMinimumNotMet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.input()
			in.CouponCode = "SAVE10"
			tt.mutate(&in)

			_, err := f.manager.CreateOrder(context.Background(), in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	assert.Equal(t, 0, f.usedCount(t, "SAVE10"))
	assert.Empty(t, f.events.all())
	count, err := f.store.Orders().Count(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateOrderRejectsExhaustedOrExpiredCoupon(t *testing.T) {
	f := newFixture(t)
	limit := 1
	f.addCoupon(t, func(c *models.Coupon) { c.Code = "ONCE"; c.UsageLimit = &limit; c.UsedCount = 1 })
	f.addCoupon(t, func(c *models.Coupon) { c.Code = "OLD"; c.ValidUntil = baseTime.Add(-time.Minute) })

	for _, code := range []string{"ONCE", "OLD"} {
		in := f.input()
		in.CouponCode = code
		_, err := f.manager.CreateOrder(context.Background(), in)
		assert.ErrorIs(t, err, utils.ErrInvalidCoupon)
	}
	assert.Equal(t, 1, f.usedCount(t, "ONCE"))
}

func TestCreateDineInKeepsTable(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	in.OrderType = models.OrderTypeDineIn
	in.TableNumber = " 12 "

	order, err := f.manager.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "12", order.TableNumber)
}

func TestOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD\d{6}\d{4}$`)
	for i := 0; i < 200; i++ {
		n := RandomOrderNumber(baseTime)
		assert.Regexp(t, pattern, n)
		assert.Equal(t, "ORD240307", n[:9])
	}
	assert.Equal(t, "ORD2403070007", FormatOrderNumber(baseTime, 7))
	assert.Equal(t, "ORD2403079999", FormatOrderNumber(baseTime, 9999))
}

func TestChefAdvancesOrder(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusConfirmed)

	updated, err := f.manager.TransitionStatus(context.Background(), order.ID, models.StatusPreparing, f.chef)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	last := updated.StatusHistory[1]
	assert.Equal(t, models.StatusPreparing, last.Status)
	assert.Equal(t, f.chef.Label(), last.UpdatedBy)
	assert.Equal(t, baseTime, last.Timestamp)

	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventStatusChange, events[0].Type)
	assert.Equal(t, models.StatusConfirmed, events[0].PreviousStatus)
	assert.Equal(t, models.StatusPreparing, events[0].NewStatus)

	delivered, err := f.manager.MarkDelivered(context.Background(), order.ID, f.chef)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, delivered.Status)
	assert.True(t, delivered.StatusHistory[2].Timestamp.After(delivered.StatusHistory[1].Timestamp))

	events = f.events.all()
	require.Len(t, events, 2)
	assert.Equal(t, notify.EventDelivered, events[1].Type)
}

func TestChefIllegalTransitions(t *testing.T) {
	tests := []struct {
		from models.OrderStatus
		to   models.OrderStatus
	}{
		{from: models.StatusPending, to: models.StatusPreparing},
		{from: models.StatusPending, to: models.StatusConfirmed},
		{from: models.StatusReady, to: models.StatusPreparing},
		{from: models.StatusPreparing, to: models.StatusCancelled},
		{from: models.StatusDelivered, to: models.StatusReady},
		{from: models.StatusCancelled, to: models.StatusPreparing},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			f := newFixture(t)
			order := f.seedOrder(t, tt.from)

			_, err := f.manager.TransitionStatus(context.Background(), order.ID, tt.to, f.chef)
			assert.ErrorIs(t, err, utils.ErrIllegalTransition)

			stored, err := f.store.Orders().FindByID(context.Background(), order.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.from, stored.Status)
			assert.Len(t, stored.StatusHistory, 1)
			assert.Empty(t, f.events.all())
		})
	}
}

func TestSameStatusIsNoop(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusPreparing)

	updated, err := f.manager.TransitionStatus(context.Background(), order.ID, models.StatusPreparing, f.chef)
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, 1)
	assert.Equal(t, 0, updated.Version)
	assert.Empty(t, f.events.all())
}

func TestAdminMayReopenTerminalOrders(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusDelivered)

	updated, err := f.manager.TransitionStatus(context.Background(), order.ID, models.StatusCancelled, f.admin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)

	updated, err = f.manager.TransitionStatus(context.Background(), order.ID, models.StatusPending, f.admin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Len(t, updated.StatusHistory, 3)
	assert.Equal(t, updated.Status, updated.StatusHistory[len(updated.StatusHistory)-1].Status)
}

func TestCustomerCannotChangeStatus(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusPending)

	_, err := f.manager.TransitionStatus(context.Background(), order.ID, models.StatusCancelled, f.customer)
	assert.ErrorIs(t, err, utils.ErrForbidden)
}

func TestTransitionUnknownOrderAndStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.TransitionStatus(context.Background(), uuid.New(), models.StatusReady, f.chef)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	order := f.seedOrder(t, models.StatusConfirmed)
	_, err = f.manager.TransitionStatus(context.Background(), order.ID, "baking", f.admin)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestUpdatePayment(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusConfirmed)

	paid := "success"
	updated, err := f.manager.UpdateOrder(context.Background(), order.ID, f.customer, OrderUpdate{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, "success", updated.PaymentStatus)
	assert.Empty(t, f.events.all())

	stranger := Actor{ID: uuid.New(), Role: models.RoleCustomer}
	_, err = f.manager.UpdateOrder(context.Background(), order.ID, stranger, OrderUpdate{PaymentStatus: &paid})
	assert.ErrorIs(t, err, utils.ErrForbidden)

	bogus := "maybe"
	_, err = f.manager.UpdateOrder(context.Background(), order.ID, f.admin, OrderUpdate{PaymentStatus: &bogus})
	assert.ErrorIs(t, err, utils.ErrValidation)

	ready := models.StatusReady
	failed := "failed"
	updated, err = f.manager.UpdateOrder(context.Background(), order.ID, f.admin, OrderUpdate{Status: &ready, PaymentStatus: &failed})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, updated.Status)
	assert.Equal(t, "failed", updated.PaymentStatus)
	assert.Len(t, f.events.all(), 1)
}

func TestAttachFeedback(t *testing.T) {
	f := newFixture(t)
	food := &models.FoodItem{Name: "Butter Naan", Category: "Indian", Price: 40, IsAvailable: true}
	require.NoError(t, f.store.Foods().Create(context.Background(), food))

	preparing := f.seedOrder(t, models.StatusPreparing)
	_, _, err := f.manager.AttachFeedback(context.Background(), FeedbackInput{OrderID: preparing.ID, Actor: f.customer, Rating: 4})
	assert.ErrorIs(t, err, utils.ErrNotDelivered)

	delivered := f.seedOrder(t, models.StatusDelivered)
	for _, rating := range []int{0, 6} {
		_, _, err = f.manager.AttachFeedback(context.Background(), FeedbackInput{OrderID: delivered.ID, Actor: f.customer, Rating: rating})
		assert.ErrorIs(t, err, utils.ErrInvalidRating)
	}

	stranger := Actor{ID: uuid.New(), Role: models.RoleCustomer}
	_, _, err = f.manager.AttachFeedback(context.Background(), FeedbackInput{OrderID: delivered.ID, Actor: stranger, Rating: 4})
	assert.ErrorIs(t, err, utils.ErrForbidden)

	order, feedback, err := f.manager.AttachFeedback(context.Background(), FeedbackInput{
		OrderID: delivered.ID,
		Actor:   f.customer,
		Rating:  5,
		Comment: "Lovely",
		Items:   []ItemRating{{FoodID: food.ID, Rating: 4}, {FoodID: uuid.New(), Rating: 3}},
	})
	require.NoError(t, err)
	assert.True(t, order.HasFeedback)
	require.NotNil(t, order.Rating)
	assert.Equal(t, 5, *order.Rating)
	assert.Equal(t, "Lovely", order.CustomerFeedback)
	assert.Equal(t, baseTime, *order.FeedbackDate)
	assert.Equal(t, feedback.ID, *order.FeedbackID)

	rated, err := f.store.Foods().FindByID(context.Background(), food.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, rated.AverageRating)
	assert.Equal(t, 1, rated.TotalRatings)

	_, _, err = f.manager.AttachFeedback(context.Background(), FeedbackInput{OrderID: delivered.ID, Actor: f.customer, Rating: 3})
	assert.ErrorIs(t, err, utils.ErrAlreadySubmitted)

	_, _, err = f.manager.AttachFeedback(context.Background(), FeedbackInput{OrderID: uuid.New(), Actor: f.customer, Rating: 3})
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

type failingTransport struct{}

func (failingTransport) Publish(context.Context, notify.Audience, notify.Event) error {
	return errors.New("socket closed")
}

func TestNotificationFailureKeepsTransition(t *testing.T) {
	f := newFixture(t)
	manager := NewManager(f.store, notify.NewDispatcher(failingTransport{}), WithClock(func() time.Time { return baseTime }))
	order := f.seedOrder(t, models.StatusReady)

	_, err := manager.MarkDelivered(context.Background(), order.ID, f.chef)
	require.NoError(t, err)

	stored, err := f.store.Orders().FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, stored.Status)
}

func TestGetHidesOtherCustomersOrders(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusPending)

	_, err := f.manager.Get(context.Background(), order.ID, f.customer)
	require.NoError(t, err)
	_, err = f.manager.Get(context.Background(), order.ID, Actor{ID: uuid.New(), Role: models.RoleCustomer})
	assert.ErrorIs(t, err, utils.ErrForbidden)
	_, err = f.manager.Get(context.Background(), order.ID, f.chef)
	require.NoError(t, err)
}

func TestAddShopNote(t *testing.T) {
	f := newFixture(t)
	order := f.seedOrder(t, models.StatusDelivered)

	updated, err := f.manager.AddShopNote(context.Background(), order.ID, "  regular guest ")
	require.NoError(t, err)
	assert.Equal(t, "regular guest", updated.ShopFeedback)
}
