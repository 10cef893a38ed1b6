package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/arfood/internal/models"
)

func sampleEvent(userID uuid.UUID) Event {
	order := &models.Order{
		OrderNumber: "ORD2405100042",
		UserID:      userID,
		Status:      models.StatusPreparing,
		Items:       []models.OrderItem{{Name: "Paneer Tikka", Quantity: 2, Price: 180}},
	}
	return Event{
		Type:           EventStatusChange,
		Order:          Snapshot(order),
		PreviousStatus: models.StatusConfirmed,
		NewStatus:      models.StatusPreparing,
		Message:        "Your order is being prepared",
	}
}

func receive(t *testing.T, ch <-chan Event) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(50 * time.Millisecond):
		return Event{}, false
	}
}

func TestHubRoutesByAudience(t *testing.T) {
	hub := NewHub()
	owner, stranger, chef := uuid.New(), uuid.New(), uuid.New()

	ownerCh, unsubOwner := hub.Subscribe(owner, false)
	defer unsubOwner()
	strangerCh, unsubStranger := hub.Subscribe(stranger, false)
	defer unsubStranger()
	chefCh, unsubChef := hub.Subscribe(chef, true)
	defer unsubChef()

	NewDispatcher(hub).Dispatch(context.Background(), sampleEvent(owner))

	ev, ok := receive(t, ownerCh)
	require.True(t, ok)
	assert.Equal(t, "ORD2405100042", ev.Order.OrderNumber)
	assert.Equal(t, models.StatusPreparing, ev.NewStatus)

	_, ok = receive(t, chefCh)
	assert.True(t, ok)

	_, ok = receive(t, strangerCh)
	assert.False(t, ok)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	owner := uuid.New()
	ch, unsubscribe := hub.Subscribe(owner, false)

	for i := 0; i < subscriberBuffer+5; i++ {
		require.NoError(t, hub.Publish(context.Background(), Customer(owner), sampleEvent(owner)))
	}
	assert.Len(t, ch, subscriberBuffer)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, hub.Len())
	require.NoError(t, hub.Publish(context.Background(), Customer(owner), sampleEvent(owner)))
}

type failingTransport struct{ calls int }

func (f *failingTransport) Publish(context.Context, Audience, Event) error {
	f.calls++
	return errors.New("unreachable")
}

func TestDispatcherSwallowsTransportErrors(t *testing.T) {
	failing := &failingTransport{}
	hub := NewHub()
	owner := uuid.New()
	ch, unsubscribe := hub.Subscribe(owner, false)
	defer unsubscribe()

	NewDispatcher(failing, nil, hub).Dispatch(context.Background(), sampleEvent(owner))

	assert.Equal(t, 2, failing.calls)
	_, ok := receive(t, ch)
	assert.True(t, ok)
}

func TestRoutingKey(t *testing.T) {
	id := uuid.MustParse("7f3c8c1e-51a8-4f0e-9a53-1a4f2b6d9e10")
	assert.Equal(t, "orders.kitchen", RoutingKey(Kitchen()))
	assert.Equal(t, "orders.user.7f3c8c1e-51a8-4f0e-9a53-1a4f2b6d9e10", RoutingKey(Customer(id)))
}
