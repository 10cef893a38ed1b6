package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const subscriberBuffer = 16

type subscriber struct {
	userID    uuid.UUID
	broadcast bool
	ch        chan Event
}

// Hub is an in-process registry of live subscribers, typically SSE streams.
// Sends never block: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: map[*subscriber]struct{}{}}
}

// Subscribe registers a receiver for userID's events, and for the kitchen
// broadcast when kitchen is set. The returned func unsubscribes.
func (h *Hub) Subscribe(userID uuid.UUID, kitchen bool) (<-chan Event, func()) {
	sub := &subscriber{userID: userID, broadcast: kitchen, ch: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Publish implements Transport.
func (h *Hub) Publish(_ context.Context, audience Audience, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		if audience.Broadcast && !sub.broadcast {
			continue
		}
		if !audience.Broadcast && sub.userID != audience.UserID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Len reports the number of live subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
