package notify

import (
	"context"
	"log"
)

// Transport delivers an event to an audience. Implementations must not block
// on slow receivers.
type Transport interface {
	Publish(ctx context.Context, audience Audience, event Event) error
}

// Dispatcher fans events out to the owning customer and to the kitchen
// broadcast over every configured transport. Failures are logged and dropped.
type Dispatcher struct {
	transports []Transport
}

// NewDispatcher constructs a Dispatcher. Nil transports are skipped.
func NewDispatcher(transports ...Transport) *Dispatcher {
	d := &Dispatcher{}
	for _, t := range transports {
		if t != nil {
			d.transports = append(d.transports, t)
		}
	}
	return d
}

// Dispatch publishes event to both audiences. It never returns an error.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	audiences := []Audience{Customer(event.Order.UserID), Kitchen()}
	for _, t := range d.transports {
		for _, a := range audiences {
			if err := t.Publish(ctx, a, event); err != nil {
				log.Printf("[Notify] %s to %s for order %s dropped: %v", event.Type, a, event.Order.OrderNumber, err)
			}
		}
	}
}
