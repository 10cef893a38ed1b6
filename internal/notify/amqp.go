package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange order events are published to.
const ExchangeName = "order_events"

const publishTimeout = 5 * time.Second

// AMQPPublisher forwards events to RabbitMQ so that kitchen displays and
// other services can consume them. Routing keys are "orders.kitchen" and
// "orders.user.<id>".
type AMQPPublisher struct {
	conn *amqp.Connection
}

// DialAMQP connects to the broker and declares the exchange.
func DialAMQP(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn}, nil
}

// Close shuts the broker connection.
func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}

// RoutingKey maps an audience to its topic routing key.
func RoutingKey(a Audience) string {
	if a.Broadcast {
		return "orders.kitchen"
	}
	return "orders.user." + a.UserID.String()
}

// Publish implements Transport. The message is sent from a separate
// goroutine; the caller only sees encoding errors.
func (p *AMQPPublisher) Publish(ctx context.Context, audience Audience, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		if err := p.send(ctx, RoutingKey(audience), body); err != nil {
			log.Printf("[AMQP] %s for order %s not published: %v", event.Type, event.Order.OrderNumber, err)
		}
	}()
	return nil
}

func (p *AMQPPublisher) send(ctx context.Context, key string, body []byte) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	return ch.PublishWithContext(ctx, ExchangeName, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
}
