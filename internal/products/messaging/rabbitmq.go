package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront-api/internal/products"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const contentTypeJSON = "application/json"

// ErrNotConfirmed is returned when the broker nacks a published event.
var ErrNotConfirmed = errors.New("event not confirmed by broker")

// RabbitPublisher sends product events to a durable queue on the default exchange
// and waits for the broker to confirm each one.
type RabbitPublisher struct {
	mu      sync.Mutex
	channel confirmChannel
	queue   string
}

type confirmWaiter interface {
	WaitContext(ctx context.Context) (bool, error)
}

// confirmChannel is the part of a confirm-mode channel the publisher uses.
type confirmChannel interface {
	publish(ctx context.Context, queue string, msg amqp.Publishing) (confirmWaiter, error)
	Close() error
}

type amqpConfirmChannel struct {
	*amqp.Channel
}

func (c amqpConfirmChannel) publish(ctx context.Context, queue string, msg amqp.Publishing) (confirmWaiter, error) {
	confirm, err := c.PublishWithDeferredConfirmWithContext(ctx, "", queue, false, false, msg)
	if err != nil {
		return nil, err
	}
	return confirm, nil
}

func NewRabbitPublisher(conn *amqp.Connection, queue string) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}

	return &RabbitPublisher{
		channel: amqpConfirmChannel{ch},
		queue:   queue,
	}, nil
}

// DeclareQueue declares the durable events queue shared by publisher and consumer.
func DeclareQueue(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("declare queue %q: %w", queue, err)
	}
	return q, nil
}

// Publish is safe for concurrent use; amqp channels are not.
func (p *RabbitPublisher) Publish(ctx context.Context, event products.ProductEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// The lock covers only the channel write; confirms are awaited concurrently.
	p.mu.Lock()
	confirm, err := p.channel.publish(ctx, p.queue, newPublishing(event, payload))
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish to %q: %w", p.queue, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("wait for confirm on %q: %w", p.queue, err)
	}
	if !acked {
		return fmt.Errorf("publish to %q: %w", p.queue, ErrNotConfirmed)
	}
	return nil
}

func newPublishing(event products.ProductEvent, payload []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Type:         event.EventType,
		Timestamp:    event.Timestamp,
		Body:         payload,
	}
}

func (p *RabbitPublisher) Close() error {
	return p.channel.Close()
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, products.ProductEvent) error { return nil }
