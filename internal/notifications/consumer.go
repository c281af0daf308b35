package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"storefront-api/internal/products"
	"storefront-api/internal/products/messaging"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "storefront-notifications"

const (
	outcomeHandled = "handled"
	outcomeDropped = "dropped"
)

// ErrMalformedEvent marks deliveries that will never decode and must not be requeued.
var ErrMalformedEvent = errors.New("malformed product event")

// Metrics counts deliveries by outcome.
type Metrics struct {
	Deliveries *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "product_events_consumed_total",
			Help: "Product events received from the broker by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.Deliveries)
	return m
}

type Consumer struct {
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
	metrics *Metrics
}

// NewConsumer opens a channel, declares queue and limits unacked deliveries to prefetch.
func NewConsumer(conn *amqp.Connection, queue string, prefetch int, logger *slog.Logger, metrics *Metrics) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := messaging.DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set prefetch: %w", err)
	}

	return &Consumer{
		channel: ch,
		queue:   queue,
		logger:  logger,
		metrics: metrics,
	}, nil
}

func (c *Consumer) Listen(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		c.queue,
		consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			c.process(msg)
		}
	}
}

// process acks handled deliveries. Every handling failure is a malformed
// event, which would fail again on redelivery, so it is dropped.
func (c *Consumer) process(msg amqp.Delivery) {
	if err := c.handleMessage(msg.Body); err != nil {
		c.logger.Warn("dropping malformed message", "error", err, "delivery_tag", msg.DeliveryTag)
		_ = msg.Nack(false, false)
		c.count(outcomeDropped)
		return
	}
	_ = msg.Ack(false)
	c.count(outcomeHandled)
}

func (c *Consumer) count(outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.Deliveries.WithLabelValues(outcome).Inc()
}

func (c *Consumer) handleMessage(body []byte) error {
	var event products.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}

	switch event.EventType {
	case products.EventCreated, products.EventUpdated, products.EventDeleted:
	default:
		return fmt.Errorf("%w: unknown event type %q", ErrMalformedEvent, event.EventType)
	}
	if !products.ValidID(event.ProductID) {
		return fmt.Errorf("%w: invalid product id %q", ErrMalformedEvent, event.ProductID)
	}

	c.logger.Info("product event",
		"event_type", event.EventType,
		"product_id", event.ProductID,
		"name", event.Name,
		"timestamp", event.Timestamp,
	)

	return nil
}

// Healthy reports whether the channel is still open.
func (c *Consumer) Healthy() bool {
	return !c.channel.IsClosed()
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
