// Package events publishes order lifecycle events to Kafka. Publishing is
// fire-and-forget; a down broker must never affect order processing.
package events

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "events").Logger()

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the JSON payload written to the order-events topic.
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      int64     `json:"userId"`
	Status      string    `json:"status"`
	Total       float64   `json:"total"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Publisher writes order events. A nil Publisher is valid and publishes
// nothing, so wiring stays unconditional in the handlers.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher builds a Kafka-backed publisher, or nil when no brokers are
// configured.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.CRC32Balancer{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish sends one event, keyed by order number so events for the same
// order stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, ev OrderEvent) {
	if p == nil || p.writer == nil {
		return
	}

	value, err := json.Marshal(ev)
	if err != nil {
		logger.Error().Err(err).Msg("marshal order event")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderNumber),
		Value: value,
	}); err != nil {
		logger.Error().Err(err).Str("type", ev.Type).Int64("orderId", ev.OrderID).Msg("publish order event")
	}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
