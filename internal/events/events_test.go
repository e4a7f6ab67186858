package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPublisherWithoutBrokers(t *testing.T) {
	assert.Nil(t, NewPublisher(nil, "orders"))
	assert.Nil(t, NewPublisher([]string{}, "orders"))
}

func TestNilPublisherIsSafe(t *testing.T) {
	var p *Publisher

	// Must not panic; a service without Kafka configured still takes orders.
	p.Publish(context.Background(), OrderEvent{
		Type:        TypeOrderCreated,
		OrderID:     1,
		OrderNumber: "ORD-20260901-0001",
		OccurredAt:  time.Now(),
	})
	assert.NoError(t, p.Close())
}

func TestNewPublisherConfiguresWriter(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "order-events")

	assert.NotNil(t, p)
	assert.Equal(t, "order-events", p.writer.Topic)
	assert.NoError(t, p.Close())
}
