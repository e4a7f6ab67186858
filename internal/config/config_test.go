package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 72*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, "order-events", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 7*24*time.Hour, cfg.PendingOrderMaxAge)
	assert.Equal(t, time.Hour, cfg.ReaperInterval)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("API_ADDR", ":9000")
	t.Setenv("TOKEN_EXPIRY", "24h")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("PENDING_ORDER_MAX_AGE", "48")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 48*time.Hour, cfg.PendingOrderMaxAge)
}

func TestGetDurationIgnoresGarbage(t *testing.T) {
	t.Setenv("REAPER_INTERVAL", "soon")

	cfg := Load()
	assert.Equal(t, time.Hour, cfg.ReaperInterval)
}
