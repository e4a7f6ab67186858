package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the API reads from the environment.
// Defaults are development-friendly; production deployments are expected
// to set every value explicitly.
type Config struct {
	// HTTP
	Addr string

	// Database
	DatabaseDSN string

	// Auth
	JWTSecret   string
	TokenExpiry time.Duration

	// Notifications
	AdminEmail string
	EmailFrom  string

	// Kafka (optional; events are disabled when no brokers are set)
	KafkaBrokers []string
	KafkaTopic   string

	// Order reaper: pending bank-transfer orders older than this get cancelled.
	PendingOrderMaxAge time.Duration
	ReaperInterval     time.Duration
}

// Load reads the configuration from environment variables.
func Load() Config {
	cfg := Config{
		Addr:               getEnv("API_ADDR", ":8080"),
		DatabaseDSN:        getEnv("DB_DSN", "root:root@tcp(127.0.0.1:3306)/b2b?parseTime=true"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenExpiry:        getDuration("TOKEN_EXPIRY", 72*time.Hour),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		EmailFrom:          getEnv("EMAIL_FROM", "orders@example.com"),
		KafkaTopic:         getEnv("KAFKA_ORDER_TOPIC", "order-events"),
		PendingOrderMaxAge: getDuration("PENDING_ORDER_MAX_AGE", 7*24*time.Hour),
		ReaperInterval:     getDuration("REAPER_INTERVAL", time.Hour),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// plain number means hours
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Hour
	}
	return fallback
}
