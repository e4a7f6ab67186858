package handlers

import (
	"database/sql"
	"os"
	"time"

	"github.com/cooderhasan/b2b/internal/email"
	"github.com/cooderhasan/b2b/internal/events"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "handlers").Logger()

// Handlers holds all dependencies for the HTTP handlers.
type Handlers struct {
	DB       *sql.DB
	Notifier *email.Notifier
	Events   *events.Publisher // nil when Kafka is not configured

	// Pending bank-transfer orders older than this are auto-cancelled by
	// the background reaper.
	PendingOrderMaxAge time.Duration
}
