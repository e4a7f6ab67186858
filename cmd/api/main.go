package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/cooderhasan/b2b/internal/auth"
	"github.com/cooderhasan/b2b/internal/config"
	"github.com/cooderhasan/b2b/internal/database"
	"github.com/cooderhasan/b2b/internal/email"
	"github.com/cooderhasan/b2b/internal/events"
	"github.com/cooderhasan/b2b/internal/handlers"
	"github.com/cooderhasan/b2b/internal/routes"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("component", "api").Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("no .env file found, relying on system environment variables")
	}

	cfg := config.Load()
	auth.Init(cfg.JWTSecret, cfg.TokenExpiry)

	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	logger.Info().Msg("database connection pool established")

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if publisher != nil {
		defer publisher.Close()
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("kafka order events enabled")
	}

	app := &handlers.Handlers{
		DB:                 db,
		Notifier:           email.NewNotifier(email.LogSender{}, cfg.AdminEmail, cfg.EmailFrom),
		Events:             publisher,
		PendingOrderMaxAge: cfg.PendingOrderMaxAge,
	}

	// Background reaper: auto-cancel overdue pending bank-transfer orders
	// and put their stock back.
	go func() {
		ticker := time.NewTicker(cfg.ReaperInterval)
		defer ticker.Stop()

		logger.Info().Dur("interval", cfg.ReaperInterval).Msg("overdue order reaper started")
		for range ticker.C {
			app.ProcessOverdueOrders()
		}
	}()

	router := routes.SetupRouter(app)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("http server shutdown")
		}
		close(idleConnsClosed)
	}()

	logger.Info().Str("addr", cfg.Addr).Msg("starting B2B storefront API")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("listen")
	}

	<-idleConnsClosed
	logger.Info().Msg("server stopped")
}
