package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"wordarcade/internal/config"
	"wordarcade/internal/content"
	"wordarcade/internal/database"
	"wordarcade/internal/events"
	"wordarcade/internal/game"
	"wordarcade/internal/handlers"
	"wordarcade/internal/logging"
	"wordarcade/internal/scoring"
	"wordarcade/internal/security"
	"wordarcade/internal/service"
)

const (
	stepDatabase   = "Database connection"
	stepMigrations = "Running migrations"
	stepContent    = "Loading content"
	stepServices   = "Starting services"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// swapHandler serves the health endpoint while the server starts and the
// full API once it is ready.
type swapHandler struct {
	current atomic.Pointer[http.Handler]
}

func (s *swapHandler) set(h http.Handler) { s.current.Store(&h) }

func (s *swapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*s.current.Load()).ServeHTTP(w, r)
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	startup := handlers.NewStartup(stepDatabase, stepMigrations, stepContent, stepServices)

	boot := http.NewServeMux()
	boot.Handle("GET /health", startup.Health(nil))
	handler := &swapHandler{}
	handler.set(boot)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	startup.SetCurrentStep(stepDatabase)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connection established", "type", cfg.DatabaseType)
	startup.CompleteStep(stepDatabase)

	startup.SetCurrentStep(stepMigrations)
	if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		return err
	}
	if cfg.SeedBadWords {
		if err := db.SeedBadWords(ctx); err != nil {
			logger.Warn("failed to seed bad words filter", "error", err)
		}
	}
	startup.CompleteStep(stepMigrations)

	startup.SetCurrentStep(stepContent)
	catalog, err := content.Load(cfg.ContentPath)
	if err != nil {
		return err
	}
	startup.CompleteStep(stepContent)

	startup.SetCurrentStep(stepServices)
	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return err
		}
		publisher = amqpPublisher
		logger.Info("publishing settlements", "queue", cfg.AMQPQueue)
	}
	defer publisher.Close()

	var notifier service.Notifier
	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		logger.Warn("email notifications disabled", "error", err)
	} else if emailService.IsEnabled() {
		notifier = emailService
	}

	identity, err := security.NewIdentity(cfg.JWTSecret, "wordarcade")
	if err != nil {
		return err
	}

	scoreService := service.NewScoreService(db, publisher, notifier, logger)
	leaderboardService := service.NewLeaderboardService(db, nil, logger)
	manager := game.NewManager(catalog, scoring.Default(), scoreService.SubmitScore, game.ManagerOptions{
		TickInterval: cfg.TickInterval,
		Retention:    cfg.SessionRetention,
		Logger:       logger,
	})

	limiter := security.NewRateLimiter(cfg.SubmitRateLimit, time.Minute)
	go limiter.RunCleanup(ctx, 5*time.Minute)
	go manager.RunSweeper(ctx, time.Minute)
	startup.CompleteStep(stepServices)

	handler.set(handlers.NewRouter(handlers.Deps{
		Scores:        scoreService,
		Leaderboards:  leaderboardService,
		Sessions:      manager,
		Identity:      identity,
		SubmitLimiter: limiter,
		Startup:       startup,
		DB:            db,
		Logger:        logger,
	}))
	startup.MarkReady()
	logger.Info("server ready")

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	// Live sessions are abandoned and settled before the database closes.
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logger.Error("session shutdown incomplete", "error", err)
	}
	return nil
}
