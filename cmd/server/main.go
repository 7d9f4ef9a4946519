package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekogravitycat/stay-booking-backend/internal/app"
	"github.com/nekogravitycat/stay-booking-backend/internal/cache"
	"github.com/nekogravitycat/stay-booking-backend/internal/config"
	"github.com/nekogravitycat/stay-booking-backend/internal/db"
	"github.com/nekogravitycat/stay-booking-backend/internal/logging"
	"github.com/nekogravitycat/stay-booking-backend/internal/notify"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.IsProduction)
	slog.SetDefault(log)

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		log.Error("failed to connect to db", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, pool); err != nil {
			log.Error("failed to migrate db", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// Optional infrastructure
	rdb := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	var notifier notify.Notifier
	if cfg.AMQPURL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.AMQPURL, cfg.NotifyQueue, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, notifications will only be logged", slog.Any("error", err))
		} else {
			defer publisher.Close()
			notifier = publisher
		}
	}

	container := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		Logger:       log,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		Redis:        rdb,
		Notifier:     notifier,
		CacheTTL:     cfg.CacheTTL,
		RateLimit: cache.RateLimitConfig{
			Capacity:     cfg.RateLimitCapacity,
			RefillPerSec: cfg.RateLimitRefillPerSec,
			Prefix:       "rl:auth",
		},
		ConfirmTokenTTL:  cfg.ConfirmTokenTTL,
		ApprovalTokenTTL: cfg.ApprovalTokenTTL,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.Info("server running", slog.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.Any("error", err))
			stop()
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", slog.Any("error", err))
	}

	log.Info("server exited gracefully")
}
