// Package main is the entry point for the stockerp background worker.
// It relays outbox events and cleans up expired auth and idempotency rows.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stockerp/internal/infrastructure/storage/postgres"
	"stockerp/internal/infrastructure/storage/postgres/auth_repo"
	"stockerp/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting stockerp worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	worker := NewWorker(pool, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the background maintenance loops.
type Worker struct {
	pool        *postgres.Pool
	relay       *postgres.OutboxRelay
	idempotency *postgres.IdempotencyStore
	tokens      *auth_repo.TokenRepo
	log         *logger.Logger
}

// NewWorker wires the worker loops on a shared pool.
func NewWorker(pool *postgres.Pool, log *logger.Logger) *Worker {
	wlog := log.WithComponent("worker")
	txManager := postgres.NewTxManager(pool)

	return &Worker{
		pool:        pool,
		relay:       postgres.NewOutboxRelay(pool.Unwrap(), 100, &logHandler{log: wlog}),
		idempotency: postgres.NewIdempotencyStore(txManager, 10*time.Minute),
		tokens:      auth_repo.NewTokenRepo(txManager),
		log:         wlog,
	}
}

// Run polls the outbox and runs hourly cleanup until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	relayTicker := time.NewTicker(500 * time.Millisecond)
	defer relayTicker.Stop()

	cleanupTicker := time.NewTicker(1 * time.Hour)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-relayTicker.C:
			w.relayOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *Worker) relayOutbox(ctx context.Context) {
	processed, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		w.log.Errorw("outbox batch failed", "error", err)
		return
	}
	if processed > 0 {
		w.log.Debugw("relayed outbox batch", "count", processed)
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	if moved, err := w.relay.MoveToDLQ(ctx); err != nil {
		w.log.Errorw("move to DLQ failed", "error", err)
	} else if moved > 0 {
		w.log.Infow("moved failed outbox messages to DLQ", "count", moved)
	}

	if removed, err := w.idempotency.CleanupExpired(ctx); err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
	} else if removed > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", removed)
	}

	w.cleanupTokens(ctx)

	postgres.LogPoolStats(ctx, w.pool.Unwrap())
}

func (w *Worker) cleanupTokens(ctx context.Context) {
	removed, err := w.tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		w.log.Errorw("token cleanup failed", "error", err)
		return
	}
	if removed > 0 {
		w.log.Infow("cleaned up expired refresh tokens", "count", removed)
	}
}

// logHandler is the default outbox handler: it logs each event. A broker
// integration would replace it.
type logHandler struct {
	log *logger.Logger
}

func (h *logHandler) Handle(_ context.Context, msg *postgres.OutboxMessage) error {
	h.log.Infow("outbox event",
		"event_type", msg.EventType,
		"aggregate_type", msg.AggregateType,
		"aggregate_id", msg.AggregateID.String(),
	)
	return nil
}

var _ postgres.OutboxHandler = (*logHandler)(nil)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
