// Package main is the entry point for the retailops maintenance worker.
// It expires idempotency keys, drops stale rate limit windows and reports pool health.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"retailops/internal/config"
	"retailops/internal/infrastructure/storage/postgres"
	"retailops/pkg/logger"
)

const (
	cleanupInterval = 10 * time.Minute
	statsInterval   = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting retailops worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool, cfg.StatementTimeout)
	worker := &Worker{
		pool:        pool,
		idempotency: postgres.NewIdempotencyStore(txManager, cfg.IdempotencyTTL),
		rateLimits:  postgres.NewRateLimiter(txManager, cfg.RateLimitRequests, cfg.RateLimitWindow),
		log:         log.WithComponent("worker"),
	}

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

// Worker runs periodic housekeeping against the shared database.
type Worker struct {
	pool        *postgres.Pool
	idempotency *postgres.IdempotencyStore
	rateLimits  *postgres.RateLimiter
	log         *logger.Logger
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	cleanupTicker := time.NewTicker(cleanupInterval)
	defer cleanupTicker.Stop()

	statsTicker := time.NewTicker(statsInterval)
	defer statsTicker.Stop()

	// Initial pass so a restarted worker does not wait a full interval.
	w.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		case <-statsTicker.C:
			postgres.LogPoolStats(ctx, w.pool)
		}
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	if n, err := w.idempotency.CleanupExpired(ctx); err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
	} else if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}

	if n, err := w.rateLimits.Cleanup(ctx); err != nil {
		w.log.Errorw("rate limit cleanup failed", "error", err)
	} else if n > 0 {
		w.log.Infow("cleaned up rate limit windows", "count", n)
	}
}
