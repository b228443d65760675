// Package main is the entry point for the retailops API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"retailops/internal/config"
	"retailops/internal/core/numerator"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/auth"
	"retailops/internal/domain/distribution"
	"retailops/internal/domain/mirror"
	"retailops/internal/domain/purchase"
	"retailops/internal/domain/warehouse"
	v1 "retailops/internal/infrastructure/http/v1"
	infranumerator "retailops/internal/infrastructure/numerator"
	"retailops/internal/infrastructure/storage/postgres"
	"retailops/internal/infrastructure/storage/postgres/catalog_repo"
	"retailops/internal/infrastructure/storage/postgres/ledger_repo"
	"retailops/pkg/logger"
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

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting retailops server", "env", cfg.Env, "stock_credit_point", cfg.StockCreditPoint)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool, cfg.StatementTimeout)

	// --- Repositories ---
	stores := catalog_repo.NewStoreRepo(txManager)
	categories := catalog_repo.NewCategoryRepo(txManager)
	suppliers := catalog_repo.NewSupplierRepo(txManager)
	products := catalog_repo.NewProductRepo(txManager)
	warehouses := catalog_repo.NewWarehouseRepo(txManager)
	distributions := ledger_repo.NewDistributionRepo(txManager)
	purchases := ledger_repo.NewPurchaseRepo(txManager)

	// Purchase numbers are drawn inside the caller's transaction.
	var numbers numerator.Generator = infranumerator.NewWithSource(func(ctx context.Context) infranumerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	auditStore, err := postgres.NewAuditSink(txManager)
	if err != nil {
		log.Fatalw("failed to create audit sink", "error", err)
	}
	auditSink := audit.MultiSink{auditStore, audit.LogSink{}}

	// --- Services ---
	warehouseService := warehouse.NewService(warehouse.ServiceConfig{
		Warehouses: warehouses,
		Stores:     stores,
		Products:   products,
		Categories: categories,
		Suppliers:  suppliers,
		TxManager:  txManager,
		Audit:      auditSink,
	})
	purchaseService := purchase.NewService(purchases, products, numbers, txManager, auditSink)

	creditPoint, err := distribution.ParseCreditPoint(cfg.StockCreditPoint)
	if err != nil {
		log.Fatalw("invalid stock credit point", "error", err)
	}
	distributionService := distribution.NewService(distribution.Config{
		CreditPoint:     creditPoint,
		InvoiceLocation: cfg.InvoiceLocation,
		DefaultWindow:   cfg.BatchDefaultWindow,
		MaxRows:         cfg.BatchMaxRows,
	}, distribution.Deps{
		Repo:       distributions,
		Stores:     stores,
		Products:   products,
		Warehouses: warehouseService,
		Mirror:     mirror.NewResolver(categories, suppliers, products),
		Purchases:  purchaseService,
		TxManager:  txManager,
		Audit:      auditSink,
	})

	central, err := warehouseService.EnsureCentral(ctx)
	if err != nil {
		log.Fatalw("failed to resolve central warehouse", "error", err)
	}
	log.Infow("central warehouse ready", "warehouse_id", central.Warehouse.ID, "catalog_store_id", central.Store.ID)

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Logger:          log,
		JWTValidator:    auth.NewJWTService(jwtConfig(cfg)),
		DB:              txManager,
		Warehouses:      warehouseService,
		Distributions:   distributionService,
		Purchases:       purchaseService,
		InvoiceLocation: cfg.InvoiceLocation,
		Debug:           cfg.IsDevelopment(),
	}
	if cfg.RateLimitEnabled {
		routerCfg.RateLimiter = postgres.NewRateLimiter(txManager, cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
	if cfg.IdempotencyEnabled {
		routerCfg.Idempotency = postgres.NewIdempotencyStore(txManager, cfg.IdempotencyTTL)
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func jwtConfig(cfg config.Config) auth.JWTConfig {
	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtCfg.Issuer = cfg.JWTIssuer
	return jwtCfg
}
