// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"retailops/internal/core/security"
	"retailops/internal/domain/distribution"
	"retailops/internal/domain/purchase"
	"retailops/internal/domain/warehouse"
	"retailops/internal/infrastructure/http/v1/handlers"
	"retailops/internal/infrastructure/http/v1/middleware"
	"retailops/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// DB backs the readiness probe
	DB handlers.Pinger

	Warehouses    *warehouse.Service
	Distributions *distribution.Service
	Purchases     *purchase.Service

	// InvoiceLocation reads bare dates in listing filters
	InvoiceLocation *time.Location

	// RateLimiter throttles writes per user; nil disables it
	RateLimiter security.RateLimiter

	// Idempotency replays POST /warehouse/distribute; nil disables it
	Idempotency middleware.IdempotencyStore

	// Debug switches gin to debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	if cfg.DB != nil {
		healthHandler := handlers.NewHealthHandler(cfg.DB)
		health := router.Group("/health")
		{
			health.GET("/live", healthHandler.Live)
			health.GET("/ready", healthHandler.Ready)
		}
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	v1.Use(middleware.Actor())

	var mutating []gin.HandlerFunc
	if cfg.RateLimiter != nil {
		mutating = append(mutating, middleware.RateLimit(cfg.RateLimiter))
	}
	var idempotent gin.HandlerFunc
	if cfg.Idempotency != nil {
		idempotent = middleware.Idempotency(cfg.Idempotency)
	}

	baseHandler := handlers.NewBaseHandler()

	warehouseHandler := handlers.NewWarehouseHandler(baseHandler, cfg.Warehouses, cfg.Distributions, cfg.InvoiceLocation)
	RegisterWarehouseRoutes(v1.Group("/warehouse"), warehouseHandler, mutating, idempotent)

	purchaseHandler := handlers.NewPurchaseHandler(baseHandler, cfg.Purchases)
	RegisterPurchaseRoutes(v1.Group("/purchases"), purchaseHandler, mutating)

	return router
}
