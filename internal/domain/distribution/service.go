package distribution

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"retailops/internal/core/tx"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/mirror"
	"retailops/internal/domain/purchase"
	"retailops/internal/domain/warehouse"
)

// Config tunes the distribution service.
type Config struct {
	CreditPoint CreditPoint
	// InvoiceLocation renders invoice dates; nil means UTC.
	InvoiceLocation *time.Location
	// DefaultWindow bounds batch listings without a date range.
	DefaultWindow time.Duration
	// MaxRows caps the lines scanned by one batch listing.
	MaxRows int
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CreditPoint:     CreditAtDistribution,
		InvoiceLocation: time.UTC,
		DefaultWindow:   365 * 24 * time.Hour,
		MaxRows:         10000,
		Now:             time.Now,
	}
}

// Deps holds Service dependencies.
type Deps struct {
	Repo       Repository
	Stores     catalog.StoreRepository
	Products   catalog.ProductRepository
	Warehouses *warehouse.Service
	Mirror     *mirror.Resolver
	Purchases  *purchase.Service
	TxManager  tx.Manager
	Audit      audit.Sink
}

// Service ships goods to stores, accepts shipped lines and reads shipments back as batches.
type Service struct {
	cfg        Config
	repo       Repository
	stores     catalog.StoreRepository
	products   catalog.ProductRepository
	warehouses *warehouse.Service
	mirror     *mirror.Resolver
	purchases  *purchase.Service
	txManager  tx.Manager
	audit      audit.Sink
	tracer     trace.Tracer
}

// NewService creates a new distribution service.
func NewService(cfg Config, deps Deps) *Service {
	def := DefaultConfig()
	if cfg.CreditPoint == "" {
		cfg.CreditPoint = def.CreditPoint
	}
	if cfg.InvoiceLocation == nil {
		cfg.InvoiceLocation = def.InvoiceLocation
	}
	if cfg.DefaultWindow <= 0 {
		cfg.DefaultWindow = def.DefaultWindow
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = def.MaxRows
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}

	return &Service{
		cfg:        cfg,
		repo:       deps.Repo,
		stores:     deps.Stores,
		products:   deps.Products,
		warehouses: deps.Warehouses,
		mirror:     deps.Mirror,
		purchases:  deps.Purchases,
		txManager:  deps.TxManager,
		audit:      deps.Audit,
		tracer:     otel.Tracer("retailops/distribution"),
	}
}

// now returns the service clock truncated to what Postgres timestamps keep.
func (s *Service) now() time.Time {
	return s.cfg.Now().UTC().Truncate(time.Microsecond)
}
