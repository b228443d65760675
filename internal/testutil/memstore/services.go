package memstore

import (
	"context"

	"retailops/internal/core/id"
	"retailops/internal/core/security"
	"retailops/internal/core/types"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/distribution"
	"retailops/internal/domain/mirror"
	"retailops/internal/domain/purchase"
	"retailops/internal/domain/warehouse"
)

// Services wires every domain service over one Store.
type Services struct {
	Store        *Store
	Audit        *audit.MemorySink
	Mirror       *mirror.Resolver
	Warehouse    *warehouse.Service
	Purchases    *purchase.Service
	Distribution *distribution.Service
}

// NewServices builds the services over a fresh Store.
func NewServices(cfg distribution.Config) *Services {
	s := New()
	sink := &audit.MemorySink{}

	resolver := mirror.NewResolver(s.Categories(), s.Suppliers(), s.Products())
	wh := warehouse.NewService(warehouse.ServiceConfig{
		Warehouses: s.Warehouses(),
		Stores:     s.Stores(),
		Products:   s.Products(),
		Categories: s.Categories(),
		Suppliers:  s.Suppliers(),
		TxManager:  s,
		Audit:      sink,
	})
	purchases := purchase.NewService(s.PurchasesRepo(), s.Products(), s.Numerator(), s, sink)
	dist := distribution.NewService(cfg, distribution.Deps{
		Repo:       s.DistributionsRepo(),
		Stores:     s.Stores(),
		Products:   s.Products(),
		Warehouses: wh,
		Mirror:     resolver,
		Purchases:  purchases,
		TxManager:  s,
		Audit:      sink,
	})

	return &Services{
		Store:        s,
		Audit:        sink,
		Mirror:       resolver,
		Warehouse:    wh,
		Purchases:    purchases,
		Distribution: dist,
	}
}

// WarehouseStaff is an actor allowed to manage the master catalog and distribute.
func WarehouseStaff() security.Actor {
	return security.Actor{UserID: "u-warehouse", Username: "budi", Role: security.RoleWarehouse}
}

// StoreAdmin is an ADMIN actor of storeID.
func StoreAdmin(storeID id.ID) security.Actor {
	return security.Actor{UserID: "u-admin-" + storeID.String()[:8], Username: "siti", Role: security.RoleAdmin, StoreID: storeID}
}

// Manager is a MANAGER actor.
func Manager() security.Actor {
	return security.Actor{UserID: "u-manager", Username: "agus", Role: security.RoleManager}
}

// MasterSpec describes a master product to seed.
type MasterSpec struct {
	Code          string
	Name          string
	Category      string
	SupplierCode  string
	SupplierName  string
	PurchasePrice int64
	SellingPrice  int64
}

// SeedMaster creates a master product, creating its category and supplier when named.
func (svc *Services) SeedMaster(ctx context.Context, spec MasterSpec) (*catalog.Product, error) {
	actor := WarehouseStaff()
	central, err := svc.Warehouse.EnsureCentral(ctx)
	if err != nil {
		return nil, err
	}

	in := warehouse.CreateProductInput{
		ProductCode:   spec.Code,
		Name:          spec.Name,
		Unit:          "pcs",
		PurchasePrice: types.MoneyFromInt(spec.PurchasePrice),
		SellingPrice:  types.MoneyFromInt(spec.SellingPrice),
	}
	if spec.Category != "" {
		c, err := svc.Mirror.ResolveOrCreateCategory(ctx, central.Store.ID, &catalog.Category{Name: spec.Category})
		if err != nil {
			return nil, err
		}
		in.CategoryID = &c.ID
	}
	if spec.SupplierCode != "" {
		sup, err := svc.Mirror.ResolveOrCreateSupplier(ctx, central.Store.ID, &catalog.Supplier{Code: spec.SupplierCode, Name: spec.SupplierName})
		if err != nil {
			return nil, err
		}
		in.SupplierID = &sup.ID
	}
	return svc.Warehouse.CreateMasterProduct(ctx, actor, in)
}
