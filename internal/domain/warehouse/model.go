// Package warehouse provides the central Warehouse and its master catalog.
//
// The Warehouse is the organizational source of every distribution. Its
// master products, categories and suppliers live in a dedicated store of
// kind WAREHOUSE that the Warehouse points at through CatalogStoreID.
package warehouse

import (
	"context"
	"time"

	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/catalog"
)

const (
	CentralCode = "CENTRAL"
	CentralName = "Gudang Pusat"

	catalogStoreName = "Gudang Pusat (Master Catalog)"
)

// Status of a warehouse.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Warehouse owns a master catalog namespace.
type Warehouse struct {
	ID             id.ID     `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	Status         Status    `db:"status" json:"status"`
	CatalogStoreID id.ID     `db:"catalog_store_id" json:"catalogStoreId"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Repository defines persistence for warehouses.
type Repository interface {
	GetByID(ctx context.Context, id id.ID) (*Warehouse, error)
	GetByCode(ctx context.Context, code string) (*Warehouse, error)
	// Insert reports inserted=false when the code is already taken.
	Insert(ctx context.Context, w *Warehouse) (inserted bool, err error)
}

// Central is the resolved central warehouse with its catalog store.
type Central struct {
	Warehouse *Warehouse
	Store     *catalog.Store
}

// CreateProductInput is a new master product.
type CreateProductInput struct {
	ProductCode    string
	Name           string
	Description    *string
	Unit           string
	CategoryID     *id.ID
	SupplierID     *id.ID
	Stock          int
	PurchasePrice  types.Money
	SellingPrice   types.Money
	WholesalePrice *types.Money
	MemberPrice    *types.Money
}

// ProductFilter selects master products.
type ProductFilter struct {
	Search     string
	CategoryID *id.ID
	SupplierID *id.ID
	Page       int
	Limit      int
}
