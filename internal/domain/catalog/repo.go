package catalog

import (
	"context"

	"retailops/internal/core/id"
)

// Get* and Find* methods return apperror NotFound when no row matches.
// Insert methods rely on the natural-key unique constraint and report
// inserted=false instead of failing when another writer got there first.

// StoreRepository defines persistence for stores.
type StoreRepository interface {
	GetByID(ctx context.Context, id id.ID) (*Store, error)
	GetByCode(ctx context.Context, code string) (*Store, error)
	Insert(ctx context.Context, store *Store) (inserted bool, err error)
	// NamesByIDs returns store names keyed by id; unknown ids are omitted.
	NamesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]string, error)
}

// CategoryRepository defines persistence for categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id id.ID) (*Category, error)
	FindByName(ctx context.Context, storeID id.ID, name string) (*Category, error)
	Insert(ctx context.Context, category *Category) (inserted bool, err error)
	List(ctx context.Context, storeID id.ID) ([]Category, error)
}

// SupplierRepository defines persistence for suppliers.
type SupplierRepository interface {
	GetByID(ctx context.Context, id id.ID) (*Supplier, error)
	FindByCode(ctx context.Context, storeID id.ID, code string) (*Supplier, error)
	Insert(ctx context.Context, supplier *Supplier) (inserted bool, err error)
	List(ctx context.Context, storeID id.ID) ([]Supplier, error)
}

// ProductRepository defines persistence for products.
type ProductRepository interface {
	GetByID(ctx context.Context, id id.ID) (*Product, error)
	FindByCode(ctx context.Context, storeID id.ID, code string) (*Product, error)
	Insert(ctx context.Context, product *Product) (inserted bool, err error)

	// UpdateDetails overwrites descriptive fields, references and prices. Stock is untouched.
	UpdateDetails(ctx context.Context, product *Product) error

	// AdjustStock atomically applies delta and returns the new stock.
	// A result below zero is rejected with apperror INSUFFICIENT_STOCK.
	AdjustStock(ctx context.Context, productID id.ID, delta int) (int, error)

	List(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
}
