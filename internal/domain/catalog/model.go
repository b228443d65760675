// Package catalog provides the tenant-scoped catalog: stores and the
// products, categories and suppliers each store owns.
package catalog

import (
	"strings"
	"time"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
)

// StoreKind separates real retail tenants from the tenant that hosts the master catalog.
type StoreKind string

const (
	StoreKindRetail    StoreKind = "RETAIL"
	StoreKindWarehouse StoreKind = "WAREHOUSE"
)

// StoreStatus is the lifecycle state of a store.
type StoreStatus string

const (
	StoreActive   StoreStatus = "ACTIVE"
	StoreInactive StoreStatus = "INACTIVE"
)

// WarehouseStoreCode is the natural key of the tenant holding master-catalog rows.
const WarehouseStoreCode = "WAREHOUSE"

// Store is a tenant.
type Store struct {
	ID        id.ID       `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Code      string      `db:"code" json:"code"`
	Kind      StoreKind   `db:"kind" json:"kind"`
	Status    StoreStatus `db:"status" json:"status"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// CanReceiveDistribution reports whether goods may be shipped to the store.
func (s *Store) CanReceiveDistribution() bool {
	return s.Kind == StoreKindRetail && s.Status == StoreActive
}

// Category groups products inside one store. Name is the natural key.
type Category struct {
	ID          id.ID     `db:"id" json:"id"`
	StoreID     id.ID     `db:"store_id" json:"storeId"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks required fields.
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperror.NewValidation("category name is required").WithDetail("field", "name")
	}
	if len(c.Name) > 100 {
		return apperror.NewValidation("category name must be at most 100 characters").WithDetail("field", "name")
	}
	return nil
}

// Supplier provides goods to one store. Code is the natural key.
type Supplier struct {
	ID        id.ID     `db:"id" json:"id"`
	StoreID   id.ID     `db:"store_id" json:"storeId"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks required fields.
func (s *Supplier) Validate() error {
	s.Code = strings.TrimSpace(s.Code)
	s.Name = strings.TrimSpace(s.Name)
	if s.Code == "" {
		return apperror.NewValidation("supplier code is required").WithDetail("field", "code")
	}
	if s.Name == "" {
		return apperror.NewValidation("supplier name is required").WithDetail("field", "name")
	}
	return nil
}

// Product is a sellable item owned by one store.
// The same ProductCode may exist once per store; a store-local copy of a
// master product is an independent row with its own stock.
type Product struct {
	ID          id.ID   `db:"id" json:"id"`
	StoreID     id.ID   `db:"store_id" json:"storeId"`
	ProductCode string  `db:"product_code" json:"productCode"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
	Unit        string  `db:"unit" json:"unit"`
	CategoryID  *id.ID  `db:"category_id" json:"categoryId,omitempty"`
	SupplierID  *id.ID  `db:"supplier_id" json:"supplierId,omitempty"`

	// Stock is never negative.
	Stock int `db:"stock" json:"stock"`

	PurchasePrice  types.Money  `db:"purchase_price" json:"purchasePrice"`
	SellingPrice   types.Money  `db:"selling_price" json:"sellingPrice"`
	WholesalePrice *types.Money `db:"wholesale_price" json:"wholesalePrice,omitempty"`
	MemberPrice    *types.Money `db:"member_price" json:"memberPrice,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Validate checks required fields and price ranges.
func (p *Product) Validate() error {
	p.ProductCode = strings.TrimSpace(p.ProductCode)
	p.Name = strings.TrimSpace(p.Name)

	if p.ProductCode == "" {
		return apperror.NewValidation("product code is required").WithDetail("field", "productCode")
	}
	if p.Name == "" {
		return apperror.NewValidation("product name is required").WithDetail("field", "name")
	}
	if p.Unit == "" {
		p.Unit = "pcs"
	}
	if p.Stock < 0 {
		return apperror.NewValidation("stock cannot be negative").WithDetail("field", "stock")
	}
	if p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").WithDetail("field", "purchasePrice")
	}
	if p.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling price cannot be negative").WithDetail("field", "sellingPrice")
	}
	if p.WholesalePrice != nil && p.WholesalePrice.IsNegative() {
		return apperror.NewValidation("wholesale price cannot be negative").WithDetail("field", "wholesalePrice")
	}
	if p.MemberPrice != nil && p.MemberPrice.IsNegative() {
		return apperror.NewValidation("member price cannot be negative").WithDetail("field", "memberPrice")
	}
	return nil
}

// ProductFilter selects products of one store.
type ProductFilter struct {
	StoreID    id.ID
	Search     string
	CategoryID *id.ID
	SupplierID *id.ID
	Limit      int
	Offset     int
}
