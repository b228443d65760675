// Package purchase provides the store purchase ledger and the stock
// reconciliation driven by purchase status changes.
package purchase

import (
	"context"
	"time"

	"retailops/internal/core/id"
	"retailops/internal/core/types"
)

// Status of a purchase.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Source tells how a purchase came to exist.
type Source string

const (
	SourceManual       Source = "MANUAL"
	SourceDistribution Source = "DISTRIBUTION"
)

// Purchase is goods bought into a store.
type Purchase struct {
	ID             id.ID       `db:"id" json:"id"`
	Number         string      `db:"number" json:"number"`
	StoreID        id.ID       `db:"store_id" json:"storeId"`
	SupplierID     *id.ID      `db:"supplier_id" json:"supplierId,omitempty"`
	UserID         string      `db:"user_id" json:"userId"`
	PurchaseDate   time.Time   `db:"purchase_date" json:"purchaseDate"`
	TotalAmount    types.Money `db:"total_amount" json:"totalAmount"`
	Status         Status      `db:"status" json:"status"`
	Notes          *string     `db:"notes" json:"notes,omitempty"`
	Source         Source      `db:"source" json:"source"`
	DistributionID *id.ID      `db:"distribution_id" json:"distributionId,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updatedAt"`

	Items []Item `db:"-" json:"items"`
}

// Item is one purchased product line.
type Item struct {
	ID            id.ID       `db:"id" json:"id"`
	PurchaseID    id.ID       `db:"purchase_id" json:"purchaseId"`
	ProductID     id.ID       `db:"product_id" json:"productId"`
	Quantity      int         `db:"quantity" json:"quantity"`
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`
	Subtotal      types.Money `db:"subtotal" json:"subtotal"`
}

// ItemsTotal sums item subtotals.
func (p *Purchase) ItemsTotal() types.Money {
	total := types.Zero()
	for _, it := range p.Items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// StockDirection returns the sign of the stock effect of moving from one status to another:
// +1 credits item quantities, -1 debits them, 0 leaves stock alone.
func StockDirection(from, to Status) int {
	switch {
	case from == StatusCompleted && to == StatusCancelled:
		return -1
	case from == StatusCancelled && to == StatusCompleted:
		return 1
	default:
		return 0
	}
}

// Filter selects purchases.
type Filter struct {
	StoreID *id.ID
	Status  *Status
	Source  *Source
	Limit   int
	Offset  int
}

// Repository defines persistence for purchases. Items are always read and written with their purchase.
type Repository interface {
	Insert(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, id id.ID) (*Purchase, error)
	// GetForUpdate reads the purchase and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id id.ID) (*Purchase, error)
	UpdateStatus(ctx context.Context, id id.ID, status Status, notes *string, total types.Money) error
	Delete(ctx context.Context, id id.ID) error
	List(ctx context.Context, f Filter) ([]Purchase, int64, error)
}
