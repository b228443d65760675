// Package distribution moves master-catalog products from the central
// warehouse into store inventories and tracks their per-line acceptance.
package distribution

import (
	"context"
	"fmt"
	"time"

	"retailops/internal/core/id"
	"retailops/internal/core/types"
)

// Status of a distribution line.
type Status string

const (
	StatusPendingAcceptance Status = "PENDING_ACCEPTANCE"
	StatusAccepted          Status = "ACCEPTED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	return s == StatusPendingAcceptance || s == StatusAccepted
}

// CreditPoint is where a distributed quantity is added to the store's stock.
type CreditPoint string

const (
	// CreditAtDistribution credits stock when goods are shipped; acceptance only records the purchase.
	CreditAtDistribution CreditPoint = "distribution"
	// CreditAtAcceptance leaves shipped lines as a pending manifest until each one is accepted.
	CreditAtAcceptance CreditPoint = "acceptance"
)

// ParseCreditPoint parses a configured credit point.
func ParseCreditPoint(s string) (CreditPoint, error) {
	switch CreditPoint(s) {
	case CreditAtDistribution, CreditAtAcceptance:
		return CreditPoint(s), nil
	}
	return "", fmt.Errorf("unknown stock credit point %q", s)
}

// Distribution is one shipped product line.
// Lines shipped by one call share DistributedAt, StoreID, WarehouseID and DistributedBy.
type Distribution struct {
	ID              id.ID       `db:"id" json:"id"`
	WarehouseID     id.ID       `db:"warehouse_id" json:"warehouseId"`
	StoreID         id.ID       `db:"store_id" json:"storeId"`
	ProductID       id.ID       `db:"product_id" json:"productId"`
	MasterProductID id.ID       `db:"master_product_id" json:"masterProductId"`
	Quantity        int         `db:"quantity" json:"quantity"`
	UnitPrice       types.Money `db:"unit_price" json:"unitPrice"`
	TotalAmount     types.Money `db:"total_amount" json:"totalAmount"`
	Status          Status      `db:"status" json:"status"`
	DistributedAt   time.Time   `db:"distributed_at" json:"distributedAt"`
	DistributedBy   string      `db:"distributed_by" json:"distributedBy"`
	AcceptedAt      *time.Time  `db:"accepted_at" json:"acceptedAt,omitempty"`
	AcceptedBy      *string     `db:"accepted_by" json:"acceptedBy,omitempty"`
	Notes           *string     `db:"notes" json:"notes,omitempty"`

	// Read-only, joined on load.
	StoreName         string  `db:"store_name" json:"storeName"`
	ProductCode       string  `db:"product_code" json:"productCode"`
	ProductName       string  `db:"product_name" json:"productName"`
	DistributedByName *string `db:"distributed_by_name" json:"distributedByName,omitempty"`
}

// BatchKey identifies the lines of one shipment.
type BatchKey struct {
	DistributedAt time.Time
	StoreID       id.ID
	WarehouseID   id.ID
	DistributedBy string
}

// Key returns the batch key of the line.
func (d *Distribution) Key() BatchKey {
	return BatchKey{
		DistributedAt: d.DistributedAt,
		StoreID:       d.StoreID,
		WarehouseID:   d.WarehouseID,
		DistributedBy: d.DistributedBy,
	}
}

// RowFilter selects distribution lines of one warehouse.
type RowFilter struct {
	WarehouseID id.ID
	StoreID     *id.ID
	Status      *Status
	From        *time.Time
	To          *time.Time
	// Limit caps the number of returned rows.
	Limit int
}

// AcceptUpdate is written by a successful acceptance.
type AcceptUpdate struct {
	AcceptedBy string
	AcceptedAt time.Time
	Note       string
}

// Repository defines persistence for distribution lines. Lines are never deleted.
type Repository interface {
	Insert(ctx context.Context, d *Distribution) error
	GetByID(ctx context.Context, id id.ID) (*Distribution, error)

	// MarkAccepted moves a PENDING_ACCEPTANCE line to ACCEPTED and appends the note.
	// It returns false when the line is not pending anymore.
	MarkAccepted(ctx context.Context, id id.ID, upd AcceptUpdate) (bool, error)

	// ListRows returns lines ordered by distributed_at descending.
	ListRows(ctx context.Context, f RowFilter) ([]Distribution, error)

	// ListByBatchKey returns all lines of one shipment ordered by id.
	ListByBatchKey(ctx context.Context, key BatchKey) ([]Distribution, error)
}
