package distribution

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"retailops/internal/core/id"
	"retailops/internal/core/types"
)

// Batch is one shipment reconstructed from its distribution lines.
// Nothing about a batch is stored; the invoice number is derived on every read.
type Batch struct {
	ID                id.ID     `json:"id"`
	InvoiceNumber     string    `json:"invoiceNumber"`
	WarehouseID       id.ID     `json:"warehouseId"`
	StoreID           id.ID     `json:"storeId"`
	StoreName         string    `json:"storeName"`
	DistributedAt     time.Time `json:"distributedAt"`
	DistributedBy     string    `json:"distributedBy"`
	DistributedByName string    `json:"distributedByName"`

	// Status is the status of the line whose id is the batch id. Lines are accepted
	// one by one, so PendingCount and AcceptedCount give the full picture.
	Status        Status         `json:"status"`
	Items         []Distribution `json:"items"`
	TotalItems    int            `json:"totalItems"`
	TotalAmount   types.Money    `json:"totalAmount"`
	PendingCount  int            `json:"pendingCount"`
	AcceptedCount int            `json:"acceptedCount"`
}

// InvoiceNumber derives the invoice number of a shipment:
// DIST-YYYYMMDD-<first 3 letters of store>-<first 3 letters of user>.
// The date is rendered in loc; nil means UTC.
func InvoiceNumber(distributedAt time.Time, loc *time.Location, storeName, user string) string {
	if loc == nil {
		loc = time.UTC
	}
	return "DIST-" + distributedAt.In(loc).Format("20060102") +
		"-" + invoiceToken(storeName) +
		"-" + invoiceToken(user)
}

func invoiceToken(s string) string {
	s = strings.ToUpper(strings.Join(strings.Fields(s), ""))
	if utf8.RuneCountInString(s) <= 3 {
		return s
	}
	return string([]rune(s)[:3])
}

type groupKey struct {
	distributedAt int64
	storeID       id.ID
	distributedBy string
}

// GroupBatches groups lines by (distributedAt, storeId, distributedBy) and
// returns the batches newest first. Ties are broken by store id, then distributor.
func GroupBatches(rows []Distribution, loc *time.Location) []Batch {
	groups := make(map[groupKey][]Distribution)
	order := make([]groupKey, 0)
	for _, r := range rows {
		k := groupKey{
			distributedAt: r.DistributedAt.UnixMicro(),
			storeID:       r.StoreID,
			distributedBy: r.DistributedBy,
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	batches := make([]Batch, 0, len(order))
	for _, k := range order {
		batches = append(batches, BuildBatch(groups[k], loc))
	}

	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if !a.DistributedAt.Equal(b.DistributedAt) {
			return a.DistributedAt.After(b.DistributedAt)
		}
		if a.StoreID != b.StoreID {
			return id.Less(a.StoreID, b.StoreID)
		}
		return a.DistributedBy < b.DistributedBy
	})
	return batches
}

// BuildBatch summarizes the lines of one shipment. rows must not be empty.
func BuildBatch(rows []Distribution, loc *time.Location) Batch {
	items := append([]Distribution(nil), rows...)
	sort.Slice(items, func(i, j int) bool { return id.Less(items[i].ID, items[j].ID) })

	first := items[0]
	user := first.DistributedBy
	if first.DistributedByName != nil && *first.DistributedByName != "" {
		user = *first.DistributedByName
	}

	b := Batch{
		ID:                first.ID,
		InvoiceNumber:     InvoiceNumber(first.DistributedAt, loc, first.StoreName, user),
		WarehouseID:       first.WarehouseID,
		StoreID:           first.StoreID,
		StoreName:         first.StoreName,
		DistributedAt:     first.DistributedAt,
		DistributedBy:     first.DistributedBy,
		DistributedByName: user,
		Status:            first.Status,
		Items:             items,
		TotalAmount:       types.Zero(),
	}
	for _, it := range items {
		b.TotalItems += it.Quantity
		b.TotalAmount = b.TotalAmount.Add(it.TotalAmount)
		switch it.Status {
		case StatusPendingAcceptance:
			b.PendingCount++
		case StatusAccepted:
			b.AcceptedCount++
		}
	}
	return b
}

// Matches reports whether the batch matches a case-insensitive search on
// invoice number, store name, product name or code, and notes.
func (b *Batch) Matches(search string) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(b.InvoiceNumber), q) ||
		strings.Contains(strings.ToLower(b.StoreName), q) {
		return true
	}
	for _, it := range b.Items {
		if strings.Contains(strings.ToLower(it.ProductName), q) ||
			strings.Contains(strings.ToLower(it.ProductCode), q) {
			return true
		}
		if it.Notes != nil && strings.Contains(strings.ToLower(*it.Notes), q) {
			return true
		}
	}
	return false
}
