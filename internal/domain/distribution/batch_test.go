package distribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/id"
	"retailops/internal/core/types"
)

func TestInvoiceNumber(t *testing.T) {
	at := time.Date(2026, 1, 5, 23, 30, 0, 0, time.UTC)
	jakarta := time.FixedZone("WIB", 7*3600)

	tests := []struct {
		name  string
		loc   *time.Location
		store string
		user  string
		want  string
	}{
		{"basic", time.UTC, "Toko Maju", "budi", "DIST-20260105-TOK-BUD"},
		{"spaces stripped", nil, " A B C D", "ra ni", "DIST-20260105-ABC-RAN"},
		{"short inputs kept", time.UTC, "XY", "7", "DIST-20260105-XY-7"},
		{"empty user", time.UTC, "Toko", "", "DIST-20260105-TOK-"},
		{"non-ascii", time.UTC, "Café Ñandú", "josé", "DIST-20260105-CAF-JOS"},
		{"date follows location", jakarta, "Toko", "budi", "DIST-20260106-TOK-BUD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InvoiceNumber(at, tt.loc, tt.store, tt.user))
		})
	}
}

func line(at time.Time, store id.ID, by string, qty int, price int64, status Status) Distribution {
	return Distribution{
		ID:            id.New(),
		WarehouseID:   warehouseID,
		StoreID:       store,
		DistributedAt: at,
		DistributedBy: by,
		Quantity:      qty,
		UnitPrice:     types.MoneyFromInt(price),
		TotalAmount:   types.LineTotal(types.MoneyFromInt(price), qty),
		Status:        status,
		StoreName:     "Toko Maju",
		ProductName:   "Teh Botol",
		ProductCode:   "TB-01",
	}
}

var warehouseID = id.New()

func TestGroupBatches(t *testing.T) {
	storeA, storeB := id.New(), id.New()
	early := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	a1 := line(early, storeA, "u1", 2, 100, StatusAccepted)
	a2 := line(early, storeA, "u1", 3, 50, StatusPendingAcceptance)
	a3 := line(early, storeA, "u2", 1, 10, StatusPendingAcceptance)
	b1 := line(late, storeB, "u1", 5, 20, StatusPendingAcceptance)

	// input order must not matter
	batches := GroupBatches([]Distribution{a3, a2, b1, a1}, time.UTC)
	require.Len(t, batches, 3)

	assert.Equal(t, storeB, batches[0].StoreID, "newest first")

	first := batches[1]
	assert.Equal(t, "u1", first.DistributedBy)
	assert.Equal(t, a1.ID, first.ID, "batch id is the smallest line id")
	assert.Equal(t, StatusAccepted, first.Status)
	assert.Equal(t, 5, first.TotalItems)
	assert.True(t, types.MoneyFromInt(350).Equal(first.TotalAmount))
	assert.Equal(t, 1, first.PendingCount)
	assert.Equal(t, 1, first.AcceptedCount)
	assert.Equal(t, []id.ID{a1.ID, a2.ID}, []id.ID{first.Items[0].ID, first.Items[1].ID})

	assert.Equal(t, "u2", batches[2].DistributedBy)
}

func TestGroupBatchesIsDeterministic(t *testing.T) {
	store := id.New()
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rows := []Distribution{
		line(at, store, "u1", 1, 10, StatusPendingAcceptance),
		line(at, store, "u1", 2, 10, StatusPendingAcceptance),
		line(at.Add(time.Minute), store, "u1", 3, 10, StatusPendingAcceptance),
	}

	first := GroupBatches(rows, time.UTC)
	second := GroupBatches([]Distribution{rows[2], rows[0], rows[1]}, time.UTC)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].InvoiceNumber, second[i].InvoiceNumber)
		assert.Equal(t, first[i].TotalItems, second[i].TotalItems)
		assert.True(t, first[i].TotalAmount.Equal(second[i].TotalAmount))
	}
}

func TestGroupBatchesUsesDirectoryName(t *testing.T) {
	name := "rina"
	d := line(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), id.New(), "42", 1, 1, StatusPendingAcceptance)
	d.DistributedByName = &name

	b := BuildBatch([]Distribution{d}, time.UTC)
	assert.Equal(t, "DIST-20260301-TOK-RIN", b.InvoiceNumber)
	assert.Equal(t, "rina", b.DistributedByName)
}

func TestBatchMatches(t *testing.T) {
	notes := "Pengiriman Lebaran"
	d := line(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC), id.New(), "budi", 1, 1, StatusPendingAcceptance)
	d.Notes = &notes
	b := BuildBatch([]Distribution{d}, time.UTC)

	for _, q := range []string{"", "dist-20260301", "toko maju", "teh", "tb-01", "lebaran"} {
		assert.True(t, b.Matches(q), q)
	}
	assert.False(t, b.Matches("kopi"))
}
