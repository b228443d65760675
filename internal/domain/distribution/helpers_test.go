package distribution_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/distribution"
	"retailops/internal/testutil/memstore"
)

var t0 = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// clock advances one second per reading so every call gets its own batch key.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fixture struct {
	*memstore.Services
	clock *clock
	ctx   context.Context
}

func newFixture(t *testing.T, credit distribution.CreditPoint) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, distribution.Config{CreditPoint: credit})
}

func newFixtureWithConfig(t *testing.T, cfg distribution.Config) *fixture {
	t.Helper()
	c := &clock{t: t0}
	cfg.Now = c.Now
	svc := memstore.NewServices(cfg)
	svc.Store.AddUser(memstore.WarehouseStaff().UserID, "budi")
	return &fixture{Services: svc, clock: c, ctx: context.Background()}
}

func (f *fixture) master(t *testing.T, code, name string) *catalog.Product {
	t.Helper()
	p, err := f.SeedMaster(f.ctx, memstore.MasterSpec{
		Code:          code,
		Name:          name,
		Category:      "Minuman",
		SupplierCode:  "SUP-01",
		SupplierName:  "PT Sumber Segar",
		PurchasePrice: 800,
		SellingPrice:  1200,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) distribute(t *testing.T, store id.ID, items ...distribution.ItemInput) *distribution.Batch {
	t.Helper()
	batch, err := f.Distribution.Distribute(f.ctx, memstore.WarehouseStaff(), distribution.DistributeInput{
		TargetStoreID: store,
		Items:         items,
	})
	require.NoError(t, err)
	return batch
}

func item(master *catalog.Product, qty int, price int64) distribution.ItemInput {
	p := types.MoneyFromInt(price)
	return distribution.ItemInput{MasterProductID: master.ID, Quantity: qty, UnitPrice: &p}
}

func (f *fixture) stock(t *testing.T, store id.ID, code string) int {
	t.Helper()
	p := f.Store.ProductByCode(store, code)
	require.NotNil(t, p, "mirror %s missing", code)
	return p.Stock
}
