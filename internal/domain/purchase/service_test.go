package purchase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/distribution"
	"retailops/internal/domain/purchase"
	"retailops/internal/testutil/memstore"
)

type fixture struct {
	*memstore.Services
	ctx   context.Context
	store *catalog.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	svc := memstore.NewServices(distribution.DefaultConfig())
	return &fixture{
		Services: svc,
		ctx:      context.Background(),
		store:    svc.Store.AddRetailStore("Toko Maju"),
	}
}

func (f *fixture) product(t *testing.T, code string, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{ID: id.New(), StoreID: f.store.ID, ProductCode: code, Name: code, Unit: "pcs", Stock: stock}
	_, err := f.Store.Products().Insert(f.ctx, p)
	require.NoError(t, err)
	return p
}

func (f *fixture) purchase(t *testing.T, status purchase.Status, lines map[*catalog.Product]int) *purchase.Purchase {
	t.Helper()
	p := &purchase.Purchase{
		ID:           id.New(),
		Number:       "PUR-MANUAL-" + id.New().String(),
		StoreID:      f.store.ID,
		UserID:       "u1",
		PurchaseDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:       status,
		Source:       purchase.SourceManual,
		TotalAmount:  types.MoneyFromInt(999), // stale on purpose
	}
	for prod, qty := range lines {
		p.Items = append(p.Items, purchase.Item{
			ID:            id.New(),
			PurchaseID:    p.ID,
			ProductID:     prod.ID,
			Quantity:      qty,
			PurchasePrice: types.MoneyFromInt(100),
			Subtotal:      types.LineTotal(types.MoneyFromInt(100), qty),
		})
	}
	require.NoError(t, f.Store.PurchasesRepo().Insert(f.ctx, p))
	return p
}

func (f *fixture) stock(t *testing.T, code string) int {
	t.Helper()
	return f.Store.ProductByCode(f.store.ID, code).Stock
}

func TestStockDirection(t *testing.T) {
	assert.Equal(t, -1, purchase.StockDirection(purchase.StatusCompleted, purchase.StatusCancelled))
	assert.Equal(t, 1, purchase.StockDirection(purchase.StatusCancelled, purchase.StatusCompleted))
	assert.Equal(t, 0, purchase.StockDirection(purchase.StatusCompleted, purchase.StatusCompleted))
	assert.Equal(t, 0, purchase.StockDirection(purchase.StatusCancelled, purchase.StatusCancelled))
}

func TestSetStatus_CancelAndReinstate(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10)
	b := f.product(t, "B", 5)
	p := f.purchase(t, purchase.StatusCompleted, map[*catalog.Product]int{a: 4, b: 5})
	admin := memstore.StoreAdmin(f.store.ID)

	cancelled, err := f.Purchases.SetStatus(f.ctx, admin, p.ID, purchase.UpdateStatusInput{Status: purchase.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, purchase.StatusCancelled, cancelled.Status)
	assert.True(t, types.MoneyFromInt(900).Equal(cancelled.TotalAmount), "total recomputed from items")
	assert.Equal(t, 6, f.stock(t, "A"))
	assert.Equal(t, 0, f.stock(t, "B"))

	again, err := f.Purchases.SetStatus(f.ctx, admin, p.ID, purchase.UpdateStatusInput{Status: purchase.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, purchase.StatusCancelled, again.Status)
	assert.Equal(t, 6, f.stock(t, "A"))

	note := "restocked"
	reinstated, err := f.Purchases.SetStatus(f.ctx, admin, p.ID, purchase.UpdateStatusInput{Status: purchase.StatusCompleted, Notes: &note})
	require.NoError(t, err)
	assert.Equal(t, purchase.StatusCompleted, reinstated.Status)
	assert.Equal(t, "restocked", *reinstated.Notes)
	assert.Equal(t, 10, f.stock(t, "A"))
	assert.Equal(t, 5, f.stock(t, "B"))

	_, err = f.Purchases.SetStatus(f.ctx, admin, p.ID, purchase.UpdateStatusInput{Status: purchase.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, "A"))

	assert.Equal(t, []audit.Action{
		audit.ActionUpdatePurchaseStatus,
		audit.ActionUpdatePurchaseStatus,
		audit.ActionUpdatePurchaseStatus,
		audit.ActionUpdatePurchaseStatus,
	}, f.Audit.Actions())
}

func TestSetStatus_RejectsNegativeStock(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10)
	b := f.product(t, "B", 2) // three already sold
	p := f.purchase(t, purchase.StatusCompleted, map[*catalog.Product]int{a: 4, b: 5})

	_, err := f.Purchases.SetStatus(f.ctx, memstore.Manager(), p.ID, purchase.UpdateStatusInput{Status: purchase.StatusCancelled})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	assert.Equal(t, 10, f.stock(t, "A"), "no partial reversal")
	assert.Equal(t, 2, f.stock(t, "B"))
	stored, err := f.Store.PurchasesRepo().GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, purchase.StatusCompleted, stored.Status)
	assert.Empty(t, f.Audit.Entries())
}

func TestSetStatus_Rejections(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10)
	p := f.purchase(t, purchase.StatusCompleted, map[*catalog.Product]int{a: 1})
	other := f.Store.AddRetailStore("Toko Lain")

	_, err := f.Purchases.SetStatus(f.ctx, memstore.Manager(), p.ID, purchase.UpdateStatusInput{Status: "REFUNDED"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.Purchases.SetStatus(f.ctx, memstore.Manager(), id.New(), purchase.UpdateStatusInput{Status: purchase.StatusCancelled})
	assert.True(t, apperror.IsNotFound(err))

	_, err = f.Purchases.SetStatus(f.ctx, memstore.StoreAdmin(other.ID), p.ID, purchase.UpdateStatusInput{Status: purchase.StatusCancelled})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	_, err = f.Purchases.SetStatus(f.ctx, memstore.WarehouseStaff(), p.ID, purchase.UpdateStatusInput{Status: purchase.StatusCancelled})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	assert.Equal(t, 10, f.stock(t, "A"))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10)
	completed := f.purchase(t, purchase.StatusCompleted, map[*catalog.Product]int{a: 4})
	cancelled := f.purchase(t, purchase.StatusCancelled, map[*catalog.Product]int{a: 3})
	admin := memstore.StoreAdmin(f.store.ID)

	require.NoError(t, f.Purchases.Delete(f.ctx, admin, completed.ID))
	assert.Equal(t, 6, f.stock(t, "A"), "completed purchase reversed")

	require.NoError(t, f.Purchases.Delete(f.ctx, admin, cancelled.ID))
	assert.Equal(t, 6, f.stock(t, "A"), "cancelled purchase already reversed")

	assert.Empty(t, f.Store.Purchases(f.store.ID))
	assert.True(t, apperror.IsNotFound(f.Purchases.Delete(f.ctx, admin, completed.ID)))
}

func TestDelete_RollsBackWhenStockIsGone(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 1)
	p := f.purchase(t, purchase.StatusCompleted, map[*catalog.Product]int{a: 4})

	err := f.Purchases.Delete(f.ctx, memstore.Manager(), p.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Len(t, f.Store.Purchases(f.store.ID), 1)
	assert.Equal(t, 1, f.stock(t, "A"))
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "A", 10)
	p1 := f.purchase(t, purchase.StatusCompleted, map[*catalog.Product]int{a: 1})
	f.purchase(t, purchase.StatusCancelled, map[*catalog.Product]int{a: 1})

	other := f.Store.AddRetailStore("Toko Lain")
	admin := memstore.StoreAdmin(f.store.ID)

	got, err := f.Purchases.Get(f.ctx, admin, p1.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = f.Purchases.Get(f.ctx, memstore.StoreAdmin(other.ID), p1.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))

	page, err := f.Purchases.List(f.ctx, admin, purchase.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)

	completed := purchase.StatusCompleted
	page, err = f.Purchases.List(f.ctx, memstore.Manager(), purchase.ListFilter{Status: &completed})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, p1.ID, page.Items[0].ID)

	page, err = f.Purchases.List(f.ctx, memstore.StoreAdmin(other.ID), purchase.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = f.Purchases.List(f.ctx, memstore.StoreAdmin(other.ID), purchase.ListFilter{StoreID: &f.store.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden))
}
