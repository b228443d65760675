package distribution_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/security"
	"retailops/internal/core/types"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/distribution"
	"retailops/internal/testutil/memstore"
)

func TestDistribute_CreatesMirrorAndPendingLine(t *testing.T) {
	f := newFixture(t, distribution.CreditAtDistribution)
	m1 := f.master(t, "M1", "Teh Botol")
	s1 := f.Store.AddRetailStore("Toko Maju")

	batch := f.distribute(t, s1.ID, item(m1, 10, 1000))

	assert.Equal(t, 10, f.stock(t, s1.ID, "M1"))

	rows := f.Store.Distributions()
	require.Len(t, rows, 1)
	assert.Equal(t, distribution.StatusPendingAcceptance, rows[0].Status)
	assert.True(t, types.MoneyFromInt(10000).Equal(rows[0].TotalAmount))
	assert.Equal(t, m1.ID, rows[0].MasterProductID)

	mirror := f.Store.ProductByCode(s1.ID, "M1")
	assert.Equal(t, mirror.ID, rows[0].ProductID)
	assert.NotEqual(t, m1.ID, mirror.ID)
	assert.True(t, types.MoneyFromInt(1000).Equal(mirror.PurchasePrice))
	assert.True(t, m1.SellingPrice.Equal(mirror.SellingPrice))

	assert.Equal(t, rows[0].ID, batch.ID)
	assert.Equal(t, "DIST-20260314-TOK-BUD", batch.InvoiceNumber)
	assert.Equal(t, 10, batch.TotalItems)
	assert.Equal(t, []audit.Action{
		audit.ActionCreateMasterProduct,
		audit.ActionDistribute,
	}, f.Audit.Actions())
}

func TestDistribute_MirrorsReferencesByNaturalKey(t *testing.T) {
	f := newFixture(t, distribution.CreditAtDistribution)
	a := f.master(t, "A", "Air Mineral")
	b := f.master(t, "B", "Kopi Susu")
	s1 := f.Store.AddRetailStore("Toko Maju")

	f.distribute(t, s1.ID, item(a, 1, 100))
	f.distribute(t, s1.ID, item(b, 2, 100))
	f.distribute(t, s1.ID, item(a, 3, 100), item(b, 4, 100))

	assert.Equal(t, 1, f.Store.CountCategories(s1.ID))
	assert.Equal(t, 1, f.Store.CountSuppliers(s1.ID))
	assert.Equal(t, 2, f.Store.CountProducts(s1.ID))

	mirrorA := f.Store.ProductByCode(s1.ID, "A")
	cat, err := f.Store.Categories().GetByID(f.ctx, *mirrorA.CategoryID)
	require.NoError(t, err)
	assert.Equal(t, s1.ID, cat.StoreID)
	assert.Equal(t, "Minuman", cat.Name)
	assert.Equal(t, 4, mirrorA.Stock)
}

func TestDistribute_LosingInsertRaceReusesWinner(t *testing.T) {
	f := newFixture(t, distribution.CreditAtDistribution)
	m := f.master(t, "M1", "Teh Botol")
	s1 := f.Store.AddRetailStore("Toko Maju")
	f.distribute(t, s1.ID, item(m, 5, 1000))

	// every lookup misses once, so each insert collides with the existing row
	f.Store.MissOnce("categories.find")
	f.Store.MissOnce("suppliers.find")
	f.Store.MissOnce("products.find")
	f.distribute(t, s1.ID, item(m, 7, 900))

	assert.Equal(t, 1, f.Store.CountCategories(s1.ID))
	assert.Equal(t, 1, f.Store.CountSuppliers(s1.ID))
	assert.Equal(t, 1, f.Store.CountProducts(s1.ID))
	assert.Equal(t, 12, f.stock(t, s1.ID, "M1"))
	assert.True(t, types.MoneyFromInt(900).Equal(f.Store.ProductByCode(s1.ID, "M1").PurchasePrice))
}

func TestDistribute_DefaultsUnitPriceToMasterPurchasePrice(t *testing.T) {
	f := newFixture(t, distribution.CreditAtDistribution)
	m := f.master(t, "M1", "Teh Botol")
	s1 := f.Store.AddRetailStore("Toko Maju")

	batch := f.distribute(t, s1.ID, distribution.ItemInput{MasterProductID: m.ID, Quantity: 3})

	require.Len(t, batch.Items, 1)
	assert.True(t, types.MoneyFromInt(800).Equal(batch.Items[0].UnitPrice))
	assert.True(t, types.MoneyFromInt(2400).Equal(batch.TotalAmount))
}

func TestDistribute_ExistingMirrorKeepsPriceWithoutUnitPrice(t *testing.T) {
	f := newFixture(t, distribution.CreditAtDistribution)
	m := f.master(t, "M1", "Teh Botol")
	s1 := f.Store.AddRetailStore("Toko Maju")

	f.distribute(t, s1.ID, item(m, 1, 1500))
	f.distribute(t, s1.ID, distribution.ItemInput{MasterProductID: m.ID, Quantity: 1})

	assert.True(t, types.MoneyFromInt(1500).Equal(f.Store.ProductByCode(s1.ID, "M1").PurchasePrice))
}

func TestDistribute_AllOrNothing(t *testing.T) {
	f := newFixture(t, distribution.CreditAtDistribution)
	a := f.master(t, "A", "Air Mineral")
	b := f.master(t, "B", "Kopi Susu")
	c := f.master(t, "C", "Roti Tawar")
	s1 := f.Store.AddRetailStore("Toko Maju")
	events := len(f.Audit.Entries())

	f.Store.FailOn("products.insert", 2, errors.New("disk full"))

	_, err := f.Distribution.Distribute(f.ctx, memstore.WarehouseStaff(), distribution.DistributeInput{
		TargetStoreID: s1.ID,
		Items:         []distribution.ItemInput{item(a, 1, 10), item(b, 2, 10), item(c, 3, 10)},
	})
	require.Error(t, err)

	assert.Empty(t, f.Store.Distributions())
	assert.Zero(t, f.Store.CountProducts(s1.ID))
	assert.Zero(t, f.Store.CountCategories(s1.ID))
	assert.Zero(t, f.Store.CountSuppliers(s1.ID))
	assert.Len(t, f.Audit.Entries(), events, "no audit for a rolled back call")
}

func TestDistribute_AllOrNothingOnExistingMirrors(t *testing.T) {
	f := newFixture(t, distribution.CreditAtDistribution)
	a := f.master(t, "A", "Air Mineral")
	b := f.master(t, "B", "Kopi Susu")
	c := f.master(t, "C", "Roti Tawar")
	s1 := f.Store.AddRetailStore("Toko Maju")
	f.distribute(t, s1.ID, item(a, 1, 10), item(b, 1, 10), item(c, 1, 10))

	f.Store.FailOn("products.adjust_stock", 2, errors.New("deadlock detected"))
	_, err := f.Distribution.Distribute(f.ctx, memstore.WarehouseStaff(), distribution.DistributeInput{
		TargetStoreID: s1.ID,
		Items:         []distribution.ItemInput{item(a, 5, 10), item(b, 5, 10), item(c, 5, 10)},
	})
	require.Error(t, err)

	assert.Len(t, f.Store.Distributions(), 3)
	for _, code := range []string{"A", "B", "C"} {
		assert.Equal(t, 1, f.stock(t, s1.ID, code), code)
	}
}

func TestDistribute_CreditAtAcceptanceLeavesStockUntouched(t *testing.T) {
	f := newFixture(t, distribution.CreditAtAcceptance)
	m := f.master(t, "M1", "Teh Botol")
	s1 := f.Store.AddRetailStore("Toko Maju")

	f.distribute(t, s1.ID, item(m, 10, 1000))

	assert.Equal(t, 0, f.stock(t, s1.ID, "M1"))
}

func TestDistribute_Rejections(t *testing.T) {
	f := newFixture(t, distribution.CreditAtDistribution)
	m := f.master(t, "M1", "Teh Botol")
	s1 := f.Store.AddRetailStore("Toko Maju")
	closed := f.Store.AddStore("Toko Tutup", "TUTUP", catalog.StoreKindRetail, catalog.StoreInactive)
	central, err := f.Warehouse.EnsureCentral(f.ctx)
	require.NoError(t, err)

	other := f.Store.AddRetailStore("Toko Lain")
	foreign := &catalog.Product{ID: id.New(), StoreID: other.ID, ProductCode: "X", Name: "Local only", Unit: "pcs"}
	_, err = f.Store.Products().Insert(f.ctx, foreign)
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor security.Actor
		in    distribution.DistributeInput
		code  string
	}{
		{"no items", memstore.WarehouseStaff(), distribution.DistributeInput{TargetStoreID: s1.ID}, apperror.CodeValidation},
		{"no target", memstore.WarehouseStaff(), distribution.DistributeInput{Items: []distribution.ItemInput{item(m, 1, 1)}}, apperror.CodeValidation},
		{"zero quantity", memstore.WarehouseStaff(), distribution.DistributeInput{TargetStoreID: s1.ID, Items: []distribution.ItemInput{item(m, 0, 1)}}, apperror.CodeValidation},
		{"negative price", memstore.WarehouseStaff(), distribution.DistributeInput{TargetStoreID: s1.ID, Items: []distribution.ItemInput{item(m, 1, -1)}}, apperror.CodeValidation},
		{"duplicate master", memstore.WarehouseStaff(), distribution.DistributeInput{TargetStoreID: s1.ID, Items: []distribution.ItemInput{item(m, 1, 1), item(m, 2, 1)}}, apperror.CodeValidation},
		{"warehouse tenant as target", memstore.WarehouseStaff(), distribution.DistributeInput{TargetStoreID: central.Store.ID, Items: []distribution.ItemInput{item(m, 1, 1)}}, apperror.CodeValidation},
		{"inactive store", memstore.WarehouseStaff(), distribution.DistributeInput{TargetStoreID: closed.ID, Items: []distribution.ItemInput{item(m, 1, 1)}}, apperror.CodeValidation},
		{"unknown store", memstore.WarehouseStaff(), distribution.DistributeInput{TargetStoreID: id.New(), Items: []distribution.ItemInput{item(m, 1, 1)}}, apperror.CodeNotFound},
		{"unknown master", memstore.WarehouseStaff(), distribution.DistributeInput{TargetStoreID: s1.ID, Items: []distribution.ItemInput{{MasterProductID: id.New(), Quantity: 1}}}, apperror.CodeNotFound},
		{"master from another tenant", memstore.WarehouseStaff(), distribution.DistributeInput{TargetStoreID: s1.ID, Items: []distribution.ItemInput{{MasterProductID: foreign.ID, Quantity: 1}}}, apperror.CodeNotFound},
		{"admin may not distribute", memstore.StoreAdmin(s1.ID), distribution.DistributeInput{TargetStoreID: s1.ID, Items: []distribution.ItemInput{item(m, 1, 1)}}, apperror.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Distribution.Distribute(f.ctx, tt.actor, tt.in)
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}

	assert.Empty(t, f.Store.Distributions())
	assert.Nil(t, f.Store.ProductByCode(s1.ID, "M1"))
}

func TestDistribute_ManagerMayDistribute(t *testing.T) {
	f := newFixture(t, distribution.CreditAtDistribution)
	m := f.master(t, "M1", "Teh Botol")
	s1 := f.Store.AddRetailStore("Toko Maju")

	batch, err := f.Distribution.Distribute(f.ctx, memstore.Manager(), distribution.DistributeInput{
		TargetStoreID: s1.ID,
		Items:         []distribution.ItemInput{item(m, 2, 10)},
	})
	require.NoError(t, err)
	// no directory entry: the user id stands in for the name
	assert.Equal(t, "DIST-20260314-TOK-U-M", batch.InvoiceNumber)
}
