package mirror_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/types"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/mirror"
	"retailops/internal/testutil/memstore"
)

func newResolver() (*memstore.Store, *mirror.Resolver, *catalog.Store) {
	s := memstore.New()
	shop := s.AddRetailStore("Toko Maju")
	return s, mirror.NewResolver(s.Categories(), s.Suppliers(), s.Products()), shop
}

func TestResolveOrCreateCategory(t *testing.T) {
	ctx := context.Background()
	s, r, shop := newResolver()
	desc := "cold drinks"

	created, err := r.ResolveOrCreateCategory(ctx, shop.ID, &catalog.Category{Name: "Minuman", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, shop.ID, created.StoreID)
	assert.Equal(t, "cold drinks", *created.Description)

	again, err := r.ResolveOrCreateCategory(ctx, shop.ID, &catalog.Category{Name: "Minuman"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	s.MissOnce("categories.find")
	raced, err := r.ResolveOrCreateCategory(ctx, shop.ID, &catalog.Category{Name: "Minuman"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, raced.ID)
	assert.Equal(t, 1, s.CountCategories(shop.ID))
}

func TestResolveOrCreateSupplier(t *testing.T) {
	ctx := context.Background()
	s, r, shop := newResolver()

	created, err := r.ResolveOrCreateSupplier(ctx, shop.ID, &catalog.Supplier{Code: "SUP-1", Name: "Sumber Rejeki"})
	require.NoError(t, err)

	s.MissOnce("suppliers.find")
	raced, err := r.ResolveOrCreateSupplier(ctx, shop.ID, &catalog.Supplier{Code: "SUP-1", Name: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, raced.ID)
	assert.Equal(t, "Sumber Rejeki", raced.Name)
	assert.Equal(t, 1, s.CountSuppliers(shop.ID))

	s.FailOn("suppliers.insert", 1, errors.New("disk full"))
	_, err = r.ResolveOrCreateSupplier(ctx, shop.ID, &catalog.Supplier{Code: "SUP-2", Name: "Other"})
	assert.ErrorContains(t, err, "disk full")
}

func TestUpsertProduct(t *testing.T) {
	ctx := context.Background()
	s, r, shop := newResolver()
	master := &catalog.Product{
		ProductCode:   "TEA",
		Name:          "Teh Botol",
		Unit:          "btl",
		PurchasePrice: types.MoneyFromInt(3000),
		SellingPrice:  types.MoneyFromInt(4000),
	}

	p, created, err := r.UpsertProduct(ctx, shop.ID, mirror.ProductUpsert{Master: master, StockDelta: 10})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, "btl", p.Unit)
	assert.True(t, types.MoneyFromInt(3000).Equal(p.PurchasePrice))

	t.Run("existing mirror keeps price and gains stock", func(t *testing.T) {
		master.Name = "Teh Botol Sosro"
		p, created, err := r.UpsertProduct(ctx, shop.ID, mirror.ProductUpsert{Master: master, StockDelta: 5})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, 15, p.Stock)
		assert.Equal(t, "Teh Botol", s.ProductByCode(shop.ID, "TEA").Name)
	})

	t.Run("refresh copies details and overrides price", func(t *testing.T) {
		price := types.MoneyFromInt(2500)
		_, _, err := r.UpsertProduct(ctx, shop.ID, mirror.ProductUpsert{Master: master, PurchasePrice: &price, RefreshDetails: true})
		require.NoError(t, err)
		stored := s.ProductByCode(shop.ID, "TEA")
		assert.Equal(t, "Teh Botol Sosro", stored.Name)
		assert.True(t, price.Equal(stored.PurchasePrice))
		assert.Equal(t, 15, stored.Stock)
	})

	t.Run("insert race falls back to update", func(t *testing.T) {
		s.MissOnce("products.find")
		p, created, err := r.UpsertProduct(ctx, shop.ID, mirror.ProductUpsert{Master: master, StockDelta: 1})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, 16, p.Stock)
		assert.Equal(t, 1, s.CountProducts(shop.ID))
	})

	t.Run("NewStock seeds a recreated mirror", func(t *testing.T) {
		s.RemoveProduct(s.ProductByCode(shop.ID, "TEA").ID)
		seed := 7
		p, created, err := r.UpsertProduct(ctx, shop.ID, mirror.ProductUpsert{Master: master, NewStock: &seed})
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, 7, p.Stock)
	})
}

func TestMirrorReferences(t *testing.T) {
	ctx := context.Background()
	s, r, shop := newResolver()
	hub := s.AddStore("Gudang", catalog.WarehouseStoreCode, catalog.StoreKindWarehouse, catalog.StoreActive)

	cat, err := r.ResolveOrCreateCategory(ctx, hub.ID, &catalog.Category{Name: "Minuman"})
	require.NoError(t, err)
	sup, err := r.ResolveOrCreateSupplier(ctx, hub.ID, &catalog.Supplier{Code: "SUP-1", Name: "Sumber"})
	require.NoError(t, err)

	refs, err := r.MirrorReferences(ctx, shop.ID, &catalog.Product{CategoryID: &cat.ID, SupplierID: &sup.ID})
	require.NoError(t, err)
	require.NotNil(t, refs.CategoryID)
	require.NotNil(t, refs.SupplierID)
	assert.NotEqual(t, cat.ID, *refs.CategoryID, "mirror ids are tenant-local")
	assert.NotEqual(t, sup.ID, *refs.SupplierID)
	assert.Equal(t, 1, s.CountCategories(shop.ID))

	none, err := r.MirrorReferences(ctx, shop.ID, &catalog.Product{})
	require.NoError(t, err)
	assert.Nil(t, none.CategoryID)
	assert.Nil(t, none.SupplierID)
}
