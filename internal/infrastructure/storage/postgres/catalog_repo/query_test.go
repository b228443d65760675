package catalog_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/catalog"
)

func TestInsertIfAbsentQuery(t *testing.T) {
	sql, args, err := insertIfAbsentQuery("stores", map[string]any{"name": "Toko", "code": "TOKO"}, "code").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO stores (code,name) VALUES ($1,$2) ON CONFLICT (code) DO NOTHING", sql)
	assert.Equal(t, []any{"TOKO", "Toko"}, args)

	sql, _, err = insertIfAbsentQuery("products", map[string]any{"id": 1}, "store_id", "product_code").ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ON CONFLICT (store_id, product_code) DO NOTHING")
}

func TestAdjustStockQuery(t *testing.T) {
	productID := id.New()
	at := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	sql, args, err := adjustStockQuery(productID, -10, at).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3 AND stock + $4 >= 0 RETURNING stock", sql)
	// squirrel renders driver.Valuer arguments, so ids arrive as strings
	assert.Equal(t, []any{-10, at, productID.String(), -10}, args)
}

func TestUpdateDetailsQuery(t *testing.T) {
	p := &catalog.Product{
		ID:            id.New(),
		ProductCode:   "TEA",
		Name:          "Teh",
		Stock:         99,
		PurchasePrice: types.MoneyFromInt(10),
	}
	sql, _, err := updateDetailsQuery(p, time.Now()).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "purchase_price = ")
	assert.Contains(t, sql, "updated_at = ")
	assert.NotContains(t, sql, "stock")
	assert.NotContains(t, sql, "product_code")
}

func TestProductListQuery(t *testing.T) {
	storeID := id.New()
	categoryID := id.New()
	r := &ProductRepo{}

	sql, args, err := r.listQuery(catalog.ProductFilter{StoreID: storeID, Search: " 50%_off ", CategoryID: &categoryID}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "(name ILIKE $2 OR product_code ILIKE $3)")
	assert.Contains(t, sql, "category_id = $4")
	assert.Equal(t, []any{storeID.String(), `%50\%\_off%`, `%50\%\_off%`, categoryID.String()}, args)
}
