package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/purchase"
)

func TestColumns(t *testing.T) {
	cols := Columns[catalog.Product]()
	assert.Equal(t, "id", cols[0])
	assert.Contains(t, cols, "product_code")
	assert.Contains(t, cols, "member_price")

	assert.NotContains(t, Columns[purchase.Purchase](), "items")
}

type embedded struct {
	Base
	Name string `db:"name"`
}

type Base struct {
	ID id.ID `db:"id"`
}

func TestStructToMap(t *testing.T) {
	p := catalog.Product{
		ID:            id.New(),
		ProductCode:   "TEA",
		Stock:         3,
		PurchasePrice: types.MoneyFromInt(100),
	}

	m := StructToMap(&p)
	assert.Equal(t, p.ID, m["id"])
	assert.Equal(t, "TEA", m["product_code"])
	assert.Equal(t, 3, m["stock"])

	only := StructToMap(p, "id", "stock")
	assert.Len(t, only, 2)

	e := embedded{Base: Base{ID: id.New()}, Name: "x"}
	assert.Equal(t, map[string]any{"id": e.ID, "name": "x"}, StructToMap(e))
	assert.Nil(t, StructToMap(42))
}
