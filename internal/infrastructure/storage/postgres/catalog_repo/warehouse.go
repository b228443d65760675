package catalog_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/id"
	"retailops/internal/domain/warehouse"
	"retailops/internal/infrastructure/storage/postgres"
)

const warehouseTable = "warehouses"

var warehouseColumns = postgres.Columns[warehouse.Warehouse]()

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct {
	txm *postgres.TxManager
}

// NewWarehouseRepo creates a warehouse repository.
func NewWarehouseRepo(txm *postgres.TxManager) *WarehouseRepo {
	return &WarehouseRepo{txm: txm}
}

func (r *WarehouseRepo) GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	q := builder().Select(warehouseColumns...).From(warehouseTable).Where(squirrel.Eq{"id": warehouseID})
	return getOne[warehouse.Warehouse](ctx, r.txm.GetQuerier(ctx), q, "warehouse", warehouseID)
}

func (r *WarehouseRepo) GetByCode(ctx context.Context, code string) (*warehouse.Warehouse, error) {
	q := builder().Select(warehouseColumns...).From(warehouseTable).Where(squirrel.Eq{"code": code})
	return getOne[warehouse.Warehouse](ctx, r.txm.GetQuerier(ctx), q, "warehouse", code)
}

func (r *WarehouseRepo) Insert(ctx context.Context, w *warehouse.Warehouse) (bool, error) {
	now := time.Now().UTC()
	w.CreatedAt, w.UpdatedAt = now, now
	return insertIfAbsent(ctx, r.txm.GetQuerier(ctx), warehouseTable, postgres.StructToMap(w), "code")
}
