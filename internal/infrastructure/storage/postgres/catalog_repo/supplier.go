package catalog_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/id"
	"retailops/internal/domain/catalog"
	"retailops/internal/infrastructure/storage/postgres"
)

const supplierTable = "suppliers"

var supplierColumns = postgres.Columns[catalog.Supplier]()

// SupplierRepo implements catalog.SupplierRepository.
type SupplierRepo struct {
	txm *postgres.TxManager
}

// NewSupplierRepo creates a supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{txm: txm}
}

func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*catalog.Supplier, error) {
	q := builder().Select(supplierColumns...).From(supplierTable).Where(squirrel.Eq{"id": supplierID})
	return getOne[catalog.Supplier](ctx, r.txm.GetQuerier(ctx), q, "supplier", supplierID)
}

func (r *SupplierRepo) FindByCode(ctx context.Context, storeID id.ID, code string) (*catalog.Supplier, error) {
	q := builder().Select(supplierColumns...).From(supplierTable).
		Where(squirrel.Eq{"store_id": storeID, "code": code})
	return getOne[catalog.Supplier](ctx, r.txm.GetQuerier(ctx), q, "supplier", code)
}

func (r *SupplierRepo) Insert(ctx context.Context, s *catalog.Supplier) (bool, error) {
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	return insertIfAbsent(ctx, r.txm.GetQuerier(ctx), supplierTable, postgres.StructToMap(s), "store_id", "code")
}

func (r *SupplierRepo) List(ctx context.Context, storeID id.ID) ([]catalog.Supplier, error) {
	q := builder().Select(supplierColumns...).From(supplierTable).
		Where(squirrel.Eq{"store_id": storeID}).
		OrderBy("name")
	return selectAll[catalog.Supplier](ctx, r.txm.GetQuerier(ctx), q, "suppliers")
}
