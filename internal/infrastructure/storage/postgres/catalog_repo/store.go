package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/id"
	"retailops/internal/domain/catalog"
	"retailops/internal/infrastructure/storage/postgres"
)

const storeTable = "stores"

var storeColumns = postgres.Columns[catalog.Store]()

// StoreRepo implements catalog.StoreRepository.
type StoreRepo struct {
	txm *postgres.TxManager
}

// NewStoreRepo creates a store repository.
func NewStoreRepo(txm *postgres.TxManager) *StoreRepo {
	return &StoreRepo{txm: txm}
}

func (r *StoreRepo) GetByID(ctx context.Context, storeID id.ID) (*catalog.Store, error) {
	q := builder().Select(storeColumns...).From(storeTable).Where(squirrel.Eq{"id": storeID})
	return getOne[catalog.Store](ctx, r.txm.GetQuerier(ctx), q, "store", storeID)
}

func (r *StoreRepo) GetByCode(ctx context.Context, code string) (*catalog.Store, error) {
	q := builder().Select(storeColumns...).From(storeTable).Where(squirrel.Eq{"code": code})
	return getOne[catalog.Store](ctx, r.txm.GetQuerier(ctx), q, "store", code)
}

func (r *StoreRepo) Insert(ctx context.Context, store *catalog.Store) (bool, error) {
	now := time.Now().UTC()
	store.CreatedAt, store.UpdatedAt = now, now
	return insertIfAbsent(ctx, r.txm.GetQuerier(ctx), storeTable, postgres.StructToMap(store), "code")
}

func (r *StoreRepo) NamesByIDs(ctx context.Context, ids []id.ID) (map[id.ID]string, error) {
	out := make(map[id.ID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := builder().Select("id", "name").From(storeTable).Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build store names query: %w", err)
	}
	rows, err := r.txm.GetQuerier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query store names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			storeID id.ID
			name    string
		)
		if err := rows.Scan(&storeID, &name); err != nil {
			return nil, fmt.Errorf("scan store name: %w", err)
		}
		out[storeID] = name
	}
	return out, rows.Err()
}
