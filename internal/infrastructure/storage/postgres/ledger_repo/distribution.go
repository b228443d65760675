// Package ledger_repo provides PostgreSQL implementations of the
// distribution and purchase ledgers.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/domain/distribution"
	"retailops/internal/infrastructure/storage/postgres"
)

const distributionTable = "warehouse_distributions"

// distributionColumns are the stored columns; the joined read-only ones are selected separately.
var distributionColumns = []string{
	"id", "warehouse_id", "store_id", "product_id", "master_product_id",
	"quantity", "unit_price", "total_amount", "status",
	"distributed_at", "distributed_by", "accepted_at", "accepted_by", "notes",
}

var distributionJoinedColumns = []string{
	"s.name AS store_name",
	"COALESCE(p.product_code, mp.product_code, '') AS product_code",
	"COALESCE(p.name, mp.name, '') AS product_name",
	"u.username AS distributed_by_name",
}

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// DistributionRepo implements distribution.Repository.
type DistributionRepo struct {
	txm *postgres.TxManager
}

// NewDistributionRepo creates a distribution repository.
func NewDistributionRepo(txm *postgres.TxManager) *DistributionRepo {
	return &DistributionRepo{txm: txm}
}

func selectDistributions() squirrel.SelectBuilder {
	cols := make([]string, 0, len(distributionColumns)+len(distributionJoinedColumns))
	for _, c := range distributionColumns {
		cols = append(cols, "d."+c)
	}
	cols = append(cols, distributionJoinedColumns...)

	return builder().
		Select(cols...).
		From(distributionTable + " d").
		Join("stores s ON s.id = d.store_id").
		LeftJoin("products p ON p.id = d.product_id").
		LeftJoin("products mp ON mp.id = d.master_product_id").
		LeftJoin("users u ON u.id = d.distributed_by")
}

func (r *DistributionRepo) Insert(ctx context.Context, d *distribution.Distribution) error {
	sql, args, err := builder().
		Insert(distributionTable).
		SetMap(postgres.StructToMap(d, distributionColumns...)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build distribution insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert distribution: %w", err)
	}
	return nil
}

func (r *DistributionRepo) GetByID(ctx context.Context, distributionID id.ID) (*distribution.Distribution, error) {
	sql, args, err := selectDistributions().Where(squirrel.Eq{"d.id": distributionID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build distribution query: %w", err)
	}
	var d distribution.Distribution
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("distribution", distributionID)
		}
		return nil, fmt.Errorf("get distribution: %w", err)
	}
	return &d, nil
}

// markAcceptedQuery only matches a pending line; notes gain the acceptance note on a new line.
func markAcceptedQuery(distributionID id.ID, upd distribution.AcceptUpdate) squirrel.UpdateBuilder {
	return builder().
		Update(distributionTable).
		Set("status", distribution.StatusAccepted).
		Set("accepted_at", upd.AcceptedAt).
		Set("accepted_by", upd.AcceptedBy).
		Set("notes", squirrel.Expr("CASE WHEN COALESCE(notes, '') = '' THEN ? ELSE notes || chr(10) || ? END", upd.Note, upd.Note)).
		Where(squirrel.Eq{"id": distributionID, "status": distribution.StatusPendingAcceptance})
}

func (r *DistributionRepo) MarkAccepted(ctx context.Context, distributionID id.ID, upd distribution.AcceptUpdate) (bool, error) {
	sql, args, err := markAcceptedQuery(distributionID, upd).ToSql()
	if err != nil {
		return false, fmt.Errorf("build accept update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("mark distribution accepted: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func listRowsQuery(f distribution.RowFilter) squirrel.SelectBuilder {
	q := selectDistributions().Where(squirrel.Eq{"d.warehouse_id": f.WarehouseID})
	if f.StoreID != nil {
		q = q.Where(squirrel.Eq{"d.store_id": *f.StoreID})
	}
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"d.status": *f.Status})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"d.distributed_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"d.distributed_at": *f.To})
	}
	q = q.OrderBy("d.distributed_at DESC", "d.id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	return q
}

func (r *DistributionRepo) ListRows(ctx context.Context, f distribution.RowFilter) ([]distribution.Distribution, error) {
	return r.selectRows(ctx, listRowsQuery(f))
}

func (r *DistributionRepo) ListByBatchKey(ctx context.Context, key distribution.BatchKey) ([]distribution.Distribution, error) {
	q := selectDistributions().
		Where(squirrel.Eq{
			"d.distributed_at": key.DistributedAt.UTC().Truncate(time.Microsecond),
			"d.store_id":       key.StoreID,
			"d.warehouse_id":   key.WarehouseID,
			"d.distributed_by": key.DistributedBy,
		}).
		OrderBy("d.id")
	return r.selectRows(ctx, q)
}

func (r *DistributionRepo) selectRows(ctx context.Context, q squirrel.SelectBuilder) ([]distribution.Distribution, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build distribution query: %w", err)
	}
	rows := []distribution.Distribution{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	return rows, nil
}
