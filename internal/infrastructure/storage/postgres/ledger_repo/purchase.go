package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/purchase"
	"retailops/internal/infrastructure/storage/postgres"
)

const (
	purchaseTable     = "purchases"
	purchaseItemTable = "purchase_items"
)

var (
	purchaseColumns     = postgres.Columns[purchase.Purchase]()
	purchaseItemColumns = postgres.Columns[purchase.Item]()
)

// PurchaseRepo implements purchase.Repository. Items are stored in purchase_items.
type PurchaseRepo struct {
	txm *postgres.TxManager
}

// NewPurchaseRepo creates a purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{txm: txm}
}

func insertItemsQuery(items []purchase.Item) squirrel.InsertBuilder {
	q := builder().Insert(purchaseItemTable).Columns(purchaseItemColumns...)
	for _, it := range items {
		values := postgres.StructToMap(it)
		row := make([]any, 0, len(purchaseItemColumns))
		for _, c := range purchaseItemColumns {
			row = append(row, values[c])
		}
		q = q.Values(row...)
	}
	return q
}

// Insert writes the purchase and its items. Run it inside a transaction.
func (r *PurchaseRepo) Insert(ctx context.Context, p *purchase.Purchase) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	querier := r.txm.GetQuerier(ctx)

	sql, args, err := builder().Insert(purchaseTable).SetMap(postgres.StructToMap(p)).ToSql()
	if err != nil {
		return fmt.Errorf("build purchase insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("purchase", "number", p.Number).WithCause(err)
		}
		return fmt.Errorf("insert purchase: %w", err)
	}

	if len(p.Items) == 0 {
		return nil
	}
	sql, args, err = insertItemsQuery(p.Items).ToSql()
	if err != nil {
		return fmt.Errorf("build purchase items insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase items: %w", err)
	}
	return nil
}

func (r *PurchaseRepo) get(ctx context.Context, purchaseID id.ID, forUpdate bool) (*purchase.Purchase, error) {
	q := builder().Select(purchaseColumns...).From(purchaseTable).Where(squirrel.Eq{"id": purchaseID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build purchase query: %w", err)
	}

	var p purchase.Purchase
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID)
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}

	items, err := r.items(ctx, []id.ID{p.ID})
	if err != nil {
		return nil, err
	}
	p.Items = items[p.ID]
	return &p, nil
}

func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	return r.get(ctx, purchaseID, false)
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	return r.get(ctx, purchaseID, true)
}

// items loads the items of the given purchases keyed by purchase id.
func (r *PurchaseRepo) items(ctx context.Context, purchaseIDs []id.ID) (map[id.ID][]purchase.Item, error) {
	out := make(map[id.ID][]purchase.Item, len(purchaseIDs))
	if len(purchaseIDs) == 0 {
		return out, nil
	}

	sql, args, err := builder().
		Select(purchaseItemColumns...).
		From(purchaseItemTable).
		Where(squirrel.Eq{"purchase_id": purchaseIDs}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build purchase items query: %w", err)
	}
	var rows []purchase.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	for _, it := range rows {
		out[it.PurchaseID] = append(out[it.PurchaseID], it)
	}
	return out, nil
}

func (r *PurchaseRepo) UpdateStatus(ctx context.Context, purchaseID id.ID, status purchase.Status, notes *string, total types.Money) error {
	sql, args, err := builder().
		Update(purchaseTable).
		Set("status", status).
		Set("notes", notes).
		Set("total_amount", total).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": purchaseID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build purchase status update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update purchase status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase", purchaseID)
	}
	return nil
}

// Delete removes the purchase; items go with it through ON DELETE CASCADE.
func (r *PurchaseRepo) Delete(ctx context.Context, purchaseID id.ID) error {
	sql, args, err := builder().Delete(purchaseTable).Where(squirrel.Eq{"id": purchaseID}).ToSql()
	if err != nil {
		return fmt.Errorf("build purchase delete: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase", purchaseID)
	}
	return nil
}

func purchaseListQuery(f purchase.Filter) squirrel.SelectBuilder {
	q := builder().Select(purchaseColumns...).From(purchaseTable)
	if f.StoreID != nil {
		q = q.Where(squirrel.Eq{"store_id": *f.StoreID})
	}
	if f.Status != nil {
		q = q.Where(squirrel.Eq{"status": *f.Status})
	}
	if f.Source != nil {
		q = q.Where(squirrel.Eq{"source": *f.Source})
	}
	return q
}

func (r *PurchaseRepo) List(ctx context.Context, f purchase.Filter) ([]purchase.Purchase, int64, error) {
	querier := r.txm.GetQuerier(ctx)
	base := purchaseListQuery(f)

	countSQL, countArgs, err := builder().Select("COUNT(*)").FromSelect(base, "sub").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build purchase count: %w", err)
	}
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchases: %w", err)
	}

	q := base.OrderBy("purchase_date DESC", "id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build purchase list: %w", err)
	}
	list := []purchase.Purchase{}
	if err := pgxscan.Select(ctx, querier, &list, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list purchases: %w", err)
	}

	ids := make([]id.ID, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	items, err := r.items(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range list {
		list[i].Items = items[list[i].ID]
	}
	return list, total, nil
}
