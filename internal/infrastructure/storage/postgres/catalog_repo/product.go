package catalog_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/domain/catalog"
	"retailops/internal/infrastructure/storage/postgres"
)

const productTable = "products"

var productColumns = postgres.Columns[catalog.Product]()

// detailColumns are rewritten by UpdateDetails.
var detailColumns = []string{
	"name", "description", "unit", "category_id", "supplier_id",
	"purchase_price", "selling_price", "wholesale_price", "member_price",
}

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct {
	txm *postgres.TxManager
}

// NewProductRepo creates a product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{txm: txm}
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	q := builder().Select(productColumns...).From(productTable).Where(squirrel.Eq{"id": productID})
	return getOne[catalog.Product](ctx, r.txm.GetQuerier(ctx), q, "product", productID)
}

func (r *ProductRepo) FindByCode(ctx context.Context, storeID id.ID, code string) (*catalog.Product, error) {
	q := builder().Select(productColumns...).From(productTable).
		Where(squirrel.Eq{"store_id": storeID, "product_code": code})
	return getOne[catalog.Product](ctx, r.txm.GetQuerier(ctx), q, "product", code)
}

func (r *ProductRepo) Insert(ctx context.Context, p *catalog.Product) (bool, error) {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	return insertIfAbsent(ctx, r.txm.GetQuerier(ctx), productTable, postgres.StructToMap(p), "store_id", "product_code")
}

func updateDetailsQuery(p *catalog.Product, at time.Time) squirrel.UpdateBuilder {
	return builder().
		Update(productTable).
		SetMap(postgres.StructToMap(p, detailColumns...)).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": p.ID})
}

func (r *ProductRepo) UpdateDetails(ctx context.Context, p *catalog.Product) error {
	p.UpdatedAt = time.Now().UTC()
	sql, args, err := updateDetailsQuery(p, p.UpdatedAt).ToSql()
	if err != nil {
		return fmt.Errorf("build product update: %w", err)
	}
	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID)
	}
	return nil
}

// adjustStockQuery applies delta only when the result stays non-negative.
func adjustStockQuery(productID id.ID, delta int, at time.Time) squirrel.UpdateBuilder {
	return builder().
		Update(productTable).
		Set("stock", squirrel.Expr("stock + ?", delta)).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.Expr("stock + ? >= 0", delta)).
		Suffix("RETURNING stock")
}

func (r *ProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta int) (int, error) {
	sql, args, err := adjustStockQuery(productID, delta, time.Now().UTC()).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build stock adjustment: %w", err)
	}

	var stock int
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		if postgres.IsCheckViolation(err, "") {
			return 0, apperror.NewInsufficientStock(productID.String(), -delta, 0).WithCause(err)
		}
		return 0, fmt.Errorf("adjust stock: %w", err)
	}

	// No row updated: either the product is gone or the guard refused.
	current, err := r.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return 0, apperror.NewInsufficientStock(productID.String(), -delta, current.Stock)
}

func (r *ProductRepo) listQuery(f catalog.ProductFilter) squirrel.SelectBuilder {
	q := builder().Select(productColumns...).From(productTable).
		Where(squirrel.Eq{"store_id": f.StoreID})
	if f.Search != "" {
		pattern := likePattern(f.Search)
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"product_code": pattern},
		})
	}
	if f.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *f.CategoryID})
	}
	if f.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *f.SupplierID})
	}
	return q
}

func (r *ProductRepo) List(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, int64, error) {
	querier := r.txm.GetQuerier(ctx)
	base := r.listQuery(f)

	countSQL, countArgs, err := builder().Select("COUNT(*)").FromSelect(base, "sub").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build product count: %w", err)
	}
	var total int64
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	q := base.OrderBy("name", "id")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	items, err := selectAll[catalog.Product](ctx, querier, q, "products")
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
