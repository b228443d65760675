package catalog_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/id"
	"retailops/internal/domain/catalog"
	"retailops/internal/infrastructure/storage/postgres"
)

const categoryTable = "categories"

var categoryColumns = postgres.Columns[catalog.Category]()

// CategoryRepo implements catalog.CategoryRepository.
type CategoryRepo struct {
	txm *postgres.TxManager
}

// NewCategoryRepo creates a category repository.
func NewCategoryRepo(txm *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{txm: txm}
}

func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*catalog.Category, error) {
	q := builder().Select(categoryColumns...).From(categoryTable).Where(squirrel.Eq{"id": categoryID})
	return getOne[catalog.Category](ctx, r.txm.GetQuerier(ctx), q, "category", categoryID)
}

func (r *CategoryRepo) FindByName(ctx context.Context, storeID id.ID, name string) (*catalog.Category, error) {
	q := builder().Select(categoryColumns...).From(categoryTable).
		Where(squirrel.Eq{"store_id": storeID, "name": name})
	return getOne[catalog.Category](ctx, r.txm.GetQuerier(ctx), q, "category", name)
}

func (r *CategoryRepo) Insert(ctx context.Context, c *catalog.Category) (bool, error) {
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	return insertIfAbsent(ctx, r.txm.GetQuerier(ctx), categoryTable, postgres.StructToMap(c), "store_id", "name")
}

func (r *CategoryRepo) List(ctx context.Context, storeID id.ID) ([]catalog.Category, error) {
	q := builder().Select(categoryColumns...).From(categoryTable).
		Where(squirrel.Eq{"store_id": storeID}).
		OrderBy("name")
	return selectAll[catalog.Category](ctx, r.txm.GetQuerier(ctx), q, "categories")
}
