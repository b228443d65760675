// Package catalog_repo provides PostgreSQL implementations of the catalog
// and warehouse repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailops/internal/core/apperror"
	"retailops/internal/infrastructure/storage/postgres"
)

// builder returns a squirrel builder with PostgreSQL placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// getOne runs q and scans a single row, mapping no rows to NotFound.
func getOne[T any](ctx context.Context, querier postgres.Querier, q squirrel.Sqlizer, entity string, key any) (*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", entity, err)
	}
	dst := new(T)
	if err := pgxscan.Get(ctx, querier, dst, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(entity, key)
		}
		return nil, fmt.Errorf("get %s: %w", entity, err)
	}
	return dst, nil
}

// selectAll runs q and scans every row.
func selectAll[T any](ctx context.Context, querier postgres.Querier, q squirrel.Sqlizer, entity string) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", entity, err)
	}
	out := []T{}
	if err := pgxscan.Select(ctx, querier, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", entity, err)
	}
	return out, nil
}

// insertIfAbsent inserts values into table unless the natural key in
// conflictCols is taken, in which case it reports false.
func insertIfAbsent(ctx context.Context, querier postgres.Querier, table string, values map[string]any, conflictCols ...string) (bool, error) {
	sql, args, err := insertIfAbsentQuery(table, values, conflictCols...).ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert %s: %w", table, err)
	}
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", table, err)
	}
	return tag.RowsAffected() == 1, nil
}

func insertIfAbsentQuery(table string, values map[string]any, conflictCols ...string) squirrel.InsertBuilder {
	return builder().
		Insert(table).
		SetMap(values).
		Suffix(fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(conflictCols, ", ")))
}

// likePattern escapes LIKE wildcards in s and wraps it for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
