// Package tx defines the transaction contract domain services depend on.
// The pgx implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
//
// If fn returns an error the transaction is rolled back and nothing fn wrote is kept.
// Nested calls reuse the transaction already carried by ctx.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
