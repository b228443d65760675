package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"retailops/internal/core/security"
)

var _ security.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter in sys_rate_limits shared by every replica.
type RateLimiter struct {
	txManager *TxManager
	limit     int
	window    time.Duration
	now       func() time.Time
}

// NewRateLimiter allows limit calls per key in each window.
func NewRateLimiter(txManager *TxManager, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		txManager: txManager,
		limit:     limit,
		window:    window,
		now:       time.Now,
	}
}

// windowStart truncates t to the start of its window.
func (l *RateLimiter) windowStart(t time.Time) time.Time {
	return t.UTC().Truncate(l.window)
}

func (l *RateLimiter) incrementQuery(key string, at time.Time) squirrel.InsertBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("sys_rate_limits").
		Columns("bucket_key", "window_start", "hits").
		Values(key, l.windowStart(at), 1).
		Suffix("ON CONFLICT (bucket_key, window_start) DO UPDATE SET hits = sys_rate_limits.hits + 1 RETURNING hits")
}

// Allow implements security.RateLimiter.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	sql, args, err := l.incrementQuery(key, l.now()).ToSql()
	if err != nil {
		return false, fmt.Errorf("build rate limit query: %w", err)
	}

	var hits int
	if err := l.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&hits); err != nil {
		return false, fmt.Errorf("increment rate limit: %w", err)
	}
	return hits <= l.limit, nil
}

// Cleanup drops windows that ended before now.
func (l *RateLimiter) Cleanup(ctx context.Context) (int64, error) {
	sql, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Delete("sys_rate_limits").
		Where(squirrel.Lt{"window_start": l.windowStart(l.now())}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build rate limit cleanup: %w", err)
	}
	tag, err := l.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("cleanup rate limits: %w", err)
	}
	return tag.RowsAffected(), nil
}
