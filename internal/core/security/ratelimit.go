package security

import "context"

// RateLimiter decides whether the caller identified by key may proceed.
// Implementations must keep their counters outside the process so every
// replica enforces the same budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
