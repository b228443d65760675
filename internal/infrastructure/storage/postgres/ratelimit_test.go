package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_IncrementQuery(t *testing.T) {
	l := NewRateLimiter(nil, 60, time.Minute)
	at := time.Date(2026, 3, 14, 9, 30, 42, 0, time.UTC)

	sql, args, err := l.incrementQuery("user:u1", at).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO sys_rate_limits (bucket_key,window_start,hits) VALUES ($1,$2,$3) "+
			"ON CONFLICT (bucket_key, window_start) DO UPDATE SET hits = sys_rate_limits.hits + 1 RETURNING hits",
		sql)
	assert.Equal(t, []any{"user:u1", time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), 1}, args)
}
