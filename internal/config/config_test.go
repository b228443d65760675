package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/retailops")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "distribution", cfg.StockCreditPoint)
	assert.Equal(t, 365*24*time.Hour, cfg.BatchDefaultWindow)
	assert.Equal(t, 10000, cfg.BatchMaxRows)
	assert.Equal(t, time.UTC, cfg.InvoiceLocation)
	assert.Equal(t, 60, cfg.RateLimitRequests)
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STOCK_CREDIT_POINT", "Acceptance")
	t.Setenv("BATCH_DEFAULT_WINDOW_DAYS", "30")
	t.Setenv("RATE_LIMIT_WINDOW", "90")
	t.Setenv("INVOICE_TIMEZONE", "Asia/Jakarta")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "acceptance", cfg.StockCreditPoint)
	assert.Equal(t, 30*24*time.Hour, cfg.BatchDefaultWindow)
	assert.Equal(t, 90*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, "Asia/Jakarta", cfg.InvoiceLocation.String())
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("missing database", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET", "secret")
		_, err := Load()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("unknown credit point", func(t *testing.T) {
		setRequired(t)
		t.Setenv("STOCK_CREDIT_POINT", "never")
		_, err := Load()
		assert.ErrorContains(t, err, "STOCK_CREDIT_POINT")
	})
}
