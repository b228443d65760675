// Package numerator provides contracts for human-readable document numbers.
// Implementations live in infrastructure layer.
package numerator

import (
	"context"
	"time"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict increments the counter in the caller's transaction.
	// A rolled back document gives its number back, so there are no gaps.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges of numbers in memory.
	// Faster, but restarts leave gaps.
	StrategyCached
)

// Options configuration for number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is the number of values reserved at once by StrategyCached. Default 50.
	RangeSize int64
}

// DefaultOptions returns standard options (Strict).
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "PUR")
	Prefix string
	// IncludeYear adds the period year to the number
	IncludeYear bool
	// PadWidth is the minimum number width (default 5)
	PadWidth int
	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns PREFIX-YEAR-XXXXX numbering that restarts every year.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Generator generates sequential document numbers.
type Generator interface {
	// GetNextNumber generates the next number, e.g. PUR-2026-00001.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
}

// MockGenerator is a test implementation of Generator.
type MockGenerator struct {
	GetNextNumberFunc func(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
}

// GetNextNumber implements Generator.
func (m *MockGenerator) GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	if m.GetNextNumberFunc != nil {
		return m.GetNextNumberFunc(ctx, cfg, opts, period)
	}
	return "MOCK-2026-00001", nil
}

var _ Generator = (*MockGenerator)(nil)
