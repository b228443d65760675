// Package audit defines the audit trail emitted after mutating operations.
package audit

import (
	"context"
	"sync"
	"time"

	"retailops/internal/core/id"
	"retailops/pkg/logger"
)

// Action names an audited operation.
type Action string

const (
	ActionCreateMasterProduct  Action = "CREATE_MASTER_PRODUCT"
	ActionCreateMasterCategory Action = "CREATE_MASTER_CATEGORY"
	ActionCreateMasterSupplier Action = "CREATE_MASTER_SUPPLIER"
	ActionDistribute           Action = "DISTRIBUTE"
	ActionAcceptDistribution   Action = "ACCEPT_DISTRIBUTION"
	ActionUpdatePurchaseStatus Action = "UPDATE_PURCHASE_STATUS"
	ActionDeletePurchase       Action = "DELETE_PURCHASE"
)

// Entry is one audit record.
type Entry struct {
	ActorID  string
	Action   Action
	Entity   string
	EntityID id.ID
	StoreID  *id.ID
	OldValue any
	NewValue any
	At       time.Time
}

// Sink stores audit entries. Delivery guarantees are up to the implementation.
type Sink interface {
	Record(ctx context.Context, entry Entry) error
}

// Emit records entry after the business transaction committed.
// A failing sink never fails the operation; the error is logged.
func Emit(ctx context.Context, sink Sink, entry Entry) {
	if sink == nil {
		return
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	if err := sink.Record(ctx, entry); err != nil {
		logger.Warn(ctx, "audit record dropped",
			"action", entry.Action,
			"entity", entry.Entity,
			"entity_id", entry.EntityID,
			"error", err,
		)
	}
}

// LogSink writes entries to the structured log.
type LogSink struct{}

// Record implements Sink.
func (LogSink) Record(ctx context.Context, e Entry) error {
	kv := []any{
		"actor_id", e.ActorID,
		"action", e.Action,
		"entity", e.Entity,
		"entity_id", e.EntityID,
	}
	if e.StoreID != nil {
		kv = append(kv, "target_store_id", *e.StoreID)
	}
	logger.Info(ctx, "audit", kv...)
	return nil
}

// MultiSink fans an entry out to several sinks and returns the first error.
type MultiSink []Sink

// Record implements Sink.
func (m MultiSink) Record(ctx context.Context, e Entry) error {
	var firstErr error
	for _, s := range m {
		if err := s.Record(ctx, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MemorySink keeps entries in memory. Used in tests.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// Record implements Sink.
func (m *MemorySink) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

// Entries returns a copy of the recorded entries.
func (m *MemorySink) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// Actions returns the recorded actions in order.
func (m *MemorySink) Actions() []Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Action, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}
