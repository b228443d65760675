package distribution

import (
	"context"
	"fmt"
	"time"

	"retailops/internal/core/id"
	"retailops/internal/core/security"
	"retailops/internal/domain"
	"retailops/pkg/logger"
)

// BatchFilter selects shipments.
type BatchFilter struct {
	StoreID *id.ID
	Status  *Status
	From    *time.Time
	To      *time.Time
	Search  string
	Page    int
	Limit   int
}

// ListBatches returns shipments of the central warehouse, newest first.
//
// Lines are grouped in memory, so the scan is bounded: without a date range only
// the configured default window is read, and at most MaxRows lines are grouped.
func (s *Service) ListBatches(ctx context.Context, actor security.Actor, f BatchFilter) (domain.ListResult[Batch], error) {
	var empty domain.ListResult[Batch]

	scope := id.ID{}
	if f.StoreID != nil {
		scope = *f.StoreID
	}
	if security.IsStoreScoped(actor, security.ActionViewDistributions) && f.StoreID == nil {
		scope = actor.StoreID
		f.StoreID = &scope
	}
	if err := security.Require(actor, security.ActionViewDistributions, scope); err != nil {
		return empty, err
	}

	central, err := s.warehouses.EnsureCentral(ctx)
	if err != nil {
		return empty, err
	}

	if f.From == nil && f.To == nil {
		from := s.now().Add(-s.cfg.DefaultWindow)
		f.From = &from
	}

	rows, err := s.repo.ListRows(ctx, RowFilter{
		WarehouseID: central.Warehouse.ID,
		StoreID:     f.StoreID,
		Status:      f.Status,
		From:        f.From,
		To:          f.To,
		Limit:       s.cfg.MaxRows + 1,
	})
	if err != nil {
		return empty, fmt.Errorf("list distributions: %w", err)
	}
	truncated := len(rows) > s.cfg.MaxRows
	if truncated {
		logger.Warn(ctx, "batch listing truncated", "max_rows", s.cfg.MaxRows)
		rows, err = s.completeCutBatches(ctx, rows[:s.cfg.MaxRows], f.Status)
		if err != nil {
			return empty, err
		}
	}

	batches := GroupBatches(rows, s.cfg.InvoiceLocation)
	if f.Search != "" {
		matched := batches[:0]
		for _, b := range batches {
			if b.Matches(f.Search) {
				matched = append(matched, b)
			}
		}
		batches = matched
	}

	page := domain.Paginate(batches, domain.Pagination{Page: f.Page, Limit: f.Limit})
	page.Truncated = truncated
	return page, nil
}

// completeCutBatches reloads every batch at the oldest kept timestamp, since the
// row cap may have split them. Lines are ordered newest first, so only batches
// sharing that timestamp can continue past the cut.
func (s *Service) completeCutBatches(ctx context.Context, rows []Distribution, status *Status) ([]Distribution, error) {
	cut := rows[len(rows)-1].DistributedAt

	type cutKey struct {
		storeID id.ID
		by      string
	}
	seen := make(map[cutKey]bool)
	var keys []BatchKey

	out := make([]Distribution, 0, len(rows))
	for _, r := range rows {
		if !r.DistributedAt.Equal(cut) {
			out = append(out, r)
			continue
		}
		k := cutKey{storeID: r.StoreID, by: r.DistributedBy}
		if !seen[k] {
			seen[k] = true
			keys = append(keys, r.Key())
		}
	}

	for _, key := range keys {
		lines, err := s.repo.ListByBatchKey(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("list batch lines: %w", err)
		}
		for _, l := range lines {
			if status != nil && l.Status != *status {
				continue
			}
			out = append(out, l)
		}
	}
	return out, nil
}

// GetBatch returns the full shipment the given line belongs to.
func (s *Service) GetBatch(ctx context.Context, actor security.Actor, distributionID id.ID) (*Batch, error) {
	d, err := s.repo.GetByID(ctx, distributionID)
	if err != nil {
		return nil, err
	}
	if err := security.Require(actor, security.ActionViewDistributions, d.StoreID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByBatchKey(ctx, d.Key())
	if err != nil {
		return nil, fmt.Errorf("list batch lines: %w", err)
	}
	if len(rows) == 0 {
		rows = []Distribution{*d}
	}

	batch := BuildBatch(rows, s.cfg.InvoiceLocation)
	return &batch, nil
}
