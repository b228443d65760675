package distribution

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/security"
	"retailops/internal/core/types"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/mirror"
	"retailops/pkg/logger"
)

// ItemInput is one product to ship.
type ItemInput struct {
	MasterProductID id.ID
	Quantity        int
	// UnitPrice defaults to the master's purchase price.
	UnitPrice *types.Money
}

// DistributeInput ships products to one store.
type DistributeInput struct {
	TargetStoreID id.ID
	Items         []ItemInput
	Notes         *string
}

// Validate checks the request shape before any storage access.
func (in DistributeInput) Validate() error {
	if id.IsNil(in.TargetStoreID) {
		return apperror.NewValidation("target store is required").WithDetail("field", "targetStoreId")
	}
	if len(in.Items) == 0 {
		return apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}

	seen := make(map[id.ID]bool, len(in.Items))
	for i, it := range in.Items {
		field := "items[" + strconv.Itoa(i) + "]"
		if id.IsNil(it.MasterProductID) {
			return apperror.NewValidation("master product is required").WithDetail("field", field+".masterProductId")
		}
		if seen[it.MasterProductID] {
			return apperror.NewValidation("master product listed more than once").
				WithDetail("field", field+".masterProductId").
				WithDetail("value", it.MasterProductID.String())
		}
		seen[it.MasterProductID] = true

		if it.Quantity <= 0 {
			return apperror.NewValidation("quantity must be greater than zero").
				WithDetail("field", field+".quantity").
				WithDetail("value", it.Quantity)
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").WithDetail("field", field+".unitPrice")
		}
	}
	return nil
}

// Distribute ships every item to the target store in one transaction.
// Either all lines are recorded together with their mirror updates, or nothing is.
func (s *Service) Distribute(ctx context.Context, actor security.Actor, in DistributeInput) (*Batch, error) {
	ctx, span := s.tracer.Start(ctx, "distribution.Distribute")
	defer span.End()
	span.SetAttributes(
		attribute.String("store_id", in.TargetStoreID.String()),
		attribute.Int("items", len(in.Items)),
	)

	if err := security.Require(actor, security.ActionDistribute, in.TargetStoreID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	distributedAt := s.now()
	var batch Batch

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		central, err := s.warehouses.EnsureCentral(ctx)
		if err != nil {
			return err
		}

		target, err := s.stores.GetByID(ctx, in.TargetStoreID)
		if err != nil {
			return err
		}
		if target.ID == central.Store.ID || !target.CanReceiveDistribution() {
			return apperror.NewValidation("target store cannot receive distributions").
				WithDetail("field", "targetStoreId").
				WithDetail("kind", string(target.Kind)).
				WithDetail("status", string(target.Status))
		}

		for _, item := range in.Items {
			if err := s.distributeItem(ctx, central.Warehouse.ID, central.Store.ID, target, item, actor, in.Notes, distributedAt); err != nil {
				return err
			}
		}

		rows, err := s.repo.ListByBatchKey(ctx, BatchKey{
			DistributedAt: distributedAt,
			StoreID:       target.ID,
			WarehouseID:   central.Warehouse.ID,
			DistributedBy: actor.UserID,
		})
		if err != nil {
			return fmt.Errorf("load batch: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("load batch: no rows for %s at %s", target.ID, distributedAt)
		}
		batch = BuildBatch(rows, s.cfg.InvoiceLocation)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.FromContext(ctx).With("batch_id", batch.ID, "store_id", batch.StoreID).Infow("distribution created",
		"invoice", batch.InvoiceNumber,
		"lines", len(batch.Items),
		"total_items", batch.TotalItems,
	)
	audit.Emit(ctx, s.audit, audit.Entry{
		ActorID:  actor.UserID,
		Action:   audit.ActionDistribute,
		Entity:   "warehouse_distribution",
		EntityID: batch.ID,
		StoreID:  &batch.StoreID,
		NewValue: map[string]any{
			"invoiceNumber": batch.InvoiceNumber,
			"totalItems":    batch.TotalItems,
			"totalAmount":   batch.TotalAmount,
			"lines":         len(batch.Items),
		},
	})
	return &batch, nil
}

func (s *Service) distributeItem(
	ctx context.Context,
	warehouseID, catalogStoreID id.ID,
	target *catalog.Store,
	item ItemInput,
	actor security.Actor,
	notes *string,
	distributedAt time.Time,
) error {
	master, err := s.products.GetByID(ctx, item.MasterProductID)
	if err != nil {
		return err
	}
	if master.StoreID != catalogStoreID {
		return apperror.NewNotFound("master product", item.MasterProductID)
	}

	refs, err := s.mirror.MirrorReferences(ctx, target.ID, master)
	if err != nil {
		return err
	}

	unitPrice := master.PurchasePrice
	if item.UnitPrice != nil {
		unitPrice = *item.UnitPrice
	}

	delta := 0
	if s.cfg.CreditPoint == CreditAtDistribution {
		delta = item.Quantity
	}
	local, _, err := s.mirror.UpsertProduct(ctx, target.ID, mirror.ProductUpsert{
		Master:        master,
		Refs:          refs,
		StockDelta:    delta,
		PurchasePrice: item.UnitPrice,
	})
	if err != nil {
		return err
	}

	d := &Distribution{
		ID:              id.New(),
		WarehouseID:     warehouseID,
		StoreID:         target.ID,
		ProductID:       local.ID,
		MasterProductID: master.ID,
		Quantity:        item.Quantity,
		UnitPrice:       unitPrice,
		TotalAmount:     types.LineTotal(unitPrice, item.Quantity),
		Status:          StatusPendingAcceptance,
		DistributedAt:   distributedAt,
		DistributedBy:   actor.UserID,
		Notes:           notes,
	}
	if err := s.repo.Insert(ctx, d); err != nil {
		return fmt.Errorf("insert distribution: %w", err)
	}
	return nil
}
