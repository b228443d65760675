package distribution

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/security"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/mirror"
	"retailops/internal/domain/purchase"
	"retailops/pkg/logger"
)

// ErrNotPending is the message returned when a line was already accepted.
const ErrNotPending = "distribution item is not pending acceptance"

// AcceptItem accepts one distribution line on behalf of its store.
// The line, the synthesized purchase and the store's product mirror change in one transaction.
func (s *Service) AcceptItem(ctx context.Context, actor security.Actor, distributionID id.ID) (*Distribution, error) {
	ctx, span := s.tracer.Start(ctx, "distribution.AcceptItem")
	defer span.End()

	var (
		accepted *Distribution
		bought   *purchase.Purchase
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		d, err := s.repo.GetByID(ctx, distributionID)
		if err != nil {
			return err
		}
		if err := security.Require(actor, security.ActionAcceptDistribution, d.StoreID); err != nil {
			return err
		}
		if d.Status != StatusPendingAcceptance {
			return notPending(d)
		}

		now := s.now()
		ok, err := s.repo.MarkAccepted(ctx, d.ID, AcceptUpdate{
			AcceptedBy: actor.UserID,
			AcceptedAt: now,
			Note:       acceptanceNote(actor, now),
		})
		if err != nil {
			return fmt.Errorf("mark accepted: %w", err)
		}
		if !ok {
			// lost to a concurrent acceptance
			return notPending(d)
		}

		source, err := s.acceptanceSource(ctx, d)
		if err != nil {
			return err
		}
		refs, err := s.mirror.MirrorReferences(ctx, d.StoreID, source)
		if err != nil {
			return err
		}

		delta := 0
		if s.cfg.CreditPoint == CreditAtAcceptance {
			delta = d.Quantity
		}
		quantity := d.Quantity
		local, _, err := s.mirror.UpsertProduct(ctx, d.StoreID, mirror.ProductUpsert{
			Master:         source,
			Refs:           refs,
			StockDelta:     delta,
			NewStock:       &quantity,
			RefreshDetails: true,
		})
		if err != nil {
			return err
		}

		bought, err = s.purchases.CreateFromDistribution(ctx, purchase.FromDistribution{
			DistributionID: d.ID,
			StoreID:        d.StoreID,
			SupplierID:     refs.SupplierID,
			UserID:         actor.UserID,
			PurchaseDate:   d.DistributedAt,
			ProductID:      local.ID,
			Quantity:       d.Quantity,
			UnitPrice:      d.UnitPrice,
			TotalAmount:    d.TotalAmount,
			Notes:          "Warehouse distribution " + d.ID.String(),
		})
		if err != nil {
			return err
		}

		accepted, err = s.repo.GetByID(ctx, d.ID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Info(ctx, "distribution accepted",
		"distribution_id", accepted.ID,
		"store_id", accepted.StoreID,
		"purchase_id", bought.ID,
		"purchase_number", bought.Number,
	)
	audit.Emit(ctx, s.audit, audit.Entry{
		ActorID:  actor.UserID,
		Action:   audit.ActionAcceptDistribution,
		Entity:   "warehouse_distribution",
		EntityID: accepted.ID,
		StoreID:  &accepted.StoreID,
		OldValue: map[string]any{"status": StatusPendingAcceptance},
		NewValue: map[string]any{"status": accepted.Status, "purchaseId": bought.ID},
	})
	return accepted, nil
}

// acceptanceSource returns the master product of the line. When the master
// was removed from the catalog the store's own copy stands in for it.
func (s *Service) acceptanceSource(ctx context.Context, d *Distribution) (*catalog.Product, error) {
	master, err := s.products.GetByID(ctx, d.MasterProductID)
	if err == nil {
		return master, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("load master product: %w", err)
	}

	local, err := s.products.GetByID(ctx, d.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load store product: %w", err)
	}
	return local, nil
}

// notPending is a CONFLICT reported as 400: the request is invalid for the line's current state.
func notPending(d *Distribution) error {
	err := apperror.NewConflict(ErrNotPending).
		WithDetail("distribution_id", d.ID.String()).
		WithDetail("status", string(d.Status))
	err.HTTPStatus = http.StatusBadRequest
	return err
}

func acceptanceNote(actor security.Actor, at time.Time) string {
	who := actor.Username
	if who == "" {
		who = actor.UserID
	}
	return fmt.Sprintf("Accepted by %s at %s", who, at.Format(time.RFC3339))
}
