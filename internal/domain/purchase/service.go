package purchase

import (
	"context"
	"fmt"
	"time"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/numerator"
	"retailops/internal/core/security"
	"retailops/internal/core/tx"
	"retailops/internal/core/types"
	"retailops/internal/domain"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/catalog"
	"retailops/pkg/logger"
)

const numberPrefix = "PUR"

// Service manages purchases and keeps product stock in line with their status.
type Service struct {
	repo      Repository
	products  catalog.ProductRepository
	numerator numerator.Generator
	txManager tx.Manager
	audit     audit.Sink
}

// NewService creates a new purchase service.
func NewService(
	repo Repository,
	products catalog.ProductRepository,
	numerator numerator.Generator,
	txManager tx.Manager,
	sink audit.Sink,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		numerator: numerator,
		txManager: txManager,
		audit:     sink,
	}
}

// UpdateStatusInput changes a purchase status.
type UpdateStatusInput struct {
	Status Status
	Notes  *string
}

// SetStatus moves a purchase to a new status, applying the stock effect of the
// transition to every item in the same transaction.
func (s *Service) SetStatus(ctx context.Context, actor security.Actor, purchaseID id.ID, in UpdateStatusInput) (*Purchase, error) {
	if !in.Status.IsValid() {
		return nil, apperror.NewValidation("invalid purchase status").
			WithDetail("field", "status").
			WithDetail("value", string(in.Status))
	}

	var (
		before Status
		after  *Purchase
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := security.Require(actor, security.ActionManagePurchases, p.StoreID); err != nil {
			return err
		}
		before = p.Status

		if err := s.applyStock(ctx, p, StockDirection(p.Status, in.Status)); err != nil {
			return err
		}

		notes := p.Notes
		if in.Notes != nil {
			notes = in.Notes
		}
		if err := s.repo.UpdateStatus(ctx, p.ID, in.Status, notes, p.ItemsTotal()); err != nil {
			return fmt.Errorf("update purchase status: %w", err)
		}

		after, err = s.repo.GetByID(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase status changed",
		"purchase_id", purchaseID,
		"from", before,
		"to", after.Status,
	)
	audit.Emit(ctx, s.audit, audit.Entry{
		ActorID:  actor.UserID,
		Action:   audit.ActionUpdatePurchaseStatus,
		Entity:   "purchase",
		EntityID: purchaseID,
		StoreID:  &after.StoreID,
		OldValue: map[string]any{"status": before},
		NewValue: map[string]any{"status": after.Status, "totalAmount": after.TotalAmount},
	})
	return after, nil
}

// Delete removes a purchase. A completed purchase gives its stock back first.
func (s *Service) Delete(ctx context.Context, actor security.Actor, purchaseID id.ID) error {
	var deleted *Purchase
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, purchaseID)
		if err != nil {
			return err
		}
		if err := security.Require(actor, security.ActionManagePurchases, p.StoreID); err != nil {
			return err
		}

		if err := s.applyStock(ctx, p, StockDirection(p.Status, StatusCancelled)); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, p.ID); err != nil {
			return fmt.Errorf("delete purchase: %w", err)
		}
		deleted = p
		return nil
	})
	if err != nil {
		return err
	}

	audit.Emit(ctx, s.audit, audit.Entry{
		ActorID:  actor.UserID,
		Action:   audit.ActionDeletePurchase,
		Entity:   "purchase",
		EntityID: purchaseID,
		StoreID:  &deleted.StoreID,
		OldValue: deleted,
	})
	return nil
}

// applyStock adds direction × quantity to the product of every item.
func (s *Service) applyStock(ctx context.Context, p *Purchase, direction int) error {
	if direction == 0 {
		return nil
	}
	for _, it := range p.Items {
		if _, err := s.products.AdjustStock(ctx, it.ProductID, direction*it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Get returns one purchase with its items.
func (s *Service) Get(ctx context.Context, actor security.Actor, purchaseID id.ID) (*Purchase, error) {
	p, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if err := security.Require(actor, security.ActionManagePurchases, p.StoreID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListFilter selects purchases visible to the actor.
type ListFilter struct {
	StoreID *id.ID
	Status  *Status
	Source  *Source
	Page    int
	Limit   int
}

// List returns a page of purchases. Store-scoped actors only see their own store.
func (s *Service) List(ctx context.Context, actor security.Actor, f ListFilter) (domain.ListResult[Purchase], error) {
	var empty domain.ListResult[Purchase]

	scope := id.ID{}
	if f.StoreID != nil {
		scope = *f.StoreID
	}
	if security.IsStoreScoped(actor, security.ActionManagePurchases) && f.StoreID == nil {
		scope = actor.StoreID
		f.StoreID = &scope
	}
	if err := security.Require(actor, security.ActionManagePurchases, scope); err != nil {
		return empty, err
	}

	page := domain.Pagination{Page: f.Page, Limit: f.Limit}.Normalize()
	items, total, err := s.repo.List(ctx, Filter{
		StoreID: f.StoreID,
		Status:  f.Status,
		Source:  f.Source,
		Limit:   page.Limit,
		Offset:  page.Offset(),
	})
	if err != nil {
		return empty, fmt.Errorf("list purchases: %w", err)
	}
	return domain.NewListResult(items, total, page), nil
}

// FromDistribution describes the purchase synthesized for an accepted distribution line.
type FromDistribution struct {
	DistributionID id.ID
	StoreID        id.ID
	SupplierID     *id.ID
	UserID         string
	PurchaseDate   time.Time
	ProductID      id.ID
	Quantity       int
	UnitPrice      types.Money
	TotalAmount    types.Money
	Notes          string
}

// CreateFromDistribution records a completed purchase for an accepted
// distribution line. It does not touch stock and must run inside the
// caller's transaction.
func (s *Service) CreateFromDistribution(ctx context.Context, in FromDistribution) (*Purchase, error) {
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(numberPrefix), nil, in.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("generate purchase number: %w", err)
	}

	purchaseID := id.New()
	distributionID := in.DistributionID
	p := &Purchase{
		ID:             purchaseID,
		Number:         number,
		StoreID:        in.StoreID,
		SupplierID:     in.SupplierID,
		UserID:         in.UserID,
		PurchaseDate:   in.PurchaseDate,
		TotalAmount:    in.TotalAmount,
		Status:         StatusCompleted,
		Source:         SourceDistribution,
		DistributionID: &distributionID,
		Items: []Item{{
			ID:            id.New(),
			PurchaseID:    purchaseID,
			ProductID:     in.ProductID,
			Quantity:      in.Quantity,
			PurchasePrice: in.UnitPrice,
			Subtotal:      in.TotalAmount,
		}},
	}
	if in.Notes != "" {
		notes := in.Notes
		p.Notes = &notes
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}
	return p, nil
}
