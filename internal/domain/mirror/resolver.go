// Package mirror copies catalog entries between stores by natural key.
//
// Ids are tenant-local, so a category, supplier or product of the warehouse
// tenant is matched in the target store by name, code or product code and
// created there when absent. Creation relies on the natural-key unique
// constraint: a writer that loses the insert race re-reads the winner's row.
package mirror

import (
	"context"
	"fmt"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/catalog"
)

// Resolver resolves or creates catalog mirrors in a target store.
type Resolver struct {
	categories catalog.CategoryRepository
	suppliers  catalog.SupplierRepository
	products   catalog.ProductRepository
}

// NewResolver creates a Resolver.
func NewResolver(
	categories catalog.CategoryRepository,
	suppliers catalog.SupplierRepository,
	products catalog.ProductRepository,
) *Resolver {
	return &Resolver{
		categories: categories,
		suppliers:  suppliers,
		products:   products,
	}
}

// ResolveOrCreateCategory returns the category named like src in storeID, creating it if needed.
func (r *Resolver) ResolveOrCreateCategory(ctx context.Context, storeID id.ID, src *catalog.Category) (*catalog.Category, error) {
	existing, err := r.categories.FindByName(ctx, storeID, src.Name)
	if err == nil {
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("find category %q: %w", src.Name, err)
	}

	c := &catalog.Category{
		ID:          id.New(),
		StoreID:     storeID,
		Name:        src.Name,
		Description: src.Description,
	}
	inserted, err := r.categories.Insert(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("insert category %q: %w", src.Name, err)
	}
	if inserted {
		return c, nil
	}

	existing, err = r.categories.FindByName(ctx, storeID, src.Name)
	if err != nil {
		return nil, fmt.Errorf("re-read category %q: %w", src.Name, err)
	}
	return existing, nil
}

// ResolveOrCreateSupplier returns the supplier coded like src in storeID, creating it if needed.
func (r *Resolver) ResolveOrCreateSupplier(ctx context.Context, storeID id.ID, src *catalog.Supplier) (*catalog.Supplier, error) {
	existing, err := r.suppliers.FindByCode(ctx, storeID, src.Code)
	if err == nil {
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("find supplier %q: %w", src.Code, err)
	}

	s := &catalog.Supplier{
		ID:      id.New(),
		StoreID: storeID,
		Code:    src.Code,
		Name:    src.Name,
		Phone:   src.Phone,
		Address: src.Address,
	}
	inserted, err := r.suppliers.Insert(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("insert supplier %q: %w", src.Code, err)
	}
	if inserted {
		return s, nil
	}

	existing, err = r.suppliers.FindByCode(ctx, storeID, src.Code)
	if err != nil {
		return nil, fmt.Errorf("re-read supplier %q: %w", src.Code, err)
	}
	return existing, nil
}

// References are the target-store ids of a master product's category and supplier.
type References struct {
	CategoryID *id.ID
	SupplierID *id.ID
}

// MirrorReferences mirrors the master product's category and supplier into storeID.
// A master without a category or supplier yields nil ids.
func (r *Resolver) MirrorReferences(ctx context.Context, storeID id.ID, master *catalog.Product) (References, error) {
	var refs References

	if master.CategoryID != nil {
		src, err := r.categories.GetByID(ctx, *master.CategoryID)
		if err != nil {
			return refs, fmt.Errorf("load master category: %w", err)
		}
		c, err := r.ResolveOrCreateCategory(ctx, storeID, src)
		if err != nil {
			return refs, err
		}
		refs.CategoryID = &c.ID
	}

	if master.SupplierID != nil {
		src, err := r.suppliers.GetByID(ctx, *master.SupplierID)
		if err != nil {
			return refs, fmt.Errorf("load master supplier: %w", err)
		}
		s, err := r.ResolveOrCreateSupplier(ctx, storeID, src)
		if err != nil {
			return refs, err
		}
		refs.SupplierID = &s.ID
	}

	return refs, nil
}

// ProductUpsert describes how a master product lands in a store.
type ProductUpsert struct {
	Master *catalog.Product
	Refs   References

	// StockDelta is added to the mirror's stock; a new mirror starts with it
	// unless NewStock is set.
	StockDelta int
	NewStock   *int

	// PurchasePrice overrides the master's purchase price when set.
	PurchasePrice *types.Money

	// RefreshDetails copies descriptive fields, references and sale prices onto an existing mirror.
	RefreshDetails bool
}

// UpsertProduct creates or updates the mirror of in.Master in storeID.
// The second return value is true when a new row was inserted.
func (r *Resolver) UpsertProduct(ctx context.Context, storeID id.ID, in ProductUpsert) (*catalog.Product, bool, error) {
	code := in.Master.ProductCode

	existing, err := r.products.FindByCode(ctx, storeID, code)
	if err == nil {
		p, err := r.updateMirror(ctx, existing, in)
		return p, false, err
	}
	if !apperror.IsNotFound(err) {
		return nil, false, fmt.Errorf("find product %q: %w", code, err)
	}

	p := newMirror(storeID, in)
	inserted, err := r.products.Insert(ctx, p)
	if err != nil {
		return nil, false, fmt.Errorf("insert product %q: %w", code, err)
	}
	if inserted {
		return p, true, nil
	}

	// A concurrent writer created the mirror first; apply ours as an update.
	existing, err = r.products.FindByCode(ctx, storeID, code)
	if err != nil {
		return nil, false, fmt.Errorf("re-read product %q: %w", code, err)
	}
	p, err = r.updateMirror(ctx, existing, in)
	return p, false, err
}

func newMirror(storeID id.ID, in ProductUpsert) *catalog.Product {
	m := in.Master
	purchasePrice := m.PurchasePrice
	if in.PurchasePrice != nil {
		purchasePrice = *in.PurchasePrice
	}
	stock := in.StockDelta
	if in.NewStock != nil {
		stock = *in.NewStock
	}
	return &catalog.Product{
		ID:             id.New(),
		StoreID:        storeID,
		ProductCode:    m.ProductCode,
		Name:           m.Name,
		Description:    m.Description,
		Unit:           m.Unit,
		CategoryID:     in.Refs.CategoryID,
		SupplierID:     in.Refs.SupplierID,
		Stock:          stock,
		PurchasePrice:  purchasePrice,
		SellingPrice:   m.SellingPrice,
		WholesalePrice: m.WholesalePrice,
		MemberPrice:    m.MemberPrice,
	}
}

func (r *Resolver) updateMirror(ctx context.Context, p *catalog.Product, in ProductUpsert) (*catalog.Product, error) {
	changed := false
	if in.RefreshDetails {
		m := in.Master
		p.Name = m.Name
		p.Description = m.Description
		p.Unit = m.Unit
		p.SellingPrice = m.SellingPrice
		p.WholesalePrice = m.WholesalePrice
		p.MemberPrice = m.MemberPrice
		if in.Refs.CategoryID != nil {
			p.CategoryID = in.Refs.CategoryID
		}
		if in.Refs.SupplierID != nil {
			p.SupplierID = in.Refs.SupplierID
		}
		changed = true
	}
	if in.PurchasePrice != nil {
		p.PurchasePrice = *in.PurchasePrice
		changed = true
	}
	if changed {
		if err := r.products.UpdateDetails(ctx, p); err != nil {
			return nil, fmt.Errorf("update product %s: %w", p.ID, err)
		}
	}

	if in.StockDelta != 0 {
		stock, err := r.products.AdjustStock(ctx, p.ID, in.StockDelta)
		if err != nil {
			return nil, err
		}
		p.Stock = stock
	}
	return p, nil
}
