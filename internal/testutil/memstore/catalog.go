package memstore

import (
	"context"
	"sort"
	"strings"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/warehouse"
)

var (
	_ catalog.StoreRepository    = (*StoreRepo)(nil)
	_ catalog.CategoryRepository = (*CategoryRepo)(nil)
	_ catalog.SupplierRepository = (*SupplierRepo)(nil)
	_ catalog.ProductRepository  = (*ProductRepo)(nil)
	_ warehouse.Repository       = (*WarehouseRepo)(nil)
)

// StoreRepo is the catalog.StoreRepository view of Store.
type StoreRepo struct{ s *Store }

// Stores returns the store repository.
func (s *Store) Stores() *StoreRepo { return &StoreRepo{s} }

func (r *StoreRepo) GetByID(_ context.Context, storeID id.ID) (*catalog.Store, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if st, ok := r.s.data.stores[storeID]; ok {
		return &st, nil
	}
	return nil, notFound("store", storeID)
}

func (r *StoreRepo) GetByCode(_ context.Context, code string) (*catalog.Store, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.missed("stores.find") {
		for _, st := range r.s.data.stores {
			if st.Code == code {
				return &st, nil
			}
		}
	}
	return nil, notFound("store", code)
}

func (r *StoreRepo) Insert(_ context.Context, store *catalog.Store) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("stores.insert"); err != nil {
		return false, err
	}
	for _, st := range r.s.data.stores {
		if st.Code == store.Code {
			return false, nil
		}
	}
	store.CreatedAt = r.s.timestamp()
	store.UpdatedAt = store.CreatedAt
	r.s.data.stores[store.ID] = *store
	return true, nil
}

func (r *StoreRepo) NamesByIDs(_ context.Context, ids []id.ID) (map[id.ID]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[id.ID]string, len(ids))
	for _, storeID := range ids {
		if st, ok := r.s.data.stores[storeID]; ok {
			out[storeID] = st.Name
		}
	}
	return out, nil
}

// CategoryRepo is the catalog.CategoryRepository view of Store.
type CategoryRepo struct{ s *Store }

// Categories returns the category repository.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s} }

func (r *CategoryRepo) GetByID(_ context.Context, categoryID id.ID) (*catalog.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.data.categories[categoryID]; ok {
		return &c, nil
	}
	return nil, notFound("category", categoryID)
}

func (r *CategoryRepo) FindByName(_ context.Context, storeID id.ID, name string) (*catalog.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.missed("categories.find") {
		for _, c := range r.s.data.categories {
			if c.StoreID == storeID && c.Name == name {
				return &c, nil
			}
		}
	}
	return nil, notFound("category", name)
}

func (r *CategoryRepo) Insert(_ context.Context, c *catalog.Category) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("categories.insert"); err != nil {
		return false, err
	}
	for _, existing := range r.s.data.categories {
		if existing.StoreID == c.StoreID && existing.Name == c.Name {
			return false, nil
		}
	}
	c.CreatedAt = r.s.timestamp()
	c.UpdatedAt = c.CreatedAt
	r.s.data.categories[c.ID] = *c
	return true, nil
}

func (r *CategoryRepo) List(_ context.Context, storeID id.ID) ([]catalog.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []catalog.Category{}
	for _, c := range r.s.data.categories {
		if c.StoreID == storeID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SupplierRepo is the catalog.SupplierRepository view of Store.
type SupplierRepo struct{ s *Store }

// Suppliers returns the supplier repository.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s} }

func (r *SupplierRepo) GetByID(_ context.Context, supplierID id.ID) (*catalog.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sup, ok := r.s.data.suppliers[supplierID]; ok {
		return &sup, nil
	}
	return nil, notFound("supplier", supplierID)
}

func (r *SupplierRepo) FindByCode(_ context.Context, storeID id.ID, code string) (*catalog.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.missed("suppliers.find") {
		for _, sup := range r.s.data.suppliers {
			if sup.StoreID == storeID && sup.Code == code {
				return &sup, nil
			}
		}
	}
	return nil, notFound("supplier", code)
}

func (r *SupplierRepo) Insert(_ context.Context, sup *catalog.Supplier) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("suppliers.insert"); err != nil {
		return false, err
	}
	for _, existing := range r.s.data.suppliers {
		if existing.StoreID == sup.StoreID && existing.Code == sup.Code {
			return false, nil
		}
	}
	sup.CreatedAt = r.s.timestamp()
	sup.UpdatedAt = sup.CreatedAt
	r.s.data.suppliers[sup.ID] = *sup
	return true, nil
}

func (r *SupplierRepo) List(_ context.Context, storeID id.ID) ([]catalog.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []catalog.Supplier{}
	for _, sup := range r.s.data.suppliers {
		if sup.StoreID == storeID {
			out = append(out, sup)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ProductRepo is the catalog.ProductRepository view of Store.
type ProductRepo struct{ s *Store }

// Products returns the product repository.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s} }

func (r *ProductRepo) GetByID(_ context.Context, productID id.ID) (*catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.data.products[productID]; ok {
		return &p, nil
	}
	return nil, notFound("product", productID)
}

func (r *ProductRepo) FindByCode(_ context.Context, storeID id.ID, code string) (*catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.missed("products.find") {
		for _, p := range r.s.data.products {
			if p.StoreID == storeID && p.ProductCode == code {
				return &p, nil
			}
		}
	}
	return nil, notFound("product", code)
}

func (r *ProductRepo) Insert(_ context.Context, p *catalog.Product) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("products.insert"); err != nil {
		return false, err
	}
	for _, existing := range r.s.data.products {
		if existing.StoreID == p.StoreID && existing.ProductCode == p.ProductCode {
			return false, nil
		}
	}
	p.CreatedAt = r.s.timestamp()
	p.UpdatedAt = p.CreatedAt
	r.s.data.products[p.ID] = *p
	return true, nil
}

func (r *ProductRepo) UpdateDetails(_ context.Context, p *catalog.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("products.update"); err != nil {
		return err
	}
	existing, ok := r.s.data.products[p.ID]
	if !ok {
		return notFound("product", p.ID)
	}
	updated := *p
	updated.Stock = existing.Stock
	updated.StoreID = existing.StoreID
	updated.ProductCode = existing.ProductCode
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = r.s.timestamp()
	r.s.data.products[p.ID] = updated
	return nil
}

func (r *ProductRepo) AdjustStock(_ context.Context, productID id.ID, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("products.adjust_stock"); err != nil {
		return 0, err
	}
	p, ok := r.s.data.products[productID]
	if !ok {
		return 0, notFound("product", productID)
	}
	if p.Stock+delta < 0 {
		return 0, apperror.NewInsufficientStock(productID.String(), -delta, p.Stock)
	}
	p.Stock += delta
	p.UpdatedAt = r.s.timestamp()
	r.s.data.products[productID] = p
	return p.Stock, nil
}

func (r *ProductRepo) List(_ context.Context, f catalog.ProductFilter) ([]catalog.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(f.Search))
	var matched []catalog.Product
	for _, p := range r.s.data.products {
		if p.StoreID != f.StoreID {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.SupplierID != nil && (p.SupplierID == nil || *p.SupplierID != *f.SupplierID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.ProductCode), q) {
			continue
		}
		matched = append(matched, p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := int64(len(matched))
	start := min(f.Offset, len(matched))
	end := len(matched)
	if f.Limit > 0 {
		end = min(start+f.Limit, len(matched))
	}
	return matched[start:end], total, nil
}

// WarehouseRepo is the warehouse.Repository view of Store.
type WarehouseRepo struct{ s *Store }

// Warehouses returns the warehouse repository.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s} }

func (r *WarehouseRepo) GetByID(_ context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if w, ok := r.s.data.warehouses[warehouseID]; ok {
		return &w, nil
	}
	return nil, notFound("warehouse", warehouseID)
}

func (r *WarehouseRepo) GetByCode(_ context.Context, code string) (*warehouse.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.missed("warehouses.find") {
		for _, w := range r.s.data.warehouses {
			if w.Code == code {
				return &w, nil
			}
		}
	}
	return nil, notFound("warehouse", code)
}

func (r *WarehouseRepo) Insert(_ context.Context, w *warehouse.Warehouse) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("warehouses.insert"); err != nil {
		return false, err
	}
	for _, existing := range r.s.data.warehouses {
		if existing.Code == w.Code {
			return false, nil
		}
	}
	w.CreatedAt = r.s.timestamp()
	w.UpdatedAt = w.CreatedAt
	r.s.data.warehouses[w.ID] = *w
	return true, nil
}
