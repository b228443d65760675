package warehouse

import (
	"context"
	"fmt"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/security"
	"retailops/internal/core/tx"
	"retailops/internal/domain"
	"retailops/internal/domain/audit"
	"retailops/internal/domain/catalog"
	"retailops/pkg/logger"
)

// Service manages the central warehouse and its master catalog.
type Service struct {
	warehouses Repository
	stores     catalog.StoreRepository
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	suppliers  catalog.SupplierRepository
	txManager  tx.Manager
	audit      audit.Sink
}

// ServiceConfig holds Service dependencies.
type ServiceConfig struct {
	Warehouses Repository
	Stores     catalog.StoreRepository
	Products   catalog.ProductRepository
	Categories catalog.CategoryRepository
	Suppliers  catalog.SupplierRepository
	TxManager  tx.Manager
	Audit      audit.Sink
}

// NewService creates a new warehouse service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		warehouses: cfg.Warehouses,
		stores:     cfg.Stores,
		products:   cfg.Products,
		categories: cfg.Categories,
		suppliers:  cfg.Suppliers,
		txManager:  cfg.TxManager,
		audit:      cfg.Audit,
	}
}

// EnsureCentral returns the central warehouse, creating it and its catalog
// store on first use. Concurrent first calls converge on the same rows.
func (s *Service) EnsureCentral(ctx context.Context) (*Central, error) {
	store, err := s.ensureCatalogStore(ctx)
	if err != nil {
		return nil, err
	}

	wh, err := s.warehouses.GetByCode(ctx, CentralCode)
	if err == nil {
		return &Central{Warehouse: wh, Store: store}, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("get central warehouse: %w", err)
	}

	wh = &Warehouse{
		ID:             id.New(),
		Code:           CentralCode,
		Name:           CentralName,
		Status:         StatusActive,
		CatalogStoreID: store.ID,
	}
	inserted, err := s.warehouses.Insert(ctx, wh)
	if err != nil {
		return nil, fmt.Errorf("insert central warehouse: %w", err)
	}
	if inserted {
		logger.Info(ctx, "central warehouse created", "warehouse_id", wh.ID, "catalog_store_id", store.ID)
		return &Central{Warehouse: wh, Store: store}, nil
	}

	wh, err = s.warehouses.GetByCode(ctx, CentralCode)
	if err != nil {
		return nil, fmt.Errorf("re-read central warehouse: %w", err)
	}
	return &Central{Warehouse: wh, Store: store}, nil
}

func (s *Service) ensureCatalogStore(ctx context.Context) (*catalog.Store, error) {
	store, err := s.stores.GetByCode(ctx, catalog.WarehouseStoreCode)
	if err == nil {
		return store, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("get warehouse store: %w", err)
	}

	store = &catalog.Store{
		ID:     id.New(),
		Name:   catalogStoreName,
		Code:   catalog.WarehouseStoreCode,
		Kind:   catalog.StoreKindWarehouse,
		Status: catalog.StoreActive,
	}
	inserted, err := s.stores.Insert(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("insert warehouse store: %w", err)
	}
	if inserted {
		return store, nil
	}

	store, err = s.stores.GetByCode(ctx, catalog.WarehouseStoreCode)
	if err != nil {
		return nil, fmt.Errorf("re-read warehouse store: %w", err)
	}
	return store, nil
}

// ListMasterProducts returns a page of master products.
func (s *Service) ListMasterProducts(ctx context.Context, actor security.Actor, f ProductFilter) (domain.ListResult[catalog.Product], error) {
	var empty domain.ListResult[catalog.Product]
	if err := security.Require(actor, security.ActionViewMasterCatalog, actor.StoreID); err != nil {
		return empty, err
	}

	central, err := s.EnsureCentral(ctx)
	if err != nil {
		return empty, err
	}

	page := domain.Pagination{Page: f.Page, Limit: f.Limit}.Normalize()
	items, total, err := s.products.List(ctx, catalog.ProductFilter{
		StoreID:    central.Store.ID,
		Search:     f.Search,
		CategoryID: f.CategoryID,
		SupplierID: f.SupplierID,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		return empty, fmt.Errorf("list master products: %w", err)
	}
	return domain.NewListResult(items, total, page), nil
}

// CreateMasterProduct adds a product to the master catalog.
func (s *Service) CreateMasterProduct(ctx context.Context, actor security.Actor, in CreateProductInput) (*catalog.Product, error) {
	if err := security.Require(actor, security.ActionManageMasterCatalog, id.ID{}); err != nil {
		return nil, err
	}

	p := &catalog.Product{
		ID:             id.New(),
		ProductCode:    in.ProductCode,
		Name:           in.Name,
		Description:    in.Description,
		Unit:           in.Unit,
		CategoryID:     in.CategoryID,
		SupplierID:     in.SupplierID,
		Stock:          in.Stock,
		PurchasePrice:  in.PurchasePrice,
		SellingPrice:   in.SellingPrice,
		WholesalePrice: in.WholesalePrice,
		MemberPrice:    in.MemberPrice,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		central, err := s.EnsureCentral(ctx)
		if err != nil {
			return err
		}
		p.StoreID = central.Store.ID

		if err := s.checkOwnedCategory(ctx, central.Store.ID, p.CategoryID); err != nil {
			return err
		}
		if err := s.checkOwnedSupplier(ctx, central.Store.ID, p.SupplierID); err != nil {
			return err
		}

		inserted, err := s.products.Insert(ctx, p)
		if err != nil {
			return fmt.Errorf("insert master product: %w", err)
		}
		if !inserted {
			return apperror.NewDuplicate("product", "productCode", p.ProductCode)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit.Emit(ctx, s.audit, audit.Entry{
		ActorID:  actor.UserID,
		Action:   audit.ActionCreateMasterProduct,
		Entity:   "product",
		EntityID: p.ID,
		NewValue: p,
	})
	return p, nil
}

func (s *Service) checkOwnedCategory(ctx context.Context, storeID id.ID, categoryID *id.ID) error {
	if categoryID == nil {
		return nil
	}
	c, err := s.categories.GetByID(ctx, *categoryID)
	if apperror.IsNotFound(err) || (err == nil && c.StoreID != storeID) {
		return apperror.NewValidation("category does not belong to the warehouse catalog").
			WithDetail("field", "categoryId").
			WithDetail("value", categoryID.String())
	}
	if err != nil {
		return fmt.Errorf("get category: %w", err)
	}
	return nil
}

func (s *Service) checkOwnedSupplier(ctx context.Context, storeID id.ID, supplierID *id.ID) error {
	if supplierID == nil {
		return nil
	}
	sup, err := s.suppliers.GetByID(ctx, *supplierID)
	if apperror.IsNotFound(err) || (err == nil && sup.StoreID != storeID) {
		return apperror.NewValidation("supplier does not belong to the warehouse catalog").
			WithDetail("field", "supplierId").
			WithDetail("value", supplierID.String())
	}
	if err != nil {
		return fmt.Errorf("get supplier: %w", err)
	}
	return nil
}

// ListMasterCategories returns all master categories ordered by name.
func (s *Service) ListMasterCategories(ctx context.Context, actor security.Actor) ([]catalog.Category, error) {
	if err := security.Require(actor, security.ActionViewMasterCatalog, actor.StoreID); err != nil {
		return nil, err
	}
	central, err := s.EnsureCentral(ctx)
	if err != nil {
		return nil, err
	}
	return s.categories.List(ctx, central.Store.ID)
}

// CreateMasterCategory adds a category to the master catalog.
func (s *Service) CreateMasterCategory(ctx context.Context, actor security.Actor, name string, description *string) (*catalog.Category, error) {
	if err := security.Require(actor, security.ActionManageMasterCatalog, id.ID{}); err != nil {
		return nil, err
	}

	c := &catalog.Category{ID: id.New(), Name: name, Description: description}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		central, err := s.EnsureCentral(ctx)
		if err != nil {
			return err
		}
		c.StoreID = central.Store.ID

		inserted, err := s.categories.Insert(ctx, c)
		if err != nil {
			return fmt.Errorf("insert master category: %w", err)
		}
		if !inserted {
			return apperror.NewDuplicate("category", "name", c.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit.Emit(ctx, s.audit, audit.Entry{
		ActorID:  actor.UserID,
		Action:   audit.ActionCreateMasterCategory,
		Entity:   "category",
		EntityID: c.ID,
		NewValue: c,
	})
	return c, nil
}

// ListMasterSuppliers returns all master suppliers ordered by name.
func (s *Service) ListMasterSuppliers(ctx context.Context, actor security.Actor) ([]catalog.Supplier, error) {
	if err := security.Require(actor, security.ActionViewMasterCatalog, actor.StoreID); err != nil {
		return nil, err
	}
	central, err := s.EnsureCentral(ctx)
	if err != nil {
		return nil, err
	}
	return s.suppliers.List(ctx, central.Store.ID)
}

// CreateMasterSupplier adds a supplier to the master catalog.
func (s *Service) CreateMasterSupplier(ctx context.Context, actor security.Actor, in catalog.Supplier) (*catalog.Supplier, error) {
	if err := security.Require(actor, security.ActionManageMasterCatalog, id.ID{}); err != nil {
		return nil, err
	}

	sup := &catalog.Supplier{
		ID:      id.New(),
		Code:    in.Code,
		Name:    in.Name,
		Phone:   in.Phone,
		Address: in.Address,
	}
	if err := sup.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		central, err := s.EnsureCentral(ctx)
		if err != nil {
			return err
		}
		sup.StoreID = central.Store.ID

		inserted, err := s.suppliers.Insert(ctx, sup)
		if err != nil {
			return fmt.Errorf("insert master supplier: %w", err)
		}
		if !inserted {
			return apperror.NewDuplicate("supplier", "code", sup.Code)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit.Emit(ctx, s.audit, audit.Entry{
		ActorID:  actor.UserID,
		Action:   audit.ActionCreateMasterSupplier,
		Entity:   "supplier",
		EntityID: sup.ID,
		NewValue: sup,
	})
	return sup, nil
}
