package dto

import (
	"time"

	"retailops/internal/core/apperror"
	"retailops/internal/core/id"
	"retailops/internal/core/types"
	"retailops/internal/domain/catalog"
	"retailops/internal/domain/distribution"
	"retailops/internal/domain/warehouse"
)

// --- Master catalog ---

// MasterProductListRequest filters master products.
type MasterProductListRequest struct {
	PaginationRequest
	Search     string `form:"search"`
	CategoryID string `form:"categoryId"`
	SupplierID string `form:"supplierId"`
}

// ToFilter converts the query to a domain filter.
func (r *MasterProductListRequest) ToFilter() (warehouse.ProductFilter, error) {
	f := warehouse.ProductFilter{
		Search: r.Search,
		Page:   r.Page,
		Limit:  r.Limit,
	}
	var err error
	if f.CategoryID, err = optionalID("categoryId", r.CategoryID); err != nil {
		return f, err
	}
	if f.SupplierID, err = optionalID("supplierId", r.SupplierID); err != nil {
		return f, err
	}
	return f, nil
}

// CreateMasterProductRequest is the request body for a new master product.
type CreateMasterProductRequest struct {
	ProductCode    string       `json:"productCode" binding:"required"`
	Name           string       `json:"name" binding:"required"`
	Description    *string      `json:"description"`
	Unit           string       `json:"unit"`
	CategoryID     *id.ID       `json:"categoryId"`
	SupplierID     *id.ID       `json:"supplierId"`
	Stock          int          `json:"stock" binding:"min=0"`
	PurchasePrice  types.Money  `json:"purchasePrice"`
	SellingPrice   types.Money  `json:"sellingPrice"`
	WholesalePrice *types.Money `json:"wholesalePrice"`
	MemberPrice    *types.Money `json:"memberPrice"`
}

// ToInput converts DTO to service input.
func (r *CreateMasterProductRequest) ToInput() warehouse.CreateProductInput {
	return warehouse.CreateProductInput{
		ProductCode:    r.ProductCode,
		Name:           r.Name,
		Description:    r.Description,
		Unit:           r.Unit,
		CategoryID:     r.CategoryID,
		SupplierID:     r.SupplierID,
		Stock:          r.Stock,
		PurchasePrice:  r.PurchasePrice,
		SellingPrice:   r.SellingPrice,
		WholesalePrice: r.WholesalePrice,
		MemberPrice:    r.MemberPrice,
	}
}

// CreateCategoryRequest is the request body for a new master category.
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// CreateSupplierRequest is the request body for a new master supplier.
type CreateSupplierRequest struct {
	Code    string  `json:"code" binding:"required"`
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSupplierRequest) ToEntity() catalog.Supplier {
	return catalog.Supplier{
		Code:    r.Code,
		Name:    r.Name,
		Phone:   r.Phone,
		Address: r.Address,
	}
}

// --- Distribution ---

// DistributeItemRequest is one product to ship.
type DistributeItemRequest struct {
	MasterProductID id.ID        `json:"masterProductId"`
	Quantity        int          `json:"quantity"`
	UnitPrice       *types.Money `json:"unitPrice"`
}

// DistributeRequest is the request body of POST /warehouse/distribute.
// Field rules are enforced by the service so every violation names its field.
type DistributeRequest struct {
	TargetStoreID id.ID                   `json:"targetStoreId"`
	Items         []DistributeItemRequest `json:"items"`
	Notes         *string                 `json:"notes"`
}

// ToInput converts DTO to service input.
func (r *DistributeRequest) ToInput() distribution.DistributeInput {
	items := make([]distribution.ItemInput, len(r.Items))
	for i, it := range r.Items {
		items[i] = distribution.ItemInput{
			MasterProductID: it.MasterProductID,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
		}
	}
	return distribution.DistributeInput{
		TargetStoreID: r.TargetStoreID,
		Items:         items,
		Notes:         r.Notes,
	}
}

// DistributionListRequest filters shipment batches.
type DistributionListRequest struct {
	PaginationRequest
	StoreID   string `form:"storeId"`
	Status    string `form:"status" binding:"omitempty,oneof=PENDING_ACCEPTANCE ACCEPTED"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Search    string `form:"search"`
}

// ToFilter converts the query to a service filter. Bare dates are read in loc.
func (r *DistributionListRequest) ToFilter(loc *time.Location) (distribution.BatchFilter, error) {
	f := distribution.BatchFilter{
		Search: r.Search,
		Page:   r.Page,
		Limit:  r.Limit,
	}
	var err error
	if f.StoreID, err = optionalID("storeId", r.StoreID); err != nil {
		return f, err
	}
	if r.Status != "" {
		st := distribution.Status(r.Status)
		f.Status = &st
	}
	if f.From, err = ParseDateBound(r.StartDate, loc, false); err != nil {
		return f, apperror.NewValidation(err.Error()).WithDetail("field", "startDate")
	}
	if f.To, err = ParseDateBound(r.EndDate, loc, true); err != nil {
		return f, apperror.NewValidation(err.Error()).WithDetail("field", "endDate")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return f, apperror.NewValidation("endDate is before startDate").WithDetail("field", "endDate")
	}
	return f, nil
}
