package dto

import (
	"retailops/internal/domain/purchase"
)

// UpdatePurchaseRequest is the request body of PUT /purchases/{id}.
type UpdatePurchaseRequest struct {
	Status purchase.Status `json:"status" binding:"required,oneof=COMPLETED CANCELLED"`
	Notes  *string         `json:"notes"`
}

// ToInput converts DTO to service input.
func (r *UpdatePurchaseRequest) ToInput() purchase.UpdateStatusInput {
	return purchase.UpdateStatusInput{Status: r.Status, Notes: r.Notes}
}

// PurchaseListRequest filters purchases.
type PurchaseListRequest struct {
	PaginationRequest
	StoreID string `form:"storeId"`
	Status  string `form:"status" binding:"omitempty,oneof=COMPLETED CANCELLED"`
	Source  string `form:"source" binding:"omitempty,oneof=MANUAL DISTRIBUTION"`
}

// ToFilter converts the query to a service filter.
func (r *PurchaseListRequest) ToFilter() (purchase.ListFilter, error) {
	f := purchase.ListFilter{Page: r.Page, Limit: r.Limit}
	var err error
	if f.StoreID, err = optionalID("storeId", r.StoreID); err != nil {
		return f, err
	}
	if r.Status != "" {
		v := purchase.Status(r.Status)
		f.Status = &v
	}
	if r.Source != "" {
		v := purchase.Source(r.Source)
		f.Source = &v
	}
	return f, nil
}
