package handlers

import (
	"github.com/gin-gonic/gin"

	"retailops/internal/domain/purchase"
	"retailops/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves the store purchase ledger.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.PurchaseListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Get handles GET /purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	purchaseID, ok := h.ParamID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), actor, purchaseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Update handles PUT /purchases/:id.
func (h *PurchaseHandler) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	purchaseID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.SetStatus(c.Request.Context(), actor, purchaseID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Delete handles DELETE /purchases/:id.
func (h *PurchaseHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	purchaseID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, purchaseID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
