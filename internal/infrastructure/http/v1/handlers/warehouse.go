package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"retailops/internal/domain/distribution"
	"retailops/internal/domain/warehouse"
	"retailops/internal/infrastructure/http/v1/dto"
)

// WarehouseHandler serves the master catalog and the distribution endpoints.
type WarehouseHandler struct {
	*BaseHandler
	warehouses    *warehouse.Service
	distributions *distribution.Service
	// loc reads bare dates in listing filters.
	loc *time.Location
}

// NewWarehouseHandler creates a new warehouse handler.
func NewWarehouseHandler(
	base *BaseHandler,
	warehouses *warehouse.Service,
	distributions *distribution.Service,
	loc *time.Location,
) *WarehouseHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &WarehouseHandler{
		BaseHandler:   base,
		warehouses:    warehouses,
		distributions: distributions,
		loc:           loc,
	}
}

// ListProducts handles GET /warehouse/products.
func (h *WarehouseHandler) ListProducts(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.MasterProductListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.warehouses.ListMasterProducts(c.Request.Context(), actor, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// CreateProduct handles POST /warehouse/products.
func (h *WarehouseHandler) CreateProduct(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.CreateMasterProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.warehouses.CreateMasterProduct(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, product)
}

// ListCategories handles GET /warehouse/categories.
func (h *WarehouseHandler) ListCategories(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	categories, err := h.warehouses.ListMasterCategories(c.Request.Context(), actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": categories})
}

// CreateCategory handles POST /warehouse/categories.
func (h *WarehouseHandler) CreateCategory(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	category, err := h.warehouses.CreateMasterCategory(c.Request.Context(), actor, req.Name, req.Description)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, category)
}

// ListSuppliers handles GET /warehouse/suppliers.
func (h *WarehouseHandler) ListSuppliers(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	suppliers, err := h.warehouses.ListMasterSuppliers(c.Request.Context(), actor)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": suppliers})
}

// CreateSupplier handles POST /warehouse/suppliers.
func (h *WarehouseHandler) CreateSupplier(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.CreateSupplierRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplier, err := h.warehouses.CreateMasterSupplier(c.Request.Context(), actor, req.ToEntity())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, supplier)
}

// Distribute handles POST /warehouse/distribute.
func (h *WarehouseHandler) Distribute(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.DistributeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	batch, err := h.distributions.Distribute(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, batch)
}

// ListDistributions handles GET /warehouse/distributions.
func (h *WarehouseHandler) ListDistributions(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	var req dto.DistributionListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	filter, err := req.ToFilter(h.loc)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.distributions.ListBatches(c.Request.Context(), actor, filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// GetDistribution handles GET /warehouse/distributions/:id.
func (h *WarehouseHandler) GetDistribution(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	distributionID, ok := h.ParamID(c)
	if !ok {
		return
	}

	batch, err := h.distributions.GetBatch(c.Request.Context(), actor, distributionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, batch)
}

// AcceptDistribution handles PUT /warehouse/distributions/:id/accept.
func (h *WarehouseHandler) AcceptDistribution(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	distributionID, ok := h.ParamID(c)
	if !ok {
		return
	}

	line, err := h.distributions.AcceptItem(c.Request.Context(), actor, distributionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, line)
}
