package v1

import (
	"github.com/gin-gonic/gin"

	"retailops/internal/core/security"
	"retailops/internal/infrastructure/http/v1/middleware"
)

// WarehouseRouteHandler defines the warehouse endpoints.
type WarehouseRouteHandler interface {
	ListProducts(c *gin.Context)
	CreateProduct(c *gin.Context)
	ListCategories(c *gin.Context)
	CreateCategory(c *gin.Context)
	ListSuppliers(c *gin.Context)
	CreateSupplier(c *gin.Context)
	Distribute(c *gin.Context)
	ListDistributions(c *gin.Context)
	GetDistribution(c *gin.Context)
	AcceptDistribution(c *gin.Context)
}

// PurchaseRouteHandler defines the purchase ledger endpoints.
type PurchaseRouteHandler interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterWarehouseRoutes registers the master catalog and distribution routes.
// mutating runs in front of every write; distribute additionally gets idempotent.
func RegisterWarehouseRoutes(group *gin.RouterGroup, handler WarehouseRouteHandler, mutating []gin.HandlerFunc, idempotent gin.HandlerFunc) {
	view := middleware.RequireCapability(security.ActionViewMasterCatalog)
	manage := middleware.RequireCapability(security.ActionManageMasterCatalog)

	group.GET("/products", view, handler.ListProducts)
	group.POST("/products", chain(mutating, manage, handler.CreateProduct)...)
	group.GET("/categories", view, handler.ListCategories)
	group.POST("/categories", chain(mutating, manage, handler.CreateCategory)...)
	group.GET("/suppliers", view, handler.ListSuppliers)
	group.POST("/suppliers", chain(mutating, manage, handler.CreateSupplier)...)

	distribute := middleware.RequireCapability(security.ActionDistribute)
	if idempotent != nil {
		group.POST("/distribute", chain(mutating, distribute, idempotent, handler.Distribute)...)
	} else {
		group.POST("/distribute", chain(mutating, distribute, handler.Distribute)...)
	}

	viewDistributions := middleware.RequireCapability(security.ActionViewDistributions)
	group.GET("/distributions", viewDistributions, handler.ListDistributions)
	group.GET("/distributions/:id", viewDistributions, handler.GetDistribution)
	group.PUT("/distributions/:id/accept",
		chain(mutating, middleware.RequireCapability(security.ActionAcceptDistribution), handler.AcceptDistribution)...)
}

// RegisterPurchaseRoutes registers the purchase ledger routes.
func RegisterPurchaseRoutes(group *gin.RouterGroup, handler PurchaseRouteHandler, mutating []gin.HandlerFunc) {
	manage := middleware.RequireCapability(security.ActionManagePurchases)

	group.GET("", manage, handler.List)
	group.GET("/:id", manage, handler.Get)
	group.PUT("/:id", chain(mutating, manage, handler.Update)...)
	group.DELETE("/:id", chain(mutating, manage, handler.Delete)...)
}

func chain(prefix []gin.HandlerFunc, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(prefix)+len(handlers))
	out = append(out, prefix...)
	return append(out, handlers...)
}
