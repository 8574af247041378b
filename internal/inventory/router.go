package inventory

import (
	"github.com/gin-gonic/gin"

	"smartstock/internal/shared/middleware"
	"smartstock/internal/users"
)

// Router handles inventory routes
type Router struct {
	controller *Controller
}

func NewRouter(controller *Controller) *Router {
	return &Router{
		controller: controller,
	}
}

// SetupRoutes registers product and stock-movement routes. Reads are open
// to any authenticated role; writes need administrator or inventory_manager.
func (invRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	writeRoles := middleware.RequireRoles(users.RoleAdministrator, users.RoleInventoryManager)

	products := rg.Group("/products")
	products.Use(middleware.TrustedIdentity())
	{
		products.GET("", invRouter.controller.ListProducts)
		products.GET("/low-stock", invRouter.controller.ListLowStock)
		products.GET("/:id", invRouter.controller.GetProduct)

		products.POST("", writeRoles, invRouter.controller.CreateProduct)
		products.PUT("/:id", writeRoles, invRouter.controller.UpdateProduct)
		products.DELETE("/:id", writeRoles, invRouter.controller.DeleteProduct)
		products.POST("/:id/adjust-stock", writeRoles, invRouter.controller.AdjustStock)
	}

	movements := rg.Group("/stock-movements")
	movements.Use(middleware.TrustedIdentity())
	{
		movements.GET("", invRouter.controller.ListMovements)
	}
}
