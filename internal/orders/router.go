package orders

import (
	"github.com/gin-gonic/gin"

	"smartstock/internal/shared/middleware"
	"smartstock/internal/users"
)

// Router handles order routes
type Router struct {
	controller *Controller
}

func NewRouter(controller *Controller) *Router {
	return &Router{
		controller: controller,
	}
}

// SetupRoutes registers order routes. Placing and transitioning orders
// needs sales_staff or administrator; reads are open to any authenticated
// role.
func (orderRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	salesRoles := middleware.RequireRoles(users.RoleAdministrator, users.RoleSalesStaff)

	ordersGroup := rg.Group("/orders")
	ordersGroup.Use(middleware.TrustedIdentity())
	{
		ordersGroup.GET("", orderRouter.controller.ListOrders)
		ordersGroup.GET("/:id", orderRouter.controller.GetOrder)

		ordersGroup.POST("", salesRoles, orderRouter.controller.CreateOrder)
		ordersGroup.PUT("/:id/status", salesRoles, orderRouter.controller.UpdateStatus)
	}
}
