package auth

import (
	"github.com/gin-gonic/gin"

	"smartstock/internal/shared/middleware"
)

// Router handles auth-related routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new auth router
func NewRouter(controller *Controller) *Router {
	return &Router{
		controller: controller,
	}
}

// SetupRoutes registers all auth and user-management routes. Identity on
// protected routes comes from the gateway's trust headers; the public
// routes are exactly the gateway's bypass list.
func (authRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		// Public routes (no authentication required)
		auth.POST("/register", authRouter.controller.Register)
		auth.POST("/login", authRouter.controller.Login)
		auth.POST("/refresh", authRouter.controller.RefreshToken)
		auth.POST("/validate", authRouter.controller.ValidateToken)
		auth.GET("/check-users", authRouter.controller.CheckUsers)

		// Protected routes (gateway-verified identity required)
		protected := auth.Group("")
		protected.Use(middleware.TrustedIdentity())
		{
			protected.POST("/logout", authRouter.controller.Logout)
			protected.PUT("/change-password", authRouter.controller.ChangePassword)
			protected.GET("/me", authRouter.controller.GetMe)
		}
	}

	// User administration, administrator only
	admin := rg.Group("/users")
	admin.Use(middleware.TrustedIdentity(), middleware.RequireAdministrator())
	{
		admin.GET("", authRouter.controller.ListUsers)
		admin.GET("/:id", authRouter.controller.GetUser)
		admin.PUT("/:id/role", authRouter.controller.UpdateUserRole)
		admin.DELETE("/:id", authRouter.controller.DeactivateUser)
	}
}
