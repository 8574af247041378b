package gateway

import (
	"github.com/gin-gonic/gin"

	"smartstock/internal/shared/middleware"
	"smartstock/internal/shared/token"
)

// Router mounts the proxy behind authentication on a gin engine.
type Router struct {
	proxy  *Proxy
	tokens token.Service
}

func NewRouter(proxy *Proxy, tokens token.Service) *Router {
	return &Router{
		proxy:  proxy,
		tokens: tokens,
	}
}

// SetupRoutes registers the catch-all proxy route. Requests on the public
// bypass list skip JWT verification, everything else under /api must carry
// a valid access token.
func (gwRouter *Router) SetupRoutes(router *gin.Engine) {
	router.Any("/api/*path", gwRouter.authUnlessPublic(), gwRouter.proxy.Handle)
}

func (gwRouter *Router) authUnlessPublic() gin.HandlerFunc {
	jwtAuth := middleware.JWTAuth(gwRouter.tokens)
	return func(c *gin.Context) {
		if IsPublic(c.Request.Method, c.Request.URL.Path) {
			c.Next()
			return
		}
		jwtAuth(c)
	}
}
