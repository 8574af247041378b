package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"smartstock/internal/shared/token"
	"smartstock/internal/shared/utils/response"
	"smartstock/internal/users"
	"smartstock/pkg/logger"
)

// Context keys set by the authentication middleware and read by
// controllers and the gateway proxy.
const (
	ContextUserID    = "user_id"
	ContextUsername  = "user_name"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

// Trust headers the gateway sets on forwarded requests. Downstream
// services accept them only because the gateway is the sole network path
// to them; this is a topological trust boundary, not a cryptographic one.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Status mapping: missing or invalid tokens are always 401; 403 is
// reserved for authenticated identities with an insufficient role.

// JWTAuth verifies the Authorization bearer token and attaches the
// identity to the request context. Token contents are never logged.
func JWTAuth(tokens token.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header is required", nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil)
			c.Abort()
			return
		}

		claims, err := tokens.VerifyAccess(c.Request.Context(), parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)

		c.Next()
	}
}

// TrustedIdentity derives the request identity from the gateway's trust
// headers. Used by downstream services that never see the original token.
func TrustedIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		userRole := c.GetHeader(HeaderUserRole)
		if userID == "" || userRole == "" {
			response.Error(c, http.StatusUnauthorized, "missing gateway identity headers", nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, userRole)

		c.Next()
	}
}

// RequireRoles checks the context identity's role against an allow-list.
// The comparison is a case-sensitive exact match against the canonical
// enumeration; unknown role values never match anything.
func RequireRoles(requiredRoles ...users.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextUserRole)
		if !exists {
			response.Error(c, http.StatusUnauthorized, "user role not found in context", nil)
			c.Abort()
			return
		}

		role, ok := userRole.(string)
		if !ok || !users.IsValidRole(role) {
			response.Error(c, http.StatusForbidden, "Insufficient permissions", nil)
			c.Abort()
			return
		}

		hasRole := false
		for _, required := range requiredRoles {
			if role == string(required) {
				hasRole = true
				break
			}
		}

		if !hasRole {
			response.Error(c, http.StatusForbidden, "Insufficient permissions", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdministrator requires the administrator role.
func RequireAdministrator() gin.HandlerFunc {
	return RequireRoles(users.RoleAdministrator)
}

// UserID returns the authenticated user id from the context, or "".
func UserID(c *gin.Context) string {
	if v, ok := c.Get(ContextUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// UserRole returns the authenticated user role from the context, or "".
func UserRole(c *gin.Context) string {
	if v, ok := c.Get(ContextUserRole); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequestLogger logs method, path, status and latency for every request.
func RequestLogger(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}
