package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"smartstock/internal/shared/config"
	"smartstock/internal/shared/token"
	"smartstock/internal/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testTokenService() token.Service {
	return token.NewService(config.JWTConfig{
		Secret:           "middleware-test-secret",
		RefreshSecret:    "middleware-test-refresh-secret",
		ExpiresIn:        time.Hour,
		RefreshExpiresIn: 24 * time.Hour,
	}, nil)
}

func issueAccessToken(t *testing.T, tokens token.Service, role users.Role) string {
	t.Helper()

	pair, err := tokens.Issue(token.Identity{
		ID:       "c0a80101-0000-4000-8000-000000000001",
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("issuing test token: %v", err)
	}
	return pair.AccessToken
}

func TestJWTAuth(t *testing.T) {
	t.Parallel()

	newRouter := func(tokens token.Service) *gin.Engine {
		router := gin.New()
		router.GET("/protected", JWTAuth(tokens), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"user_id": UserID(c),
				"role":    UserRole(c),
			})
		})
		return router
	}

	t.Run("missing Authorization header returns 401", func(t *testing.T) {
		t.Parallel()

		router := newRouter(testTokenService())
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("malformed header returns 401", func(t *testing.T) {
		t.Parallel()

		router := newRouter(testTokenService())
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abcdef")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("invalid token returns 401", func(t *testing.T) {
		t.Parallel()

		router := newRouter(testTokenService())
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-real-token")
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("valid token attaches identity to context", func(t *testing.T) {
		t.Parallel()

		tokens := testTokenService()
		router := newRouter(tokens)
		accessToken := issueAccessToken(t, tokens, users.RoleSalesStaff)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
		}
	})
}

func TestTrustedIdentity(t *testing.T) {
	t.Parallel()

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.GET("/resource", TrustedIdentity(), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "role": UserRole(c)})
		})
		return router
	}

	t.Run("missing trust headers returns 401", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/resource", nil)
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("headers set by the gateway are attached to context", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/resource", nil)
		req.Header.Set(HeaderUserID, "user-42")
		req.Header.Set(HeaderUserRole, string(users.RoleInventoryManager))
		newRouter().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	newRouter := func(allowed ...users.Role) *gin.Engine {
		router := gin.New()
		router.GET("/gated",
			TrustedIdentity(),
			RequireRoles(allowed...),
			func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) },
		)
		return router
	}

	request := func(role string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/gated", nil)
		req.Header.Set(HeaderUserID, "user-42")
		req.Header.Set(HeaderUserRole, role)
		newRouter(users.RoleAdministrator, users.RoleInventoryManager).ServeHTTP(w, req)
		return w
	}

	t.Run("role in allow-list proceeds", func(t *testing.T) {
		t.Parallel()

		if w := request(string(users.RoleInventoryManager)); w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("role outside allow-list is rejected with 403", func(t *testing.T) {
		t.Parallel()

		if w := request(string(users.RoleSalesStaff)); w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("unknown role value never matches", func(t *testing.T) {
		t.Parallel()

		if w := request("superuser"); w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
		}
	})

	t.Run("role comparison is case-sensitive", func(t *testing.T) {
		t.Parallel()

		if w := request("Administrator"); w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
		}
	})
}
