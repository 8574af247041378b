package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"smartstock/internal/shared/config"
	"smartstock/internal/shared/middleware"
	"smartstock/internal/shared/token"
	"smartstock/internal/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeIdentity simulates the auth middleware having verified a token.
func fakeIdentity(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, role)
		c.Next()
	}
}

func newProxyEngine(t *testing.T, upstream string, timeout time.Duration, identity gin.HandlerFunc) *gin.Engine {
	t.Helper()

	table := NewRouteTable(config.UpstreamConfig{
		UserServiceURL:      upstream,
		InventoryServiceURL: upstream,
		OrderServiceURL:     upstream,
	})
	proxy := NewProxy(table, timeout)

	router := gin.New()
	if identity != nil {
		router.Any("/api/*path", identity, proxy.Handle)
	} else {
		router.Any("/api/*path", proxy.Handle)
	}
	return router
}

func TestProxyForwarding(t *testing.T) {
	t.Run("rewrites the path and injects trust headers", func(t *testing.T) {
		var gotPath, gotUserID, gotUserRole, gotQuery string
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.RawQuery
			gotUserID = r.Header.Get(middleware.HeaderUserID)
			gotUserRole = r.Header.Get(middleware.HeaderUserRole)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer upstream.Close()

		router := newProxyEngine(t, upstream.URL, 5*time.Second, fakeIdentity("user-1", "sales_staff"))

		req := httptest.NewRequest(http.MethodGet, "/api/products/123?limit=5", nil)
		// A spoofed trust header must be replaced by the verified identity.
		req.Header.Set(middleware.HeaderUserID, "attacker")
		req.Header.Set(middleware.HeaderUserRole, "administrator")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if gotPath != "/products/123" {
			t.Errorf("upstream path = %q, want /products/123", gotPath)
		}
		if gotQuery != "limit=5" {
			t.Errorf("upstream query = %q, want limit=5", gotQuery)
		}
		if gotUserID != "user-1" || gotUserRole != "sales_staff" {
			t.Errorf("trust headers = %q/%q, want user-1/sales_staff", gotUserID, gotUserRole)
		}
	})

	t.Run("strips client trust headers on unauthenticated routes", func(t *testing.T) {
		var gotUserID string
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUserID = r.Header.Get(middleware.HeaderUserID)
			w.WriteHeader(http.StatusOK)
		}))
		defer upstream.Close()

		router := newProxyEngine(t, upstream.URL, 5*time.Second, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		req.Header.Set(middleware.HeaderUserID, "attacker")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if gotUserID != "" {
			t.Errorf("upstream saw X-User-ID %q, want empty", gotUserID)
		}
	})

	t.Run("hop-by-hop headers do not travel upstream", func(t *testing.T) {
		var gotKeepAlive, gotProxyAuth, gotRequestID string
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotKeepAlive = r.Header.Get("Keep-Alive")
			gotProxyAuth = r.Header.Get("Proxy-Authorization")
			gotRequestID = r.Header.Get("X-Request-ID")
			w.WriteHeader(http.StatusOK)
		}))
		defer upstream.Close()

		router := newProxyEngine(t, upstream.URL, 5*time.Second, fakeIdentity("user-1", "sales_staff"))

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("Keep-Alive", "timeout=5")
		req.Header.Set("Proxy-Authorization", "Basic Zm9vOmJhcg==")
		req.Header.Set("X-Request-ID", "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if gotKeepAlive != "" || gotProxyAuth != "" {
			t.Errorf("hop-by-hop headers leaked upstream: Keep-Alive=%q Proxy-Authorization=%q", gotKeepAlive, gotProxyAuth)
		}
		if gotRequestID != "req-42" {
			t.Errorf("end-to-end header X-Request-ID = %q, want req-42", gotRequestID)
		}
	})

	t.Run("forwards body and passes the upstream status through", func(t *testing.T) {
		var gotBody []byte
		var gotContentType string
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			gotContentType = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"created":true}`))
		}))
		defer upstream.Close()

		router := newProxyEngine(t, upstream.URL, 5*time.Second, fakeIdentity("user-1", "sales_staff"))

		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"customer_name":"ACME"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201", w.Code)
		}
		if string(gotBody) != `{"customer_name":"ACME"}` {
			t.Errorf("upstream body = %q", gotBody)
		}
		if gotContentType != "application/json" {
			t.Errorf("upstream content type = %q, want application/json", gotContentType)
		}
		if w.Body.String() != `{"created":true}` {
			t.Errorf("response body = %q", w.Body.String())
		}
	})

	t.Run("unmatched path returns 404", func(t *testing.T) {
		router := newProxyEngine(t, "http://127.0.0.1:1", 5*time.Second, fakeIdentity("user-1", "sales_staff"))

		req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("unreachable upstream returns 502", func(t *testing.T) {
		// Port 1 is never listening.
		router := newProxyEngine(t, "http://127.0.0.1:1", 5*time.Second, fakeIdentity("user-1", "sales_staff"))

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", w.Code)
		}

		var envelope map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		if envelope["success"] != false {
			t.Errorf("envelope success = %v, want false", envelope["success"])
		}
	})

	t.Run("slow upstream returns 504", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		}))
		defer upstream.Close()

		router := newProxyEngine(t, upstream.URL, 50*time.Millisecond, fakeIdentity("user-1", "sales_staff"))

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusGatewayTimeout {
			t.Errorf("status = %d, want 504", w.Code)
		}
	})
}

func TestGatewayAuthBypass(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer upstream.Close()

	tokens := token.NewService(config.JWTConfig{
		Secret:           "gateway-test-secret",
		RefreshSecret:    "gateway-test-refresh",
		ExpiresIn:        time.Hour,
		RefreshExpiresIn: 24 * time.Hour,
	}, nil)

	table := NewRouteTable(config.UpstreamConfig{
		UserServiceURL:      upstream.URL,
		InventoryServiceURL: upstream.URL,
		OrderServiceURL:     upstream.URL,
	})
	router := gin.New()
	NewRouter(NewProxy(table, 5*time.Second), tokens).SetupRoutes(router)

	t.Run("public login passes without a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})

	t.Run("protected route without a token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("protected route with a valid token is proxied", func(t *testing.T) {
		pair, err := tokens.Issue(token.Identity{
			ID:       "user-1",
			Username: "jdoe",
			Email:    "a@b.com",
			Role:     users.RoleSalesStaff,
		})
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	})
}
