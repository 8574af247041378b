package ratelimit

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGetRateLimitType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want RateLimitType
	}{
		{"/health", RateLimitTypeHealth},
		{"/docs/index.html", RateLimitTypeHealth},
		{"/api/auth/login", RateLimitTypeAuth},
		{"/api/auth/refresh", RateLimitTypeAuth},
		{"/api/users", RateLimitTypeAdmin},
		{"/api/users/42/role", RateLimitTypeAdmin},
		{"/api/products", RateLimitTypeDefault},
		{"/api/orders/7/status", RateLimitTypeDefault},
	}

	for _, tt := range tests {
		if got := GetRateLimitType(tt.path); got != tt.want {
			t.Errorf("GetRateLimitType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	newContext := func(remoteAddr string, headers map[string]string) *gin.Context {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = remoteAddr
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		return c
	}

	t.Run("prefers first valid X-Forwarded-For entry", func(t *testing.T) {
		t.Parallel()

		c := newContext("10.0.0.1:4242", map[string]string{
			"X-Forwarded-For": "203.0.113.7, 10.0.0.2",
		})
		if got := GetClientIP(c); got != "203.0.113.7" {
			t.Errorf("GetClientIP() = %q, want %q", got, "203.0.113.7")
		}
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		t.Parallel()

		c := newContext("10.0.0.1:4242", map[string]string{
			"X-Real-IP": "198.51.100.9",
		})
		if got := GetClientIP(c); got != "198.51.100.9" {
			t.Errorf("GetClientIP() = %q, want %q", got, "198.51.100.9")
		}
	})

	t.Run("invalid forwarded value falls through to RemoteAddr", func(t *testing.T) {
		t.Parallel()

		c := newContext("10.0.0.1:4242", map[string]string{
			"X-Forwarded-For": "not-an-ip",
		})
		if got := GetClientIP(c); got != "10.0.0.1" {
			t.Errorf("GetClientIP() = %q, want %q", got, "10.0.0.1")
		}
	})
}
