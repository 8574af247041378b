package gateway

import (
	"testing"

	"smartstock/internal/shared/config"
)

func testRouteTable() *RouteTable {
	return NewRouteTable(config.UpstreamConfig{
		UserServiceURL:      "http://users:8081",
		InventoryServiceURL: "http://inventory:8082",
		OrderServiceURL:     "http://orders:8083",
	})
}

func TestRouteTableMatch(t *testing.T) {
	t.Parallel()

	table := testRouteTable()

	tests := []struct {
		name       string
		path       string
		wantTarget string
		wantPath   string
		wantMatch  bool
	}{
		{
			name:       "products prefix rewrites to inventory service",
			path:       "/api/products/123",
			wantTarget: "http://inventory:8082",
			wantPath:   "/products/123",
			wantMatch:  true,
		},
		{
			name:       "bare prefix matches",
			path:       "/api/products",
			wantTarget: "http://inventory:8082",
			wantPath:   "/products",
			wantMatch:  true,
		},
		{
			name:       "auth goes to the user service",
			path:       "/api/auth/login",
			wantTarget: "http://users:8081",
			wantPath:   "/auth/login",
			wantMatch:  true,
		},
		{
			name:       "stock movements go to the inventory service",
			path:       "/api/stock-movements",
			wantTarget: "http://inventory:8082",
			wantPath:   "/stock-movements",
			wantMatch:  true,
		},
		{
			name:       "orders go to the order service",
			path:       "/api/orders/42/status",
			wantTarget: "http://orders:8083",
			wantPath:   "/orders/42/status",
			wantMatch:  true,
		},
		{
			name:      "prefix must end on a segment boundary",
			path:      "/api/productsfoo",
			wantMatch: false,
		},
		{
			name:      "unknown prefix does not match",
			path:      "/api/reports",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			route, ok := table.Match(tt.path)
			if ok != tt.wantMatch {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.path, ok, tt.wantMatch)
			}
			if !tt.wantMatch {
				return
			}
			if route.Target != tt.wantTarget {
				t.Errorf("target = %q, want %q", route.Target, tt.wantTarget)
			}
			if got := route.RewritePath(tt.path); got != tt.wantPath {
				t.Errorf("RewritePath(%q) = %q, want %q", tt.path, got, tt.wantPath)
			}
		})
	}
}

func TestIsPublic(t *testing.T) {
	t.Parallel()

	public := [][2]string{
		{"POST", "/api/auth/login"},
		{"POST", "/api/auth/register"},
		{"POST", "/api/auth/refresh"},
		{"POST", "/api/auth/validate"},
		{"GET", "/api/auth/check-users"},
	}
	for _, pair := range public {
		if !IsPublic(pair[0], pair[1]) {
			t.Errorf("IsPublic(%s %s) = false, want true", pair[0], pair[1])
		}
	}

	private := [][2]string{
		{"GET", "/api/auth/login"},
		{"POST", "/api/auth/logout"},
		{"GET", "/api/products"},
		{"POST", "/api/orders"},
		{"POST", "/api/auth/check-users"},
	}
	for _, pair := range private {
		if IsPublic(pair[0], pair[1]) {
			t.Errorf("IsPublic(%s %s) = true, want false", pair[0], pair[1])
		}
	}
}
