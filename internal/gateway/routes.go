package gateway

import (
	"sort"
	"strings"

	"smartstock/internal/shared/config"
)

// Route maps a gateway path prefix to an upstream base URL, substituting
// the prefix on the way through (`/api/products/123` becomes
// `/products/123` on the inventory service).
type Route struct {
	Prefix  string
	Target  string
	Rewrite string
}

// RewritePath swaps the gateway prefix for the upstream one, keeping the
// remainder of the path intact.
func (r *Route) RewritePath(path string) string {
	return r.Rewrite + strings.TrimPrefix(path, r.Prefix)
}

// RouteTable resolves request paths by longest-prefix match.
type RouteTable struct {
	routes []Route
}

// NewRouteTable builds the gateway's route table from the configured
// upstream URLs.
func NewRouteTable(cfg config.UpstreamConfig) *RouteTable {
	return newRouteTable([]Route{
		{Prefix: "/api/auth", Target: cfg.UserServiceURL, Rewrite: "/auth"},
		{Prefix: "/api/users", Target: cfg.UserServiceURL, Rewrite: "/users"},
		{Prefix: "/api/products", Target: cfg.InventoryServiceURL, Rewrite: "/products"},
		{Prefix: "/api/stock-movements", Target: cfg.InventoryServiceURL, Rewrite: "/stock-movements"},
		{Prefix: "/api/orders", Target: cfg.OrderServiceURL, Rewrite: "/orders"},
	})
}

func newRouteTable(routes []Route) *RouteTable {
	sorted := append([]Route(nil), routes...)
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})
	return &RouteTable{routes: sorted}
}

// Match returns the route for a path, matching on segment boundaries only
// so `/api/productsfoo` never hits the products route.
func (t *RouteTable) Match(path string) (*Route, bool) {
	for i := range t.routes {
		route := &t.routes[i]
		if path == route.Prefix || strings.HasPrefix(path, route.Prefix+"/") {
			return route, true
		}
	}
	return nil, false
}

// publicRoutes is the enumerable set of method+path pairs that skip
// authentication at the gateway.
var publicRoutes = map[string]struct{}{
	"POST /api/auth/login":      {},
	"POST /api/auth/register":   {},
	"POST /api/auth/refresh":    {},
	"POST /api/auth/validate":   {},
	"GET /api/auth/check-users": {},
}

// IsPublic reports whether a request may pass the gateway unauthenticated.
func IsPublic(method, path string) bool {
	_, ok := publicRoutes[method+" "+path]
	return ok
}
