package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartstock/internal/shared/middleware"
	"smartstock/internal/shared/utils/response"
	"smartstock/pkg/logger"
)

// Hop-by-hop headers (RFC 7230 §6.1) describe the client-gateway
// connection and must not travel upstream. Keys in canonical MIME form.
var hopByHopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// Proxy forwards authenticated requests to the upstream services, carrying
// the verified identity in trust headers.
type Proxy struct {
	table   *RouteTable
	client  *http.Client
	timeout time.Duration
}

func NewProxy(table *RouteTable, timeout time.Duration) *Proxy {
	return &Proxy{
		table:   table,
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Handle proxies one request. Unmatched paths get 404, upstream connect
// failures 502, and deadline overruns 504.
func (p *Proxy) Handle(c *gin.Context) {
	route, ok := p.table.Match(c.Request.URL.Path)
	if !ok {
		response.Error(c, http.StatusNotFound, "Route not found", nil)
		return
	}

	targetURL := route.Target + route.RewritePath(c.Request.URL.Path)
	if raw := c.Request.URL.RawQuery; raw != "" {
		targetURL += "?" + raw
	}

	var body []byte
	if c.Request.Body != nil {
		var err error
		body, err = io.ReadAll(c.Request.Body)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "Failed to read request body", nil)
			return
		}
	}

	// The timeout rides on the request context, so a client disconnect
	// also cancels the upstream call.
	ctx, cancel := context.WithTimeout(c.Request.Context(), p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, c.Request.Method, targetURL, bytes.NewReader(body))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to build proxy request", nil)
		return
	}

	// Client-supplied trust headers never pass through; the gateway is the
	// only writer of X-User-ID and X-User-Role. Header keys arrive in
	// canonical MIME form, so compare canonicalized.
	userIDKey := http.CanonicalHeaderKey(middleware.HeaderUserID)
	userRoleKey := http.CanonicalHeaderKey(middleware.HeaderUserRole)
	for key, values := range c.Request.Header {
		if key == userIDKey || key == userRoleKey {
			continue
		}
		if _, hop := hopByHopHeaders[key]; hop {
			continue
		}
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.ContentLength = int64(len(body))
	if len(body) > 0 && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if userID := middleware.UserID(c); userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
		req.Header.Set(middleware.HeaderUserRole, middleware.UserRole(c))
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		// Client gone, nothing left to answer.
		if c.Request.Context().Err() != nil {
			c.Abort()
			return
		}

		logger.GetDefault().LogProxyError(ctx, c.Request.Method, targetURL, err)

		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			response.Error(c, http.StatusGatewayTimeout, "Upstream service timed out", nil)
			return
		}
		response.Error(c, http.StatusBadGateway, "Upstream service unavailable", nil)
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		response.Error(c, http.StatusBadGateway, "Failed to read upstream response", nil)
		return
	}

	logger.GetDefault().LogProxyForward(ctx, c.Request.Method, targetURL, resp.StatusCode, time.Since(start))

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, respBody)
}
