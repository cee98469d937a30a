package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/city-explorer-api/internal/observability/metrics"
)

const (
	// SessionHeader carries the caller's logical session identifier for
	// transcript and location state. Anonymous callers are allowed.
	SessionHeader = "X-Session-ID"
)

// CORSMiddleware handles CORS headers
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Session-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "SAMEORIGIN")
		c.Writer.Header().Set("X-XSS-Protection", "1; mode=block")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// The /map payload loads the TomTom web SDK from its CDN
		csp := "default-src 'self'; " +
			"script-src 'self' 'unsafe-inline' https://api.tomtom.com; " +
			"style-src 'self' 'unsafe-inline' https://api.tomtom.com; " +
			"img-src 'self' data: https: blob:; " +
			"connect-src 'self' https://api.tomtom.com; " +
			"worker-src 'self' blob:"
		c.Writer.Header().Set("Content-Security-Policy", csp)

		c.Next()
	}
}

// RequestMetricsMiddleware records the request counter and latency
// histogram for every completed request, labeled by method, matched
// route and status.
func RequestMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", route),
			attribute.Int("status", c.Writer.Status()),
		)

		m := metrics.Get()
		m.HTTPRequestsTotal.Add(c.Request.Context(), 1, attrs)
		m.HTTPRequestDuration.Record(c.Request.Context(), time.Since(start).Seconds(), attrs)
	}
}

// GetUserIDFromContext extracts the authenticated user ID from context.
// Returns "anonymous" for unauthenticated requests.
func GetUserIDFromContext(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if idStr, ok := userID.(string); ok && idStr != "" {
			return idStr
		}
	}
	return "anonymous"
}

// IsAuthenticated reports whether the request carries a valid token.
func IsAuthenticated(c *gin.Context) bool {
	if v, exists := c.Get("authenticated"); exists {
		if ok, isBool := v.(bool); isBool {
			return ok
		}
	}
	return false
}

// GetSessionID resolves the logical session identifier from the request,
// generating a fresh one when the caller did not send any. Handlers echo
// the session ID back so clients can stick to it.
func GetSessionID(c *gin.Context) string {
	if sid := c.GetHeader(SessionHeader); sid != "" {
		return sid
	}
	if sid := c.Query("session_id"); sid != "" {
		return sid
	}
	return uuid.NewString()
}
