// Package middleware provides the gin middleware stack for VeAIOps servers.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header carrying the request ID.
	RequestIDHeader = "X-Request-ID"

	// requestIDKey is the gin context key for the request ID.
	requestIDKey = "request_id"
)

// RequestID returns a middleware that assigns each request a unique ID.
// An inbound X-Request-ID header is honored so IDs propagate across services.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the request ID for the current request, if any.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
