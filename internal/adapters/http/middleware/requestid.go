// Package middleware provides the gin middleware used by the API: request
// and correlation IDs, context logging, request logging, panic recovery and
// request deadlines.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-engine/internal/platform/logging"
)

const (
	// HeaderRequestID is the header name for request ID.
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the gin context key for the request ID.
	ContextKeyRequestID = "request_id"
)

// RequestID extracts or generates a request ID. The ID is echoed in the
// response, added to the context logger and stored in the request context
// for outgoing client calls.
func RequestID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderRequestID,
		contextKey: ContextKeyRequestID,
		enrichers:  []enricher{logging.WithRequestID, ContextWithRequestID},
	})
}

// GetRequestID returns the request ID, or "" when the middleware did not run.
func GetRequestID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyRequestID)
}

// MustGetRequestID is GetRequestID with "unknown" in place of "".
func MustGetRequestID(c *gin.Context) string {
	if id := GetRequestID(c); id != "" {
		return id
	}

	return "unknown"
}
