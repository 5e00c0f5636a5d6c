package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-engine/internal/platform/logging"
)

const (
	// HeaderCorrelationID is the header name for correlation ID. A UI keeps
	// one correlation ID for a whole editing session.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID propagates X-Correlation-ID, generating one when the caller
// did not send it.
func CorrelationID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderCorrelationID,
		contextKey: ContextKeyCorrelationID,
		enrichers:  []enricher{logging.WithCorrelationID, ContextWithCorrelationID},
	})
}

// GetCorrelationID returns the correlation ID, or "".
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}

// MustGetCorrelationID is GetCorrelationID with "unknown" in place of "".
func MustGetCorrelationID(c *gin.Context) string {
	if id := GetCorrelationID(c); id != "" {
		return id
	}

	return "unknown"
}
