package http

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-engine/internal/adapters/http/dto"
)

// noRoute answers unknown paths with the JSON error envelope instead of gin's
// plain text 404.
func noRoute(c *gin.Context) {
	dto.AbortWithErrorCode(c, dto.ErrorCodeNoRoute, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
}

func noMethod(c *gin.Context) {
	dto.AbortWithErrorCode(c, dto.ErrorCodeNoMethod, "method "+c.Request.Method+" not allowed on "+c.Request.URL.Path)
}
