package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmops/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
			))
			return
		}

		// Limit streaming bodies with unknown content length too
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
