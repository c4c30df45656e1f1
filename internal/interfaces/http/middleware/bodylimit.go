package middleware

import (
	"net/http"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects request bodies above maxBytes. Declared sizes fail
// fast with 413; undeclared (chunked) bodies are capped by the reader.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeTooLarge, "request body exceeds the allowed size"))
			return
		}

		// limited reader covers chunked requests without a Content-Length
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
