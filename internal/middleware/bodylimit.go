package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodyLimit caps request bodies at maxMB megabytes. Reads past the cap fail,
// which surfaces as a bind or multipart error in the handler.
func BodyLimit(maxMB int) gin.HandlerFunc {
	if maxMB <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limit := int64(maxMB) << 20
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
