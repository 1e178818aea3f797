package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/cognitokit/util"
)

const defaultMaxBodySize = 64 * 1024

// BodySizeLimit restricts request bodies to maxSize, e.g. "64KB".
func BodySizeLimit(maxSize string) gin.HandlerFunc {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, size)
		c.Next()
	}
}
