package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/cognitokit/errors"
)

// RequireToken rejects requests whose Authorization header does not carry
// token, either bare (the ECS container credentials convention) or as a
// Bearer token. An empty token disables the check.
func RequireToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		got := c.GetHeader("Authorization")
		if after, ok := strings.CutPrefix(got, "Bearer "); ok {
			got = after
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			appErr := apperrors.Unauthorized("a valid authorization token is required")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		c.Next()
	}
}
