package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/cognitokit/errors"
	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/resilience"
)

// RateLimitConfig configures per-client rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// RateLimit applies a token bucket per client IP and answers 429 with a
// RATE_LIMITED body once it is empty.
func RateLimit(cfg RateLimitConfig, log *logger.Logger) gin.HandlerFunc {
	limiter := resilience.NewKeyedRateLimiter(resilience.RateLimiterConfig{
		Name:  "http",
		Rate:  cfg.RequestsPerSecond,
		Burst: cfg.Burst,
		OnLimit: func(_, key string) {
			log.Warn("Rate limit exceeded", logger.Fields("client", key))
		},
	})
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperrors.RateLimited().ToResponse())
			return
		}
		c.Next()
	}
}
