package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/cognitokit/logger"
	"github.com/kbukum/cognitokit/observability"
)

// RequestLogger logs every request with method, path, status and latency
// and records request metrics. Health probes are not logged.
func RequestLogger(log *logger.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		metrics.RecordRequestStart(ctx)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequestEnd(ctx, route, c.Request.Method, status, latency)

		if isHealthEndpoint(c.Request.URL.Path) {
			return
		}

		fields := logger.Fields(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			logger.FieldStatus, status,
			logger.FieldDuration, latency.Milliseconds(),
			"client", c.ClientIP(),
		)
		if id := c.GetString(RequestIDKey); id != "" {
			fields[logger.FieldRequestID] = id
		}
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.String()
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}
		logByStatus(log, fields, status)
	}
}

func isHealthEndpoint(path string) bool {
	switch path {
	case "/health", "/info":
		return true
	}
	return false
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
