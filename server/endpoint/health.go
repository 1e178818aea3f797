package endpoint

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/cognitokit/component"
	"github.com/kbukum/cognitokit/observability"
	"github.com/kbukum/cognitokit/version"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Health reports service health aggregated over the component statuses.
// It answers 503 when any component is unhealthy.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var healths []component.Health
		if checker != nil {
			healths = checker(c.Request.Context())
		}
		sh := observability.Aggregate(serviceName, version.Get().Short(), healths)

		status := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, sh)
	}
}
