package middleware

import (
	"time"

	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests that hit no route, keeping label
// cardinality bounded
const unmatchedRoute = "unmatched"

// HTTPMetrics records request count, latency and in-flight requests. It must
// run outside the error handler so the final status is observed.
func HTTPMetrics(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		inFlight := m.InFlight()
		inFlight.Inc()
		defer inFlight.Dec()

		c.Next()

		m.ObserveRequest(c.Request.Method, routePattern(c), c.Writer.Status(), time.Since(start))
	}
}

func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
