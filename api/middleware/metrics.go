package middleware

import (
	"net/http"
	"time"

	"challengebot/internal/metrics"

	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests that hit no registered route.
const unmatchedRoute = "unmatched"

// HTTPMetrics records request counts and latencies. Requests are labelled
// by route template so path parameters do not create new series.
func HTTPMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}
		m.ObserveHTTP(path, c.Request.Method, http.StatusText(c.Writer.Status()), time.Since(start))
	}
}
