package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/section-portal-api/internal/service"
)

// Metrics records per-route request counts and latencies. The scrape and
// probe endpoints are excluded to keep the series useful.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if metricsSvc == nil || path == "/metrics" || path == "/health" || path == "/ready" {
			c.Next()
			return
		}
		if path == "" {
			path = c.Request.URL.Path
		}
		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
