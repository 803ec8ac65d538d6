package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/neurobridge-risk/internal/observability"
)

// unmatchedRoute labels requests that hit no registered route, so probes for random
// paths cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

var unmeteredRoutes = map[string]struct{}{
	"/metrics":     {},
	"/healthcheck": {},
}

// Metrics records request count and latency per route template. Scrapes and health
// probes are not counted.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if _, skip := unmeteredRoutes[route]; skip {
			c.Next()
			return
		}
		if route == "" {
			route = unmatchedRoute
		}

		m.ApiInflightInc()
		start := time.Now()
		c.Next()
		m.ApiInflightDec()

		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
