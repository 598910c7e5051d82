package middleware

import (
	"context"
	"strings"

	"github.com/dropship/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling runs each request under Pyroscope labels for its route and
// method so CPU profiles can be split per endpoint
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" || route == "/metrics" {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		},
			"route", route,
			"method", c.Request.Method,
			"controller", controllerOf(route),
		)
	}
}

// controllerOf returns the first path segment after the API version:
// "/api/v1/rules/brands/:id" gives "rules"
func controllerOf(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for _, p := range parts {
		if p == "api" || (strings.HasPrefix(p, "v") && len(p) > 1 && p[1] >= '0' && p[1] <= '9') {
			continue
		}
		if strings.HasPrefix(p, ":") || strings.HasPrefix(p, "*") {
			return ""
		}
		return p
	}
	return ""
}
