package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/fulluproar/backoffice/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling label keys
const (
	ProfilingLabelRoute  = "route"
	ProfilingLabelMethod = "method"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	// Enabled controls whether profiling labels are added to requests.
	Enabled bool
	// SkipPaths are paths that don't need profiling labels.
	SkipPaths []string
}

// DefaultProfilingConfig returns default profiling middleware configuration.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health", "/health/ready"},
	}
}

// Profiling returns profiling middleware with default configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig runs each request under pprof labels for its route
// pattern and method, so CPU spent rasterizing can be told apart per
// endpoint in Pyroscope. Unmatched routes get no labels.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return passthrough
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		},
			ProfilingLabelRoute, route,
			ProfilingLabelMethod, strings.ToUpper(c.Request.Method),
		)
	}
}
