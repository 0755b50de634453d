package router

import (
	"runtime"
	"time"

	"sentimentai/voice-server/pkg/health"

	"github.com/gin-gonic/gin"
)

// Track server start time for uptime reporting
var startTime = time.Now()

// setupHealthRoutes registers health check endpoints
func (r *Router) setupHealthRoutes() {
	healthHandler := func(c *gin.Context) {
		r.Container.HealthChecker.RunChecks()

		status := 200
		overall := health.StatusUp
		if !r.Container.HealthChecker.Healthy() {
			status = 503
			overall = health.StatusDown
		}

		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		c.JSON(status, gin.H{
			"status":     overall,
			"env":        r.Config.Server.Env,
			"timestamp":  time.Now().Format(time.RFC3339),
			"uptime_s":   int(time.Since(startTime).Seconds()),
			"components": r.Container.HealthChecker.Components(),
			"memory": gin.H{
				"alloc_mb":  memStats.Alloc / 1024 / 1024,
				"sys_mb":    memStats.Sys / 1024 / 1024,
				"gc_cycles": memStats.NumGC,
			},
		})
	}

	// Register both health endpoint paths for compatibility
	r.Engine.GET("/health", healthHandler)
	r.Engine.GET("/api/health", healthHandler)
}
