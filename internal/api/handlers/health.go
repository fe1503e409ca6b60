package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nickbutler25/FPLOptimizer/internal/cache"
	"github.com/nickbutler25/FPLOptimizer/internal/types"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	cache *cache.Cache
}

func NewHealthHandler(c *cache.Cache) *HealthHandler {
	return &HealthHandler{cache: c}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthStatus{
		Status:    "healthy",
		Service:   "fpl-optimizer",
		Timestamp: time.Now().UTC(),
	})
}

// Ready handles GET /ready: checks the cache backend when configured.
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{"cache": "ok"}
	status := "ready"
	code := http.StatusOK
	if !h.cache.Healthy(c.Request.Context()) {
		checks["cache"] = "unreachable"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, types.HealthStatus{
		Status:    status,
		Service:   "fpl-optimizer",
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	})
}
