package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const serviceName = "sku-reconciliation-service"

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// HealthHandler handles health check endpoints
type HealthHandler struct {
	checks map[string]ReadinessCheck
	stats  func() map[string]interface{}
}

// NewHealthHandler creates a new health handler. stats may be nil.
func NewHealthHandler(checks map[string]ReadinessCheck, stats func() map[string]interface{}) *HealthHandler {
	return &HealthHandler{checks: checks, stats: stats}
}

// Health handles the health check endpoint
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}

// Ready handles the readiness check endpoint
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}

	body := gin.H{"service": serviceName}
	if h.stats != nil {
		body["runs"] = h.stats()
	}
	if len(failed) > 0 {
		body["status"] = "not ready"
		body["failed"] = failed
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	c.JSON(http.StatusOK, body)
}
