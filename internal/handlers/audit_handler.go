package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"sku-reconciliation-service/internal/middleware"
	"sku-reconciliation-service/internal/models"
	"sku-reconciliation-service/internal/services"
)

// AuditReader queries the audit trail
type AuditReader interface {
	GetAuditLogs(ctx context.Context, tenantID string, opts *services.AuditLogOptions) ([]models.AuditLog, int64, error)
}

// AuditHandler handles audit log HTTP requests
type AuditHandler struct {
	auditService AuditReader
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService AuditReader) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// GetAuditLogs lists imports, runs, exports and checks for the tenant
// GET /api/v1/audit-logs
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	page := parsePage(c)
	opts := &services.AuditLogOptions{
		Action:     c.Query("action"),
		ResourceID: c.Query("resourceId"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), middleware.GetTenantID(c), opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve audit logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":   logs,
		"total":  total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}
