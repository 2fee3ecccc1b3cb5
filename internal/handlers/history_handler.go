package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"sku-reconciliation-service/internal/middleware"
	"sku-reconciliation-service/internal/models"
	"sku-reconciliation-service/internal/repository"
	"sku-reconciliation-service/internal/services"
)

// HistoryService saves and lists accepted matches
type HistoryService interface {
	SaveMatches(ctx context.Context, tenantID, actorID string, runID uuid.UUID) (*services.SaveHistoryResult, error)
	ListHistory(ctx context.Context, tenantID string, opts repository.ListOptions) ([]models.MatchHistory, int64, error)
}

// QualityChecker re-validates the stored matches of a run
type QualityChecker interface {
	Revalidate(ctx context.Context, tenantID, actorID string, runID uuid.UUID, now time.Time) (*services.QualityReport, error)
}

// HistoryHandler handles match history and quality check requests
type HistoryHandler struct {
	history HistoryService
	quality QualityChecker
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history HistoryService, quality QualityChecker) *HistoryHandler {
	return &HistoryHandler{history: history, quality: quality}
}

// SaveHistory appends a run's matches to the history
// POST /api/v1/runs/:id/history
func (h *HistoryHandler) SaveHistory(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	result, err := h.history.SaveMatches(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ListHistory lists saved matches
// GET /api/v1/history
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	opts := parsePage(c)
	entries, total, err := h.history.ListHistory(c.Request.Context(), middleware.GetTenantID(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   entries,
		"total":  total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// QualityCheck re-validates a run's matches and flags the suspicious ones
// POST /api/v1/runs/:id/quality-check
func (h *HistoryHandler) QualityCheck(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	report, err := h.quality.Revalidate(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), id, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}
