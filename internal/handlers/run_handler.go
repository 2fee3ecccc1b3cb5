package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/middleware"
	"sku-reconciliation-service/internal/models"
	"sku-reconciliation-service/internal/repository"
	"sku-reconciliation-service/internal/services"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv"
)

// RunService starts match runs and reads their results
type RunService interface {
	StartRun(ctx context.Context, tenantID, actorID string) (*models.MatchRun, error)
	GetRun(ctx context.Context, tenantID string, id uuid.UUID) (*models.MatchRun, error)
	ListRuns(ctx context.Context, tenantID string, opts repository.ListOptions) ([]models.MatchRun, int64, error)
	ListRecords(ctx context.Context, tenantID string, runID uuid.UUID, opts repository.RecordListOptions) ([]models.MatchRecordRow, int64, error)
	LoadTable(ctx context.Context, tenantID string, runID uuid.UUID) (*models.MatchRun, []models.MatchRecordRow, *matching.MatchTable, error)
}

// RunHandler handles match run requests and the reports derived from them
type RunHandler struct {
	runs    RunService
	pricing *services.PricingService
	exports *services.ExportService
	listing *services.ListingService
}

// NewRunHandler creates a new run handler
func NewRunHandler(runs RunService, pricing *services.PricingService, exports *services.ExportService, listing *services.ListingService) *RunHandler {
	return &RunHandler{
		runs:    runs,
		pricing: pricing,
		exports: exports,
		listing: listing,
	}
}

// StartRun starts a match run in the background
// POST /api/v1/runs
func (h *RunHandler) StartRun(c *gin.Context) {
	run, err := h.runs.StartRun(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"data": run})
}

// ListRuns lists the tenant's runs
// GET /api/v1/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	opts := parsePage(c)
	runs, total, err := h.runs.ListRuns(c.Request.Context(), middleware.GetTenantID(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   runs,
		"total":  total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// GetRun returns a run with its summary counters
// GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	run, err := h.runs.GetRun(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": run})
}

// ListRecords pages through a run's records, optionally by status
// GET /api/v1/runs/:id/records
func (h *RunHandler) ListRecords(c *gin.Context) {
	id, ok := parseRunID(c)
	if !ok {
		return
	}
	page := parsePage(c)
	opts := repository.RecordListOptions{
		Status: c.Query("status"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	records, total, err := h.runs.ListRecords(c.Request.Context(), middleware.GetTenantID(c), id, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   records,
		"total":  total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// loadTable writes the error response itself when the run cannot be used
func (h *RunHandler) loadTable(c *gin.Context) (uuid.UUID, *matching.MatchTable, bool) {
	id, ok := parseRunID(c)
	if !ok {
		return uuid.Nil, nil, false
	}
	_, _, table, err := h.runs.LoadTable(c.Request.Context(), middleware.GetTenantID(c), id)
	if err != nil {
		respondError(c, err)
		return uuid.Nil, nil, false
	}
	return id, table, true
}

// Analysis returns the price analysis of a completed run
// GET /api/v1/runs/:id/analysis
func (h *RunHandler) Analysis(c *gin.Context) {
	_, table, ok := h.loadTable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.pricing.Analyze(table)})
}

// Exports downloads the channel price files. The default is one workbook
// with a sheet per platform; ?platform=X&format=csv returns one CSV.
// GET /api/v1/runs/:id/exports
func (h *RunHandler) Exports(c *gin.Context) {
	id, table, ok := h.loadTable(c)
	if !ok {
		return
	}
	tenantID := middleware.GetTenantID(c)
	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))

	var exports []services.ChannelExport
	if name := c.Query("platform"); name != "" {
		platform, err := matching.ParsePlatform(name)
		if err != nil {
			respondError(c, err)
			return
		}
		export, err := h.exports.BuildPlatform(table, platform)
		if err != nil {
			respondError(c, err)
			return
		}
		exports = []services.ChannelExport{*export}
	} else {
		exports = h.exports.Build(table)
	}

	var buf bytes.Buffer
	var contentType, filename string
	switch format {
	case "csv":
		if len(exports) != 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "csv export requires a platform"})
			return
		}
		if err := h.exports.WriteCSV(&buf, &exports[0]); err != nil {
			respondError(c, err)
			return
		}
		contentType = csvContentType
		filename = fmt.Sprintf("%s_export_%s.csv", strings.ToLower(string(exports[0].Platform)), id)
	case "xlsx":
		if err := h.exports.WriteWorkbook(&buf, exports); err != nil {
			respondError(c, err)
			return
		}
		contentType = xlsxContentType
		filename = fmt.Sprintf("channel_exports_%s.xlsx", id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or csv"})
		return
	}

	h.exports.RecordExport(c.Request.Context(), tenantID, middleware.GetUserID(c), id, format, exports)

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// ListingGaps returns the SKUs missing from one or more channels
// GET /api/v1/runs/:id/listing-gaps
func (h *RunHandler) ListingGaps(c *gin.Context) {
	_, table, ok := h.loadTable(c)
	if !ok {
		return
	}
	gaps := h.listing.ListingGaps(table)
	c.JSON(http.StatusOK, gin.H{
		"data":  gaps,
		"total": len(gaps),
	})
}
