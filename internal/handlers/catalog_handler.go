package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/middleware"
	"sku-reconciliation-service/internal/models"
	"sku-reconciliation-service/internal/repository"
	"sku-reconciliation-service/internal/services"
)

// CatalogImporter imports and lists tenant catalogs
type CatalogImporter interface {
	ImportManufacturer(ctx context.Context, tenantID, actorID string, r io.Reader, filename string) (*services.ImportResult, error)
	ImportPlatform(ctx context.Context, tenantID, actorID string, platform matching.Platform, r io.Reader, filename string) (*services.ImportResult, error)
	ImportPlatformWorkbook(ctx context.Context, tenantID, actorID string, r io.Reader) ([]services.ImportResult, error)
	ListManufacturer(ctx context.Context, tenantID string, opts repository.ListOptions) ([]models.ManufacturerProduct, int64, error)
	ListPlatform(ctx context.Context, tenantID string, platform matching.Platform, opts repository.ListOptions) ([]models.PlatformListing, int64, error)
}

// CatalogInputs loads the stored catalogs in matching form
type CatalogInputs interface {
	LoadInputs(ctx context.Context, tenantID string) ([]matching.ManufacturerItem, map[matching.Platform][]matching.PlatformItem, error)
}

// CatalogHandler handles catalog upload and listing requests
type CatalogHandler struct {
	importer  CatalogImporter
	inputs    CatalogInputs
	listing   *services.ListingService
	maxUpload int64
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(importer CatalogImporter, inputs CatalogInputs, listing *services.ListingService, maxUpload int64) *CatalogHandler {
	if listing == nil {
		listing = services.NewListingService()
	}
	return &CatalogHandler{
		importer:  importer,
		inputs:    inputs,
		listing:   listing,
		maxUpload: maxUpload,
	}
}

// upload opens the multipart "file" field. It writes the error response
// itself and returns ok=false on failure.
func (h *CatalogHandler) upload(c *gin.Context) (file io.ReadCloser, filename string, ok bool) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	f, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds upload limit"})
			return nil, "", false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "please upload a CSV or Excel file in the \"file\" field"})
		return nil, "", false
	}
	return f, header.Filename, true
}

// ImportManufacturer replaces the manufacturer price sheet
// POST /api/v1/catalogs/manufacturer
func (h *CatalogHandler) ImportManufacturer(c *gin.Context) {
	file, filename, ok := h.upload(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.importer.ImportManufacturer(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), file, filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// ListManufacturer lists the manufacturer price sheet
// GET /api/v1/catalogs/manufacturer
func (h *CatalogHandler) ListManufacturer(c *gin.Context) {
	opts := parsePage(c)
	products, total, err := h.importer.ListManufacturer(c.Request.Context(), middleware.GetTenantID(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   products,
		"total":  total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// ImportPlatform replaces one platform catalog
// POST /api/v1/catalogs/platforms/:platform
func (h *CatalogHandler) ImportPlatform(c *gin.Context) {
	platform, err := matching.ParsePlatform(c.Param("platform"))
	if err != nil {
		respondError(c, err)
		return
	}

	file, filename, ok := h.upload(c)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.importer.ImportPlatform(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), platform, file, filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": result})
}

// ImportPlatformWorkbook replaces every platform found in a workbook
// POST /api/v1/catalogs/platforms
func (h *CatalogHandler) ImportPlatformWorkbook(c *gin.Context) {
	file, _, ok := h.upload(c)
	if !ok {
		return
	}
	defer file.Close()

	results, err := h.importer.ImportPlatformWorkbook(c.Request.Context(), middleware.GetTenantID(c), middleware.GetUserID(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": results})
}

// ListPlatform lists one platform catalog
// GET /api/v1/catalogs/platforms/:platform
func (h *CatalogHandler) ListPlatform(c *gin.Context) {
	platform, err := matching.ParsePlatform(c.Param("platform"))
	if err != nil {
		respondError(c, err)
		return
	}

	opts := parsePage(c)
	listings, total, err := h.importer.ListPlatform(c.Request.Context(), middleware.GetTenantID(c), platform, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   listings,
		"total":  total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}

// Discontinued lists platform SKUs missing from the manufacturer sheet
// GET /api/v1/catalogs/discontinued
func (h *CatalogHandler) Discontinued(c *gin.Context) {
	manufacturer, platforms, err := h.inputs.LoadInputs(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := h.listing.Discontinued(manufacturer, platforms, time.Now())
	c.JSON(http.StatusOK, gin.H{
		"data":  items,
		"total": len(items),
	})
}
