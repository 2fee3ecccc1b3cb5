package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/repository"
	"sku-reconciliation-service/internal/services"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTooManyRuns):
		return http.StatusTooManyRequests
	case errors.Is(err, services.ErrRunNotReady):
		return http.StatusConflict
	case errors.Is(err, services.ErrMissingColumn),
		errors.Is(err, services.ErrEmptyCatalog),
		errors.Is(err, services.ErrUnsupportedFile),
		errors.Is(err, matching.ErrUnknownPlatform),
		errors.Is(err, matching.ErrNoManufacturer):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func parseRunID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run ID"})
		return uuid.Nil, false
	}
	return id, true
}

func parsePage(c *gin.Context) repository.ListOptions {
	opts := repository.ListOptions{Limit: defaultPageLimit}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}
	if opts.Limit > maxPageLimit {
		opts.Limit = maxPageLimit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset >= 0 {
		opts.Offset = offset
	}
	return opts
}
