package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/models"
	"sku-reconciliation-service/internal/repository"
)

// History match types
const (
	HistoryTypeManual    = "Manual"
	HistoryTypeExactHigh = "Exact/High"
	HistoryTypeHigh      = "High Confidence"
	HistoryTypeMedium    = "Medium Confidence"
)

// RunLoader loads the stored results of a completed run
type RunLoader interface {
	LoadTable(ctx context.Context, tenantID string, runID uuid.UUID) (*models.MatchRun, []models.MatchRecordRow, *matching.MatchTable, error)
}

// SaveHistoryResult summarises a history save
type SaveHistoryResult struct {
	RunID   uuid.UUID `json:"runId"`
	Saved   int       `json:"saved"`
	Skipped int       `json:"skipped"`
}

// HistoryService keeps accepted matches across runs
type HistoryService struct {
	runs        RunLoader
	historyRepo repository.HistoryRepositoryInterface
	audit       AuditLogger
	logger      logrus.FieldLogger
	now         func() time.Time
}

// NewHistoryService creates a new history service
func NewHistoryService(runs RunLoader, historyRepo repository.HistoryRepositoryInterface, audit AuditLogger, logger logrus.FieldLogger) *HistoryService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HistoryService{
		runs:        runs,
		historyRepo: historyRepo,
		audit:       audit,
		logger:      logger,
		now:         time.Now,
	}
}

// HistoryMatchType classifies a saved match by the record status and score
func HistoryMatchType(recordStatus string, score int) string {
	switch {
	case strings.Contains(strings.ToLower(recordStatus), "manual"):
		return HistoryTypeManual
	case score >= matching.ExactTierThreshold:
		return HistoryTypeExactHigh
	case score >= matching.ValidThreshold:
		return HistoryTypeHigh
	default:
		return HistoryTypeMedium
	}
}

// SaveMatches appends the run's matches scoring at least the review
// threshold that are not in history yet.
func (s *HistoryService) SaveMatches(ctx context.Context, tenantID, actorID string, runID uuid.UUID) (*SaveHistoryResult, error) {
	_, rows, _, err := s.runs.LoadTable(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}

	existing, err := s.historyRepo.ListKeys(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match history: %w", err)
	}

	now := s.now()
	result := &SaveHistoryResult{RunID: runID}
	var entries []models.MatchHistory

	for _, row := range rows {
		for _, m := range row.Matches {
			if m.PlatformSKU == "" || m.ConfidenceScore < matching.ReviewThreshold {
				continue
			}
			key := models.HistoryKey(row.ManufacturerSKU, m.Platform, m.PlatformSKU)
			if _, seen := existing[key]; seen {
				result.Skipped++
				continue
			}
			existing[key] = struct{}{}

			entries = append(entries, models.MatchHistory{
				ID:              uuid.New(),
				TenantID:        tenantID,
				DedupeKey:       key,
				RunID:           runID,
				ManufacturerSKU: row.ManufacturerSKU,
				Platform:        m.Platform,
				PlatformSKU:     m.PlatformSKU,
				ConfidenceScore: m.ConfidenceScore,
				MatchType:       HistoryMatchType(row.Status, m.ConfidenceScore),
				MatchedAt:       now,
			})
		}
	}

	if err := s.historyRepo.CreateBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to save match history: %w", err)
	}
	result.Saved = len(entries)

	s.logger.WithFields(logrus.Fields{
		"tenantId": tenantID,
		"runId":    runID,
		"saved":    result.Saved,
		"skipped":  result.Skipped,
	}).Info("Match history saved")

	writeAudit(ctx, s.audit, s.logger, models.NewAuditLog(tenantID, models.ActionHistorySave, models.ResourceMatchHistory).
		WithActor(models.ActorUser, actorID).
		WithResource(runID.String()).
		WithMetadata(models.JSONB{"saved": result.Saved, "skipped": result.Skipped}).
		Build())

	return result, nil
}

// ListHistory returns the tenant's history, newest first
func (s *HistoryService) ListHistory(ctx context.Context, tenantID string, opts repository.ListOptions) ([]models.MatchHistory, int64, error) {
	return s.historyRepo.List(ctx, tenantID, opts)
}
