package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/models"
)

type stubLoader struct {
	rows []models.MatchRecordRow
	err  error
}

func (s stubLoader) LoadTable(ctx context.Context, tenantID string, runID uuid.UUID) (*models.MatchRun, []models.MatchRecordRow, *matching.MatchTable, error) {
	if s.err != nil {
		return nil, nil, nil, s.err
	}
	return &models.MatchRun{ID: runID, TenantID: tenantID, Status: models.RunCompleted}, s.rows, nil, nil
}

func stored(p matching.Platform, sku string, score int) models.PlatformMatch {
	return models.PlatformMatch{ID: uuid.New(), Platform: p, PlatformSKU: sku, ConfidenceScore: score}
}

func TestHistoryMatchType(t *testing.T) {
	assert.Equal(t, HistoryTypeManual, HistoryMatchType("Manual Override", 72))
	assert.Equal(t, HistoryTypeExactHigh, HistoryMatchType(models.RecordStatusAutoMatched, 95))
	assert.Equal(t, HistoryTypeHigh, HistoryMatchType(models.RecordStatusAutoMatched, 85))
	assert.Equal(t, HistoryTypeMedium, HistoryMatchType(models.RecordStatusReviewRequired, 70))
}

func TestSaveMatchesDedupes(t *testing.T) {
	rows := []models.MatchRecordRow{
		{
			ManufacturerSKU: "GTR-100",
			Status:          models.RecordStatusAutoMatched,
			Matches: []models.PlatformMatch{
				stored(matching.PlatformEbay, "GTR-100", 100),
				stored(matching.PlatformAmazon, "GTR-100-BK", 96),
				stored(matching.PlatformShopify, "GTR-1", 60),
			},
		},
		{
			ManufacturerSKU: "AMP-1",
			Status:          "Manual override",
			Matches:         []models.PlatformMatch{stored(matching.PlatformReverb, "AMP-1", 72)},
		},
		{
			ManufacturerSKU: "GTR-100",
			Matches:         []models.PlatformMatch{stored(matching.PlatformAmazon, "GTR-100-BK", 96)},
		},
	}

	history := new(MockHistoryRepository)
	audit := new(MockAuditLogger)
	history.On("ListKeys", mock.Anything, "tenant-1").Return(map[string]struct{}{"GTR-100_EBAY_GTR-100": {}}, nil)

	var saved []models.MatchHistory
	history.On("CreateBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(1).([]models.MatchHistory)
	}).Return(nil)
	audit.On("LogAction", mock.Anything, auditAction(models.ActionHistorySave)).Return(nil)

	svc := NewHistoryService(stubLoader{rows: rows}, history, audit, nil)
	matchedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return matchedAt }

	runID := uuid.New()
	result, err := svc.SaveMatches(context.Background(), "tenant-1", "user-1", runID)
	require.NoError(t, err)
	assert.Equal(t, &SaveHistoryResult{RunID: runID, Saved: 2, Skipped: 2}, result)

	require.Len(t, saved, 2)
	assert.Equal(t, "GTR-100_AMAZON_GTR-100-BK", saved[0].DedupeKey)
	assert.Equal(t, HistoryTypeExactHigh, saved[0].MatchType)
	assert.Equal(t, matchedAt, saved[0].MatchedAt)
	assert.Equal(t, "AMP-1", saved[1].ManufacturerSKU)
	assert.Equal(t, HistoryTypeManual, saved[1].MatchType)
	assert.Equal(t, runID, saved[1].RunID)

	history.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestSaveMatchesPropagatesLoadError(t *testing.T) {
	history := new(MockHistoryRepository)
	svc := NewHistoryService(stubLoader{err: ErrRunNotReady}, history, NopAuditLogger{}, nil)

	_, err := svc.SaveMatches(context.Background(), "tenant-1", "user-1", uuid.New())
	assert.ErrorIs(t, err, ErrRunNotReady)
	history.AssertNotCalled(t, "ListKeys", mock.Anything, mock.Anything)
}

func TestSaveMatchesWrapsRepositoryError(t *testing.T) {
	history := new(MockHistoryRepository)
	history.On("ListKeys", mock.Anything, "tenant-1").Return(nil, errors.New("connection refused"))
	svc := NewHistoryService(stubLoader{}, history, NopAuditLogger{}, nil)

	_, err := svc.SaveMatches(context.Background(), "tenant-1", "user-1", uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load match history")
}
