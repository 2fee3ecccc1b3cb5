package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"sku-reconciliation-service/internal/models"
)

// HistoryRepositoryInterface defines match history persistence
type HistoryRepositoryInterface interface {
	ListKeys(ctx context.Context, tenantID string) (map[string]struct{}, error)
	CreateBatch(ctx context.Context, entries []models.MatchHistory) error
	List(ctx context.Context, tenantID string, opts ListOptions) ([]models.MatchHistory, int64, error)
}

// HistoryRepository handles match history database operations
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ListKeys returns the dedupe keys already stored for a tenant
func (r *HistoryRepository) ListKeys(ctx context.Context, tenantID string) (map[string]struct{}, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&models.MatchHistory{}).
		Where("tenant_id = ?", tenantID).
		Pluck("dedupe_key", &keys).Error; err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

// CreateBatch appends history entries. Keys that already exist are skipped.
func (r *HistoryRepository) CreateBatch(ctx context.Context, entries []models.MatchHistory) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(entries, createBatchSize).Error
}

// List retrieves history for a tenant, newest first
func (r *HistoryRepository) List(ctx context.Context, tenantID string, opts ListOptions) ([]models.MatchHistory, int64, error) {
	var entries []models.MatchHistory
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MatchHistory{}).Where("tenant_id = ?", tenantID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	if err := query.Order("matched_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
