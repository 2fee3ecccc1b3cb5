package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"sku-reconciliation-service/internal/models"
)

// DefaultRunCacheTTL applies when no TTL is configured
const DefaultRunCacheTTL = 30 * time.Minute

// RunRepositoryInterface defines match run persistence
type RunRepositoryInterface interface {
	CreateRun(ctx context.Context, run *models.MatchRun) error
	UpdateRun(ctx context.Context, run *models.MatchRun) error
	GetRun(ctx context.Context, tenantID string, id uuid.UUID) (*models.MatchRun, error)
	ListRuns(ctx context.Context, tenantID string, opts ListOptions) ([]models.MatchRun, int64, error)
	SaveRecords(ctx context.Context, records []models.MatchRecordRow) error
	ListRecords(ctx context.Context, tenantID string, runID uuid.UUID, opts RecordListOptions) ([]models.MatchRecordRow, int64, error)
	ListAllRecords(ctx context.Context, tenantID string, runID uuid.UUID) ([]models.MatchRecordRow, error)
	UpdateRecordReview(ctx context.Context, record *models.MatchRecordRow) error
}

// RecordListOptions filters the records of a run
type RecordListOptions struct {
	Status string
	Limit  int
	Offset int
}

// RunRepository handles match run database operations. Finished runs are
// cached in Redis when a client is configured.
type RunRepository struct {
	db       *gorm.DB
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewRunRepository creates a new run repository. redis may be nil.
func NewRunRepository(db *gorm.DB, redis *redis.Client, cacheTTL time.Duration) *RunRepository {
	if cacheTTL <= 0 {
		cacheTTL = DefaultRunCacheTTL
	}
	return &RunRepository{db: db, redis: redis, cacheTTL: cacheTTL}
}

func runCacheKey(tenantID string, id uuid.UUID) string {
	return fmt.Sprintf("matchrun:%s:%s", tenantID, id)
}

// CreateRun creates a new match run
func (r *RunRepository) CreateRun(ctx context.Context, run *models.MatchRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// UpdateRun saves the run and drops any cached copy
func (r *RunRepository) UpdateRun(ctx context.Context, run *models.MatchRun) error {
	if err := r.db.WithContext(ctx).Save(run).Error; err != nil {
		return err
	}
	if r.redis != nil {
		r.redis.Del(ctx, runCacheKey(run.TenantID, run.ID))
	}
	return nil
}

// GetRun retrieves a run scoped to the tenant
func (r *RunRepository) GetRun(ctx context.Context, tenantID string, id uuid.UUID) (*models.MatchRun, error) {
	cacheKey := runCacheKey(tenantID, id)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached models.MatchRun
			if json.Unmarshal([]byte(val), &cached) == nil {
				return &cached, nil
			}
		}
	}

	var run models.MatchRun
	if err := r.db.WithContext(ctx).Where("tenant_id = ? AND id = ?", tenantID, id).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}

	// Running jobs change underneath the cache, only finished ones are stored
	if r.redis != nil && run.IsTerminal() {
		if data, err := json.Marshal(run); err == nil {
			r.redis.Set(ctx, cacheKey, data, r.cacheTTL)
		}
	}

	return &run, nil
}

// ListRuns retrieves runs for a tenant, newest first
func (r *RunRepository) ListRuns(ctx context.Context, tenantID string, opts ListOptions) ([]models.MatchRun, int64, error) {
	var runs []models.MatchRun
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MatchRun{}).Where("tenant_id = ?", tenantID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	if err := query.Order("created_at DESC").Find(&runs).Error; err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

// SaveRecords stores run records and their platform matches in one transaction
func (r *RunRepository) SaveRecords(ctx context.Context, records []models.MatchRecordRow) error {
	if len(records) == 0 {
		return nil
	}

	var matches []models.PlatformMatch
	for _, rec := range records {
		matches = append(matches, rec.Matches...)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Matches").CreateInBatches(records, createBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save match records: %w", err)
		}
		if len(matches) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(matches, createBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save platform matches: %w", err)
		}
		return nil
	})
}

// ListRecords retrieves a page of a run's records with their matches
func (r *RunRepository) ListRecords(ctx context.Context, tenantID string, runID uuid.UUID, opts RecordListOptions) ([]models.MatchRecordRow, int64, error) {
	var records []models.MatchRecordRow
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MatchRecordRow{}).
		Where("tenant_id = ? AND run_id = ?", tenantID, runID)

	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	if err := query.Preload("Matches").Order("position ASC").Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListAllRecords retrieves every record of a run in position order
func (r *RunRepository) ListAllRecords(ctx context.Context, tenantID string, runID uuid.UUID) ([]models.MatchRecordRow, error) {
	records, _, err := r.ListRecords(ctx, tenantID, runID, RecordListOptions{})
	return records, err
}

// UpdateRecordReview persists the status and notes of a record
func (r *RunRepository) UpdateRecordReview(ctx context.Context, record *models.MatchRecordRow) error {
	return r.db.WithContext(ctx).Model(&models.MatchRecordRow{}).
		Where("id = ?", record.ID).
		Updates(map[string]interface{}{
			"status":     record.Status,
			"notes":      record.Notes,
			"updated_at": time.Now(),
		}).Error
}
