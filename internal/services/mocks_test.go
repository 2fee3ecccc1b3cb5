package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/models"
	"sku-reconciliation-service/internal/repository"
)

// MockCatalogRepository is a mock implementation of CatalogRepositoryInterface
type MockCatalogRepository struct {
	mock.Mock
}

var _ repository.CatalogRepositoryInterface = (*MockCatalogRepository)(nil)

func (m *MockCatalogRepository) ReplaceManufacturer(ctx context.Context, tenantID string, products []models.ManufacturerProduct) error {
	args := m.Called(ctx, tenantID, products)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListManufacturer(ctx context.Context, tenantID string, opts repository.ListOptions) ([]models.ManufacturerProduct, int64, error) {
	args := m.Called(ctx, tenantID, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.ManufacturerProduct), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogRepository) ReplacePlatform(ctx context.Context, tenantID string, platform matching.Platform, listings []models.PlatformListing) error {
	args := m.Called(ctx, tenantID, platform, listings)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListPlatform(ctx context.Context, tenantID string, platform matching.Platform, opts repository.ListOptions) ([]models.PlatformListing, int64, error) {
	args := m.Called(ctx, tenantID, platform, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.PlatformListing), args.Get(1).(int64), args.Error(2)
}

func (m *MockCatalogRepository) ListPlatforms(ctx context.Context, tenantID string) (map[matching.Platform][]models.PlatformListing, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[matching.Platform][]models.PlatformListing), args.Error(1)
}

// MockRunRepository is a mock implementation of RunRepositoryInterface
type MockRunRepository struct {
	mock.Mock
}

var _ repository.RunRepositoryInterface = (*MockRunRepository)(nil)

func (m *MockRunRepository) CreateRun(ctx context.Context, run *models.MatchRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) UpdateRun(ctx context.Context, run *models.MatchRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) GetRun(ctx context.Context, tenantID string, id uuid.UUID) (*models.MatchRun, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchRun), args.Error(1)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, tenantID string, opts repository.ListOptions) ([]models.MatchRun, int64, error) {
	args := m.Called(ctx, tenantID, opts)
	return args.Get(0).([]models.MatchRun), args.Get(1).(int64), args.Error(2)
}

func (m *MockRunRepository) SaveRecords(ctx context.Context, records []models.MatchRecordRow) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockRunRepository) ListRecords(ctx context.Context, tenantID string, runID uuid.UUID, opts repository.RecordListOptions) ([]models.MatchRecordRow, int64, error) {
	args := m.Called(ctx, tenantID, runID, opts)
	return args.Get(0).([]models.MatchRecordRow), args.Get(1).(int64), args.Error(2)
}

func (m *MockRunRepository) ListAllRecords(ctx context.Context, tenantID string, runID uuid.UUID) ([]models.MatchRecordRow, error) {
	args := m.Called(ctx, tenantID, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MatchRecordRow), args.Error(1)
}

func (m *MockRunRepository) UpdateRecordReview(ctx context.Context, record *models.MatchRecordRow) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockHistoryRepository is a mock implementation of HistoryRepositoryInterface
type MockHistoryRepository struct {
	mock.Mock
}

var _ repository.HistoryRepositoryInterface = (*MockHistoryRepository)(nil)

func (m *MockHistoryRepository) ListKeys(ctx context.Context, tenantID string) (map[string]struct{}, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockHistoryRepository) CreateBatch(ctx context.Context, entries []models.MatchHistory) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockHistoryRepository) List(ctx context.Context, tenantID string, opts repository.ListOptions) ([]models.MatchHistory, int64, error) {
	args := m.Called(ctx, tenantID, opts)
	return args.Get(0).([]models.MatchHistory), args.Get(1).(int64), args.Error(2)
}

// MockAuditLogger is a mock implementation of AuditLogger
type MockAuditLogger struct {
	mock.Mock
}

var _ AuditLogger = (*MockAuditLogger)(nil)

func (m *MockAuditLogger) LogAction(ctx context.Context, log *models.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

// auditAction matches an audit entry by action
func auditAction(action models.AuditAction) interface{} {
	return mock.MatchedBy(func(log *models.AuditLog) bool {
		return log.Action == action
	})
}
