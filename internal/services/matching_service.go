package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/models"
	"sku-reconciliation-service/internal/repository"
	"sku-reconciliation-service/internal/retry"
)

var (
	ErrTooManyRuns = errors.New("too many concurrent match runs for tenant")
	ErrRunNotReady = errors.New("match run has not completed")
)

// MatchService runs the matching engine over stored catalogs
type MatchService struct {
	catalogRepo repository.CatalogRepositoryInterface
	runRepo     repository.RunRepositoryInterface
	audit       AuditLogger
	engine      *matching.Engine
	sem         *TenantSemaphore
	retrier     *retry.Retrier
	logger      logrus.FieldLogger
}

// NewMatchService creates a new match service
func NewMatchService(
	catalogRepo repository.CatalogRepositoryInterface,
	runRepo repository.RunRepositoryInterface,
	audit AuditLogger,
	engine *matching.Engine,
	sem *TenantSemaphore,
	retrier *retry.Retrier,
	logger logrus.FieldLogger,
) *MatchService {
	if sem == nil {
		sem = NewTenantSemaphore(nil)
	}
	if retrier == nil {
		retrier = retry.NewRetrier(nil)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if engine == nil {
		engine = matching.NewEngine(logger)
	}
	return &MatchService{
		catalogRepo: catalogRepo,
		runRepo:     runRepo,
		audit:       audit,
		engine:      engine,
		sem:         sem,
		retrier:     retrier,
		logger:      logger,
	}
}

// StartRun creates a run and executes it in the background. It fails fast
// with ErrTooManyRuns when the tenant has no free slot.
func (s *MatchService) StartRun(ctx context.Context, tenantID, actorID string) (*models.MatchRun, error) {
	release, ok := s.sem.TryAcquire(tenantID)
	if !ok {
		return nil, ErrTooManyRuns
	}

	run, err := s.createRun(ctx, tenantID, actorID)
	if err != nil {
		release()
		return nil, err
	}
	started := *run

	go func() {
		defer release()
		runCtx, cancel := context.WithTimeout(context.Background(), s.sem.Config().RunTimeout)
		defer cancel()
		_ = s.execute(runCtx, run, actorID)
	}()

	return &started, nil
}

// ExecuteRun creates a run and executes it before returning
func (s *MatchService) ExecuteRun(ctx context.Context, tenantID, actorID string) (*models.MatchRun, error) {
	release, err := s.sem.Acquire(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTooManyRuns, err)
	}
	defer release()

	run, err := s.createRun(ctx, tenantID, actorID)
	if err != nil {
		return nil, err
	}
	if timeout := s.sem.Config().RunTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return run, s.execute(ctx, run, actorID)
}

func (s *MatchService) createRun(ctx context.Context, tenantID, actorID string) (*models.MatchRun, error) {
	now := time.Now()
	run := &models.MatchRun{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Status:      models.RunRunning,
		TriggeredBy: actorID,
		StartedAt:   &now,
	}

	if err := s.runRepo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create match run: %w", err)
	}

	writeAudit(ctx, s.audit, s.logger, models.NewAuditLog(tenantID, models.ActionRunStart, models.ResourceMatchRun).
		WithActor(models.ActorUser, actorID).
		WithResource(run.ID.String()).
		Build())

	return run, nil
}

func (s *MatchService) execute(ctx context.Context, run *models.MatchRun, actorID string) error {
	log := s.logger.WithFields(logrus.Fields{"tenantId": run.TenantID, "runId": run.ID})
	start := time.Now()

	manufacturer, platforms, err := s.LoadInputs(ctx, run.TenantID)
	if err != nil {
		return s.fail(ctx, run, actorID, start, err)
	}

	table, err := s.engine.ComputeMatches(ctx, manufacturer, platforms)
	if err != nil {
		return s.fail(ctx, run, actorID, start, fmt.Errorf("failed to compute matches: %w", err))
	}

	rows := RecordRows(run, table)
	result := s.retrier.Do(ctx, "save match records", func(ctx context.Context) error {
		return s.runRepo.SaveRecords(ctx, rows)
	})
	if result.LastError != nil {
		return s.fail(ctx, run, actorID, start, result.LastError)
	}

	summary := Summarize(table)
	summary.Apply(run)
	run.Platforms = models.PlatformList(table.Platforms)
	run.Status = models.RunCompleted
	s.finish(run, start)

	if err := s.saveRun(ctx, run); err != nil {
		log.WithError(err).Error("Failed to mark match run completed")
		return err
	}

	log.WithFields(logrus.Fields{
		"products":       summary.TotalProducts,
		"matches":        summary.TotalMatches,
		"reviewRequired": summary.ReviewRequired,
		"durationMs":     run.DurationMs,
	}).Info("Match run completed")

	writeAudit(ctx, s.audit, s.logger, models.NewAuditLog(run.TenantID, models.ActionRunComplete, models.ResourceMatchRun).
		WithActor(models.ActorUser, actorID).
		WithResource(run.ID.String()).
		WithMetadata(models.JSONB{
			"totalProducts":  summary.TotalProducts,
			"totalMatches":   summary.TotalMatches,
			"reviewRequired": summary.ReviewRequired,
			"platformCount":  summary.PlatformCount,
		}).
		Build())

	return nil
}

func (s *MatchService) fail(ctx context.Context, run *models.MatchRun, actorID string, start time.Time, cause error) error {
	// Record the failure even when the run context expired
	ctx = context.WithoutCancel(ctx)

	msg := cause.Error()
	run.Status = models.RunFailed
	run.ErrorMessage = &msg
	s.finish(run, start)

	s.logger.WithFields(logrus.Fields{
		"tenantId": run.TenantID,
		"runId":    run.ID,
		"error":    msg,
	}).Error("Match run failed")

	if err := s.saveRun(ctx, run); err != nil {
		s.logger.WithError(err).WithField("runId", run.ID).Error("Failed to mark match run failed")
	}

	writeAudit(ctx, s.audit, s.logger, models.NewAuditLog(run.TenantID, models.ActionRunFail, models.ResourceMatchRun).
		WithActor(models.ActorUser, actorID).
		WithResource(run.ID.String()).
		WithMetadata(models.JSONB{"error": msg}).
		Build())

	return cause
}

func (s *MatchService) finish(run *models.MatchRun, start time.Time) {
	completed := time.Now()
	run.CompletedAt = &completed
	run.DurationMs = completed.Sub(start).Milliseconds()
}

func (s *MatchService) saveRun(ctx context.Context, run *models.MatchRun) error {
	return s.retrier.Do(ctx, "update match run", func(ctx context.Context) error {
		return s.runRepo.UpdateRun(ctx, run)
	}).LastError
}

// LoadInputs reads the tenant's stored catalogs in engine form
func (s *MatchService) LoadInputs(ctx context.Context, tenantID string) ([]matching.ManufacturerItem, map[matching.Platform][]matching.PlatformItem, error) {
	products, _, err := s.catalogRepo.ListManufacturer(ctx, tenantID, repository.ListOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load manufacturer catalog: %w", err)
	}
	if len(products) == 0 {
		return nil, nil, fmt.Errorf("%w: no manufacturer catalog imported", ErrEmptyCatalog)
	}

	listings, err := s.catalogRepo.ListPlatforms(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load platform catalogs: %w", err)
	}

	manufacturer := make([]matching.ManufacturerItem, len(products))
	for i, p := range products {
		manufacturer[i] = p.Item()
	}

	platforms := make(map[matching.Platform][]matching.PlatformItem, len(listings))
	for platform, rows := range listings {
		items := make([]matching.PlatformItem, len(rows))
		for i, l := range rows {
			items[i] = l.Item()
		}
		platforms[platform] = items
	}

	return manufacturer, platforms, nil
}

// GetRun returns a run of the tenant
func (s *MatchService) GetRun(ctx context.Context, tenantID string, id uuid.UUID) (*models.MatchRun, error) {
	return s.runRepo.GetRun(ctx, tenantID, id)
}

// ListRuns returns the tenant's runs, newest first
func (s *MatchService) ListRuns(ctx context.Context, tenantID string, opts repository.ListOptions) ([]models.MatchRun, int64, error) {
	return s.runRepo.ListRuns(ctx, tenantID, opts)
}

// ListRecords returns a page of a run's records
func (s *MatchService) ListRecords(ctx context.Context, tenantID string, runID uuid.UUID, opts repository.RecordListOptions) ([]models.MatchRecordRow, int64, error) {
	if _, err := s.runRepo.GetRun(ctx, tenantID, runID); err != nil {
		return nil, 0, err
	}
	return s.runRepo.ListRecords(ctx, tenantID, runID, opts)
}

// LoadTable returns a completed run together with its stored results
func (s *MatchService) LoadTable(ctx context.Context, tenantID string, runID uuid.UUID) (*models.MatchRun, []models.MatchRecordRow, *matching.MatchTable, error) {
	run, err := s.runRepo.GetRun(ctx, tenantID, runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if run.Status != models.RunCompleted {
		return nil, nil, nil, fmt.Errorf("%w: status %s", ErrRunNotReady, run.Status)
	}

	rows, err := s.runRepo.ListAllRecords(ctx, tenantID, runID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load match records: %w", err)
	}
	return run, rows, TableFromRows(run.Platforms, rows), nil
}

// Stats exposes the run slot usage
func (s *MatchService) Stats() map[string]interface{} {
	return s.sem.GetStats()
}
