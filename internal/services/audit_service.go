package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"sku-reconciliation-service/internal/models"
)

// AuditLogger records audit trail entries
type AuditLogger interface {
	LogAction(ctx context.Context, log *models.AuditLog) error
}

// AuditService handles audit logging for catalog and run operations
type AuditService struct {
	db *gorm.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// LogAction logs an audit action
func (s *AuditService) LogAction(ctx context.Context, log *models.AuditLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(log).Error
}

// GetAuditLogs retrieves audit logs for a tenant with filters
func (s *AuditService) GetAuditLogs(ctx context.Context, tenantID string, opts *AuditLogOptions) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	query := s.db.WithContext(ctx).Model(&models.AuditLog{}).Where("tenant_id = ?", tenantID)

	if opts != nil {
		if opts.Action != "" {
			query = query.Where("action = ?", opts.Action)
		}
		if opts.ResourceID != "" {
			query = query.Where("resource_id = ?", opts.ResourceID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts != nil && opts.Limit > 0 {
		query = query.Limit(opts.Limit).Offset(opts.Offset)
	}

	if err := query.Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// AuditLogOptions contains options for querying audit logs
type AuditLogOptions struct {
	Action     string
	ResourceID string
	Limit      int
	Offset     int
}

// NopAuditLogger discards entries. Used by the offline CLI.
type NopAuditLogger struct{}

// LogAction implements AuditLogger
func (NopAuditLogger) LogAction(context.Context, *models.AuditLog) error { return nil }

// writeAudit records an entry and logs, rather than returns, failures
func writeAudit(ctx context.Context, audit AuditLogger, logger logrus.FieldLogger, log *models.AuditLog) {
	if audit == nil {
		return
	}
	if err := audit.LogAction(ctx, log); err != nil {
		logger.WithFields(logrus.Fields{
			"action": log.Action,
			"tenant": log.TenantID,
			"error":  err.Error(),
		}).Warn("Failed to write audit log")
	}
}
