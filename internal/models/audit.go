package models

import (
	"time"

	"github.com/google/uuid"
)

// ActorType represents the type of actor performing an action
type ActorType string

const (
	ActorUser   ActorType = "USER"
	ActorSystem ActorType = "SYSTEM"
)

// AuditAction represents the audited operations
type AuditAction string

const (
	// Catalog actions
	ActionCatalogImport AuditAction = "CATALOG_IMPORT"

	// Run actions
	ActionRunStart    AuditAction = "RUN_START"
	ActionRunComplete AuditAction = "RUN_COMPLETE"
	ActionRunFail     AuditAction = "RUN_FAIL"

	// Review actions
	ActionHistorySave  AuditAction = "HISTORY_SAVE"
	ActionQualityCheck AuditAction = "QUALITY_CHECK"

	// Data access actions
	ActionDataExport AuditAction = "DATA_EXPORT"
)

// ResourceType represents the type of resource being audited
type ResourceType string

const (
	ResourceManufacturerCatalog ResourceType = "MANUFACTURER_CATALOG"
	ResourcePlatformCatalog     ResourceType = "PLATFORM_CATALOG"
	ResourceMatchRun            ResourceType = "MATCH_RUN"
	ResourceMatchHistory        ResourceType = "MATCH_HISTORY"
)

// AuditLog represents an audit trail entry
type AuditLog struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID string    `gorm:"type:varchar(255);not null;index:idx_sku_audit_logs_tenant" json:"tenantId"`

	// Actor
	ActorType ActorType `gorm:"type:varchar(50);not null" json:"actorType"`
	ActorID   string    `gorm:"type:varchar(255);not null;index:idx_sku_audit_logs_actor" json:"actorId"`

	// Action
	Action       AuditAction  `gorm:"type:varchar(100);not null;index:idx_sku_audit_logs_action" json:"action"`
	ResourceType ResourceType `gorm:"type:varchar(100);not null" json:"resourceType"`
	ResourceID   *string      `gorm:"type:varchar(255)" json:"resourceId,omitempty"`

	// Counts and options of the operation
	Metadata JSONB `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_sku_audit_logs_created" json:"createdAt"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "sku_audit_logs"
}

// AuditLogBuilder helps construct audit log entries
type AuditLogBuilder struct {
	log *AuditLog
}

// NewAuditLog creates a new audit log builder
func NewAuditLog(tenantID string, action AuditAction, resourceType ResourceType) *AuditLogBuilder {
	return &AuditLogBuilder{
		log: &AuditLog{
			ID:           uuid.New(),
			TenantID:     tenantID,
			Action:       action,
			ResourceType: resourceType,
			ActorType:    ActorSystem,
			ActorID:      "system",
			CreatedAt:    time.Now(),
		},
	}
}

// WithActor sets the actor. An empty actor ID leaves the system actor in place.
func (b *AuditLogBuilder) WithActor(actorType ActorType, actorID string) *AuditLogBuilder {
	if actorID == "" {
		return b
	}
	b.log.ActorType = actorType
	b.log.ActorID = actorID
	return b
}

// WithResource sets the resource ID
func (b *AuditLogBuilder) WithResource(resourceID string) *AuditLogBuilder {
	b.log.ResourceID = &resourceID
	return b
}

// WithMetadata attaches row counts and request options
func (b *AuditLogBuilder) WithMetadata(metadata JSONB) *AuditLogBuilder {
	b.log.Metadata = metadata
	return b
}

// Build returns the entry
func (b *AuditLogBuilder) Build() *AuditLog {
	return b.log
}
