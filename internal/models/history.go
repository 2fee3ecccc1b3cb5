package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"sku-reconciliation-service/internal/matching"
)

// MatchHistory is an accepted match kept across runs
type MatchHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID  string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_match_history_key,priority:1" json:"tenantId"`
	DedupeKey string    `gorm:"type:varchar(800);not null;uniqueIndex:idx_match_history_key,priority:2" json:"-"`
	RunID     uuid.UUID `gorm:"type:uuid;index:idx_match_history_run" json:"runId"`

	ManufacturerSKU string            `gorm:"type:varchar(255);not null" json:"manufacturerSku"`
	Platform        matching.Platform `gorm:"type:varchar(50);not null" json:"platform"`
	PlatformSKU     string            `gorm:"type:varchar(255);not null" json:"platformSku"`
	ConfidenceScore int               `gorm:"not null" json:"confidenceScore"`
	MatchType       string            `gorm:"type:varchar(50)" json:"matchType"`

	MatchedAt time.Time `json:"matchedAt"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for MatchHistory
func (MatchHistory) TableName() string {
	return "sku_match_history"
}

// HistoryKey identifies a manufacturer/platform SKU pairing
func HistoryKey(manufacturerSKU string, platform matching.Platform, platformSKU string) string {
	return fmt.Sprintf("%s_%s_%s", manufacturerSKU, platform, platformSKU)
}
