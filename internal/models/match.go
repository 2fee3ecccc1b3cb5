package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"sku-reconciliation-service/internal/matching"
)

// RunStatus represents the lifecycle state of a match run
type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// Record statuses shown in the results sheet
const (
	RecordStatusReviewRequired        = "Review Required"
	RecordStatusAutoMatched           = "Auto-matched"
	RecordStatusPartial               = "Partial Matches"
	RecordStatusNoMatch               = "No Match"
	RecordStatusQualityReviewRequired = "Quality Review Required"
)

// MatchRun is one execution of the matching engine over a tenant's catalogs
type MatchRun struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    string    `gorm:"type:varchar(255);not null;index:idx_match_runs_tenant" json:"tenantId"`
	Status      RunStatus `gorm:"type:varchar(50);not null;default:'PENDING';index:idx_match_runs_status" json:"status"`
	TriggeredBy string    `gorm:"type:varchar(255)" json:"triggeredBy,omitempty"`

	Platforms     PlatformList `gorm:"type:jsonb" json:"platforms"`
	PlatformCount int          `gorm:"default:0" json:"platformCount"`

	// Summary
	TotalProducts    int `gorm:"default:0" json:"totalProducts"`
	TotalMatches     int `gorm:"default:0" json:"totalMatches"`
	ExactMatches     int `gorm:"default:0" json:"exactMatches"`
	HighConfidence   int `gorm:"default:0" json:"highConfidence"`
	MediumConfidence int `gorm:"default:0" json:"mediumConfidence"`
	LowConfidence    int `gorm:"default:0" json:"lowConfidence"`
	ReviewRequired   int `gorm:"default:0" json:"reviewRequired"`

	DurationMs   int64   `gorm:"default:0" json:"durationMs"`
	ErrorMessage *string `gorm:"type:text" json:"errorMessage,omitempty"`

	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for MatchRun
func (MatchRun) TableName() string {
	return "sku_match_runs"
}

// IsTerminal reports whether the run has finished, successfully or not
func (r *MatchRun) IsTerminal() bool {
	return r.Status == RunCompleted || r.Status == RunFailed
}

// MatchRecordRow is the stored result for one manufacturer SKU within a run
type MatchRecordRow struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID string    `gorm:"type:varchar(255);not null;index:idx_match_records_tenant" json:"tenantId"`
	RunID    uuid.UUID `gorm:"type:uuid;not null;index:idx_match_records_run" json:"runId"`
	Position int       `gorm:"not null;default:0" json:"position"`

	ManufacturerSKU string              `gorm:"type:varchar(255);not null" json:"manufacturerSku"`
	UPC             *string             `gorm:"type:varchar(50)" json:"upc,omitempty"`
	MSRP            decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"msrp"`
	MAP             decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"map"`
	DealerPrice     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"dealerPrice"`

	Status string `gorm:"type:varchar(100);index:idx_match_records_status" json:"status"`
	Notes  string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Matches []PlatformMatch `gorm:"foreignKey:RecordID" json:"matches,omitempty"`
}

// TableName specifies the table name for MatchRecordRow
func (MatchRecordRow) TableName() string {
	return "sku_match_records"
}

// ToMatchRecord rebuilds the engine form of the record. Platforms without a
// stored match get a nil entry.
func (r MatchRecordRow) ToMatchRecord(platforms []matching.Platform) matching.MatchRecord {
	record := matching.MatchRecord{
		ManufacturerItem: matching.ManufacturerItem{
			SKU:         r.ManufacturerSKU,
			MSRP:        FloatPtr(r.MSRP),
			MAP:         FloatPtr(r.MAP),
			DealerPrice: FloatPtr(r.DealerPrice),
		},
		Matches: make(map[matching.Platform]*matching.MatchResult, len(platforms)),
	}
	if r.UPC != nil {
		record.UPC = *r.UPC
	}
	for _, p := range platforms {
		record.Matches[p] = nil
	}
	for _, m := range r.Matches {
		record.Matches[m.Platform] = m.Result()
	}
	return record
}

// PlatformMatch is the best listing found on one platform for a record
type PlatformMatch struct {
	ID       uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RecordID uuid.UUID         `gorm:"type:uuid;not null;index:idx_platform_matches_record" json:"recordId"`
	RunID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_platform_matches_run" json:"runId"`
	Platform matching.Platform `gorm:"type:varchar(50);not null" json:"platform"`

	PlatformSKU     string              `gorm:"type:varchar(255);not null" json:"platformSku"`
	CurrentPrice    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"currentPrice"`
	CurrentCost     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"currentCost"`
	ConfidenceScore int                 `gorm:"not null" json:"confidenceScore"`
	MatchType       string              `gorm:"type:varchar(100)" json:"matchType"`
	MatchReason     string              `gorm:"type:text" json:"matchReason"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for PlatformMatch
func (PlatformMatch) TableName() string {
	return "sku_platform_matches"
}

// Result converts the stored match into the engine's result form
func (m PlatformMatch) Result() *matching.MatchResult {
	return &matching.MatchResult{
		PlatformSKU:     m.PlatformSKU,
		CurrentPrice:    FloatPtr(m.CurrentPrice),
		CurrentCost:     FloatPtr(m.CurrentCost),
		ConfidenceScore: m.ConfidenceScore,
		MatchType:       m.MatchType,
		MatchReason:     m.MatchReason,
	}
}
