package services

import (
	"strings"

	"github.com/google/uuid"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/models"
)

// RunSummary counts the matches of a run by confidence band
type RunSummary struct {
	TotalProducts    int `json:"totalProducts"`
	TotalMatches     int `json:"totalMatches"`
	ExactMatches     int `json:"exactMatches"`
	HighConfidence   int `json:"highConfidence"`
	MediumConfidence int `json:"mediumConfidence"`
	LowConfidence    int `json:"lowConfidence"`
	ReviewRequired   int `json:"reviewRequired"`
	PlatformCount    int `json:"platformCount"`
}

// NeedsReview reports whether a match should be looked at by a person
func NeedsReview(m *matching.MatchResult) bool {
	if m == nil || m.MatchType == "" {
		return false
	}
	return strings.Contains(m.MatchType, "REVIEW") ||
		(m.ConfidenceScore >= matching.ReviewThreshold && m.ConfidenceScore < matching.ValidThreshold)
}

// Summarize counts the non-nil matches of a table
func Summarize(table *matching.MatchTable) RunSummary {
	summary := RunSummary{
		TotalProducts: len(table.Records),
		PlatformCount: len(table.Platforms),
	}
	for _, rec := range table.Records {
		for _, p := range table.Platforms {
			m := rec.Matches[p]
			if m == nil {
				continue
			}
			summary.TotalMatches++
			switch score := m.ConfidenceScore; {
			case score >= matching.ExactTierThreshold:
				summary.ExactMatches++
			case score >= matching.ValidThreshold:
				summary.HighConfidence++
			case score >= matching.ReviewThreshold:
				summary.MediumConfidence++
			default:
				summary.LowConfidence++
			}
			if NeedsReview(m) {
				summary.ReviewRequired++
			}
		}
	}
	return summary
}

// Apply copies the counters onto a run
func (s RunSummary) Apply(run *models.MatchRun) {
	run.TotalProducts = s.TotalProducts
	run.TotalMatches = s.TotalMatches
	run.ExactMatches = s.ExactMatches
	run.HighConfidence = s.HighConfidence
	run.MediumConfidence = s.MediumConfidence
	run.LowConfidence = s.LowConfidence
	run.ReviewRequired = s.ReviewRequired
	run.PlatformCount = s.PlatformCount
}

// RecordStatus classifies a record for the results sheet
func RecordStatus(rec matching.MatchRecord) string {
	var review, auto, matched bool
	for _, m := range rec.Matches {
		if m == nil {
			continue
		}
		matched = true
		if NeedsReview(m) {
			review = true
		}
		if m.ConfidenceScore >= matching.ValidThreshold {
			auto = true
		}
	}
	switch {
	case review:
		return models.RecordStatusReviewRequired
	case auto:
		return models.RecordStatusAutoMatched
	case matched:
		return models.RecordStatusPartial
	default:
		return models.RecordStatusNoMatch
	}
}

// RecordRows converts a table into rows ready to store under the run
func RecordRows(run *models.MatchRun, table *matching.MatchTable) []models.MatchRecordRow {
	rows := make([]models.MatchRecordRow, len(table.Records))
	for i, rec := range table.Records {
		row := models.MatchRecordRow{
			ID:              uuid.New(),
			TenantID:        run.TenantID,
			RunID:           run.ID,
			Position:        i,
			ManufacturerSKU: rec.SKU,
			UPC:             models.StringPtr(rec.UPC),
			MSRP:            models.NullMoney(rec.MSRP),
			MAP:             models.NullMoney(rec.MAP),
			DealerPrice:     models.NullMoney(rec.DealerPrice),
			Status:          RecordStatus(rec),
		}
		for _, p := range table.Platforms {
			m := rec.Matches[p]
			if m == nil {
				continue
			}
			row.Matches = append(row.Matches, models.PlatformMatch{
				ID:              uuid.New(),
				RecordID:        row.ID,
				RunID:           run.ID,
				Platform:        p,
				PlatformSKU:     m.PlatformSKU,
				CurrentPrice:    models.NullMoney(m.CurrentPrice),
				CurrentCost:     models.NullMoney(m.CurrentCost),
				ConfidenceScore: m.ConfidenceScore,
				MatchType:       m.MatchType,
				MatchReason:     m.MatchReason,
			})
		}
		rows[i] = row
	}
	return rows
}

// TableFromRows rebuilds a match table from stored rows
func TableFromRows(platforms []matching.Platform, rows []models.MatchRecordRow) *matching.MatchTable {
	table := &matching.MatchTable{
		Platforms: platforms,
		Records:   make([]matching.MatchRecord, len(rows)),
	}
	for i, row := range rows {
		table.Records[i] = row.ToMatchRecord(platforms)
	}
	return table
}
