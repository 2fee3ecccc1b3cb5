package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/models"
	"sku-reconciliation-service/internal/repository"
)

// QualityFlag is a stored match that no longer validates at its old score
type QualityFlag struct {
	ManufacturerSKU    string            `json:"manufacturerSku"`
	Platform           matching.Platform `json:"platform"`
	PlatformSKU        string            `json:"platformSku"`
	OriginalConfidence int               `json:"originalConfidence"`
	NewConfidence      int               `json:"newConfidence"`
	Reason             string            `json:"reason"`
}

// QualityReport summarises a re-validation pass
type QualityReport struct {
	RunID      uuid.UUID     `json:"runId"`
	Checked    int           `json:"checked"`
	Good       int           `json:"good"`
	Suspicious int           `json:"suspicious"`
	Flags      []QualityFlag `json:"flags"`
}

// QualityService re-validates stored matches with the current rules
type QualityService struct {
	runs    RunLoader
	runRepo repository.RunRepositoryInterface
	audit   AuditLogger
	logger  logrus.FieldLogger
}

// NewQualityService creates a new quality service
func NewQualityService(runs RunLoader, runRepo repository.RunRepositoryInterface, audit AuditLogger, logger logrus.FieldLogger) *QualityService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &QualityService{runs: runs, runRepo: runRepo, audit: audit, logger: logger}
}

// suspicious reports whether a score fell out of its band
func suspicious(was, now int) bool {
	return (was >= matching.ValidThreshold && now < matching.ValidThreshold) ||
		(was >= matching.ReviewThreshold && now < matching.ReviewThreshold)
}

func qualityPrefix(day string, platform matching.Platform) string {
	return fmt.Sprintf("QUALITY CHECK (%s): %s", day, platform)
}

// AppendQualityNote adds the note for a flag unless the record already
// carries one for the same platform and day. ok is false when skipped.
func AppendQualityNote(notes string, flag QualityFlag, now time.Time) (string, bool) {
	day := now.Format("2006-01-02")
	prefix := qualityPrefix(day, flag.Platform)
	if strings.Contains(notes, prefix) {
		return notes, false
	}
	note := fmt.Sprintf("%s match (%s) re-validated to %.1f%% (was %.1f%%). Reason: %s",
		prefix, flag.PlatformSKU, float64(flag.NewConfidence), float64(flag.OriginalConfidence), flag.Reason)
	if notes != "" {
		return notes + "; " + note, true
	}
	return note, true
}

// Revalidate scores every stored match of a run again and flags those that
// dropped below their band.
func (s *QualityService) Revalidate(ctx context.Context, tenantID, actorID string, runID uuid.UUID, now time.Time) (*QualityReport, error) {
	_, rows, _, err := s.runs.LoadTable(ctx, tenantID, runID)
	if err != nil {
		return nil, err
	}

	extractor := matching.NewExtractor()
	report := &QualityReport{RunID: runID, Flags: []QualityFlag{}}

	for i := range rows {
		row := &rows[i]
		if row.ManufacturerSKU == "" {
			continue
		}
		mfrAttrs := extractor.Extract(row.ManufacturerSKU)
		changed := false

		for _, m := range row.Matches {
			if m.PlatformSKU == "" || m.ConfidenceScore < 1 {
				continue
			}
			report.Checked++

			v := matching.Validate(row.ManufacturerSKU, mfrAttrs, m.PlatformSKU, extractor.Extract(m.PlatformSKU), m.Platform)
			if !suspicious(m.ConfidenceScore, v.Confidence) {
				if v.Confidence >= matching.ValidThreshold {
					report.Good++
				}
				continue
			}

			flag := QualityFlag{
				ManufacturerSKU:    row.ManufacturerSKU,
				Platform:           m.Platform,
				PlatformSKU:        m.PlatformSKU,
				OriginalConfidence: m.ConfidenceScore,
				NewConfidence:      v.Confidence,
				Reason:             v.Reason,
			}
			report.Suspicious++
			report.Flags = append(report.Flags, flag)

			if notes, ok := AppendQualityNote(row.Notes, flag, now); ok {
				row.Notes = notes
				row.Status = models.RecordStatusQualityReviewRequired
				changed = true
			}
		}

		if changed {
			if err := s.runRepo.UpdateRecordReview(ctx, row); err != nil {
				return nil, fmt.Errorf("failed to update record %s: %w", row.ManufacturerSKU, err)
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"tenantId":   tenantID,
		"runId":      runID,
		"checked":    report.Checked,
		"good":       report.Good,
		"suspicious": report.Suspicious,
	}).Info("Match quality check complete")

	writeAudit(ctx, s.audit, s.logger, models.NewAuditLog(tenantID, models.ActionQualityCheck, models.ResourceMatchRun).
		WithActor(models.ActorUser, actorID).
		WithResource(runID.String()).
		WithMetadata(models.JSONB{
			"checked":    report.Checked,
			"good":       report.Good,
			"suspicious": report.Suspicious,
		}).
		Build())

	return report, nil
}
