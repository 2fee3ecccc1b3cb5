package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/models"
)

// exportHeaders are the upload columns each channel expects
var exportHeaders = map[matching.Platform][]string{
	matching.PlatformEbay:        {"Action", "Item number", "Custom label (SKU)", "Start price"},
	matching.PlatformAmazon:      {"seller-sku", "price"},
	matching.PlatformShopify:     {"Variant SKU", "Variant Price", "Variant Compare At Price", "Variant Cost"},
	matching.PlatformInflow:      {"Name", "UnitPrice", "Cost"},
	matching.PlatformSellerCloud: {"ProductID", "MAPPrice", "SitePrice", "SiteCost"},
	matching.PlatformReverb:      {"sku", "price", "condition"},
}

// Reverb listing conditions
const (
	ConditionBrandNew  = "Brand New"
	ConditionExcellent = "Excellent"
	ConditionVeryGood  = "Very Good"
	ConditionGood      = "Good"
)

// ChannelExport is the upload file for one platform
type ChannelExport struct {
	Platform matching.Platform `json:"platform"`
	Headers  []string          `json:"headers"`
	Rows     [][]string        `json:"rows"`
}

// SheetName is the worksheet name used for the export
func (e ChannelExport) SheetName() string {
	return e.Platform.DisplayName() + " Export"
}

// ExportService turns matched records into channel price files
type ExportService struct {
	audit  AuditLogger
	logger logrus.FieldLogger
}

// NewExportService creates a new export service
func NewExportService(audit AuditLogger, logger logrus.FieldLogger) *ExportService {
	if audit == nil {
		audit = NopAuditLogger{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ExportService{audit: audit, logger: logger}
}

// Build creates an export for every platform, in listing order
func (s *ExportService) Build(table *matching.MatchTable) []ChannelExport {
	exports := make([]ChannelExport, 0, len(matching.ListingOrder))
	for _, p := range matching.ListingOrder {
		export, _ := s.BuildPlatform(table, p)
		exports = append(exports, *export)
	}
	return exports
}

// BuildPlatform creates the export for one platform. Only matches at or
// above the auto-accept threshold are exported.
func (s *ExportService) BuildPlatform(table *matching.MatchTable, platform matching.Platform) (*ChannelExport, error) {
	headers, ok := exportHeaders[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", matching.ErrUnknownPlatform, platform)
	}
	export := &ChannelExport{Platform: platform, Headers: headers, Rows: [][]string{}}
	if table == nil {
		return export, nil
	}

	for _, rec := range table.Records {
		m := rec.Matches[platform]
		if m == nil || m.PlatformSKU == "" || m.ConfidenceScore < matching.ValidThreshold {
			continue
		}
		price, grade, ok := TargetPrice(rec.ManufacturerItem)
		if !ok {
			s.logger.WithFields(logrus.Fields{
				"manufacturerSku": rec.SKU,
				"platform":        platform,
			}).Warn("Skipping export row without MAP")
			continue
		}
		export.Rows = append(export.Rows, exportRow(platform, m.PlatformSKU, price, rec.ManufacturerItem, grade))
	}
	return export, nil
}

func exportRow(platform matching.Platform, sku string, price decimal.Decimal, item matching.ManufacturerItem, grade *matching.Grade) []string {
	newPrice := price.StringFixed(2)
	mapPrice := formatMoney(item.MAP)
	dealer := formatMoney(item.DealerPrice)

	switch platform {
	case matching.PlatformEbay:
		return []string{"Revise", "", sku, newPrice}
	case matching.PlatformAmazon:
		return []string{sku, newPrice}
	case matching.PlatformShopify:
		compareAt := ""
		if grade != nil {
			compareAt = mapPrice
		}
		return []string{sku, newPrice, compareAt, dealer}
	case matching.PlatformInflow:
		return []string{sku, newPrice, dealer}
	case matching.PlatformSellerCloud:
		return []string{sku, mapPrice, newPrice, dealer}
	case matching.PlatformReverb:
		return []string{sku, newPrice, ReverbCondition(grade)}
	}
	return nil
}

// ReverbCondition maps a grade to the Reverb listing condition
func ReverbCondition(grade *matching.Grade) string {
	if grade == nil {
		return ConditionBrandNew
	}
	switch grade.Type {
	case "AA":
		return ConditionExcellent
	case "BA", "BB":
		return ConditionVeryGood
	default:
		return ConditionGood
	}
}

func formatMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return decimal.NewFromFloat(*v).StringFixed(2)
}

// WriteWorkbook writes one worksheet per export
func (s *ExportService) WriteWorkbook(w io.Writer, exports []ChannelExport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := AddExportSheets(f, exports); err != nil {
		return err
	}
	if len(exports) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
		f.SetActiveSheet(0)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// AddExportSheets appends the export worksheets to an open workbook
func AddExportSheets(f *excelize.File, exports []ChannelExport) error {
	headerStyle, err := HeaderStyle(f)
	if err != nil {
		return err
	}
	for _, export := range exports {
		rows := make([][]interface{}, len(export.Rows))
		for i, row := range export.Rows {
			cells := make([]interface{}, len(row))
			for j, v := range row {
				cells[j] = v
			}
			rows[i] = cells
		}
		if err := WriteSheet(f, export.SheetName(), export.Headers, rows, headerStyle); err != nil {
			return err
		}
	}
	return nil
}

// HeaderStyle registers the bold white-on-blue header style
func HeaderStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	return style, nil
}

// WriteSheet adds a worksheet with a styled header row followed by rows
func WriteSheet(f *excelize.File, name string, headers []string, rows [][]interface{}, headerStyle int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if len(headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style %s header: %w", name, err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(headers))
		f.SetColWidth(name, "A", lastCol, 20)
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(name, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, i+2, err)
		}
	}
	return nil
}

// WriteCSV writes a single platform export as CSV
func (s *ExportService) WriteCSV(w io.Writer, export *ChannelExport) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(export.Headers); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := writer.WriteAll(export.Rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// RecordExport writes the DATA_EXPORT audit entry for a download
func (s *ExportService) RecordExport(ctx context.Context, tenantID, actorID string, runID uuid.UUID, format string, exports []ChannelExport) {
	counts := models.JSONB{}
	for _, e := range exports {
		counts[string(e.Platform)] = len(e.Rows)
	}
	writeAudit(ctx, s.audit, s.logger, models.NewAuditLog(tenantID, models.ActionDataExport, models.ResourceMatchRun).
		WithActor(models.ActorUser, actorID).
		WithResource(runID.String()).
		WithMetadata(models.JSONB{"format": format, "rows": counts}).
		Build())
}
