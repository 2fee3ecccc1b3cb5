package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"sku-reconciliation-service/internal/config"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/models"
	"sku-reconciliation-service/internal/repository"
)

var (
	ErrMissingColumn   = errors.New("required column not found")
	ErrEmptyCatalog    = errors.New("catalog has no data rows")
	ErrUnsupportedFile = errors.New("unsupported file type, expected .csv or .xlsx")
)

// Manufacturer sheet headers, lowercased
const (
	colManufacturerSKU = "manufacturer sku"
	colUPC             = "upc"
	colMSRP            = "msrp"
	colMAP             = "map"
	colDealerPrice     = "dealer price"
)

// mapFromDealerRatio derives a missing MAP from the dealer price
var mapFromDealerRatio = decimal.NewFromFloat(0.85)

// ManufacturerSheet is the preferred sheet name in a manufacturer workbook
const ManufacturerSheet = "Manufacturer Price Sheet"

// ImportResult summarises one catalog import
type ImportResult struct {
	Catalog   string            `json:"catalog"`
	Platform  matching.Platform `json:"platform,omitempty"`
	TotalRows int               `json:"totalRows"`
	Imported  int               `json:"imported"`
	Skipped   int               `json:"skipped"`
}

// Sheet is one parsed worksheet
type Sheet struct {
	Name string
	Rows []map[string]string
}

// ImportService parses catalog files and stores them per tenant
type ImportService struct {
	catalogRepo repository.CatalogRepositoryInterface
	audit       AuditLogger
	columns     map[matching.Platform]config.ColumnAliases
	logger      logrus.FieldLogger
}

// NewImportService creates a new import service. columns may be nil for the
// default channel headers.
func NewImportService(catalogRepo repository.CatalogRepositoryInterface, audit AuditLogger, columns map[matching.Platform]config.ColumnAliases, logger logrus.FieldLogger) *ImportService {
	if columns == nil {
		columns = config.DefaultColumnAliases()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImportService{catalogRepo: catalogRepo, audit: audit, columns: columns, logger: logger}
}

// ParseTable reads a CSV or XLSX file into rows keyed by lowercased header.
// For workbooks the sheet named sheet is preferred, else the first one.
func ParseTable(r io.Reader, filename string, sheet string) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseXLSX(r, sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
}

func normalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(strings.ToLower(h))
		// Remove required marker if present
		out[i] = strings.TrimSuffix(h, " *")
	}
	return out
}

// parseCSV parses a CSV file into rows
func parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headerRow, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	headers := normalizeHeaders(headerRow)

	var rows []map[string]string
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}
		rows = append(rows, buildRow(headers, record, lineNum+1))
		lineNum++
	}

	return rows, nil
}

// parseXLSX parses one sheet of an Excel file into rows
func parseXLSX(file io.Reader, preferred string) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if preferred != "" && strings.EqualFold(name, preferred) {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return rowsFromSheet(excelRows)
}

// ParseWorkbook reads every sheet of an XLSX file
func ParseWorkbook(file io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		excelRows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		rows, err := rowsFromSheet(excelRows)
		if err != nil {
			rows = nil
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	return sheets, nil
}

func rowsFromSheet(excelRows [][]string) ([]map[string]string, error) {
	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := normalizeHeaders(excelRows[0])
	rows := make([]map[string]string, 0, len(excelRows)-1)
	for rowIdx, excelRow := range excelRows[1:] {
		rows = append(rows, buildRow(headers, excelRow, rowIdx+2))
	}
	return rows, nil
}

// buildRow maps values onto headers. Every header is present in the row,
// blank when the record is short.
func buildRow(headers, record []string, rowNum int) map[string]string {
	row := make(map[string]string, len(headers)+1)
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(record) {
			row[h] = strings.TrimSpace(record[i])
		} else if _, seen := row[h]; !seen {
			row[h] = ""
		}
	}
	row["_row"] = strconv.Itoa(rowNum)
	return row
}

// parseAmount reads a money cell. Blank cells give a null amount; ok is false
// when the cell holds something that is not a number.
func parseAmount(value string) (amount decimal.NullDecimal, ok bool) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(value)
	if cleaned == "" {
		return decimal.NullDecimal{}, true
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.NullDecimal{}, false
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, true
}

func hasColumn(rows []map[string]string, column string) bool {
	if len(rows) == 0 {
		return false
	}
	_, ok := rows[0][column]
	return ok
}

func rowNumber(row map[string]string) int {
	n, _ := strconv.Atoi(row["_row"])
	return n
}

// MapManufacturerRows converts parsed rows into manufacturer products.
// Rows without a SKU are skipped.
func MapManufacturerRows(tenantID string, rows []map[string]string) ([]models.ManufacturerProduct, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyCatalog
	}
	for _, col := range []string{colManufacturerSKU, colMAP, colDealerPrice} {
		if !hasColumn(rows, col) {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	products := make([]models.ManufacturerProduct, 0, len(rows))
	for _, row := range rows {
		sku := row[colManufacturerSKU]
		if sku == "" {
			continue
		}

		dealer, _ := parseAmount(row[colDealerPrice])
		mapPrice, _ := parseAmount(row[colMAP])
		msrp, _ := parseAmount(row[colMSRP])

		if (!mapPrice.Valid || mapPrice.Decimal.IsZero()) && dealer.Valid && dealer.Decimal.IsPositive() {
			mapPrice = decimal.NullDecimal{Decimal: dealer.Decimal.Div(mapFromDealerRatio).Round(2), Valid: true}
		}

		products = append(products, models.ManufacturerProduct{
			TenantID:    tenantID,
			Position:    len(products),
			SourceRow:   rowNumber(row),
			SKU:         sku,
			UPC:         models.StringPtr(row[colUPC]),
			MSRP:        msrp,
			MAP:         mapPrice,
			DealerPrice: dealer,
		})
	}
	return products, nil
}

func resolveColumn(rows []map[string]string, aliases []string) string {
	for _, alias := range aliases {
		alias = strings.ToLower(alias)
		if hasColumn(rows, alias) {
			return alias
		}
	}
	return ""
}

// MapPlatformRows converts parsed rows of a channel export into listings
func (s *ImportService) MapPlatformRows(tenantID string, platform matching.Platform, rows []map[string]string) ([]models.PlatformListing, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: %q", matching.ErrUnknownPlatform, string(platform))
	}
	if len(rows) == 0 {
		return nil, ErrEmptyCatalog
	}
	aliases := s.columns[platform]

	skuCol := resolveColumn(rows, aliases.SKU)
	if skuCol == "" {
		return nil, fmt.Errorf("%w: %s SKU column (tried %s)", ErrMissingColumn, platform, strings.Join(aliases.SKU, ", "))
	}
	priceCol := resolveColumn(rows, aliases.Price)
	costCol := resolveColumn(rows, aliases.Cost)
	conditionCol := resolveColumn(rows, aliases.Condition)

	listings := make([]models.PlatformListing, 0, len(rows))
	for _, row := range rows {
		sku := row[skuCol]
		if sku == "" {
			continue
		}

		listing := models.PlatformListing{
			TenantID:  tenantID,
			Platform:  platform,
			Position:  len(listings),
			SourceRow: rowNumber(row),
			SKU:       sku,
		}
		if priceCol != "" {
			listing.Price = s.amountOrWarn(platform, sku, "price", row[priceCol])
		}
		if costCol != "" {
			listing.Cost = s.amountOrWarn(platform, sku, "cost", row[costCol])
		}
		if conditionCol != "" {
			listing.Condition = models.StringPtr(row[conditionCol])
		}
		listings = append(listings, listing)
	}
	return listings, nil
}

func (s *ImportService) amountOrWarn(platform matching.Platform, sku, field, value string) decimal.NullDecimal {
	amount, ok := parseAmount(value)
	if !ok {
		s.logger.WithFields(logrus.Fields{
			"platform": platform,
			"sku":      sku,
			"field":    field,
			"value":    value,
		}).Warn("Invalid amount in platform data, treating as missing")
	}
	return amount
}

// ImportManufacturer replaces the tenant's manufacturer catalog with the file
func (s *ImportService) ImportManufacturer(ctx context.Context, tenantID, actorID string, r io.Reader, filename string) (*ImportResult, error) {
	rows, err := ParseTable(r, filename, ManufacturerSheet)
	if err != nil {
		return nil, err
	}
	products, err := MapManufacturerRows(tenantID, rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrEmptyCatalog
	}

	if err := s.catalogRepo.ReplaceManufacturer(ctx, tenantID, products); err != nil {
		return nil, fmt.Errorf("failed to store manufacturer catalog: %w", err)
	}

	result := &ImportResult{
		Catalog:   "manufacturer",
		TotalRows: len(rows),
		Imported:  len(products),
		Skipped:   len(rows) - len(products),
	}
	s.recordImport(ctx, tenantID, actorID, models.ResourceManufacturerCatalog, result)
	return result, nil
}

// ImportPlatform replaces one platform catalog of the tenant with the file
func (s *ImportService) ImportPlatform(ctx context.Context, tenantID, actorID string, platform matching.Platform, r io.Reader, filename string) (*ImportResult, error) {
	rows, err := ParseTable(r, filename, platform.DisplayName())
	if err != nil {
		return nil, err
	}
	return s.storePlatform(ctx, tenantID, actorID, platform, rows)
}

// ImportPlatformWorkbook imports every sheet named after a platform. Other
// sheets are ignored.
func (s *ImportService) ImportPlatformWorkbook(ctx context.Context, tenantID, actorID string, r io.Reader) ([]ImportResult, error) {
	sheets, err := ParseWorkbook(r)
	if err != nil {
		return nil, err
	}

	var results []ImportResult
	for _, sheet := range sheets {
		platform, err := matching.ParsePlatform(sheet.Name)
		if err != nil {
			s.logger.WithField("sheet", sheet.Name).Debug("Skipping sheet that does not name a platform")
			continue
		}
		if len(sheet.Rows) == 0 {
			s.logger.WithField("platform", platform).Warn("Platform sheet has no data rows, skipping")
			continue
		}
		result, err := s.storePlatform(ctx, tenantID, actorID, platform, sheet.Rows)
		if err != nil {
			return results, fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}
		results = append(results, *result)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no sheet is named after a platform", ErrEmptyCatalog)
	}
	return results, nil
}

func (s *ImportService) storePlatform(ctx context.Context, tenantID, actorID string, platform matching.Platform, rows []map[string]string) (*ImportResult, error) {
	listings, err := s.MapPlatformRows(tenantID, platform, rows)
	if err != nil {
		return nil, err
	}

	if err := s.catalogRepo.ReplacePlatform(ctx, tenantID, platform, listings); err != nil {
		return nil, fmt.Errorf("failed to store %s catalog: %w", platform, err)
	}

	result := &ImportResult{
		Catalog:   "platform",
		Platform:  platform,
		TotalRows: len(rows),
		Imported:  len(listings),
		Skipped:   len(rows) - len(listings),
	}
	s.recordImport(ctx, tenantID, actorID, models.ResourcePlatformCatalog, result)
	return result, nil
}

func (s *ImportService) recordImport(ctx context.Context, tenantID, actorID string, resource models.ResourceType, result *ImportResult) {
	s.logger.WithFields(logrus.Fields{
		"tenantId": tenantID,
		"catalog":  result.Catalog,
		"platform": result.Platform,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("Catalog imported")

	log := models.NewAuditLog(tenantID, models.ActionCatalogImport, resource).
		WithActor(models.ActorUser, actorID).
		WithMetadata(models.JSONB{
			"platform":  string(result.Platform),
			"totalRows": result.TotalRows,
			"imported":  result.Imported,
			"skipped":   result.Skipped,
		})
	if result.Platform != "" {
		log = log.WithResource(string(result.Platform))
	}
	writeAudit(ctx, s.audit, s.logger, log.Build())
}

// ListManufacturer returns a page of the manufacturer catalog
func (s *ImportService) ListManufacturer(ctx context.Context, tenantID string, opts repository.ListOptions) ([]models.ManufacturerProduct, int64, error) {
	return s.catalogRepo.ListManufacturer(ctx, tenantID, opts)
}

// ListPlatform returns a page of one platform catalog
func (s *ImportService) ListPlatform(ctx context.Context, tenantID string, platform matching.Platform, opts repository.ListOptions) ([]models.PlatformListing, int64, error) {
	return s.catalogRepo.ListPlatform(ctx, tenantID, platform, opts)
}
