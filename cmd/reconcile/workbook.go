package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"sku-reconciliation-service/internal/matching"
	"sku-reconciliation-service/internal/services"
)

const (
	matchesSheet  = "SKU Matches"
	analysisSheet = "Price Analysis"
)

var analysisHeaders = []string{
	"Manufacturer SKU", "Platform", "Platform SKU", "Confidence", "MAP", "Dealer Price",
	"Grade", "Current Price", "New Price", "Change", "Change %", "Status",
}

// matchHeaders lists the manufacturer columns then SKU, price, confidence
// and match type for each platform
func matchHeaders(platforms []matching.Platform) []string {
	headers := []string{"Manufacturer SKU", "UPC", "MSRP", "MAP", "Dealer Price", "Status"}
	for _, p := range platforms {
		name := p.DisplayName()
		headers = append(headers, name+" SKU", name+" Price", name+" Confidence", name+" Match Type")
	}
	return headers
}

func matchRows(table *matching.MatchTable) [][]interface{} {
	rows := make([][]interface{}, 0, len(table.Records))
	for _, rec := range table.Records {
		row := []interface{}{
			rec.SKU, rec.UPC, money(rec.MSRP), money(rec.MAP), money(rec.DealerPrice), services.RecordStatus(rec),
		}
		for _, p := range table.Platforms {
			m := rec.Matches[p]
			if m == nil {
				row = append(row, "", "", "", "")
				continue
			}
			row = append(row, m.PlatformSKU, money(m.CurrentPrice), m.ConfidenceScore, m.MatchType)
		}
		rows = append(rows, row)
	}
	return rows
}

func analysisRows(analysis *services.PriceAnalysis) [][]interface{} {
	rows := make([][]interface{}, 0, len(analysis.Rows))
	for _, r := range analysis.Rows {
		rows = append(rows, []interface{}{
			r.ManufacturerSKU,
			r.Platform.DisplayName(),
			r.PlatformSKU,
			r.Confidence,
			r.MAP.InexactFloat64(),
			r.DealerPrice.InexactFloat64(),
			r.Grade,
			nullMoney(r.CurrentPrice),
			r.NewPrice.InexactFloat64(),
			r.ChangeAmount.InexactFloat64(),
			nullMoney(r.ChangePercent),
			r.Status,
		})
	}
	return rows
}

func money(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func nullMoney(v decimal.NullDecimal) interface{} {
	if !v.Valid {
		return ""
	}
	return v.Decimal.InexactFloat64()
}

// buildWorkbook lays out the matches, the price analysis and one sheet per
// channel export
func buildWorkbook(table *matching.MatchTable, analysis *services.PriceAnalysis, exports []services.ChannelExport) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := services.HeaderStyle(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := services.WriteSheet(f, matchesSheet, matchHeaders(table.Platforms), matchRows(table), headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := services.WriteSheet(f, analysisSheet, analysisHeaders, analysisRows(analysis), headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := services.AddExportSheets(f, exports); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeResults(path string, table *matching.MatchTable, analysis *services.PriceAnalysis, exports []services.ChannelExport) error {
	f, err := buildWorkbook(table, analysis, exports)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
