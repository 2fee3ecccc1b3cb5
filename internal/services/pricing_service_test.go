package services

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sku-reconciliation-service/internal/matching"
)

func fp(v float64) *float64 { return &v }

func hit(sku string, score int, price *float64) *matching.MatchResult {
	return &matching.MatchResult{PlatformSKU: sku, ConfidenceScore: score, CurrentPrice: price, MatchType: matching.MatchTypeStrong}
}

// pricingTable covers new, graded, unmatched and invalid manufacturer rows
func pricingTable() *matching.MatchTable {
	return &matching.MatchTable{
		Platforms: []matching.Platform{matching.PlatformAmazon, matching.PlatformEbay, matching.PlatformShopify, matching.PlatformInflow, matching.PlatformReverb},
		Records: []matching.MatchRecord{
			{
				ManufacturerItem: matching.ManufacturerItem{SKU: "GTR-100", MAP: fp(500), DealerPrice: fp(400)},
				Matches: map[matching.Platform]*matching.MatchResult{
					matching.PlatformAmazon:  hit("GTR-100", 98, fp(450)),
					matching.PlatformEbay:    hit("GTR-100", 90, fp(505)),
					matching.PlatformShopify: hit("GTR-100-WH", 80, fp(100)),
					matching.PlatformInflow:  hit("GTR-100", 100, fp(1)),
				},
			},
			{
				ManufacturerItem: matching.ManufacturerItem{SKU: "GTR-100-BA", MAP: fp(500), DealerPrice: fp(400)},
				Matches: map[matching.Platform]*matching.MatchResult{
					matching.PlatformAmazon: hit("GTR-100-BA", 99, fp(475)),
					matching.PlatformReverb: hit("SHU-GTR-100-BA", 96, nil),
				},
			},
			{
				ManufacturerItem: matching.ManufacturerItem{SKU: "ABC-1", MAP: fp(100), DealerPrice: fp(80)},
				Matches:          map[matching.Platform]*matching.MatchResult{},
			},
			{
				ManufacturerItem: matching.ManufacturerItem{SKU: "BAD", DealerPrice: fp(80)},
				Matches: map[matching.Platform]*matching.MatchResult{
					matching.PlatformAmazon: hit("BAD", 100, fp(10)),
				},
			},
		},
	}
}

func TestAnalyzeMetrics(t *testing.T) {
	logger, _ := test.NewNullLogger()
	analysis := NewPricingService(logger).Analyze(pricingTable())

	assert.Equal(t, PriceMetrics{
		TotalProducts: 4,
		Increases:     2,
		Decreases:     1,
		AvgChange:     3.37,
		MAPViolations: 1,
		HighImpact:    1,
		Unmatched:     1,
		BStockChanges: 0,
	}, analysis.Metrics)
}

func TestAnalyzeRows(t *testing.T) {
	analysis := NewPricingService(nil).Analyze(pricingTable())
	require.Len(t, analysis.Rows, 4)

	amazon := analysis.Rows[0]
	assert.Equal(t, matching.PlatformAmazon, amazon.Platform)
	assert.Equal(t, "500", amazon.NewPrice.String())
	assert.Equal(t, "50", amazon.ChangeAmount.String())
	assert.Equal(t, "11.11", amazon.ChangePercent.Decimal.String())
	assert.Equal(t, "High Impact; MAP Violation", amazon.Status)

	ebay := analysis.Rows[1]
	assert.Equal(t, matching.PlatformEbay, ebay.Platform)
	assert.Equal(t, "-5", ebay.ChangeAmount.String())
	assert.Empty(t, ebay.Status)

	graded := analysis.Rows[2]
	assert.Equal(t, "BA", graded.Grade)
	assert.Equal(t, "475", graded.NewPrice.String())
	assert.True(t, graded.ChangeAmount.IsZero())
	assert.Equal(t, "BA B-Stock", graded.Status)

	newListing := analysis.Rows[3]
	assert.Equal(t, matching.PlatformReverb, newListing.Platform)
	assert.False(t, newListing.CurrentPrice.Valid)
	assert.Equal(t, "BA B-Stock; New Listing/Price", newListing.Status)
}

func TestAnalyzeChangeLists(t *testing.T) {
	analysis := NewPricingService(nil).Analyze(pricingTable())

	require.Len(t, analysis.Increases, 2)
	assert.Equal(t, "GTR-100", analysis.Increases[0].ManufacturerSKU)
	assert.Equal(t, "High Impact; MAP Violation", analysis.Increases[0].Status)
	assert.Equal(t, matching.PlatformReverb, analysis.Increases[1].Platform)

	require.Len(t, analysis.Decreases, 1)
	assert.Equal(t, matching.PlatformEbay, analysis.Decreases[0].Platform)
}

func TestAnalyzeZeroCurrentPriceIsHighImpact(t *testing.T) {
	table := &matching.MatchTable{
		Platforms: []matching.Platform{matching.PlatformShopify},
		Records: []matching.MatchRecord{{
			ManufacturerItem: matching.ManufacturerItem{SKU: "X-1", MAP: fp(20), DealerPrice: fp(15)},
			Matches:          map[matching.Platform]*matching.MatchResult{matching.PlatformShopify: hit("X-1", 100, fp(0))},
		}},
	}

	analysis := NewPricingService(nil).Analyze(table)
	require.Len(t, analysis.Rows, 1)
	assert.False(t, analysis.Rows[0].ChangePercent.Valid)
	assert.Equal(t, "High Impact; MAP Violation", analysis.Rows[0].Status)
	assert.Zero(t, analysis.Metrics.AvgChange)
}

func TestAnalyzeNilTable(t *testing.T) {
	analysis := NewPricingService(nil).Analyze(nil)
	assert.Empty(t, analysis.Rows)
	assert.Zero(t, analysis.Metrics.TotalProducts)
}

func TestTargetPrice(t *testing.T) {
	price, grade, ok := TargetPrice(matching.ManufacturerItem{SKU: "AMP-1-BB", MAP: fp(199.99)})
	require.True(t, ok)
	require.NotNil(t, grade)
	assert.Equal(t, "179.99", price.String())

	price, grade, ok = TargetPrice(matching.ManufacturerItem{SKU: "AMP-1", MAP: fp(199.99)})
	require.True(t, ok)
	assert.Nil(t, grade)
	assert.Equal(t, "199.99", price.String())

	_, _, ok = TargetPrice(matching.ManufacturerItem{SKU: "AMP-1"})
	assert.False(t, ok)
}
