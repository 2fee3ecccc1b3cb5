package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"sku-reconciliation-service/internal/matching"
)

// Price change classification
const (
	StatusHighImpact   = "High Impact"
	StatusMAPViolation = "MAP Violation"
	StatusNewListing   = "New Listing/Price"
)

var (
	hundred          = decimal.NewFromInt(100)
	changeEpsilon    = decimal.NewFromFloat(0.001)
	bStockEpsilon    = decimal.NewFromFloat(0.01)
	highImpactAmount = decimal.NewFromInt(10)
	highImpactPct    = decimal.NewFromInt(10)
)

// PriceChange is one dashboard row: a manufacturer SKU on one platform
type PriceChange struct {
	ManufacturerSKU string              `json:"manufacturerSku"`
	Platform        matching.Platform   `json:"platform"`
	PlatformSKU     string              `json:"platformSku"`
	Confidence      int                 `json:"confidence"`
	MAP             decimal.Decimal     `json:"map"`
	DealerPrice     decimal.Decimal     `json:"dealerPrice"`
	Grade           string              `json:"grade,omitempty"`
	CurrentPrice    decimal.NullDecimal `json:"currentPrice"`
	NewPrice        decimal.Decimal     `json:"newPrice"`
	ChangeAmount    decimal.Decimal     `json:"changeAmount"`
	ChangePercent   decimal.NullDecimal `json:"changePercent"`
	Status          string              `json:"status"`
}

// PriceMetrics summarises an analysis
type PriceMetrics struct {
	TotalProducts int     `json:"totalProducts"`
	Increases     int     `json:"increases"`
	Decreases     int     `json:"decreases"`
	AvgChange     float64 `json:"avgChange"`
	MAPViolations int     `json:"mapViolations"`
	HighImpact    int     `json:"highImpact"`
	Unmatched     int     `json:"unmatched"`
	BStockChanges int     `json:"bStockChanges"`
}

// PriceAnalysis is the result of comparing manufacturer pricing with the
// prices currently listed on the matched platforms
type PriceAnalysis struct {
	Metrics   PriceMetrics  `json:"metrics"`
	Rows      []PriceChange `json:"rows"`
	Increases []PriceChange `json:"increases"`
	Decreases []PriceChange `json:"decreases"`
}

// TargetPrice returns the price a manufacturer SKU should sell at: MAP, or
// MAP scaled by the grade multiplier for B-stock SKUs. ok is false without
// a MAP.
func TargetPrice(item matching.ManufacturerItem) (price decimal.Decimal, grade *matching.Grade, ok bool) {
	if item.MAP == nil {
		return decimal.Decimal{}, nil, false
	}
	price = decimal.NewFromFloat(*item.MAP)
	grade = matching.DetectGrade(item.SKU)
	if grade != nil {
		price = price.Mul(decimal.NewFromFloat(grade.Multiplier))
	}
	return price.Round(2), grade, true
}

// PricingService derives price changes from a match table
type PricingService struct {
	logger logrus.FieldLogger
}

// NewPricingService creates a new pricing service
func NewPricingService(logger logrus.FieldLogger) *PricingService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PricingService{logger: logger}
}

// Analyze compares every high-confidence match on the analysis platforms
// against the manufacturer's target price.
func (s *PricingService) Analyze(table *matching.MatchTable) *PriceAnalysis {
	analysis := &PriceAnalysis{
		Rows:      []PriceChange{},
		Increases: []PriceChange{},
		Decreases: []PriceChange{},
	}
	if table == nil {
		return analysis
	}

	platforms := analysedPlatforms(table.Platforms)
	metrics := &analysis.Metrics
	pctSum := decimal.Zero
	pctCount := 0

	for _, rec := range table.Records {
		if rec.SKU == "" {
			continue
		}
		metrics.TotalProducts++

		if rec.MAP == nil || rec.DealerPrice == nil {
			s.logger.WithField("manufacturerSku", rec.SKU).Warn("Skipping price analysis: invalid MAP or dealer price")
			continue
		}
		newPrice, grade, _ := TargetPrice(rec.ManufacturerItem)
		mapPrice := decimal.NewFromFloat(*rec.MAP)

		processed := false
		for _, p := range platforms {
			m := rec.Matches[p]
			if m == nil || m.PlatformSKU == "" || m.ConfidenceScore < matching.ValidThreshold {
				continue
			}
			processed = true

			row := PriceChange{
				ManufacturerSKU: rec.SKU,
				Platform:        p,
				PlatformSKU:     m.PlatformSKU,
				Confidence:      m.ConfidenceScore,
				MAP:             mapPrice,
				DealerPrice:     decimal.NewFromFloat(*rec.DealerPrice),
				NewPrice:        newPrice,
			}
			var status []string
			if grade != nil {
				row.Grade = grade.Type
				kind := "B-Stock"
				if grade.IsSpecial {
					kind = "Special"
				}
				status = append(status, grade.Type+" "+kind)
			}

			if m.CurrentPrice == nil {
				row.ChangeAmount = newPrice
				status = append(status, StatusNewListing)
				row.Status = strings.Join(status, "; ")
				metrics.Increases++
				analysis.Increases = append(analysis.Increases, row)
				analysis.Rows = append(analysis.Rows, row)
				continue
			}

			current := decimal.NewFromFloat(*m.CurrentPrice)
			row.CurrentPrice = decimal.NewNullDecimal(current)
			amount := newPrice.Sub(current).Round(2)
			row.ChangeAmount = amount

			// A zero current price makes the percentage unbounded
			var pct decimal.Decimal
			unbounded := current.IsZero()
			if !unbounded {
				pct = amount.Div(current).Mul(hundred)
				row.ChangePercent = decimal.NewNullDecimal(pct.Round(2))
				pctSum = pctSum.Add(pct)
				pctCount++
			}

			if (unbounded && newPrice.IsPositive()) || pct.Abs().GreaterThan(highImpactPct) || amount.Abs().GreaterThan(highImpactAmount) {
				metrics.HighImpact++
				status = append(status, StatusHighImpact)
			}
			if grade == nil && mapPrice.IsPositive() && current.LessThan(mapPrice.Sub(changeEpsilon)) {
				metrics.MAPViolations++
				status = append(status, StatusMAPViolation)
			}
			if grade != nil && amount.Abs().GreaterThan(bStockEpsilon) {
				metrics.BStockChanges++
			}

			row.Status = strings.Join(status, "; ")
			switch {
			case amount.GreaterThan(changeEpsilon):
				metrics.Increases++
				analysis.Increases = append(analysis.Increases, row)
			case amount.LessThan(changeEpsilon.Neg()):
				metrics.Decreases++
				analysis.Decreases = append(analysis.Decreases, row)
			}
			analysis.Rows = append(analysis.Rows, row)
		}

		if !processed {
			metrics.Unmatched++
		}
	}

	if pctCount > 0 {
		metrics.AvgChange = pctSum.Div(decimal.NewFromInt(int64(pctCount))).Round(2).InexactFloat64()
	}

	s.logger.WithFields(logrus.Fields{
		"products":   metrics.TotalProducts,
		"increases":  metrics.Increases,
		"decreases":  metrics.Decreases,
		"violations": metrics.MAPViolations,
	}).Info("Price analysis complete")

	return analysis
}

func analysedPlatforms(platforms []matching.Platform) []matching.Platform {
	var out []matching.Platform
	for _, p := range platforms {
		for _, a := range matching.AnalysisPlatforms {
			if p == a {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
