package matching

import "fmt"

// Match types reported on a MatchResult.
const (
	MatchTypeExactNormalized = "Exact Normalized (Validated)"
	MatchTypeStrong          = "Validated-Strong"
	MatchTypeNeedsReview     = "Validated-Needs-Review"
	MatchTypeLowConfidence   = "Validated-Low-Confidence"
	MatchTypeReviewRequired  = "LOW-CONFIDENCE-REVIEW-REQUIRED"
)

// PlatformItem is one listing in a platform catalog.
type PlatformItem struct {
	SKU       string   `json:"sku"`
	Price     *float64 `json:"price,omitempty"`
	Cost      *float64 `json:"cost,omitempty"`
	Condition string   `json:"condition,omitempty"`
}

// CatalogEntry pairs a platform item with its pre-computed attributes.
type CatalogEntry struct {
	Item       PlatformItem
	Attributes SkuAttributes
}

// PlatformCatalog is a pre-processed platform catalog: items in input order
// plus an index by normalized SKU. On duplicate normalized SKUs the last
// item wins the index slot.
type PlatformCatalog struct {
	Platform Platform
	entries  []CatalogEntry
	index    map[string]int
}

// NewPlatformCatalog extracts attributes for every item once.
func NewPlatformCatalog(platform Platform, items []PlatformItem, extractor *Extractor) *PlatformCatalog {
	c := &PlatformCatalog{
		Platform: platform,
		entries:  make([]CatalogEntry, len(items)),
		index:    make(map[string]int, len(items)),
	}
	for i, item := range items {
		entry := CatalogEntry{Item: item}
		if item.SKU != "" {
			entry.Attributes = extractor.Extract(item.SKU)
			if entry.Attributes.NormalizedSKU != "" {
				c.index[entry.Attributes.NormalizedSKU] = i
			}
		}
		c.entries[i] = entry
	}
	return c
}

// Len returns the number of items in the catalog
func (c *PlatformCatalog) Len() int {
	return len(c.entries)
}

// Entries returns the catalog entries in input order.
func (c *PlatformCatalog) Entries() []CatalogEntry {
	return c.entries
}

// Lookup returns the entry indexed under a normalized SKU.
func (c *PlatformCatalog) Lookup(normalized string) (CatalogEntry, bool) {
	i, ok := c.index[normalized]
	if !ok {
		return CatalogEntry{}, false
	}
	return c.entries[i], true
}

// MatchResult is the best platform listing found for a manufacturer SKU.
type MatchResult struct {
	PlatformSKU     string   `json:"platformSku"`
	CurrentPrice    *float64 `json:"currentPrice,omitempty"`
	CurrentCost     *float64 `json:"currentCost,omitempty"`
	ConfidenceScore int      `json:"confidenceScore"`
	MatchType       string   `json:"matchType"`
	MatchReason     string   `json:"matchReason"`
}

func newMatchResult(entry CatalogEntry, v Validation, matchType string) *MatchResult {
	return &MatchResult{
		PlatformSKU:     entry.Item.SKU,
		CurrentPrice:    entry.Item.Price,
		CurrentCost:     entry.Item.Cost,
		ConfidenceScore: v.Confidence,
		MatchType:       matchType,
		MatchReason:     v.Reason,
	}
}

// FindBestMatch searches a platform catalog for the listing that best
// matches a manufacturer SKU. It returns nil when nothing reaches the
// review threshold.
func FindBestMatch(mfrRaw string, mfr SkuAttributes, catalog *PlatformCatalog) *MatchResult {
	if catalog == nil {
		return nil
	}

	if entry, ok := catalog.Lookup(mfr.NormalizedSKU); ok {
		v := Validate(mfrRaw, mfr, entry.Item.SKU, entry.Attributes, catalog.Platform)
		if v.Confidence >= IndexHitMinConfidence {
			return newMatchResult(entry, v, MatchTypeExactNormalized)
		}
	}

	var best *MatchResult
	highest := 0
	for _, entry := range catalog.entries {
		if entry.Item.SKU == "" {
			continue
		}
		v := Validate(mfrRaw, mfr, entry.Item.SKU, entry.Attributes, catalog.Platform)
		if v.Confidence > highest {
			highest = v.Confidence
			best = newMatchResult(entry, v, matchTypeFor(v.Verdict))
		}
	}

	switch {
	case best == nil:
		return nil
	case best.ConfidenceScore >= ValidThreshold:
		return best
	case best.ConfidenceScore >= ReviewThreshold:
		best.MatchType = MatchTypeReviewRequired
		best.MatchReason = fmt.Sprintf("REVIEW (Score %d): %s", best.ConfidenceScore, best.MatchReason)
		return best
	default:
		return nil
	}
}

func matchTypeFor(v Verdict) string {
	switch v {
	case VerdictValid:
		return MatchTypeStrong
	case VerdictNeedsReview:
		return MatchTypeNeedsReview
	default:
		return MatchTypeLowConfidence
	}
}
