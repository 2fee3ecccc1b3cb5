package services

import (
	"sort"
	"strings"
	"time"

	"sku-reconciliation-service/internal/matching"
)

// StatusPotentialDiscontinued marks platform SKUs missing from the manufacturer sheet
const StatusPotentialDiscontinued = "Potential Discontinued"

const (
	discontinuedNote = "Not found in current MFR sheet by SKU, normalized SKU, or core SKU."
	unknownBrand     = "Unknown"
)

// ListingGap is a manufacturer SKU that is not confidently listed everywhere
type ListingGap struct {
	ManufacturerSKU string                     `json:"manufacturerSku"`
	UPC             string                     `json:"upc,omitempty"`
	MSRP            *float64                   `json:"msrp,omitempty"`
	MAP             *float64                   `json:"map,omitempty"`
	DealerPrice     *float64                   `json:"dealerPrice,omitempty"`
	Listed          map[matching.Platform]bool `json:"listed"`
	Missing         []matching.Platform        `json:"missing"`
	ActionNeeded    string                     `json:"actionNeeded"`
}

// DiscontinuedItem is a platform listing with no manufacturer counterpart
type DiscontinuedItem struct {
	PlatformSKU  string            `json:"platformSku"`
	Platform     matching.Platform `json:"platform"`
	Brand        string            `json:"brand"`
	CurrentPrice *float64          `json:"currentPrice,omitempty"`
	LastUpdated  time.Time         `json:"lastUpdated"`
	Status       string            `json:"status"`
	Notes        string            `json:"notes"`
}

// ListingService reports catalog coverage across channels
type ListingService struct{}

// NewListingService creates a new listing service
func NewListingService() *ListingService {
	return &ListingService{}
}

// ListingGaps returns the records lacking a confident match on at least one
// platform, with the platforms to list them on.
func (s *ListingService) ListingGaps(table *matching.MatchTable) []ListingGap {
	gaps := []ListingGap{}
	if table == nil {
		return gaps
	}

	for _, rec := range table.Records {
		if rec.SKU == "" {
			continue
		}
		gap := ListingGap{
			ManufacturerSKU: rec.SKU,
			UPC:             rec.UPC,
			MSRP:            rec.MSRP,
			MAP:             rec.MAP,
			DealerPrice:     rec.DealerPrice,
			Listed:          make(map[matching.Platform]bool, len(matching.ListingOrder)),
		}
		for _, p := range matching.ListingOrder {
			m := rec.Matches[p]
			listed := m != nil && m.PlatformSKU != "" && m.ConfidenceScore >= matching.ValidThreshold
			gap.Listed[p] = listed
			if !listed {
				gap.Missing = append(gap.Missing, p)
			}
		}
		if len(gap.Missing) == 0 {
			continue
		}

		names := make([]string, len(gap.Missing))
		for i, p := range gap.Missing {
			names[i] = string(p)
		}
		gap.ActionNeeded = "List on: " + strings.Join(names, ", ")
		gaps = append(gaps, gap)
	}
	return gaps
}

// Discontinued reports platform listings whose SKU, normalized SKU and core
// SKU all miss the manufacturer catalog.
func (s *ListingService) Discontinued(manufacturer []matching.ManufacturerItem, platforms map[matching.Platform][]matching.PlatformItem, now time.Time) []DiscontinuedItem {
	extractor := matching.NewExtractor()
	originals := make(map[string]struct{}, len(manufacturer))
	normalized := make(map[string]struct{}, len(manufacturer))
	cores := make(map[string]struct{}, len(manufacturer))

	for _, item := range manufacturer {
		if item.SKU == "" {
			continue
		}
		originals[strings.ToUpper(item.SKU)] = struct{}{}
		attrs := extractor.Extract(item.SKU)
		if attrs.NormalizedSKU != "" {
			normalized[attrs.NormalizedSKU] = struct{}{}
		}
		if attrs.CoreSKU != "" {
			cores[attrs.CoreSKU] = struct{}{}
		}
	}

	found := func(sku string) bool {
		if _, ok := originals[strings.ToUpper(sku)]; ok {
			return true
		}
		attrs := extractor.Extract(sku)
		if _, ok := normalized[attrs.NormalizedSKU]; ok && attrs.NormalizedSKU != "" {
			return true
		}
		_, ok := cores[attrs.CoreSKU]
		return ok && attrs.CoreSKU != ""
	}

	items := []DiscontinuedItem{}
	for _, p := range matching.AllPlatforms {
		for _, listing := range platforms[p] {
			if listing.SKU == "" || found(listing.SKU) {
				continue
			}
			items = append(items, DiscontinuedItem{
				PlatformSKU:  listing.SKU,
				Platform:     p,
				Brand:        BrandFromSKU(listing.SKU),
				CurrentPrice: listing.Price,
				LastUpdated:  now,
				Status:       StatusPotentialDiscontinued,
				Notes:        discontinuedNote,
			})
		}
	}
	return items
}

type brandKey struct {
	key   string
	brand string
}

// brandKeys maps SKU fragments to brand names
var brandKeys = []brandKey{
	{"FENDER", "Fender"}, {"GIBSON", "Gibson"}, {"SQUIER", "Squier"}, {"EPIPHONE", "Epiphone"},
	{"IBANEZ", "Ibanez"}, {"YAMAHA", "Yamaha"}, {"PRS", "PRS"}, {"MARTIN", "Martin"}, {"TAYLOR", "Taylor"},
	{"BOSS", "Boss"}, {"ROLAND", "Roland"}, {"KORG", "Korg"}, {"MOOG", "Moog"},
	{"SHURE", "Shure"}, {"SENNHEISER", "Sennheiser"}, {"AKG", "AKG"}, {"RODE", "Rode"},
	{"MACKIE", "Mackie"}, {"BEHRINGER", "Behringer"}, {"PRESONUS", "Presonus"}, {"FOCUSRITE", "Focusrite"},
	{"EMG", "EMG"}, {"DIMARZIO", "DiMarzio"}, {"SEYMOUR DUNCAN", "Seymour Duncan"}, {"SDPICKUPS", "Seymour Duncan"},
	{"GODIN", "Godin"}, {"G&L", "G&L"}, {"GRETSCH", "Gretsch"}, {"JACKSON", "Jackson"}, {"CHARVEL", "Charvel"}, {"EVH", "EVH"},
	{"PEAVEY", "Peavey"}, {"ORANGE", "Orange Amps"}, {"MARSHALL", "Marshall"}, {"VOX", "Vox"}, {"LINE 6", "Line 6"},
	{"DUNLOP", "Dunlop"}, {"MXR", "MXR"}, {"ELECTRO-HARMONIX", "Electro-Harmonix"}, {"EHX", "Electro-Harmonix"},
	{"STRYMON", "Strymon"}, {"KEELEY", "Keeley"}, {"WALRUS AUDIO", "Walrus Audio"}, {"JHS", "JHS Pedals"},
	{"ZILDJIAN", "Zildjian"}, {"SABIAN", "Sabian"}, {"PAISTE", "Paiste"}, {"MEINL", "Meinl"},
	{"PEARL", "Pearl Drums"}, {"TAMA", "Tama"}, {"DW", "DW Drums"}, {"LUDWIG", "Ludwig"},
	{"SHU-", "Shure"}, {"MCK-", "Mackie"}, {"GGC-", "Godin"},
	{"FEND", "Fender"}, {"GIB", "Gibson"}, {"IBZ", "Ibanez"}, {"YMH", "Yamaha"},
	{"MART", "Martin"}, {"TAYL", "Taylor"}, {"RLND", "Roland"}, {"SENNH", "Sennheiser"},
	{"PRESO", "Presonus"}, {"FOCU", "Focusrite"}, {"SEYM", "Seymour Duncan"},
}

var (
	brandExact    map[string]string
	brandByLength []brandKey
)

func init() {
	brandExact = make(map[string]string, len(brandKeys))
	for _, b := range brandKeys {
		brandExact[b.key] = b.brand
	}
	brandByLength = append([]brandKey(nil), brandKeys...)
	sort.SliceStable(brandByLength, func(i, j int) bool {
		return len(brandByLength[i].key) > len(brandByLength[j].key)
	})
}

// BrandFromSKU guesses the brand of a SKU. The first token is tried as an
// exact key, then as a prefix, then every key is searched for anywhere in
// the SKU. Longer keys win.
func BrandFromSKU(sku string) string {
	if sku == "" {
		return unknownBrand
	}
	upper := strings.ToUpper(sku)

	token := upper
	if i := strings.IndexAny(upper, "-_ "); i >= 0 {
		token = upper[:i]
	}
	if brand, ok := brandExact[token]; ok {
		return brand
	}
	for _, b := range brandByLength {
		if token != "" && strings.HasPrefix(token, b.key) {
			return b.brand
		}
	}

	for _, b := range brandByLength {
		if strings.Contains(upper, b.key) {
			return b.brand
		}
	}
	return unknownBrand
}
