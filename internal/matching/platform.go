package matching

import (
	"fmt"
	"strings"
)

// Platform identifies a sales channel whose catalog is matched against the
// manufacturer catalog.
type Platform string

const (
	PlatformAmazon      Platform = "AMAZON"
	PlatformEbay        Platform = "EBAY"
	PlatformInflow      Platform = "INFLOW"
	PlatformReverb      Platform = "REVERB"
	PlatformShopify     Platform = "SHOPIFY"
	PlatformSellerCloud Platform = "SELLERCLOUD"
)

// AllPlatforms is the canonical platform order used for output columns.
var AllPlatforms = []Platform{
	PlatformAmazon,
	PlatformEbay,
	PlatformInflow,
	PlatformReverb,
	PlatformShopify,
	PlatformSellerCloud,
}

// ListingOrder is the order used for per-channel listing reports and exports.
var ListingOrder = []Platform{
	PlatformEbay,
	PlatformAmazon,
	PlatformShopify,
	PlatformInflow,
	PlatformSellerCloud,
	PlatformReverb,
}

// AnalysisPlatforms are the channels included in price analysis.
var AnalysisPlatforms = []Platform{
	PlatformAmazon,
	PlatformEbay,
	PlatformShopify,
	PlatformReverb,
}

var displayNames = map[Platform]string{
	PlatformAmazon:      "Amazon",
	PlatformEbay:        "eBay",
	PlatformInflow:      "inFlow",
	PlatformReverb:      "Reverb",
	PlatformShopify:     "Shopify",
	PlatformSellerCloud: "SellerCloud",
}

// ParsePlatform resolves a platform name case-insensitively.
func ParsePlatform(name string) (Platform, error) {
	p := Platform(strings.ToUpper(strings.TrimSpace(name)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, name)
	}
	return p, nil
}

// Valid reports whether p is a supported platform
func (p Platform) Valid() bool {
	_, ok := displayNames[p]
	return ok
}

// DisplayName returns the channel's brand spelling.
func (p Platform) DisplayName() string {
	if name, ok := displayNames[p]; ok {
		return name
	}
	return string(p)
}

func (p Platform) String() string {
	return string(p)
}

type ruleKind int

const (
	// coreAgreement fires when the affix is present and both basic cores agree.
	coreAgreement ruleKind = iota
	// strippedExact fires when removing the prefix yields the manufacturer SKU.
	strippedExact
)

// overrideRule is a channel naming convention that identifies a listing as
// a manufacturer product with high confidence.
type overrideRule struct {
	prefix          string
	suffix          string
	kind            ruleKind
	score           int
	minCoreLen      int
	requireUngraded bool
	reason          string
}

// overrideRules are evaluated in order per platform; the first satisfied rule wins.
var overrideRules = map[Platform][]overrideRule{
	PlatformAmazon: {
		{suffix: "-FOL", kind: coreAgreement, score: 95, reason: "Amazon FOL suffix, base match"},
		{prefix: "360H-", kind: strippedExact, score: 96, reason: "Amazon prefix, exact mfr SKU"},
		{prefix: "8SI-", kind: strippedExact, score: 96, reason: "Amazon prefix, exact mfr SKU"},
	},
	PlatformSellerCloud: {
		{prefix: "EMG-", kind: coreAgreement, score: 95, reason: "SC EMG prefix, base match"},
		{prefix: "EMG-", kind: strippedExact, score: 96, reason: "SC EMG prefix, exact mfr SKU"},
	},
	PlatformReverb: {
		{prefix: "SHU-", kind: coreAgreement, score: 95, reason: "Reverb SHU prefix, base match"},
		{prefix: "BOSS-", kind: coreAgreement, score: 95, reason: "Reverb BOSS prefix, base match"},
		{prefix: "MCK-", kind: coreAgreement, score: 95, reason: "Reverb MCK prefix, base match"},
	},
	PlatformEbay: {
		{prefix: "GGACC-", kind: coreAgreement, score: 95, reason: "eBay GGACC prefix, base match"},
	},
	PlatformShopify: {
		{prefix: "AA-", kind: coreAgreement, score: 92, minCoreLen: 4, requireUngraded: true,
			reason: "Shopify AA prefix (non-BStock), base match (len>=4)"},
	},
	PlatformInflow: {
		{prefix: "1SV-", kind: coreAgreement, score: 95, reason: "inFlow 1SV prefix, base match"},
	},
}

func (r overrideRule) matches(mfrNormalized, platNormalized, mfrCore, platCore string) bool {
	if r.prefix != "" && !strings.HasPrefix(platNormalized, r.prefix) {
		return false
	}
	if r.suffix != "" && !strings.HasSuffix(platNormalized, r.suffix) {
		return false
	}

	switch r.kind {
	case strippedExact:
		return strings.TrimPrefix(platNormalized, r.prefix) == mfrNormalized
	default:
		if mfrCore != platCore {
			return false
		}
		if len(mfrCore) < r.minCoreLen {
			return false
		}
		if r.requireUngraded && DetectGrade(platNormalized) != nil {
			return false
		}
		return true
	}
}
