package matching

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v float64) *float64 { return &v }

func catalogOf(platform Platform, items ...PlatformItem) *PlatformCatalog {
	return NewPlatformCatalog(platform, items, NewExtractor())
}

func TestFindBestMatchIndexHit(t *testing.T) {
	catalog := catalogOf(PlatformSellerCloud,
		PlatformItem{SKU: "OTHER-1"},
		PlatformItem{SKU: "EMG-81", Price: price(129.99)},
	)

	got := FindBestMatch("EMG-81", Extract("EMG-81"), catalog)
	require.NotNil(t, got)
	assert.Equal(t, "EMG-81", got.PlatformSKU)
	assert.Equal(t, 100, got.ConfidenceScore)
	assert.Equal(t, MatchTypeExactNormalized, got.MatchType)
	assert.Equal(t, 129.99, *got.CurrentPrice)
}

func TestFindBestMatchIndexLastWriteWins(t *testing.T) {
	catalog := catalogOf(PlatformEbay,
		PlatformItem{SKU: "gtr-100", Price: price(1)},
		PlatformItem{SKU: "GTR-100", Price: price(2)},
	)

	entry, ok := catalog.Lookup("GTR-100")
	require.True(t, ok)
	assert.Equal(t, "GTR-100", entry.Item.SKU)

	got := FindBestMatch("Gtr-100", Extract("Gtr-100"), catalog)
	require.NotNil(t, got)
	assert.Equal(t, 2.0, *got.CurrentPrice)
}

func TestFindBestMatchFullScanPrefersFirstOfEqualScores(t *testing.T) {
	catalog := catalogOf(PlatformEbay,
		PlatformItem{SKU: ""},
		PlatformItem{SKU: "GTR-100-BK"},
		PlatformItem{SKU: "GTR-100-WH"},
	)

	got := FindBestMatch("GTR-100", Extract("GTR-100"), catalog)
	require.NotNil(t, got)
	assert.Equal(t, "GTR-100-BK", got.PlatformSKU)
	assert.Equal(t, MatchTypeStrong, got.MatchType)
	assert.Equal(t, MaxScoredConfidence, got.ConfidenceScore)
}

func TestFindBestMatchReviewBand(t *testing.T) {
	catalog := catalogOf(PlatformAmazon, PlatformItem{SKU: "GTR-100-WH"})

	got := FindBestMatch("GTR-100-BK", Extract("GTR-100-BK"), catalog)
	require.NotNil(t, got)
	assert.Equal(t, MatchTypeReviewRequired, got.MatchType)
	assert.Equal(t, 84, got.ConfidenceScore)
	assert.True(t, strings.HasPrefix(got.MatchReason, "REVIEW (Score 84): Review: "), got.MatchReason)
}

func TestFindBestMatchUnrelatedReturnsNil(t *testing.T) {
	catalog := catalogOf(PlatformAmazon, PlatformItem{SKU: "XYZ-999"})
	assert.Nil(t, FindBestMatch("ABC-1", Extract("ABC-1"), catalog))
}

func TestFindBestMatchEmptyCatalog(t *testing.T) {
	assert.Nil(t, FindBestMatch("ABC-1", Extract("ABC-1"), catalogOf(PlatformAmazon)))
	assert.Nil(t, FindBestMatch("ABC-1", Extract("ABC-1"), nil))
}

func TestFindBestMatchReverbPrefix(t *testing.T) {
	catalog := catalogOf(PlatformReverb,
		PlatformItem{SKU: "SHU-GTR-200"},
		PlatformItem{SKU: "SHU-GTR-100", Price: price(499), Condition: "Brand New"},
	)

	got := FindBestMatch("GTR-100", Extract("GTR-100"), catalog)
	require.NotNil(t, got)
	assert.Equal(t, "SHU-GTR-100", got.PlatformSKU)
	assert.GreaterOrEqual(t, got.ConfidenceScore, 95)
	assert.Equal(t, MatchTypeStrong, got.MatchType)
}
