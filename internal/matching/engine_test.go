package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manufacturerItems(n int) []ManufacturerItem {
	items := make([]ManufacturerItem, n)
	for i := range items {
		items[i] = ManufacturerItem{SKU: fmt.Sprintf("GTR-%03d", i), MAP: price(float64(100 + i))}
	}
	return items
}

func TestComputeMatchesShape(t *testing.T) {
	logger, _ := test.NewNullLogger()
	engine := NewEngine(logger, WithWorkers(4))

	mfr := manufacturerItems(50)
	platforms := map[Platform][]PlatformItem{
		PlatformShopify: {{SKU: "GTR-007"}, {SKU: "GTR-010-BA"}},
		PlatformAmazon:  {{SKU: "gtr-007"}},
		PlatformReverb:  {},
	}

	table, err := engine.ComputeMatches(context.Background(), mfr, platforms)
	require.NoError(t, err)

	assert.Equal(t, []Platform{PlatformAmazon, PlatformReverb, PlatformShopify}, table.Platforms)
	require.Len(t, table.Records, len(mfr))
	for i, rec := range table.Records {
		assert.Equal(t, mfr[i].SKU, rec.SKU)
		assert.Len(t, rec.Matches, len(platforms))
	}

	hit := table.Records[7].Matches[PlatformAmazon]
	require.NotNil(t, hit)
	assert.Equal(t, ExactRawConfidence, hit.ConfidenceScore)

	graded := table.Records[10].Matches[PlatformShopify]
	require.NotNil(t, graded)
	assert.Equal(t, "GTR-010-BA", graded.PlatformSKU)

	assert.Nil(t, table.Records[0].Matches[PlatformReverb])
}

func TestComputeMatchesUnknownPlatform(t *testing.T) {
	engine := NewEngine(nil)
	_, err := engine.ComputeMatches(context.Background(), manufacturerItems(1), map[Platform][]PlatformItem{
		Platform("WALMART"): {{SKU: "X"}},
	})
	assert.ErrorIs(t, err, ErrUnknownPlatform)
}

func TestComputeMatchesEmptyManufacturer(t *testing.T) {
	engine := NewEngine(nil)
	_, err := engine.ComputeMatches(context.Background(), nil, map[Platform][]PlatformItem{})
	assert.ErrorIs(t, err, ErrNoManufacturer)
}

func TestComputeMatchesRecoversPerPairFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	engine := NewEngine(logger, WithWorkers(2))
	engine.match = func(mfrRaw string, mfr SkuAttributes, catalog *PlatformCatalog) *MatchResult {
		if mfrRaw == "GTR-001" && catalog.Platform == PlatformEbay {
			panic("boom")
		}
		return FindBestMatch(mfrRaw, mfr, catalog)
	}

	platforms := map[Platform][]PlatformItem{
		PlatformEbay:   {{SKU: "GTR-001"}, {SKU: "GTR-002"}},
		PlatformReverb: {{SKU: "GTR-001"}},
	}
	table, err := engine.ComputeMatches(context.Background(), manufacturerItems(3), platforms)
	require.NoError(t, err)
	require.Len(t, table.Records, 3)

	assert.Nil(t, table.Records[1].Matches[PlatformEbay])
	assert.NotNil(t, table.Records[1].Matches[PlatformReverb])
	assert.NotNil(t, table.Records[2].Matches[PlatformEbay])

	var failures []*logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			failures = append(failures, e)
		}
	}
	require.Len(t, failures, 1)
	assert.Equal(t, "GTR-001", failures[0].Data["manufacturerSku"])
	assert.Equal(t, PlatformEbay, failures[0].Data["platform"])
}

func TestComputeMatchesCancelled(t *testing.T) {
	engine := NewEngine(nil, WithWorkers(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ComputeMatches(ctx, manufacturerItems(20), map[Platform][]PlatformItem{
		PlatformEbay: {{SKU: "GTR-001"}},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithWorkersIgnoresNonPositive(t *testing.T) {
	engine := NewEngine(nil, WithWorkers(0))
	assert.Positive(t, engine.Workers())
}
