package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sku-reconciliation-service/internal/matching"
)

func TestMoneyConversions(t *testing.T) {
	assert.False(t, NullMoney(nil).Valid)
	assert.Nil(t, FloatPtr(decimal.NullDecimal{}))

	v := 129.99
	m := NullMoney(&v)
	require.True(t, m.Valid)
	assert.Equal(t, "129.99", m.Decimal.String())
	assert.Equal(t, 129.99, *FloatPtr(m))
}

func TestPlatformListScan(t *testing.T) {
	list := PlatformList{matching.PlatformAmazon, matching.PlatformEbay}
	raw, err := list.Value()
	require.NoError(t, err)

	var scanned PlatformList
	require.NoError(t, scanned.Scan(raw))
	assert.Equal(t, list, scanned)

	require.NoError(t, scanned.Scan(`["REVERB"]`))
	assert.Equal(t, PlatformList{matching.PlatformReverb}, scanned)

	assert.Error(t, scanned.Scan(42))
}

func TestRecordRowToMatchRecord(t *testing.T) {
	upc := "0123"
	row := MatchRecordRow{
		ManufacturerSKU: "GTR-100",
		UPC:             &upc,
		MAP:             decimal.NewNullDecimal(decimal.NewFromInt(500)),
		Matches: []PlatformMatch{
			{Platform: matching.PlatformEbay, PlatformSKU: "GTR-100", ConfidenceScore: 100, MatchType: matching.MatchTypeExactNormalized},
		},
	}

	rec := row.ToMatchRecord([]matching.Platform{matching.PlatformAmazon, matching.PlatformEbay})
	assert.Equal(t, "GTR-100", rec.SKU)
	assert.Equal(t, "0123", rec.UPC)
	assert.Equal(t, 500.0, *rec.MAP)
	assert.Nil(t, rec.DealerPrice)
	require.Contains(t, rec.Matches, matching.PlatformAmazon)
	assert.Nil(t, rec.Matches[matching.PlatformAmazon])
	require.NotNil(t, rec.Matches[matching.PlatformEbay])
	assert.Equal(t, 100, rec.Matches[matching.PlatformEbay].ConfidenceScore)
}

func TestAuditLogBuilder(t *testing.T) {
	runID := uuid.New()
	log := NewAuditLog("tenant-1", ActionRunStart, ResourceMatchRun).
		WithActor(ActorUser, "").
		WithResource(runID.String()).
		WithMetadata(JSONB{"platforms": 3}).
		Build()

	assert.Equal(t, ActorSystem, log.ActorType)
	assert.Equal(t, runID.String(), *log.ResourceID)
	assert.Equal(t, 3, log.Metadata["platforms"])

	log = NewAuditLog("tenant-1", ActionRunStart, ResourceMatchRun).WithActor(ActorUser, "user-7").Build()
	assert.Equal(t, ActorUser, log.ActorType)
	assert.Equal(t, "user-7", log.ActorID)
}

func TestHistoryKey(t *testing.T) {
	assert.Equal(t, "GTR-100_EBAY_GTR-100-BA", HistoryKey("GTR-100", matching.PlatformEbay, "GTR-100-BA"))
}
