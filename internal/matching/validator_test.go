package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validate(mfr, plat string, platform Platform) Validation {
	return Validate(mfr, Extract(mfr), plat, Extract(plat), platform)
}

func TestValidateEmptySku(t *testing.T) {
	v := validate("", "GTR-100", PlatformAmazon)
	assert.Equal(t, Validation{VerdictInvalid, 0, "Empty SKU provided to validateMatch"}, v)

	v = validate("GTR-100", "", PlatformAmazon)
	assert.Equal(t, VerdictInvalid, v.Verdict)
	assert.Zero(t, v.Confidence)
}

func TestValidateExactRawMatch(t *testing.T) {
	for _, sku := range []string{"EMG-81", "gtr-100-ba", "A", "x y z"} {
		v := validate(sku, sku, PlatformEbay)
		assert.Equal(t, ExactRawConfidence, v.Confidence, sku)
		assert.Equal(t, VerdictValid, v.Verdict, sku)
	}

	v := validate("emg-81", "EMG-81", PlatformSellerCloud)
	assert.Equal(t, ExactRawConfidence, v.Confidence)
	assert.Equal(t, "Exact raw match (case-insensitive)", v.Reason)
}

func TestValidateExactNormalizedMatch(t *testing.T) {
	v := validate("gtr 100", "GTR100", PlatformEbay)
	assert.Equal(t, Validation{VerdictValid, ExactNormalizedConfidence, "Exact normalized match (GTR100)"}, v)
}

func TestValidateShortSkus(t *testing.T) {
	v := validate("AB", "AC", PlatformEbay)
	assert.Equal(t, Validation{VerdictValid, 76, "Short SKU near match (dist 1, len 2)"}, v)

	v = validate("AB", "ABC", PlatformEbay)
	assert.Equal(t, 74, v.Confidence)

	v = validate("AB", "ABCD", PlatformEbay)
	assert.Equal(t, Validation{VerdictInvalid, 0, "SKU too short (MfrN:AB, PlatN:ABCD)"}, v)
}

func TestValidateScenarios(t *testing.T) {
	t.Run("identical SellerCloud SKU is an exact match", func(t *testing.T) {
		v := validate("EMG-81", "EMG-81", PlatformSellerCloud)
		assert.Equal(t, VerdictValid, v.Verdict)
		assert.Equal(t, 100, v.Confidence)
	})

	t.Run("Reverb channel prefix", func(t *testing.T) {
		v := validate("GTR-100", "SHU-GTR-100", PlatformReverb)
		assert.Equal(t, VerdictValid, v.Verdict)
		assert.GreaterOrEqual(t, v.Confidence, 95)
		assert.Contains(t, v.Reason, "Reverb SHU prefix, base match")
	})

	t.Run("platform-only grade on same core", func(t *testing.T) {
		v := validate("GTR-100", "GTR-100-BA", PlatformShopify)
		assert.Equal(t, VerdictValid, v.Verdict)
		assert.GreaterOrEqual(t, v.Confidence, ValidThreshold)
		assert.LessOrEqual(t, v.Confidence, MaxScoredConfidence)
		assert.Contains(t, v.Reason, "Expected B-Stock diff (Plat (BA))")
		assert.Contains(t, v.Reason, "Cores matched but attributes differed.")
	})

	t.Run("color mismatch on identical core", func(t *testing.T) {
		v := validate("GTR-100-BK", "GTR-100-WH", PlatformAmazon)
		assert.NotEqual(t, VerdictValid, v.Verdict)
		assert.Equal(t, VerdictNeedsReview, v.Verdict)
		assert.Less(t, v.Confidence, ValidThreshold)
		assert.Contains(t, v.Reason, "Color mismatch (BLACK vs WHITE)")
	})

	t.Run("unrelated SKUs", func(t *testing.T) {
		v := validate("ABC-1", "XYZ-999", PlatformAmazon)
		assert.Equal(t, VerdictInvalid, v.Verdict)
		assert.Less(t, v.Confidence, ReviewThreshold)
		assert.Contains(t, v.Reason, "Low Confidence: ")
	})
}

func TestValidateGradeMismatchOnIdenticalCore(t *testing.T) {
	v := validate("GTR-100-BA", "GTR-100-BB", PlatformEbay)
	assert.Equal(t, VerdictNeedsReview, v.Verdict)
	assert.Equal(t, conflictingAttributeCap, v.Confidence)
	assert.Contains(t, v.Reason, "B-Stock type mismatch (BA vs BB)")
}

func TestValidatePlatformOverrideReplacesLowScore(t *testing.T) {
	// Containment scores 88; SellerCloud's EMG convention replaces it.
	v := validate("SHU-X100", "EMG-SHU-X100", PlatformSellerCloud)
	assert.Equal(t, VerdictValid, v.Verdict)
	assert.Equal(t, 96, v.Confidence)
	assert.Equal(t, "Platform Specific: SC EMG prefix, exact mfr SKU (Core/Attr: 96)", v.Reason)
}

func TestValidateScoresNeverExceedCap(t *testing.T) {
	pairs := [][2]string{
		{"GTR-100", "GTR-100-BA"},
		{"GTR-100", "SHU-GTR-100"},
		{"GTR-100-BA-BK", "GTR-100-BA-BK-FOL"},
	}
	for _, p := range pairs {
		v := validate(p[0], p[1], PlatformReverb)
		assert.LessOrEqual(t, v.Confidence, MaxScoredConfidence, "%v", p)
	}
}
