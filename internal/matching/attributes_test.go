package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectGrade(t *testing.T) {
	tests := []struct {
		sku  string
		want *Grade
	}{
		{"ITEM-BA", &Grade{Type: "BA", Multiplier: 0.95}},
		{"item-bb", &Grade{Type: "BB", Multiplier: 0.90}},
		{"BC-ITEM", &Grade{Type: "BC", Multiplier: 0.85}},
		{"ITEM-BD-2", &Grade{Type: "BD", Multiplier: 0.80}},
		{"AA-ITEM", &Grade{Type: "AA", Multiplier: 0.98, IsSpecial: true}},
		{"ITEM-NOACC", &Grade{Type: "NOACC", Multiplier: 0.85, IsSpecial: true}},
		{"ITEM123", nil},
		{"", nil},
		// Codes are matched as token prefixes, so "-BAR" reads as grade BA.
		{"ITEM-BAR", &Grade{Type: "BA", Multiplier: 0.95}},
	}
	for _, tt := range tests {
		t.Run(tt.sku, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectGrade(tt.sku))
		})
	}
}

func TestDetectGradeFirstTableEntryWins(t *testing.T) {
	g := DetectGrade("X-BB-BA")
	require.NotNil(t, g)
	assert.Equal(t, "BA", g.Type)
}

func TestExtractEmpty(t *testing.T) {
	assert.Equal(t, SkuAttributes{}, Extract(""))
	assert.Equal(t, SkuAttributes{}, NewExtractor().Extract(""))
}

func TestExtract(t *testing.T) {
	tests := []struct {
		raw        string
		normalized string
		core       string
		grade      string
		color      string
	}{
		{"EMG-81", "EMG-81", "81", "", ""},
		{"GTR-100", "GTR-100", "GTR-100", "", ""},
		{"gtr-100-ba", "GTR-100-BA", "GTR-100", "BA", ""},
		{"BA-GTR-100", "BA-GTR-100", "GTR-100", "BA", ""},
		{"GTR-BA-100", "GTR-BA-100", "GTR-100", "BA", ""},
		{"GTR-100-BK", "GTR-100-BK", "GTR-100", "", "BLACK"},
		{"GTR-100-BLACK", "GTR-100-BLACK", "GTR-100", "", "BLACK"},
		{"GTR-100-BA-WH", "GTR-100-BA-WH", "GTR-100", "BA", "WHITE"},
		{"ABCRED", "ABCRED", "ABC", "", "RED"},
		{"MODEL5BK", "MODEL5BK", "MODEL5BK", "", ""},
		{"SHU-GTR-100", "SHU-GTR-100", "GTR-100", "", ""},
		{"GTR-100-FOL", "GTR-100-FOL", "GTR-100", "", ""},
		{"360H-ABC-123", "360H-ABC-123", "ABC-123", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			a := Extract(tt.raw)
			assert.Equal(t, tt.raw, a.OriginalSKU)
			assert.Equal(t, tt.normalized, a.NormalizedSKU)
			assert.Equal(t, tt.core, a.CoreSKU)
			assert.Equal(t, tt.grade, a.GradeType())
			assert.Equal(t, tt.color, a.Color)
		})
	}
}

func TestExtractCore(t *testing.T) {
	assert.Equal(t, "", ExtractCore(""))
	assert.Equal(t, "GTR-100", ExtractCore("BOSS-GTR-100"))
	// Only one prefix is removed.
	assert.Equal(t, "SHU-X1", ExtractCore("EMG-SHU-X1"))
	assert.Equal(t, "X", ExtractCore("X-FOLIOS"))
	assert.Equal(t, "X", ExtractCore("X-FOLIO"))
	assert.Equal(t, "GTR-100", ExtractCore("1SV-GTR-100-FOL"))
}

func TestExtractorCachesPerRun(t *testing.T) {
	ex := NewExtractor()
	first := ex.Extract("gtr-100-ba")
	second := ex.Extract("gtr-100-ba")

	assert.Equal(t, first, second)
	assert.Same(t, first.Grade, second.Grade)
	assert.Equal(t, 1, ex.Normalizer().Len())
}
