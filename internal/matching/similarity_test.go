package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "ABC", 3},
		{"kitten", "sitting", 3},
		{"GTR-100", "GTR-100", 0},
		{"ABC-1", "XYZ-999", 6},
		{"héllo", "hello", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EditDistance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, EditDistance(tt.b, tt.a), "symmetric %q vs %q", tt.b, tt.a)
	}
}

func TestEditDistanceIdentity(t *testing.T) {
	for _, s := range []string{"", "A", "EMG-81", "SHU-GTR-100-BA"} {
		assert.Zero(t, EditDistance(s, s))
	}
}

func TestLongestCommonSubstring(t *testing.T) {
	assert.Equal(t, "", LongestCommonSubstring("", "ABC"))
	assert.Equal(t, "", LongestCommonSubstring("ABC", ""))
	assert.Equal(t, "", LongestCommonSubstring("ABC", "XYZ"))
	assert.Equal(t, "ABCDEF", LongestCommonSubstring("ABCDEFXX", "ABCDEFGH"))
	assert.Equal(t, "GTR100", LongestCommonSubstring("XGTR100", "GTR100Y"))
	// First maximal run in the first argument wins ties.
	assert.Equal(t, "AB", LongestCommonSubstring("ABXCD", "CDYAB"))
}
