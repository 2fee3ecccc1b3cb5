package matching

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var normalizedPattern = regexp.MustCompile(`^[A-Z0-9]+(-[A-Z0-9]+)*$`)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"strips punctuation and spaces", "a$ b@c 123", "ABC123"},
		{"collapses and trims hyphens", "--abc--123--", "ABC-123"},
		{"numeric text", "12345", "12345"},
		{"empty", "", ""},
		{"only hyphens", "---", ""},
		{"hyphens separated by junk", "A-$-B", "A-B"},
		{"lowercase with channel prefix", "shu-gtr-100", "SHU-GTR-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalizeIsIdempotentAndCanonical(t *testing.T) {
	inputs := []string{
		"a$ b@c 123", "--abc--123--", " EMG 81 ", "gtr_100-bk", "-x-", "ÄBC-1", "  ", "A--B--C",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
		if once != "" {
			assert.Regexp(t, normalizedPattern, once, "input %q", in)
		}
	}
}

func TestNormalizeCache(t *testing.T) {
	cache := NewNormalizeCache()

	assert.Equal(t, "ABC-123", cache.Normalize("abc--123"))
	assert.Equal(t, "ABC-123", cache.Normalize("abc--123"))
	assert.Equal(t, 1, cache.Len())

	cache.Reset()
	assert.Equal(t, 0, cache.Len())
}

func TestNormalizeCacheConcurrentUse(t *testing.T) {
	cache := NewNormalizeCache()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, raw := range []string{"emg-81", "shu gtr 100", "GTR-100-BA"} {
				cache.Normalize(raw)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 3, cache.Len())
	assert.Equal(t, "SHUGTR100", cache.Normalize("shu gtr 100"))
}
