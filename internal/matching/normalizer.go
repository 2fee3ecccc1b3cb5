package matching

import (
	"strings"
	"sync"
)

// Normalize returns the canonical form of a raw SKU: uppercase, only
// [A-Z0-9-], hyphen runs collapsed and no leading or trailing hyphen.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	lastHyphen := false
	for _, r := range strings.ToUpper(raw) {
		switch {
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r == '-':
			if !lastHyphen {
				b.WriteByte('-')
			}
			lastHyphen = true
		}
	}
	return trimOuterHyphen(b.String())
}

// trimOuterHyphen removes at most one hyphen from each end.
func trimOuterHyphen(s string) string {
	s = strings.TrimPrefix(s, "-")
	return strings.TrimSuffix(s, "-")
}

// NormalizeCache memoizes Normalize by raw text. A cache belongs to a single
// matching run and is safe for concurrent use.
type NormalizeCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewNormalizeCache creates an empty cache
func NewNormalizeCache() *NormalizeCache {
	return &NormalizeCache{entries: make(map[string]string)}
}

// Normalize returns the cached normalized form of raw, computing it on a miss.
func (c *NormalizeCache) Normalize(raw string) string {
	c.mu.RLock()
	v, ok := c.entries[raw]
	c.mu.RUnlock()
	if ok {
		return v
	}

	v = Normalize(raw)
	c.mu.Lock()
	if existing, ok := c.entries[raw]; ok {
		v = existing
	} else {
		c.entries[raw] = v
	}
	c.mu.Unlock()
	return v
}

// Len returns the number of cached entries
func (c *NormalizeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every cached entry.
func (c *NormalizeCache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]string)
	c.mu.Unlock()
}
