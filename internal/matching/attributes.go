package matching

import (
	"strings"
	"sync"
)

// SkuAttributes is the decomposition of a raw SKU used for scoring.
type SkuAttributes struct {
	OriginalSKU   string `json:"originalSku"`
	NormalizedSKU string `json:"normalizedSku"`
	CoreSKU       string `json:"coreSku"`
	Grade         *Grade `json:"grade,omitempty"`
	Color         string `json:"color,omitempty"`
}

// GradeType returns the grade code or an empty string.
func (a SkuAttributes) GradeType() string {
	if a.Grade == nil {
		return ""
	}
	return a.Grade.Type
}

// Extractor derives SkuAttributes and caches them for the lifetime of a run.
type Extractor struct {
	normalizer *NormalizeCache

	mu    sync.RWMutex
	cache map[string]SkuAttributes
}

// NewExtractor creates an extractor with a fresh normalize cache
func NewExtractor() *Extractor {
	return &Extractor{
		normalizer: NewNormalizeCache(),
		cache:      make(map[string]SkuAttributes),
	}
}

// Normalizer exposes the run's normalize cache.
func (e *Extractor) Normalizer() *NormalizeCache {
	return e.normalizer
}

// Extract returns the attributes of raw, computing them once per run.
func (e *Extractor) Extract(raw string) SkuAttributes {
	e.mu.RLock()
	attrs, ok := e.cache[raw]
	e.mu.RUnlock()
	if ok {
		return attrs
	}

	attrs = extract(raw, e.normalizer.Normalize)
	e.mu.Lock()
	if existing, ok := e.cache[raw]; ok {
		attrs = existing
	} else {
		e.cache[raw] = attrs
	}
	e.mu.Unlock()
	return attrs
}

// Extract decomposes raw without any caching.
func Extract(raw string) SkuAttributes {
	return extract(raw, Normalize)
}

func extract(raw string, normalize func(string) string) SkuAttributes {
	if raw == "" {
		return SkuAttributes{}
	}

	upper := strings.ToUpper(raw)
	normalized := normalize(upper)
	grade := DetectGrade(upper)

	working := normalized
	if grade != nil {
		working = stripGradeToken(working, grade.Type)
	}
	working, color := detectColor(working)

	return SkuAttributes{
		OriginalSKU:   raw,
		NormalizedSKU: normalized,
		CoreSKU:       ExtractCore(working),
		Grade:         grade,
		Color:         color,
	}
}
