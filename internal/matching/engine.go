package matching

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownPlatform = errors.New("unknown platform")
	ErrNoManufacturer  = errors.New("manufacturer catalog is empty")
)

// ManufacturerItem is one row of the manufacturer catalog.
type ManufacturerItem struct {
	SKU         string   `json:"manufacturerSku"`
	UPC         string   `json:"upc,omitempty"`
	MSRP        *float64 `json:"msrp,omitempty"`
	MAP         *float64 `json:"map,omitempty"`
	DealerPrice *float64 `json:"dealerPrice,omitempty"`
}

// MatchRecord holds the per-platform best matches for one manufacturer item.
// A nil entry means no acceptable listing was found on that platform.
type MatchRecord struct {
	ManufacturerItem
	Matches map[Platform]*MatchResult `json:"matches"`
}

// MatchTable is the output of a matching run, one record per manufacturer
// item in input order.
type MatchTable struct {
	Platforms []Platform    `json:"platforms"`
	Records   []MatchRecord `json:"records"`
}

type matchFunc func(mfrRaw string, mfr SkuAttributes, catalog *PlatformCatalog) *MatchResult

// Engine runs batch matching over a worker pool.
type Engine struct {
	logger  logrus.FieldLogger
	workers int
	match   matchFunc
}

// Option configures an Engine
type Option func(*Engine)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine creates a matching engine
func NewEngine(logger logrus.FieldLogger, opts ...Option) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	e := &Engine{
		logger:  logger,
		workers: runtime.NumCPU(),
		match:   FindBestMatch,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the configured worker count
func (e *Engine) Workers() int {
	return e.workers
}

// ComputeMatches finds the best listing on every supplied platform for every
// manufacturer item. A failure while scoring one pair is logged and leaves
// that pair without a match; the rest of the batch continues.
func (e *Engine) ComputeMatches(ctx context.Context, manufacturer []ManufacturerItem, platforms map[Platform][]PlatformItem) (*MatchTable, error) {
	if len(manufacturer) == 0 {
		return nil, ErrNoManufacturer
	}
	for p := range platforms {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, string(p))
		}
	}

	start := time.Now()
	extractor := NewExtractor()

	order := make([]Platform, 0, len(platforms))
	catalogs := make(map[Platform]*PlatformCatalog, len(platforms))
	totalItems := 0
	for _, p := range AllPlatforms {
		items, ok := platforms[p]
		if !ok {
			continue
		}
		order = append(order, p)
		catalogs[p] = NewPlatformCatalog(p, items, extractor)
		totalItems += len(items)
	}

	e.logger.WithFields(logrus.Fields{
		"manufacturerItems": len(manufacturer),
		"platforms":         len(order),
		"platformItems":     totalItems,
		"workers":           e.workers,
	}).Info("Starting SKU matching")

	records := make([]MatchRecord, len(manufacturer))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < min(e.workers, len(manufacturer)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i] = e.matchItem(manufacturer[i], order, catalogs, extractor)
			}
		}()
	}

dispatch:
	for i := range manufacturer {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"records":    len(records),
		"cacheSize":  extractor.Normalizer().Len(),
		"durationMs": time.Since(start).Milliseconds(),
	}).Info("SKU matching complete")

	return &MatchTable{Platforms: order, Records: records}, nil
}

func (e *Engine) matchItem(item ManufacturerItem, order []Platform, catalogs map[Platform]*PlatformCatalog, extractor *Extractor) MatchRecord {
	record := MatchRecord{
		ManufacturerItem: item,
		Matches:          make(map[Platform]*MatchResult, len(order)),
	}
	attrs := extractor.Extract(item.SKU)
	for _, p := range order {
		record.Matches[p] = e.matchPair(item.SKU, attrs, catalogs[p])
	}
	return record
}

func (e *Engine) matchPair(sku string, attrs SkuAttributes, catalog *PlatformCatalog) (result *MatchResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"manufacturerSku": sku,
				"platform":        catalog.Platform,
				"panic":           fmt.Sprint(r),
			}).Error("Failed to match SKU on platform")
			result = nil
		}
	}()
	if sku == "" {
		return nil
	}
	return e.match(sku, attrs, catalog)
}
