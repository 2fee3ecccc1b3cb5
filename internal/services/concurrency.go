package services

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// RunConcurrencyConfig limits how many match runs a tenant may have in flight
type RunConcurrencyConfig struct {
	MaxConcurrentRuns int           // Max concurrent runs per tenant
	RunTimeout        time.Duration // Max duration for a single run
	QueueTimeout      time.Duration // Max time Acquire waits for a slot
}

// DefaultRunConcurrencyConfig returns the service defaults
func DefaultRunConcurrencyConfig() *RunConcurrencyConfig {
	return &RunConcurrencyConfig{
		MaxConcurrentRuns: 2,
		RunTimeout:        30 * time.Minute,
		QueueTimeout:      time.Minute,
	}
}

// TenantSemaphore hands out per-tenant run slots
type TenantSemaphore struct {
	mu         sync.Mutex
	sems       map[string]chan struct{}
	config     *RunConcurrencyConfig
	activeRuns map[string]int
}

// NewTenantSemaphore creates a new tenant semaphore
func NewTenantSemaphore(config *RunConcurrencyConfig) *TenantSemaphore {
	if config == nil {
		config = DefaultRunConcurrencyConfig()
	}
	if config.MaxConcurrentRuns <= 0 {
		config.MaxConcurrentRuns = 1
	}
	return &TenantSemaphore{
		sems:       make(map[string]chan struct{}),
		config:     config,
		activeRuns: make(map[string]int),
	}
}

// Config returns the limits in effect
func (ts *TenantSemaphore) Config() RunConcurrencyConfig {
	return *ts.config
}

func (ts *TenantSemaphore) semFor(tenantID string) chan struct{} {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if sem, ok := ts.sems[tenantID]; ok {
		return sem
	}
	sem := make(chan struct{}, ts.config.MaxConcurrentRuns)
	ts.sems[tenantID] = sem
	return sem
}

func (ts *TenantSemaphore) track(tenantID string, sem chan struct{}) func() {
	ts.mu.Lock()
	ts.activeRuns[tenantID]++
	ts.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ts.mu.Lock()
			ts.activeRuns[tenantID]--
			ts.mu.Unlock()
			<-sem
		})
	}
}

// Acquire waits up to the queue timeout for a slot. The returned release
// function must be called when the run ends.
func (ts *TenantSemaphore) Acquire(ctx context.Context, tenantID string) (func(), error) {
	queueCtx, cancel := context.WithTimeout(ctx, ts.config.QueueTimeout)
	defer cancel()

	sem := ts.semFor(tenantID)
	select {
	case sem <- struct{}{}:
		return ts.track(tenantID, sem), nil
	case <-queueCtx.Done():
		return nil, fmt.Errorf("timeout waiting for run slot: tenant=%s", tenantID)
	}
}

// TryAcquire takes a slot without blocking
func (ts *TenantSemaphore) TryAcquire(tenantID string) (func(), bool) {
	sem := ts.semFor(tenantID)
	select {
	case sem <- struct{}{}:
		return ts.track(tenantID, sem), true
	default:
		return nil, false
	}
}

// ActiveRuns returns the number of runs holding a slot for the tenant
func (ts *TenantSemaphore) ActiveRuns(tenantID string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.activeRuns[tenantID]
}

// GetStats returns concurrency statistics
func (ts *TenantSemaphore) GetStats() map[string]interface{} {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	active := make(map[string]int, len(ts.activeRuns))
	for k, v := range ts.activeRuns {
		if v > 0 {
			active[k] = v
		}
	}

	return map[string]interface{}{
		"maxConcurrentRuns":  ts.config.MaxConcurrentRuns,
		"runTimeout":         ts.config.RunTimeout.String(),
		"activeRunsByTenant": active,
	}
}
