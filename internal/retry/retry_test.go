package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig() *Config {
	return &Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, BackoffFactor: 2}
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	res := NewRetrier(fastConfig()).Do(context.Background(), "save", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	assert.NoError(t, res.LastError)
	assert.Equal(t, 3, res.Attempts)
}

func TestDoGivesUp(t *testing.T) {
	boom := errors.New("boom")
	res := NewRetrier(fastConfig()).Do(context.Background(), "save", func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, res.LastError, boom)
	assert.Contains(t, res.LastError.Error(), "max retries exceeded for save")
	assert.Equal(t, 3, res.Attempts)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	bad := errors.New("constraint violation")
	res := NewRetrier(fastConfig()).Do(context.Background(), "save", func(ctx context.Context) error {
		return Permanent(bad)
	})

	assert.ErrorIs(t, res.LastError, bad)
	assert.Equal(t, 1, res.Attempts)
}

func TestCalculateBackoffIsCapped(t *testing.T) {
	r := NewRetrier(&Config{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second, BackoffFactor: 2})
	assert.Equal(t, time.Second, r.CalculateBackoff(0))
	assert.Equal(t, 2*time.Second, r.CalculateBackoff(1))
	assert.Equal(t, 3*time.Second, r.CalculateBackoff(5))
}

func TestShouldRetry(t *testing.T) {
	r := NewRetrier(nil)
	assert.False(t, r.ShouldRetry(nil))
	assert.False(t, r.ShouldRetry(context.Canceled))
	assert.True(t, r.ShouldRetry(errors.New("timeout")))
}
