// Package stats tracks an approximate unique-visitor count over session IDs.
// A bloom filter keeps the memory cost flat no matter how much traffic the
// storefront sees; the count is only ever sampled into the log and is never
// consulted for any user-facing decision.
package stats

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"
)

// Visitors estimates the number of distinct session IDs observed. The bloom
// filter admits false positives, so the estimate can only undercount.
type Visitors struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	count  uint64
}

// NewVisitors creates a visitor estimator sized for the expected number of
// distinct sessions at the given false-positive rate.
func NewVisitors(capacity uint, fpr float64) *Visitors {
	return &Visitors{filter: bloom.NewWithEstimates(capacity, fpr)}
}

// Observe records one session ID and reports whether it was new.
func (v *Visitors) Observe(sessionID string) bool {
	if sessionID == "" {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.filter.TestOrAddString(sessionID) {
		return false
	}
	v.count++
	return true
}

// Count returns the current unique-visitor estimate.
func (v *Visitors) Count() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.count
}

// LogPeriodically samples the estimate into the log until ctx is cancelled.
func (v *Visitors) LogPeriodically(ctx context.Context, interval time.Duration, lg *zap.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				lg.Info("Unique visitors", zap.Uint64("estimate", v.Count()))
			}
		}
	}()
}
