package models

import (
	"math/rand"
	"time"
)

// RetryPolicy governs retries of upstream fetch attempts: exponential
// backoff from BaseDelay, capped at MaxDelay, with proportional jitter.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64 // 0..1, fraction of the delay randomized
}

// Backoff returns the sleep before the given retry attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			d = p.MaxDelay
			break
		}
	}
	if p.Jitter > 0 {
		f := 1 + p.Jitter*(2*rand.Float64()-1)
		d = time.Duration(float64(d) * f)
	}
	return d
}

// RunContext carries the per-run wiring every component receives at
// construction: no module-level paths, policies, or pool sizes.
type RunContext struct {
	CacheDir string
	Retry    RetryPolicy
	PoolSize int
}
