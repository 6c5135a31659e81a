package infra

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// DefaultJitter is the ± ratio applied around each backoff step
const DefaultJitter = 0.2

// Backoff yields exponentially growing delays, capped at maxDelay, with a random
// spread of ±jitter around each step. The delay of attempt n is min*mult^n
type Backoff struct {
	minDelay   time.Duration
	maxDelay   time.Duration
	multiplier float64
	jitter     float64

	mu       sync.Mutex
	attempts int
	waited   time.Duration
}

func NewBackoff(min, max time.Duration, mult float64) *Backoff {
	return &Backoff{
		minDelay:   min,
		maxDelay:   max,
		multiplier: mult,
		jitter:     DefaultJitter,
	}
}

// WithJitter overrides the spread ratio; 0 gives deterministic delays
func (b *Backoff) WithJitter(ratio float64) *Backoff {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jitter = math.Max(0, math.Min(ratio, 1))
	return b
}

// Next returns the delay before the next attempt and counts the attempt
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	step := float64(b.minDelay) * math.Pow(b.multiplier, float64(b.attempts))
	step = math.Min(step, float64(b.maxDelay))
	b.attempts++

	spread := (rand.Float64()*2 - 1) * b.jitter * step
	wait := max(time.Duration(step+spread), b.minDelay)

	b.waited += wait
	return wait
}

// Wait sleeps for the next delay or until ctx is done
func (b *Backoff) Wait(ctx context.Context) error {
	timer := time.NewTimer(b.Next())
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts = 0
	b.waited = 0
}

func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Waited is the total delay handed out since the last Reset
func (b *Backoff) Waited() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waited
}
