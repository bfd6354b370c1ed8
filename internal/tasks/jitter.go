package tasks

import (
	"context"
	"math/rand/v2"
	"time"
)

// Jitter spaces out resolution attempts with a uniformly random delay in [Min, Max].
//
// Every call samples again so request timing never settles into a pattern.
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

// NewJitter returns a Jitter with bounds clamped so that 0 <= min <= max.
func NewJitter(min, max time.Duration) *Jitter {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &Jitter{Min: min, Max: max}
}

// Next samples a delay.
func (j *Jitter) Next() time.Duration {
	if j.Max <= j.Min {
		return j.Min
	}
	return j.Min + rand.N(j.Max-j.Min+1)
}

// Wait sleeps for a freshly sampled delay, returning early with the context's error if it is cancelled.
func (j *Jitter) Wait(ctx context.Context) error {
	d := j.Next()
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
