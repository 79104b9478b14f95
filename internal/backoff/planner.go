// Package backoff computes the delay between supervised attempts.
//
// Delays grow exponentially from a base value, are capped, and get a
// random jitter so that several supervisors failing together do not retry
// in lockstep. A delay suggested by the child's own output replaces the
// computed value for that attempt only.
package backoff

import (
	"context"
	"math/rand/v2"
	"time"
)

// DefaultJitterFraction is the maximum relative jitter applied to a computed delay.
const DefaultJitterFraction = 0.5

// Planner computes retry delays. The zero JitterFraction disables jitter;
// use NewPlanner for the defaults.
type Planner struct {
	Base time.Duration
	Cap  time.Duration

	// JitterFraction bounds the random offset to ±fraction of the raw delay.
	JitterFraction float64

	// Rand returns a value in [0, 1). Defaults to math/rand/v2.
	Rand func() float64
}

// NewPlanner returns a Planner with the default jitter fraction.
func NewPlanner(base, maxDelay time.Duration) Planner {
	return Planner{Base: base, Cap: maxDelay, JitterFraction: DefaultJitterFraction}
}

// Raw returns min(Base * 2^attempt, Cap) without jitter, saturating at Cap
// instead of overflowing.
func (p Planner) Raw(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if p.Base <= 0 || p.Cap <= 0 {
		return 0
	}
	if p.Base >= p.Cap {
		return p.Cap
	}
	// base*2^attempt > cap  <=>  base > cap/2^attempt
	if attempt >= 62 || p.Base > p.Cap>>uint(attempt) {
		return p.Cap
	}
	return p.Base << uint(attempt)
}

// NextDelay returns the delay to wait after the failed attempt with the
// given 0-based index. A suggested delay is honored exactly, bounded by Cap,
// and is never jittered.
func (p Planner) NextDelay(attempt int, suggested time.Duration, hasSuggestion bool) time.Duration {
	if hasSuggestion {
		return clamp(suggested, p.Cap).Truncate(time.Millisecond)
	}

	raw := p.Raw(attempt)
	if p.JitterFraction <= 0 || raw == 0 {
		return raw.Truncate(time.Millisecond)
	}

	r := rand.Float64
	if p.Rand != nil {
		r = p.Rand
	}
	offset := (2*r() - 1) * p.JitterFraction * float64(raw)
	return clamp(raw+time.Duration(offset), p.Cap).Truncate(time.Millisecond)
}

func clamp(d, limit time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if limit >= 0 && d > limit {
		return limit
	}
	return d
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
