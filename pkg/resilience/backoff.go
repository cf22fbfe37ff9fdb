package resilience

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy produces the waits between attempts.
// Implementations must be safe for concurrent use.
type BackoffStrategy interface {
	// Delays returns the wait before each of n retries, in order.
	Delays(n int) []time.Duration
}

// ConstantBackoff waits the same interval before every retry.
type ConstantBackoff struct {
	Interval time.Duration
}

func (c ConstantBackoff) Delays(n int) []time.Duration {
	if n <= 0 {
		return nil
	}
	out := make([]time.Duration, n)
	for i := range out {
		out[i] = max(c.Interval, 0)
	}
	return out
}

const (
	// Shape constants of the decorrelated jitter curve.
	jitterPFactor       = 4.0
	jitterScalingFactor = 1 / 1.4
)

// DecorrelatedJitterBackoff spreads retries of many clients apart while keeping
// an exponential trend. Median is roughly the median of the first delay.
//
// Each step draws t = attempt + U[0,1), evaluates 2^t * tanh(sqrt(4t)) and
// waits the difference from the previous step scaled by Median/1.4.
type DecorrelatedJitterBackoff struct {
	Median time.Duration
	// MaxDelay caps a single wait. Zero means no cap.
	MaxDelay time.Duration
	// Rand returns a float in [0,1). Defaults to math/rand/v2.
	Rand func() float64
}

func (d DecorrelatedJitterBackoff) Delays(n int) []time.Duration {
	if n <= 0 {
		return nil
	}
	rnd := d.Rand
	if rnd == nil {
		rnd = rand.Float64
	}

	limit := float64(math.MaxInt64 - 1000)
	if d.MaxDelay > 0 {
		limit = float64(d.MaxDelay)
	}

	out := make([]time.Duration, n)
	prev := 0.0
	for i := range n {
		t := float64(i) + rnd()
		next := math.Pow(2, t) * math.Tanh(math.Sqrt(jitterPFactor*t))
		delay := (next - prev) * jitterScalingFactor * float64(d.Median)
		out[i] = time.Duration(math.Max(0, math.Min(delay, limit)))
		prev = next
	}
	return out
}

// newBackoff picks the schedule for cfg.
func newBackoff(cfg RetryConfig) BackoffStrategy {
	if cfg.Jitter && cfg.BaseDelay > 0 {
		return DecorrelatedJitterBackoff{Median: cfg.BaseDelay}
	}
	return ConstantBackoff{Interval: cfg.BaseDelay}
}
