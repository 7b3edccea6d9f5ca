// Package resilience retries connection setup to the external posting stores
// and the query cache with exponential backoff.
package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

type Backoff struct {
	Attempts int
	Initial  time.Duration
	Max      time.Duration
	Jitter   float64
}

// DefaultBackoff suits service start-up: a handful of attempts over a few
// seconds while containers come up.
var DefaultBackoff = Backoff{
	Attempts: 4,
	Initial:  250 * time.Millisecond,
	Max:      4 * time.Second,
	Jitter:   0.1,
}

// Retry calls fn until it succeeds, b.Attempts calls have failed or ctx is
// done. The returned error wraps the last failure.
func Retry(ctx context.Context, name string, b Backoff, fn func(ctx context.Context) error) error {
	if b.Attempts < 1 {
		b.Attempts = 1
	}
	logger := slog.Default().With("component", "retry", "operation", name)
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			if attempt > 1 {
				logger.Info("succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == b.Attempts {
			return fmt.Errorf("%s failed after %d attempts: %w", name, attempt, err)
		}
		delay := b.delay(attempt)
		logger.Warn("operation failed, retrying",
			"attempt", attempt,
			"max_attempts", b.Attempts,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s aborted during backoff: %w", name, ctx.Err())
		}
	}
}

func (b Backoff) delay(attempt int) time.Duration {
	d := float64(b.Initial) * math.Pow(2, float64(attempt-1))
	d += d * b.Jitter * (2*rand.Float64() - 1)
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	if d < 0 {
		return b.Initial
	}
	return time.Duration(d)
}
