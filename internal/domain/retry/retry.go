package retry

import (
	"context"
	"time"
)

// Policy retries a call up to MaxRetries additional times.
// The wait before retry n (1-based) is InitialDelay * BackoffFactor^(n-1).
type Policy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// Default is three extra attempts starting at 100ms and doubling.
func Default() Policy {
	return Policy{MaxRetries: 3, InitialDelay: 100 * time.Millisecond, BackoffFactor: 2}
}

// Attempts is the maximum number of calls the policy makes.
func (p Policy) Attempts() int {
	return max(p.MaxRetries, 0) + 1
}

// Delay returns the wait before the given retry (1-based).
func (p Policy) Delay(retry int) time.Duration {
	if retry < 1 || p.InitialDelay <= 0 {
		return 0
	}
	factor := p.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	d := float64(p.InitialDelay)
	for range retry - 1 {
		d *= factor
	}
	return time.Duration(d)
}

// Do calls fn until it succeeds, the attempts run out, or ctx is done.
// onRetry, if non-nil, is called with the failed attempt number before each wait.
// It returns the number of calls made and the last error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error, onRetry func(attempt int, err error)) (int, error) {
	var lastErr error
	attempts := p.Attempts()

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr == nil {
				lastErr = err
			}
			return attempt - 1, lastErr
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}
		if attempt == attempts {
			break
		}

		if onRetry != nil {
			onRetry(attempt, lastErr)
		}

		if d := p.Delay(attempt); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return attempt, lastErr
			case <-timer.C:
			}
		}
	}

	return attempts, lastErr
}
