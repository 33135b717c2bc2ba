package reload

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/c360/mapengine/pkg/retry"
)

// backoffConfig captures the Reload Controller's specific retry shape:
// base 200ms, doubling, jitter capped at an absolute 50ms (not a
// percentage of the current delay, unlike pkg/retry.Do's built-in
// jitter), overall delay capped at 5s.
type backoffConfig struct {
	MaxAttempts int
	Base        time.Duration
	MaxDelay    time.Duration
	JitterMax   time.Duration
}

func defaultBackoff() backoffConfig {
	return backoffConfig{
		MaxAttempts: 3,
		Base:        200 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		JitterMax:   50 * time.Millisecond,
	}
}

var (
	jitterMu     sync.Mutex
	jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

func (c backoffConfig) delay(attempt int) time.Duration {
	d := c.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d > c.MaxDelay {
			d = c.MaxDelay
			break
		}
	}

	jitterMu.Lock()
	jitter := time.Duration(jitterSource.Int63n(int64(c.JitterMax) + 1))
	jitterMu.Unlock()

	d += jitter
	if d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// withRetry runs fn up to cfg.MaxAttempts times with backoffConfig's
// jitter shape, honoring retry.NonRetryable markers (reused verbatim
// from pkg/retry so error classification stays consistent across the
// module) and ctx cancellation.
func withRetry(ctx context.Context, cfg backoffConfig, fn func() error) error {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if retry.IsNonRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("reload: retry cancelled: %w", ctx.Err())
		}
		if attempt == maxAttempts-1 {
			break
		}

		timer := time.NewTimer(cfg.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("reload: retry cancelled during backoff: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("reload: failed after %d attempts: %w", maxAttempts, lastErr)
}
