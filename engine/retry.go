package engine

import (
	"context"
	"errors"
	"time"
)

// GotoFunc is the signature for a navigation function.
type GotoFunc func(ctx context.Context, url string) error

// DefaultRetryDelays returns the backoff delays for navigation retries:
// 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// GotoWithRetry attempts a navigation with exponential backoff. Each
// timeout attempt is reported to the recorder as a timeout metric rather
// than aborting the run; other navigation failures count as navigation
// errors only once, after the final attempt fails.
func GotoWithRetry(ctx context.Context, url string, nav GotoFunc, rec *Recorder, delays []time.Duration) error {
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := nav(ctx, url)
		if err == nil {
			return nil
		}
		lastErr = err

		if rec != nil && isTimeout(err) {
			rec.Timeout()
		}

		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	if rec != nil {
		rec.NavigationError()
	}
	return lastErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
