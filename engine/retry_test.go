package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oscarfg78/ScrapSAE-sub000/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGotoWithRetry(t *testing.T) {
	t.Parallel()

	noDelays := []time.Duration{0, 0, 0}

	t.Run("succeeds on first attempt", func(t *testing.T) {
		t.Parallel()

		calls := 0
		nav := func(_ context.Context, _ string) error {
			calls++
			return nil
		}

		rec := engine.NewRecorder("e", "s")
		err := engine.GotoWithRetry(context.Background(), "https://example.com", nav, rec, noDelays)

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, rec.Snapshot().NavigationErrors)
	})

	t.Run("recovers from transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		nav := func(_ context.Context, _ string) error {
			calls++
			if calls < 3 {
				return errors.New("net::ERR_CONNECTION_RESET")
			}
			return nil
		}

		rec := engine.NewRecorder("e", "s")
		err := engine.GotoWithRetry(context.Background(), "https://example.com", nav, rec, noDelays)

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		// A recovered navigation is not an error in the metrics.
		assert.Equal(t, 0, rec.Snapshot().NavigationErrors)
	})

	t.Run("records one navigation error after exhausting retries", func(t *testing.T) {
		t.Parallel()

		calls := 0
		navErr := errors.New("dns failure")
		nav := func(_ context.Context, _ string) error {
			calls++
			return navErr
		}

		rec := engine.NewRecorder("e", "s")
		err := engine.GotoWithRetry(context.Background(), "https://example.com", nav, rec, noDelays)

		require.ErrorIs(t, err, navErr)
		assert.Equal(t, 4, calls) // initial attempt + 3 retries
		assert.Equal(t, 1, rec.Snapshot().NavigationErrors)
	})

	t.Run("records every timed-out attempt", func(t *testing.T) {
		t.Parallel()

		nav := func(_ context.Context, _ string) error {
			return context.DeadlineExceeded
		}

		rec := engine.NewRecorder("e", "s")
		err := engine.GotoWithRetry(context.Background(), "https://example.com", nav, rec, []time.Duration{0})

		require.Error(t, err)
		m := rec.Snapshot()
		assert.Equal(t, 2, m.Timeouts)
		assert.Equal(t, 1, m.NavigationErrors)
	})

	t.Run("stops retrying when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		nav := func(_ context.Context, _ string) error {
			calls++
			cancel()
			return errors.New("boom")
		}

		err := engine.GotoWithRetry(ctx, "https://example.com", nav, nil, []time.Duration{time.Hour})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}
