package sqlite_test

import (
	"context"
	"testing"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetrics(executionID, siteID string) *scrapsae.ExecutionMetrics {
	return &scrapsae.ExecutionMetrics{
		ExecutionID:      executionID,
		SiteID:           siteID,
		StartedAt:        time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		EndedAt:          time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC),
		PagesVisited:     20,
		ProductsFound:    12,
		Timeouts:         1,
		NavigationErrors: 2,
		AvgPageLoad:      750 * time.Millisecond,
		Selectors: map[string]*scrapsae.SelectorMetric{
			"h1.product-name": {Attempts: 12, Successes: 11, Failures: 1, AvgDuration: 5 * time.Millisecond},
		},
	}
}

func TestMetricsService_SaveMetrics(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a snapshot", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricsService(db)
		ctx := context.Background()

		m := testMetrics("exec-1", "site-1")
		require.NoError(t, svc.SaveMetrics(ctx, m))

		found, err := svc.FindMetricsByExecution(ctx, "exec-1")
		require.NoError(t, err)
		assert.Equal(t, m.SiteID, found.SiteID)
		assert.Equal(t, m.StartedAt, found.StartedAt)
		assert.Equal(t, m.EndedAt, found.EndedAt)
		assert.Equal(t, 20, found.PagesVisited)
		assert.Equal(t, 750*time.Millisecond, found.AvgPageLoad)
		require.Contains(t, found.Selectors, "h1.product-name")
		assert.Equal(t, 11, found.Selectors["h1.product-name"].Successes)
	})

	t.Run("replaces prior snapshot for the same execution", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricsService(db)
		ctx := context.Background()

		m := testMetrics("exec-1", "site-1")
		require.NoError(t, svc.SaveMetrics(ctx, m))

		m.ProductsFound = 30
		require.NoError(t, svc.SaveMetrics(ctx, m))

		found, err := svc.FindMetricsByExecution(ctx, "exec-1")
		require.NoError(t, err)
		assert.Equal(t, 30, found.ProductsFound)
	})

	t.Run("preserves a zero end time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricsService(db)
		ctx := context.Background()

		m := testMetrics("exec-1", "site-1")
		m.EndedAt = time.Time{}
		require.NoError(t, svc.SaveMetrics(ctx, m))

		found, err := svc.FindMetricsByExecution(ctx, "exec-1")
		require.NoError(t, err)
		assert.True(t, found.EndedAt.IsZero())
	})

	t.Run("rejects missing execution ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricsService(db)

		err := svc.SaveMetrics(context.Background(), &scrapsae.ExecutionMetrics{SiteID: "site-1"})
		require.Error(t, err)
		assert.Equal(t, scrapsae.EINVALID, scrapsae.ErrorCode(err))
	})
}

func TestMetricsService_FindMetricsByExecution(t *testing.T) {
	t.Parallel()

	t.Run("returns ENOTFOUND for unknown execution", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricsService(db)

		_, err := svc.FindMetricsByExecution(context.Background(), "nope")
		require.Error(t, err)
		assert.Equal(t, scrapsae.ENOTFOUND, scrapsae.ErrorCode(err))
	})
}

func TestMetricsService_FindMetricsBySite(t *testing.T) {
	t.Parallel()

	t.Run("returns snapshots newest first with limit", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewMetricsService(db)
		ctx := context.Background()

		older := testMetrics("exec-1", "site-1")
		older.StartedAt = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
		require.NoError(t, svc.SaveMetrics(ctx, older))

		newer := testMetrics("exec-2", "site-1")
		require.NoError(t, svc.SaveMetrics(ctx, newer))

		other := testMetrics("exec-3", "site-2")
		require.NoError(t, svc.SaveMetrics(ctx, other))

		snapshots, err := svc.FindMetricsBySite(ctx, "site-1", 1)
		require.NoError(t, err)
		require.Len(t, snapshots, 1)
		assert.Equal(t, "exec-2", snapshots[0].ExecutionID)
	})
}
