package sqlite_test

import (
	"context"
	"testing"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternService(t *testing.T) {
	t.Parallel()

	t.Run("round-trips learned patterns", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewPatternService(db)
		ctx := context.Background()

		patterns := &scrapsae.LearnedPatterns{
			SiteID:          "site-1",
			ProductTemplate: "https://shop.acme.example/p/*",
			ListingTemplate: "https://shop.acme.example/c/*",
			ProductExamples: []string{"https://shop.acme.example/p/1", "https://shop.acme.example/p/2"},
			ListingExamples: []string{"https://shop.acme.example/c/widgets"},
			NavigationHint:  "home > categories > products",
			Confidence:      0.9,
		}
		require.NoError(t, svc.SavePatterns(ctx, patterns))
		assert.False(t, patterns.UpdatedAt.IsZero())

		found, err := svc.FindPatternsBySite(ctx, "site-1")
		require.NoError(t, err)
		assert.Equal(t, patterns.ProductTemplate, found.ProductTemplate)
		assert.Equal(t, patterns.ProductExamples, found.ProductExamples)
		assert.Equal(t, patterns.ListingExamples, found.ListingExamples)
		assert.Equal(t, patterns.NavigationHint, found.NavigationHint)
		assert.InDelta(t, 0.9, found.Confidence, 1e-9)
	})

	t.Run("save replaces the prior row", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewPatternService(db)
		ctx := context.Background()

		require.NoError(t, svc.SavePatterns(ctx, &scrapsae.LearnedPatterns{
			SiteID:          "site-1",
			ProductTemplate: "https://shop.acme.example/old/*",
		}))
		require.NoError(t, svc.SavePatterns(ctx, &scrapsae.LearnedPatterns{
			SiteID:          "site-1",
			ProductTemplate: "https://shop.acme.example/p/*",
			Confidence:      0.8,
		}))

		found, err := svc.FindPatternsBySite(ctx, "site-1")
		require.NoError(t, err)
		assert.Equal(t, "https://shop.acme.example/p/*", found.ProductTemplate)
	})

	t.Run("returns ENOTFOUND for unknown site", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewPatternService(db)

		_, err := svc.FindPatternsBySite(context.Background(), "nope")
		require.Error(t, err)
		assert.Equal(t, scrapsae.ENOTFOUND, scrapsae.ErrorCode(err))
	})

	t.Run("rejects patterns without a site ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewPatternService(db)

		err := svc.SavePatterns(context.Background(), &scrapsae.LearnedPatterns{})
		require.Error(t, err)
		assert.Equal(t, scrapsae.EINVALID, scrapsae.ErrorCode(err))
	})
}
