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

func testSite() *scrapsae.SiteProfile {
	return &scrapsae.SiteProfile{
		Name:    "acme-industrial",
		BaseURL: "https://shop.acme.example",
		Strategies: []scrapsae.StrategyDefinition{
			{Name: "direct", Priority: 1, Enabled: true},
			{Name: "list", Priority: 2, Enabled: true},
		},
		Selectors: scrapsae.SiteSelectors{
			Title:      "h1.product-name",
			Price:      ".price",
			SKU:        ".sku",
			Navigation: []string{"nav.categories a"},
			Fallbacks:  map[string][]string{"title": {"h1[itemprop=name]"}},
		},
		MaxProducts:       500,
		NavigationTimeout: 30 * time.Second,
		StepDelay:         500 * time.Millisecond,
		SitemapExcludes:   []string{"/cart", "/account/"},
		Active:            true,
	}
}

func TestSiteService_CreateSite(t *testing.T) {
	t.Parallel()

	t.Run("creates site with generated ID and timestamps", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSiteService(db)
		ctx := context.Background()

		site := testSite()
		err := svc.CreateSite(ctx, site)
		require.NoError(t, err)

		assert.NotEmpty(t, site.ID, "ID should be generated")
		assert.False(t, site.CreatedAt.IsZero(), "CreatedAt should be set")
		assert.False(t, site.UpdatedAt.IsZero(), "UpdatedAt should be set")
	})

	t.Run("returns error for invalid site", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSiteService(db)
		ctx := context.Background()

		err := svc.CreateSite(ctx, &scrapsae.SiteProfile{})
		require.Error(t, err)
		assert.Equal(t, scrapsae.EINVALID, scrapsae.ErrorCode(err))
	})
}

func TestSiteService_FindSiteByID(t *testing.T) {
	t.Parallel()

	t.Run("round-trips selectors strategies and durations", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSiteService(db)
		ctx := context.Background()

		site := testSite()
		require.NoError(t, svc.CreateSite(ctx, site))

		found, err := svc.FindSiteByID(ctx, site.ID)
		require.NoError(t, err)
		assert.Equal(t, site.Name, found.Name)
		assert.Equal(t, site.BaseURL, found.BaseURL)
		assert.Equal(t, site.Strategies, found.Strategies)
		assert.Equal(t, "h1.product-name", found.Selectors.Title)
		assert.Equal(t, []string{"h1[itemprop=name]"}, found.Selectors.Fallbacks["title"])
		assert.Equal(t, 30*time.Second, found.NavigationTimeout)
		assert.Equal(t, 500*time.Millisecond, found.StepDelay)
		assert.Equal(t, 500, found.MaxProducts)
		assert.Equal(t, []string{"/cart", "/account/"}, found.SitemapExcludes)
		assert.True(t, found.Active)
	})

	t.Run("returns ENOTFOUND for missing site", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSiteService(db)

		_, err := svc.FindSiteByID(context.Background(), "nope")
		require.Error(t, err)
		assert.Equal(t, scrapsae.ENOTFOUND, scrapsae.ErrorCode(err))
	})
}

func TestSiteService_FindSites(t *testing.T) {
	t.Parallel()

	t.Run("filters by active flag", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSiteService(db)
		ctx := context.Background()

		active := testSite()
		require.NoError(t, svc.CreateSite(ctx, active))

		inactive := testSite()
		inactive.Name = "dormant"
		inactive.Active = false
		require.NoError(t, svc.CreateSite(ctx, inactive))

		wantActive := true
		sites, err := svc.FindSites(ctx, scrapsae.SiteFilter{Active: &wantActive})
		require.NoError(t, err)
		require.Len(t, sites, 1)
		assert.Equal(t, active.ID, sites[0].ID)
	})

	t.Run("filters by name", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSiteService(db)
		ctx := context.Background()

		site := testSite()
		require.NoError(t, svc.CreateSite(ctx, site))

		name := "acme-industrial"
		sites, err := svc.FindSites(ctx, scrapsae.SiteFilter{Name: &name})
		require.NoError(t, err)
		require.Len(t, sites, 1)

		name = "other"
		sites, err = svc.FindSites(ctx, scrapsae.SiteFilter{Name: &name})
		require.NoError(t, err)
		assert.Empty(t, sites)
	})
}

func TestSiteService_UpdateSite(t *testing.T) {
	t.Parallel()

	t.Run("applies partial update", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSiteService(db)
		ctx := context.Background()

		site := testSite()
		require.NoError(t, svc.CreateSite(ctx, site))

		timeout := 45 * time.Second
		selectors := site.Selectors
		require.NoError(t, selectors.Promote(scrapsae.FieldTitle, "h1.pdp-title"))

		updated, err := svc.UpdateSite(ctx, site.ID, scrapsae.SiteUpdate{
			NavigationTimeout: &timeout,
			Selectors:         &selectors,
		})
		require.NoError(t, err)
		assert.Equal(t, 45*time.Second, updated.NavigationTimeout)
		assert.Equal(t, "h1.pdp-title", updated.Selectors.Title)
		assert.Equal(t, "h1.product-name", updated.Selectors.Fallbacks["title"][0])
		assert.Equal(t, site.Name, updated.Name, "unspecified fields are unchanged")

		// Persisted, not just returned.
		found, err := svc.FindSiteByID(ctx, site.ID)
		require.NoError(t, err)
		assert.Equal(t, "h1.pdp-title", found.Selectors.Title)
	})

	t.Run("returns ENOTFOUND for missing site", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSiteService(db)

		name := "renamed"
		_, err := svc.UpdateSite(context.Background(), "nope", scrapsae.SiteUpdate{Name: &name})
		require.Error(t, err)
		assert.Equal(t, scrapsae.ENOTFOUND, scrapsae.ErrorCode(err))
	})
}

func TestSiteService_DeleteSite(t *testing.T) {
	t.Parallel()

	t.Run("deletes existing site", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSiteService(db)
		ctx := context.Background()

		site := testSite()
		require.NoError(t, svc.CreateSite(ctx, site))
		require.NoError(t, svc.DeleteSite(ctx, site.ID))

		_, err := svc.FindSiteByID(ctx, site.ID)
		assert.Equal(t, scrapsae.ENOTFOUND, scrapsae.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for missing site", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSiteService(db)

		err := svc.DeleteSite(context.Background(), "nope")
		require.Error(t, err)
		assert.Equal(t, scrapsae.ENOTFOUND, scrapsae.ErrorCode(err))
	})
}
