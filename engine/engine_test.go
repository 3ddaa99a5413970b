package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/engine"
	"github.com/oscarfg78/ScrapSAE-sub000/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePage describes one node of a simulated site.
type fakePage struct {
	kind     scrapsae.PageKind
	children []string
	related  []string
	crumbs   []string
	title    string
	sku      string
	broken   bool
}

// fakeSite simulates a shop as a page graph and provides the page
// driver, classifier, and link extractor views over it.
type fakeSite struct {
	mu      sync.Mutex
	pages   map[string]fakePage
	visited []string
}

func (f *fakeSite) page() *mock.PageDriver {
	var current string
	return &mock.PageDriver{
		GotoFn: func(ctx context.Context, url string) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			p, ok := f.pages[url]
			if !ok || p.broken {
				return errors.New("net::ERR_NAME_NOT_RESOLVED")
			}
			current = url
			f.visited = append(f.visited, url)
			return nil
		},
		URLFn: func() string { return current },
		QuerySelectorFn: func(_ context.Context, selector string) (scrapsae.Element, error) {
			f.mu.Lock()
			p := f.pages[current]
			f.mu.Unlock()

			var text string
			switch selector {
			case "h1":
				text = p.title
			case ".sku":
				text = p.sku
			}
			if text == "" {
				return nil, nil
			}
			return &mock.Element{
				InnerTextFn: func(context.Context) (string, error) { return text, nil },
			}, nil
		},
		QuerySelectorAllFn: func(context.Context, string) ([]scrapsae.Element, error) {
			return nil, nil
		},
		ContentFn: func(context.Context) (string, error) {
			return "<html><body>" + current + "</body></html>", nil
		},
		ScreenshotFn: func(context.Context) ([]byte, error) { return nil, nil },
		CloseFn:      func() error { return nil },
	}
}

func (f *fakeSite) classifier() *mock.PageClassifier {
	return &mock.PageClassifier{
		ClassifyFn: func(_, pageURL string, _ *scrapsae.SiteSelectors) scrapsae.PageKind {
			f.mu.Lock()
			defer f.mu.Unlock()
			return f.pages[pageURL].kind
		},
	}
}

func (f *fakeSite) links() *mock.LinkExtractor {
	return &mock.LinkExtractor{
		ExtractLinksFn: func(_, baseURL string, selectors []string, priority scrapsae.LinkPriority, source string) ([]scrapsae.DiscoveredLink, error) {
			if len(selectors) == 0 {
				return nil, nil
			}
			f.mu.Lock()
			defer f.mu.Unlock()
			urls := f.pages[baseURL].children
			if source == scrapsae.LinkSourceRelated {
				urls = f.pages[baseURL].related
			}
			var links []scrapsae.DiscoveredLink
			for _, child := range urls {
				links = append(links, scrapsae.DiscoveredLink{
					URL:      child,
					Priority: priority,
					Source:   source,
				})
			}
			return links, nil
		},
		BreadcrumbsFn: func(_, pageURL, _ string) ([]scrapsae.DiscoveredLink, error) {
			f.mu.Lock()
			defer f.mu.Unlock()
			var crumbs []scrapsae.DiscoveredLink
			for _, c := range f.pages[pageURL].crumbs {
				crumbs = append(crumbs, scrapsae.DiscoveredLink{URL: c, Source: scrapsae.LinkSourceBreadcrumb})
			}
			return crumbs, nil
		},
	}
}

func testShop() *fakeSite {
	return &fakeSite{pages: map[string]fakePage{
		"https://shop.test": {
			kind:     scrapsae.PageCategory,
			children: []string{"https://shop.test/cat-b", "https://shop.test/cat-c", "https://shop.test/cat-broken"},
		},
		"https://shop.test/cat-b": {
			kind:     scrapsae.PageCategory,
			children: []string{"https://shop.test/p1", "https://shop.test/p2", "https://shop.test/cat-d"},
		},
		"https://shop.test/cat-c": {
			kind:     scrapsae.PageCategory,
			children: []string{"https://shop.test/p2", "https://shop.test/p3"},
		},
		"https://shop.test/cat-d": {
			kind:     scrapsae.PageCategory,
			children: []string{"https://shop.test/p4"},
		},
		"https://shop.test/cat-broken": {broken: true},
		"https://shop.test/p1":         {kind: scrapsae.PageProduct, title: "Widget One", sku: "W-1"},
		"https://shop.test/p2":         {kind: scrapsae.PageProduct, title: "Widget Two", sku: "W-2"},
		"https://shop.test/p3":         {kind: scrapsae.PageProduct, title: "Widget Three", sku: "W-3"},
		"https://shop.test/p4":         {kind: scrapsae.PageProduct, title: "Too Deep", sku: "W-4"},
	}}
}

func testSiteProfile() *scrapsae.SiteProfile {
	return &scrapsae.SiteProfile{
		ID:      "site-1",
		Name:    "shop",
		BaseURL: "https://shop.test",
		Selectors: scrapsae.SiteSelectors{
			Title:      "h1",
			SKU:        ".sku",
			Navigation: []string{"nav a"},
		},
		Active: true,
	}
}

func testEngine(shop *fakeSite, staged *[]*scrapsae.Product, metrics **scrapsae.ExecutionMetrics) *engine.Engine {
	var mu sync.Mutex
	return &engine.Engine{
		Pool: &mock.BrowserPool{
			OpenPageFn: func(context.Context) (scrapsae.PageDriver, error) {
				return shop.page(), nil
			},
		},
		Classifier: shop.classifier(),
		Links:      shop.links(),
		Staging: &mock.StagingSink{
			UpsertFn: func(_ context.Context, p *scrapsae.Product) (string, bool, error) {
				mu.Lock()
				defer mu.Unlock()
				*staged = append(*staged, p)
				return p.NormalizationKey(), true, nil
			},
		},
		Metrics: &mock.MetricsService{
			SaveMetricsFn: func(_ context.Context, m *scrapsae.ExecutionMetrics) error {
				mu.Lock()
				defer mu.Unlock()
				*metrics = m
				return nil
			},
		},
		Logger:      discardLogger(),
		MaxDepth:    2,
		RetryDelays: []time.Duration{0},
	}
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()

	t.Run("walks the category tree and stages each product once", func(t *testing.T) {
		t.Parallel()

		shop := testShop()
		var staged []*scrapsae.Product
		var metrics *scrapsae.ExecutionMetrics
		e := testEngine(shop, &staged, &metrics)

		result, snapshot, err := e.Run(context.Background(), testSiteProfile(), "exec-1", engine.NewGate())

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, 3, result.ProductsFound)
		assert.Equal(t, 3, result.ProductsCreated)
		assert.Equal(t, 0, result.ProductsSkipped)

		skus := make([]string, 0, len(staged))
		for _, p := range staged {
			skus = append(skus, p.SKU)
		}
		assert.ElementsMatch(t, []string{"W-1", "W-2", "W-3"}, skus)

		// cat-d sits at the depth bound; its product child does not.
		assert.Contains(t, shop.visited, "https://shop.test/cat-d")
		assert.NotContains(t, shop.visited, "https://shop.test/p4")
		// The shared product page is visited exactly once.
		assert.Equal(t, 7, len(shop.visited))

		require.NotNil(t, metrics)
		assert.Equal(t, snapshot.ExecutionID, metrics.ExecutionID)
		assert.Equal(t, 7, metrics.PagesVisited)
		assert.Equal(t, 1, metrics.NavigationErrors)
		assert.Equal(t, 3, metrics.ProductsFound)
		assert.Equal(t, 3, metrics.ProductsWithSKU)
		assert.False(t, metrics.RequiresManualIntervention)
	})

	t.Run("deep discovery reaches related products and recovers the parent category", func(t *testing.T) {
		t.Parallel()

		shop := &fakeSite{pages: map[string]fakePage{
			"https://shop.test": {
				kind:     scrapsae.PageCategory,
				children: []string{"https://shop.test/cat-b", "https://shop.test/cat-c"},
			},
			"https://shop.test/cat-b": {
				kind:     scrapsae.PageCategory,
				children: []string{"https://shop.test/p1", "https://shop.test/p2"},
			},
			// cat-c re-reaches the first product under a different URL.
			"https://shop.test/cat-c": {
				kind:     scrapsae.PageCategory,
				children: []string{"https://shop.test/p1-alt"},
			},
			"https://shop.test/p1": {kind: scrapsae.PageProduct, title: "Widget One", sku: "W-1"},
			"https://shop.test/p2": {
				kind:    scrapsae.PageProduct,
				title:   "Widget Two",
				sku:     "W-2",
				related: []string{"https://shop.test/p3", "https://shop.test/p1-alt"},
			},
			"https://shop.test/p1-alt": {kind: scrapsae.PageProduct, title: "Widget One", sku: "W-1"},
			"https://shop.test/p3": {
				kind:   scrapsae.PageProduct,
				title:  "Widget Three",
				sku:    "W-3",
				crumbs: []string{"https://shop.test", "https://shop.test/cat-d"},
			},
			"https://shop.test/cat-d": {
				kind:     scrapsae.PageCategory,
				children: []string{"https://shop.test/p4"},
			},
			"https://shop.test/p4": {kind: scrapsae.PageProduct, title: "Widget Four", sku: "W-4"},
		}}

		var staged []*scrapsae.Product
		var metrics *scrapsae.ExecutionMetrics
		e := testEngine(shop, &staged, &metrics)
		e.MaxDepth = 3
		site := testSiteProfile()
		site.Selectors.RelatedLink = ".related a"
		site.Selectors.Breadcrumb = ".breadcrumb a"

		result, _, err := e.Run(context.Background(), site, "exec-1", engine.NewGate())
		require.NoError(t, err)

		skus := make(map[string]int)
		for _, p := range staged {
			skus[p.SKU]++
		}
		assert.Equal(t, map[string]int{"W-1": 1, "W-2": 1, "W-3": 1, "W-4": 1}, skus,
			"every product staged exactly once across both discovery paths")

		assert.Contains(t, shop.visited, "https://shop.test/p3", "related link followed")
		assert.Contains(t, shop.visited, "https://shop.test/cat-d", "parent category recovered from breadcrumbs")
		assert.Contains(t, shop.visited, "https://shop.test/p4")
		assert.GreaterOrEqual(t, result.ProductsSkipped, 1, "the shared product is skipped on its second path")
	})

	t.Run("max products cap halts extraction", func(t *testing.T) {
		t.Parallel()

		shop := testShop()
		var staged []*scrapsae.Product
		var metrics *scrapsae.ExecutionMetrics
		e := testEngine(shop, &staged, &metrics)

		site := testSiteProfile()
		site.MaxProducts = 2

		result, _, err := e.Run(context.Background(), site, "exec-1", engine.NewGate())

		require.NoError(t, err)
		assert.Equal(t, 2, result.ProductsFound)
		assert.Len(t, staged, 2)
	})

	t.Run("rejects a site with no usable selectors", func(t *testing.T) {
		t.Parallel()

		shop := testShop()
		var staged []*scrapsae.Product
		var metrics *scrapsae.ExecutionMetrics
		e := testEngine(shop, &staged, &metrics)

		site := testSiteProfile()
		site.Selectors = scrapsae.SiteSelectors{}

		_, _, err := e.Run(context.Background(), site, "exec-1", engine.NewGate())

		assert.Equal(t, scrapsae.EINVALID, scrapsae.ErrorCode(err))
		assert.Empty(t, staged)
	})

	t.Run("cancellation surfaces as ECANCELED with metrics persisted", func(t *testing.T) {
		t.Parallel()

		shop := testShop()
		var staged []*scrapsae.Product
		var metrics *scrapsae.ExecutionMetrics
		e := testEngine(shop, &staged, &metrics)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := e.Run(ctx, testSiteProfile(), "exec-1", engine.NewGate())

		assert.Equal(t, scrapsae.ECANCELED, scrapsae.ErrorCode(err))
		assert.NotNil(t, metrics)
	})

	t.Run("seeds from learned listing examples before the base URL", func(t *testing.T) {
		t.Parallel()

		shop := testShop()
		var staged []*scrapsae.Product
		var metrics *scrapsae.ExecutionMetrics
		e := testEngine(shop, &staged, &metrics)
		e.Patterns = &mock.PatternService{
			FindPatternsBySiteFn: func(_ context.Context, _ string) (*scrapsae.LearnedPatterns, error) {
				return &scrapsae.LearnedPatterns{
					SiteID:          "site-1",
					ListingExamples: []string{"https://shop.test/cat-c"},
				}, nil
			},
		}

		_, _, err := e.Run(context.Background(), testSiteProfile(), "exec-1", engine.NewGate())

		require.NoError(t, err)
		require.NotEmpty(t, shop.visited)
		assert.Equal(t, "https://shop.test/cat-c", shop.visited[0])
	})

	t.Run("sitemap seeding applies the site's exclude patterns", func(t *testing.T) {
		t.Parallel()

		shop := testShop()
		var staged []*scrapsae.Product
		var metrics *scrapsae.ExecutionMetrics
		e := testEngine(shop, &staged, &metrics)
		e.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, filter *scrapsae.URLFilter) ([]string, error) {
				var urls []string
				for _, u := range []string{"https://shop.test/cart", "https://shop.test/cat-c"} {
					if filter.Match(u) {
						urls = append(urls, u)
					}
				}
				return urls, nil
			},
		}
		site := testSiteProfile()
		site.SitemapExcludes = []string{"/cart"}

		_, _, err := e.Run(context.Background(), site, "exec-1", engine.NewGate())

		require.NoError(t, err)
		require.NotEmpty(t, shop.visited)
		assert.Equal(t, "https://shop.test/cat-c", shop.visited[0])
		assert.NotContains(t, shop.visited, "https://shop.test/cart")
	})

	t.Run("flags manual intervention when navigation mostly fails", func(t *testing.T) {
		t.Parallel()

		shop := &fakeSite{pages: map[string]fakePage{
			"https://shop.test": {
				kind: scrapsae.PageCategory,
				children: []string{
					"https://shop.test/dead-1",
					"https://shop.test/dead-2",
					"https://shop.test/dead-3",
				},
			},
			"https://shop.test/dead-1": {broken: true},
			"https://shop.test/dead-2": {broken: true},
			"https://shop.test/dead-3": {broken: true},
		}}
		var staged []*scrapsae.Product
		var metrics *scrapsae.ExecutionMetrics
		e := testEngine(shop, &staged, &metrics)

		_, _, err := e.Run(context.Background(), testSiteProfile(), "exec-1", engine.NewGate())

		require.NoError(t, err)
		require.NotNil(t, metrics)
		assert.True(t, metrics.RequiresManualIntervention)
	})
}
