package engine

import (
	"context"
	"log/slog"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/google/uuid"
)

// maxListPages bounds pagination inside a single listing extraction.
const maxListPages = 25

// Compile-time interface verification.
var _ scrapsae.Strategy = (*ListStrategy)(nil)

// ListStrategy extracts products from paginated listing pages: one
// record per item container, following the next-page chain until it
// runs out or the page bound is reached.
type ListStrategy struct {
	rec    *Recorder
	gate   *Gate
	logger *slog.Logger
}

// NewListStrategy creates a ListStrategy bound to a run's recorder and
// pause gate. Pagination is a page transition, so the gate is checked
// before every next-page navigation.
func NewListStrategy(rec *Recorder, gate *Gate, logger *slog.Logger) *ListStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListStrategy{rec: rec, gate: gate, logger: logger}
}

// Name returns the strategy identifier.
func (s *ListStrategy) Name() string { return scrapsae.StrategyList }

// Execute walks the listing's pages, extracting visible items.
func (s *ListStrategy) Execute(ctx context.Context, page scrapsae.PageDriver, site *scrapsae.SiteProfile, executionID string) ([]*scrapsae.Product, error) {
	itemSelector := site.Selectors.ProductItem
	if itemSelector == "" {
		return nil, nil
	}

	var products []*scrapsae.Product
	for pageNum := 0; pageNum < maxListPages; pageNum++ {
		items, err := s.extractPage(ctx, page, site, executionID)
		if err != nil {
			return products, err
		}
		products = append(products, items...)

		next, ok := s.nextPageURL(ctx, page, site)
		if !ok {
			break
		}
		if s.gate != nil {
			if err := s.gate.Wait(ctx); err != nil {
				return products, err
			}
		}
		begin := time.Now()
		if err := page.Goto(ctx, next); err != nil {
			s.rec.NavigationError()
			s.logger.Debug("pagination failed", "url", next, "err", err)
			break
		}
		s.rec.PageVisited(time.Since(begin))
	}

	return products, nil
}

// extractPage reads the currently visible item containers.
func (s *ListStrategy) extractPage(ctx context.Context, page scrapsae.PageDriver, site *scrapsae.SiteProfile, executionID string) ([]*scrapsae.Product, error) {
	begin := time.Now()
	items, err := page.QuerySelectorAll(ctx, site.Selectors.ProductItem)
	s.rec.SelectorAttempt(site.Selectors.ProductItem, err == nil && len(items) > 0, time.Since(begin))
	if err != nil {
		return nil, err
	}

	var products []*scrapsae.Product
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return products, err
		}
		p := s.extractItem(ctx, item, page.URL(), site, executionID)
		if p != nil {
			products = append(products, p)
		}
	}
	return products, nil
}

// extractItem builds a product record from one listing item container.
func (s *ListStrategy) extractItem(ctx context.Context, item scrapsae.Element, pageURL string, site *scrapsae.SiteProfile, executionID string) *scrapsae.Product {
	p := &scrapsae.Product{
		ID:          uuid.New().String(),
		SiteID:      site.ID,
		ExecutionID: executionID,
		SourceURL:   pageURL,
		CreatedAt:   time.Now().UTC(),
	}

	if title, ok := childText(ctx, item, site.Selectors.Title); ok {
		p.Title = title
	}
	if price, ok := childText(ctx, item, site.Selectors.Price); ok {
		p.Price = price
	}
	if sku, ok := childText(ctx, item, site.Selectors.SKU); ok {
		p.SKU = sku
	}
	if href, ok := childAttr(ctx, item, site.Selectors.ProductLink, "href"); ok {
		p.SourceURL = resolveAgainst(pageURL, href)
	}
	if src, ok := childAttr(ctx, item, site.Selectors.Image, "src"); ok {
		p.ImageURL = resolveAgainst(pageURL, src)
	}

	// An item with neither a title nor its own URL carries nothing worth
	// staging.
	if p.Title == "" && p.SourceURL == pageURL {
		return nil
	}
	return p
}

// nextPageURL resolves the next page through the next-page chain.
func (s *ListStrategy) nextPageURL(ctx context.Context, page scrapsae.PageDriver, site *scrapsae.SiteProfile) (string, bool) {
	for _, selector := range site.Selectors.Chain(scrapsae.FieldNextPage) {
		begin := time.Now()
		el, err := page.QuerySelector(ctx, selector)
		found := err == nil && el != nil
		s.rec.SelectorAttempt(selector, found, time.Since(begin))
		if !found {
			continue
		}
		href, err := el.GetAttribute(ctx, "href")
		if err != nil || href == "" {
			continue
		}
		return resolveAgainst(page.URL(), href), true
	}
	return "", false
}
