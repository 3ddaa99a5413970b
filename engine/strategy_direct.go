package engine

import (
	"context"
	"log/slog"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ scrapsae.Strategy = (*DirectStrategy)(nil)

// DirectStrategy extracts a single product from a detail page. It is the
// first strategy in the default order: on non-product pages the title
// chain yields nothing and the orchestrator falls through.
type DirectStrategy struct {
	rec       *Recorder
	converter scrapsae.Converter
	extractor scrapsae.Extractor
	logger    *slog.Logger
}

// NewDirectStrategy creates a DirectStrategy bound to a run's recorder.
func NewDirectStrategy(rec *Recorder, converter scrapsae.Converter, extractor scrapsae.Extractor, logger *slog.Logger) *DirectStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectStrategy{rec: rec, converter: converter, extractor: extractor, logger: logger}
}

// Name returns the strategy identifier.
func (s *DirectStrategy) Name() string { return scrapsae.StrategyDirect }

// Execute reads the detail page's fields through their fallback chains.
func (s *DirectStrategy) Execute(ctx context.Context, page scrapsae.PageDriver, site *scrapsae.SiteProfile, executionID string) ([]*scrapsae.Product, error) {
	reader := newFieldReader(page, &site.Selectors, s.rec)

	title, ok := reader.text(ctx, scrapsae.FieldTitle)
	if !ok {
		return nil, nil
	}

	product := &scrapsae.Product{
		ID:          uuid.New().String(),
		SiteID:      site.ID,
		ExecutionID: executionID,
		Title:       title,
		SourceURL:   page.URL(),
		CreatedAt:   time.Now().UTC(),
	}
	if sku, ok := reader.text(ctx, scrapsae.FieldSKU); ok {
		product.SKU = sku
	}
	if price, ok := reader.text(ctx, scrapsae.FieldPrice); ok {
		product.Price = price
	}
	if img, ok := reader.attr(ctx, scrapsae.FieldImage, "src"); ok {
		product.ImageURL = resolveAgainst(page.URL(), img)
	}
	product.Description = s.description(ctx, page, reader)

	return []*scrapsae.Product{product}, nil
}

// description reads the description chain and normalizes it to Markdown.
// When every selector fails it falls back to boilerplate-free main
// content extraction over the whole page.
func (s *DirectStrategy) description(ctx context.Context, page scrapsae.PageDriver, reader *fieldReader) string {
	for _, selector := range reader.sel.Chain(scrapsae.FieldDescription) {
		el, err := page.QuerySelector(ctx, selector)
		if err != nil || el == nil {
			continue
		}
		html, err := el.HTML(ctx)
		if err != nil || html == "" {
			continue
		}
		if md := s.toMarkdown(html); md != "" {
			return md
		}
	}

	if s.extractor == nil {
		return ""
	}
	html, err := page.Content(ctx)
	if err != nil {
		return ""
	}
	extracted, err := s.extractor.Extract(html)
	if err != nil || extracted.ContentHTML == "" {
		return ""
	}
	return s.toMarkdown(extracted.ContentHTML)
}

func (s *DirectStrategy) toMarkdown(html string) string {
	if s.converter == nil {
		return html
	}
	md, err := s.converter.Convert(html)
	if err != nil {
		s.logger.Debug("description conversion failed", "err", err)
		return ""
	}
	return md
}
