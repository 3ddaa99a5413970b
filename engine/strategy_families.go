package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ scrapsae.Strategy = (*FamiliesStrategy)(nil)

// FamiliesStrategy extracts product families: a single family page whose
// variant table yields one normalized record per row, all sharing the
// family page's identity as their parent key.
type FamiliesStrategy struct {
	rec    *Recorder
	logger *slog.Logger
}

// NewFamiliesStrategy creates a FamiliesStrategy bound to a run's recorder.
func NewFamiliesStrategy(rec *Recorder, logger *slog.Logger) *FamiliesStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &FamiliesStrategy{rec: rec, logger: logger}
}

// Name returns the strategy identifier.
func (s *FamiliesStrategy) Name() string { return scrapsae.StrategyFamilies }

// Execute emits one record per variant row.
func (s *FamiliesStrategy) Execute(ctx context.Context, page scrapsae.PageDriver, site *scrapsae.SiteProfile, executionID string) ([]*scrapsae.Product, error) {
	rowSelector := site.Selectors.VariantRow
	if rowSelector == "" {
		return nil, nil
	}

	begin := time.Now()
	rows, err := page.QuerySelectorAll(ctx, rowSelector)
	s.rec.SelectorAttempt(rowSelector, err == nil && len(rows) > 0, time.Since(begin))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	reader := newFieldReader(page, &site.Selectors, s.rec)
	familyTitle, _ := reader.text(ctx, scrapsae.FieldTitle)

	// The family identity shared by every variant: the family SKU when
	// the page carries one, otherwise the page URL.
	parentKey := page.URL()
	if familySKU, ok := reader.text(ctx, scrapsae.FieldSKU); ok {
		parentKey = familySKU
	}

	var products []*scrapsae.Product
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return products, err
		}

		p := &scrapsae.Product{
			ID:          uuid.New().String(),
			SiteID:      site.ID,
			ExecutionID: executionID,
			Title:       familyTitle,
			SourceURL:   page.URL(),
			ParentKey:   parentKey,
			CreatedAt:   time.Now().UTC(),
		}
		if sku, ok := childText(ctx, row, site.Selectors.SKU); ok {
			p.SKU = sku
		}
		if title, ok := childText(ctx, row, site.Selectors.Title); ok {
			p.Title = title
		}
		if price, ok := childText(ctx, row, site.Selectors.Price); ok {
			p.Price = price
		}

		// A row without its own SKU would collide with its siblings on
		// the URL key; skip it rather than emit a false duplicate.
		if p.SKU == "" {
			s.logger.Debug("variant row without SKU skipped", "url", page.URL(), "row", i)
			continue
		}
		products = append(products, p)
	}

	return products, nil
}

// childText reads trimmed text from the first descendant match.
func childText(ctx context.Context, el scrapsae.Element, selector string) (string, bool) {
	if selector == "" || el == nil {
		return "", false
	}
	child, err := el.QuerySelector(ctx, selector)
	if err != nil || child == nil {
		return "", false
	}
	text, err := child.InnerText(ctx)
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// childAttr reads an attribute from the first descendant match.
func childAttr(ctx context.Context, el scrapsae.Element, selector, name string) (string, bool) {
	if selector == "" || el == nil {
		return "", false
	}
	child, err := el.QuerySelector(ctx, selector)
	if err != nil || child == nil {
		return "", false
	}
	value, err := child.GetAttribute(ctx, name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}
