package engine

import (
	"context"
	"log/slog"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Compile-time interface verification.
var _ scrapsae.Strategy = (*HybridStrategy)(nil)

// HybridStrategy switches extraction mode on page context: a variant
// table means a family page, item containers mean a listing, anything
// else is treated as a direct detail page. Sites with mixed markup
// enable it instead of ordering the three modes blindly.
type HybridStrategy struct {
	families *FamiliesStrategy
	list     *ListStrategy
	direct   *DirectStrategy
	logger   *slog.Logger
}

// NewHybridStrategy creates a HybridStrategy over the three base modes.
func NewHybridStrategy(families *FamiliesStrategy, list *ListStrategy, direct *DirectStrategy, logger *slog.Logger) *HybridStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridStrategy{families: families, list: list, direct: direct, logger: logger}
}

// Name returns the strategy identifier.
func (s *HybridStrategy) Name() string { return scrapsae.StrategyHybrid }

// Execute probes the page and delegates to the matching mode.
func (s *HybridStrategy) Execute(ctx context.Context, page scrapsae.PageDriver, site *scrapsae.SiteProfile, executionID string) ([]*scrapsae.Product, error) {
	if sel := site.Selectors.VariantRow; sel != "" {
		rows, err := page.QuerySelectorAll(ctx, sel)
		if err == nil && len(rows) > 0 {
			s.logger.Debug("hybrid: variant table detected", "url", page.URL())
			return s.families.Execute(ctx, page, site, executionID)
		}
	}

	if sel := site.Selectors.ProductItem; sel != "" {
		items, err := page.QuerySelectorAll(ctx, sel)
		if err == nil && len(items) > 0 {
			s.logger.Debug("hybrid: listing detected", "url", page.URL(), "items", len(items))
			return s.list.Execute(ctx, page, site, executionID)
		}
	}

	return s.direct.Execute(ctx, page, site, executionID)
}
