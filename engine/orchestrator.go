package engine

import (
	"context"
	"log/slog"
	"sort"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Orchestrator runs extraction strategies in priority order with
// fallback. The first strategy returning a non-empty result wins;
// results are never merged. A strategy error is logged and absorbed, so
// the orchestrator itself never fails.
type Orchestrator struct {
	strategies map[string]scrapsae.Strategy
	logger     *slog.Logger
}

// NewOrchestrator creates an Orchestrator over the given strategies.
func NewOrchestrator(logger *slog.Logger, strategies ...scrapsae.Strategy) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	m := make(map[string]scrapsae.Strategy, len(strategies))
	for _, s := range strategies {
		m[s.Name()] = s
	}
	return &Orchestrator{strategies: m, logger: logger}
}

// Execute resolves the site's configured strategy order (or the default
// order), filters to enabled strategies, and tries each in ascending
// priority until one yields products. If every strategy yields nothing
// or fails, it returns an empty slice and no error.
func (o *Orchestrator) Execute(ctx context.Context, page scrapsae.PageDriver, site *scrapsae.SiteProfile, executionID string) []*scrapsae.Product {
	for _, def := range o.order(site) {
		strategy, ok := o.strategies[def.Name]
		if !ok {
			o.logger.Warn("unknown strategy configured", "site", site.Name, "strategy", def.Name)
			continue
		}

		products, err := strategy.Execute(ctx, page, site, executionID)
		if err != nil {
			o.logger.Warn("strategy failed",
				"site", site.Name,
				"strategy", def.Name,
				"url", page.URL(),
				"err", err,
			)
			continue
		}
		if len(products) > 0 {
			o.logger.Debug("strategy succeeded",
				"site", site.Name,
				"strategy", def.Name,
				"products", len(products),
			)
			return products
		}
		o.logger.Debug("strategy yielded nothing", "site", site.Name, "strategy", def.Name)
	}
	return nil
}

// order returns the site's enabled strategies sorted by ascending
// priority, falling back to the default order when none are configured.
func (o *Orchestrator) order(site *scrapsae.SiteProfile) []scrapsae.StrategyDefinition {
	defs := site.Strategies
	if len(defs) == 0 {
		defs = scrapsae.DefaultStrategyOrder()
	}

	enabled := make([]scrapsae.StrategyDefinition, 0, len(defs))
	for _, def := range defs {
		if def.Enabled {
			enabled = append(enabled, def)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})
	return enabled
}
