package scrapsae

import "context"

// Strategy names. A site's profile may reorder, disable or extend these;
// DefaultStrategyOrder applies when a profile configures none.
const (
	StrategyDirect   = "direct"
	StrategyList     = "list"
	StrategyFamilies = "families"
	StrategyHybrid   = "hybrid"
)

// DefaultStrategyOrder returns the strategy order used when a site
// profile configures no strategies.
func DefaultStrategyOrder() []StrategyDefinition {
	return []StrategyDefinition{
		{Name: StrategyDirect, Priority: 1, Enabled: true},
		{Name: StrategyList, Priority: 2, Enabled: true},
		{Name: StrategyFamilies, Priority: 3, Enabled: true},
	}
}

// Strategy is a pluggable extraction algorithm for one page archetype.
// Execute extracts whatever products the current page offers; returning
// an empty slice means the strategy does not apply to this page. Errors
// are absorbed by the orchestrator and never fatal to a run.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "direct", "list").
	Name() string

	// Execute extracts products from the page the driver is currently on.
	Execute(ctx context.Context, page PageDriver, site *SiteProfile, executionID string) ([]*Product, error)
}
