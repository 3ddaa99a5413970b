package mock

import (
	"context"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

var _ scrapsae.Strategy = (*Strategy)(nil)

// Strategy is a mock implementation of scrapsae.Strategy.
type Strategy struct {
	NameFn    func() string
	ExecuteFn func(ctx context.Context, page scrapsae.PageDriver, site *scrapsae.SiteProfile, executionID string) ([]*scrapsae.Product, error)
}

func (s *Strategy) Name() string {
	return s.NameFn()
}

func (s *Strategy) Execute(ctx context.Context, page scrapsae.PageDriver, site *scrapsae.SiteProfile, executionID string) ([]*scrapsae.Product, error) {
	return s.ExecuteFn(ctx, page, site, executionID)
}
