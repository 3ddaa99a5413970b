package mock

import (
	"context"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

var _ scrapsae.SiteService = (*SiteService)(nil)

// SiteService is a mock implementation of scrapsae.SiteService.
type SiteService struct {
	CreateSiteFn   func(ctx context.Context, site *scrapsae.SiteProfile) error
	FindSiteByIDFn func(ctx context.Context, id string) (*scrapsae.SiteProfile, error)
	FindSitesFn    func(ctx context.Context, filter scrapsae.SiteFilter) ([]*scrapsae.SiteProfile, error)
	UpdateSiteFn   func(ctx context.Context, id string, upd scrapsae.SiteUpdate) (*scrapsae.SiteProfile, error)
	DeleteSiteFn   func(ctx context.Context, id string) error
}

func (s *SiteService) CreateSite(ctx context.Context, site *scrapsae.SiteProfile) error {
	return s.CreateSiteFn(ctx, site)
}

func (s *SiteService) FindSiteByID(ctx context.Context, id string) (*scrapsae.SiteProfile, error) {
	return s.FindSiteByIDFn(ctx, id)
}

func (s *SiteService) FindSites(ctx context.Context, filter scrapsae.SiteFilter) ([]*scrapsae.SiteProfile, error) {
	return s.FindSitesFn(ctx, filter)
}

func (s *SiteService) UpdateSite(ctx context.Context, id string, upd scrapsae.SiteUpdate) (*scrapsae.SiteProfile, error) {
	return s.UpdateSiteFn(ctx, id, upd)
}

func (s *SiteService) DeleteSite(ctx context.Context, id string) error {
	return s.DeleteSiteFn(ctx, id)
}
