package mock

import (
	"context"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

var _ scrapsae.PatternService = (*PatternService)(nil)

// PatternService is a mock implementation of scrapsae.PatternService.
type PatternService struct {
	FindPatternsBySiteFn func(ctx context.Context, siteID string) (*scrapsae.LearnedPatterns, error)
	SavePatternsFn       func(ctx context.Context, patterns *scrapsae.LearnedPatterns) error
}

func (s *PatternService) FindPatternsBySite(ctx context.Context, siteID string) (*scrapsae.LearnedPatterns, error) {
	return s.FindPatternsBySiteFn(ctx, siteID)
}

func (s *PatternService) SavePatterns(ctx context.Context, patterns *scrapsae.LearnedPatterns) error {
	return s.SavePatternsFn(ctx, patterns)
}
