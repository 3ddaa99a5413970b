package mock

import (
	"context"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

var _ scrapsae.AuditService = (*AuditService)(nil)

// AuditService is a mock implementation of scrapsae.AuditService.
type AuditService struct {
	AppendChangeFn      func(ctx context.Context, change *scrapsae.ConfigurationChange) error
	FindChangesBySiteFn func(ctx context.Context, siteID string, limit int) ([]*scrapsae.ConfigurationChange, error)
}

func (s *AuditService) AppendChange(ctx context.Context, change *scrapsae.ConfigurationChange) error {
	return s.AppendChangeFn(ctx, change)
}

func (s *AuditService) FindChangesBySite(ctx context.Context, siteID string, limit int) ([]*scrapsae.ConfigurationChange, error) {
	return s.FindChangesBySiteFn(ctx, siteID, limit)
}

var _ scrapsae.Inference = (*Inference)(nil)

// Inference is a mock implementation of scrapsae.Inference.
type Inference struct {
	SuggestSelectorsFn func(ctx context.Context, req scrapsae.InferenceRequest) (*scrapsae.InferenceResult, error)
}

func (s *Inference) SuggestSelectors(ctx context.Context, req scrapsae.InferenceRequest) (*scrapsae.InferenceResult, error) {
	return s.SuggestSelectorsFn(ctx, req)
}
