package mock

import (
	"context"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

var _ scrapsae.MetricsService = (*MetricsService)(nil)

// MetricsService is a mock implementation of scrapsae.MetricsService.
type MetricsService struct {
	SaveMetricsFn            func(ctx context.Context, m *scrapsae.ExecutionMetrics) error
	FindMetricsByExecutionFn func(ctx context.Context, executionID string) (*scrapsae.ExecutionMetrics, error)
	FindMetricsBySiteFn      func(ctx context.Context, siteID string, limit int) ([]*scrapsae.ExecutionMetrics, error)
}

func (s *MetricsService) SaveMetrics(ctx context.Context, m *scrapsae.ExecutionMetrics) error {
	return s.SaveMetricsFn(ctx, m)
}

func (s *MetricsService) FindMetricsByExecution(ctx context.Context, executionID string) (*scrapsae.ExecutionMetrics, error) {
	return s.FindMetricsByExecutionFn(ctx, executionID)
}

func (s *MetricsService) FindMetricsBySite(ctx context.Context, siteID string, limit int) ([]*scrapsae.ExecutionMetrics, error) {
	return s.FindMetricsBySiteFn(ctx, siteID, limit)
}
