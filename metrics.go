package scrapsae

import (
	"context"
	"time"
)

// SelectorMetric summarizes the outcomes of one selector over a run.
type SelectorMetric struct {
	Attempts    int           `json:"attempts"`
	Successes   int           `json:"successes"`
	Failures    int           `json:"failures"`
	AvgDuration time.Duration `json:"avgDuration"`
}

// SuccessRate returns successes/attempts, or 1 when never attempted.
func (m *SelectorMetric) SuccessRate() float64 {
	if m.Attempts == 0 {
		return 1
	}
	return float64(m.Successes) / float64(m.Attempts)
}

// ExecutionMetrics is the outcome telemetry of one run. It is mutated
// throughout the run by the engine's recorder and read-only afterwards;
// the post-execution analyzer consumes the frozen snapshot.
type ExecutionMetrics struct {
	ExecutionID string    `json:"executionId"`
	SiteID      string    `json:"siteId"`
	StartedAt   time.Time `json:"startedAt"`
	EndedAt     time.Time `json:"endedAt,omitzero"`

	PagesVisited      int `json:"pagesVisited"`
	ProductsFound     int `json:"productsFound"`
	ProductsSkipped   int `json:"productsSkipped"`
	ProductsWithSKU   int `json:"productsWithSku"`
	ProductsWithPrice int `json:"productsWithPrice"`
	Timeouts          int `json:"timeouts"`
	NavigationErrors  int `json:"navigationErrors"`

	AvgPageLoad time.Duration `json:"avgPageLoad"`

	// Selectors maps a selector (per semantic field) to its outcomes.
	Selectors map[string]*SelectorMetric `json:"selectors"`

	// RequiresManualIntervention is set when blocking is suspected.
	RequiresManualIntervention bool `json:"requiresManualIntervention"`
}

// MetricsService persists execution-metrics snapshots.
type MetricsService interface {
	// SaveMetrics stores a finished run's metrics snapshot.
	SaveMetrics(ctx context.Context, m *ExecutionMetrics) error

	// FindMetricsByExecution retrieves a snapshot by execution ID.
	// Returns ENOTFOUND if no snapshot exists.
	FindMetricsByExecution(ctx context.Context, executionID string) (*ExecutionMetrics, error)

	// FindMetricsBySite retrieves snapshots for a site, newest first.
	FindMetricsBySite(ctx context.Context, siteID string, limit int) ([]*ExecutionMetrics, error)
}
