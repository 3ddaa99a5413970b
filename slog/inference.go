package slog

import (
	"context"
	"log/slog"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Ensure LoggingInference implements scrapsae.Inference.
var _ scrapsae.Inference = (*LoggingInference)(nil)

// LoggingInference wraps an Inference provider with request logging.
type LoggingInference struct {
	next   scrapsae.Inference
	logger *slog.Logger
}

// NewLoggingInference creates a new LoggingInference.
func NewLoggingInference(next scrapsae.Inference, logger *slog.Logger) *LoggingInference {
	return &LoggingInference{next: next, logger: logger}
}

// SuggestSelectors delegates to the wrapped provider and logs the outcome.
func (s *LoggingInference) SuggestSelectors(ctx context.Context, req scrapsae.InferenceRequest) (result *scrapsae.InferenceResult, err error) {
	defer func(begin time.Time) {
		var count int
		var confidence float64
		if result != nil {
			count = len(result.Selectors)
			confidence = result.Confidence
		}
		s.logger.Info("selector inference",
			"site", req.SiteID,
			"field", req.Field,
			"failing", req.FailingSelector,
			"suggestions", count,
			"confidence", confidence,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SuggestSelectors(ctx, req)
}
