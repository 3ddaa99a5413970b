package slog

import (
	"context"
	"log/slog"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Ensure LoggingStagingSink implements scrapsae.StagingSink.
var _ scrapsae.StagingSink = (*LoggingStagingSink)(nil)

// LoggingStagingSink wraps a StagingSink with per-product logging.
type LoggingStagingSink struct {
	next   scrapsae.StagingSink
	logger *slog.Logger
}

// NewLoggingStagingSink creates a new LoggingStagingSink.
func NewLoggingStagingSink(next scrapsae.StagingSink, logger *slog.Logger) *LoggingStagingSink {
	return &LoggingStagingSink{next: next, logger: logger}
}

// Upsert delegates to the wrapped sink and logs the outcome.
func (s *LoggingStagingSink) Upsert(ctx context.Context, product *scrapsae.Product) (id string, created bool, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("product staged",
			"site", product.SiteID,
			"key", product.NormalizationKey(),
			"created", created,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Upsert(ctx, product)
}
