package slog

import (
	"log/slog"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Ensure LoggingClassifier implements scrapsae.PageClassifier.
var _ scrapsae.PageClassifier = (*LoggingClassifier)(nil)

// LoggingClassifier wraps a PageClassifier with debug logging for page
// archetype detection.
type LoggingClassifier struct {
	next   scrapsae.PageClassifier
	logger *slog.Logger
}

// NewLoggingClassifier creates a new LoggingClassifier.
func NewLoggingClassifier(next scrapsae.PageClassifier, logger *slog.Logger) *LoggingClassifier {
	return &LoggingClassifier{next: next, logger: logger}
}

// Classify detects the page kind, logs it, and returns the result.
func (c *LoggingClassifier) Classify(html, pageURL string, selectors *scrapsae.SiteSelectors) scrapsae.PageKind {
	begin := time.Now()
	kind := c.next.Classify(html, pageURL, selectors)
	kindName := string(kind)
	if kind == scrapsae.PageUnknown {
		kindName = "(unknown)"
	}
	c.logger.Debug("page classification",
		"url", pageURL,
		"kind", kindName,
		"duration", time.Since(begin),
	)
	return kind
}
