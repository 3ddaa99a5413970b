package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/mock"
	scrapslog "github.com/oscarfg78/ScrapSAE-sub000/slog"
	"github.com/stretchr/testify/assert"
)

func TestLoggingClassifier_Classify(t *testing.T) {
	t.Parallel()

	t.Run("logs detected page kind with duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.PageClassifier{
			ClassifyFn: func(html, pageURL string, selectors *scrapsae.SiteSelectors) scrapsae.PageKind {
				return scrapsae.PageProduct
			},
		}

		classifier := scrapslog.NewLoggingClassifier(inner, logger)
		kind := classifier.Classify("<html></html>", "https://example.com/p/1", nil)

		assert.Equal(t, scrapsae.PageProduct, kind)
		output := buf.String()
		assert.Contains(t, output, "page classification")
		assert.Contains(t, output, "kind=product")
		assert.Contains(t, output, "url=https://example.com/p/1")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs unknown pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.PageClassifier{
			ClassifyFn: func(html, pageURL string, selectors *scrapsae.SiteSelectors) scrapsae.PageKind {
				return scrapsae.PageUnknown
			},
		}

		classifier := scrapslog.NewLoggingClassifier(inner, logger)
		classifier.Classify("<html></html>", "https://example.com", nil)

		assert.Contains(t, buf.String(), "kind=(unknown)")
	})
}
