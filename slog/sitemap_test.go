package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/mock"
	scrapslog "github.com/oscarfg78/ScrapSAE-sub000/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("logs url count and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *scrapsae.URLFilter) ([]string, error) {
				return []string{"https://example.com/a", "https://example.com/b"}, nil
			},
		}

		svc := scrapslog.NewLoggingSitemapService(inner, logger)
		urls, err := svc.DiscoverURLs(context.Background(), "https://example.com", nil)

		require.NoError(t, err)
		assert.Len(t, urls, 2)
		output := buf.String()
		assert.Contains(t, output, "sitemap discovery")
		assert.Contains(t, output, "url=https://example.com")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs errors from the wrapped service", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *scrapsae.URLFilter) ([]string, error) {
				return nil, scrapsae.Errorf(scrapsae.EUNAVAILABLE, "sitemap fetch failed")
			},
		}

		svc := scrapslog.NewLoggingSitemapService(inner, logger)
		_, err := svc.DiscoverURLs(context.Background(), "https://example.com", nil)

		require.Error(t, err)
		assert.Contains(t, buf.String(), "sitemap fetch failed")
	})
}
