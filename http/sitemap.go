// Package http provides HTTP-based service implementations.
package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// DefaultMaxURLs bounds sitemap discovery. Large commerce sitemaps can
// list hundreds of thousands of URLs; traversal seeding only needs a
// representative prefix.
const DefaultMaxURLs = 5000

// Ensure SitemapService implements scrapsae.SitemapService.
var _ scrapsae.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client  *http.Client
	maxURLs int
}

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithMaxURLs overrides the discovery bound.
func WithMaxURLs(n int) SitemapOption {
	return func(s *SitemapService) {
		s.maxURLs = n
	}
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client, opts ...SitemapOption) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	s := &SitemapService{client: client, maxURLs: DefaultMaxURLs}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiscoverURLs finds URLs from a site's sitemap. Sitemap directives in
// robots.txt take precedence; /sitemap.xml is the fallback. Sitemap
// indexes are resolved recursively. Only URLs on the site's host are
// returned, bounded by the configured maximum.
//
// Returns an empty slice (not nil) if no sitemaps are found.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *scrapsae.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, scrapsae.Errorf(scrapsae.EINVALID, "invalid base URL %q", baseURL)
	}

	sitemapURLs, err := s.findSitemapURLs(ctx, base)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	c := &urlCollector{
		host:   base.Host,
		filter: filter,
		max:    s.maxURLs,
		seen:   make(map[string]bool),
		urls:   []string{},
	}
	seenSitemaps := make(map[string]bool)
	for _, sitemapURL := range sitemapURLs {
		if c.full() {
			break
		}
		if err := s.processSitemap(ctx, sitemapURL, seenSitemaps, c); err != nil {
			return nil, err
		}
	}

	return c.urls, nil
}

// urlCollector accumulates discovered URLs with host, filter and size
// constraints applied at insertion time.
type urlCollector struct {
	host   string
	filter *scrapsae.URLFilter
	max    int
	seen   map[string]bool
	urls   []string
}

func (c *urlCollector) full() bool {
	return c.max > 0 && len(c.urls) >= c.max
}

func (c *urlCollector) add(rawURL string) {
	if c.full() || c.seen[rawURL] {
		return
	}
	c.seen[rawURL] = true

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host != c.host {
		return
	}
	if !c.filter.Match(rawURL) {
		return
	}
	c.urls = append(c.urls, rawURL)
}

// findSitemapURLs discovers sitemap URLs from robots.txt or falls back to /sitemap.xml.
func (s *SitemapService) findSitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	sitemapURL := base.ResolveReference(&url.URL{Path: "/sitemap.xml"})
	exists, err := s.urlExists(ctx, sitemapURL.String())
	if err != nil {
		// Propagate context errors, treat other errors as "not found".
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if exists {
		return []string{sitemapURL.String()}, nil
	}

	return nil, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SitemapService) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			sitemapURL := strings.TrimSpace(line[len("sitemap:"):])
			if sitemapURL != "" {
				sitemaps = append(sitemaps, sitemapURL)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return sitemaps, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and sitemapindex.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool, c *urlCollector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if seen[sitemapURL] {
		return nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		for _, sitemap := range root.SelectElements("sitemap") {
			if c.full() {
				return nil
			}
			loc := sitemap.SelectElement("loc")
			if loc == nil {
				continue
			}
			childURL := strings.TrimSpace(loc.Text())
			if childURL == "" {
				continue
			}
			if err := s.processSitemap(ctx, childURL, seen, c); err != nil {
				return err
			}
		}
		return nil
	}

	for _, urlEl := range root.SelectElements("url") {
		if c.full() {
			return nil
		}
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			c.add(u)
		}
	}
	return nil
}

// fetchURL fetches a URL and returns the response body.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}

// urlExists checks if a URL returns 200 OK.
func (s *SitemapService) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
