// Package goquery implements link discovery and page classification
// over rendered HTML using the goquery DOM library.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// defaultBreadcrumbSelectors are tried when a site has no breadcrumb
// selector configured.
var defaultBreadcrumbSelectors = []string{
	"nav[aria-label='breadcrumb'] a",
	".breadcrumb a",
	".breadcrumbs a",
	"ol.breadcrumb a",
}

// Compile-time interface verification.
var _ scrapsae.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor discovers links in rendered HTML via CSS selectors.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks tries the ordered selector candidates and returns the
// links matched by the first selector yielding any, resolved against
// baseURL. Links are deduplicated by URL in document order; external
// hosts and non-HTTP schemes are filtered out.
func (e *LinkExtractor) ExtractLinks(html, baseURL string, selectors []string, priority scrapsae.LinkPriority, source string) ([]scrapsae.DiscoveredLink, error) {
	if len(selectors) == 0 {
		return nil, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, scrapsae.Errorf(scrapsae.EINVALID, "invalid base URL: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, scrapsae.Errorf(scrapsae.EINVALID, "failed to parse HTML: %v", err)
	}

	for _, selector := range selectors {
		links := collectLinks(doc, base, selector, priority, source)
		if len(links) > 0 {
			return links, nil
		}
	}
	return nil, nil
}

// Breadcrumbs returns the page's breadcrumb trail in document order.
// When no selector is configured, common breadcrumb markup is tried.
func (e *LinkExtractor) Breadcrumbs(html, baseURL, selector string) ([]scrapsae.DiscoveredLink, error) {
	selectors := defaultBreadcrumbSelectors
	if selector != "" {
		selectors = []string{selector}
	}
	return e.ExtractLinks(html, baseURL, selectors, scrapsae.PriorityIgnore, scrapsae.LinkSourceBreadcrumb)
}

// collectLinks gathers the anchors matched by one selector. A matched
// element that is not itself an anchor contributes its descendant
// anchors instead, so selectors may target containers.
func collectLinks(doc *goquery.Document, base *url.URL, selector string, priority scrapsae.LinkPriority, source string) []scrapsae.DiscoveredLink {
	seen := make(map[string]bool)
	var links []scrapsae.DiscoveredLink

	add := func(sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" || isNonHTTPLink(href) {
			return
		}
		resolved := resolveURL(base, href)
		if resolved == "" || !isSameHost(base, resolved) {
			return
		}
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, scrapsae.DiscoveredLink{
			URL:      resolved,
			Priority: priority,
			Text:     strings.TrimSpace(sel.Text()),
			Source:   source,
		})
	}

	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if sel.Is("a") {
			add(sel)
			return
		}
		sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			add(a)
		})
	})

	return links
}

// resolveURL resolves a relative URL against a base URL. Returns ""
// if the href cannot be parsed or resolves to the base page itself.
// Fragments are stripped for deduplication.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isSameHost checks if the resolved URL has the same host as the base
// URL. Exact match; subdomains count as different hosts.
func isSameHost(base *url.URL, resolved string) bool {
	u, err := url.Parse(resolved)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be
// skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
