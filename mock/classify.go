package mock

import (
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

var _ scrapsae.PageClassifier = (*PageClassifier)(nil)

// PageClassifier is a mock implementation of scrapsae.PageClassifier.
type PageClassifier struct {
	ClassifyFn func(html, pageURL string, selectors *scrapsae.SiteSelectors) scrapsae.PageKind
}

func (c *PageClassifier) Classify(html, pageURL string, selectors *scrapsae.SiteSelectors) scrapsae.PageKind {
	return c.ClassifyFn(html, pageURL, selectors)
}

var _ scrapsae.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of scrapsae.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html, baseURL string, selectors []string, priority scrapsae.LinkPriority, source string) ([]scrapsae.DiscoveredLink, error)
	BreadcrumbsFn  func(html, baseURL, selector string) ([]scrapsae.DiscoveredLink, error)
}

func (e *LinkExtractor) ExtractLinks(html, baseURL string, selectors []string, priority scrapsae.LinkPriority, source string) ([]scrapsae.DiscoveredLink, error) {
	return e.ExtractLinksFn(html, baseURL, selectors, priority, source)
}

func (e *LinkExtractor) Breadcrumbs(html, baseURL, selector string) ([]scrapsae.DiscoveredLink, error) {
	return e.BreadcrumbsFn(html, baseURL, selector)
}
