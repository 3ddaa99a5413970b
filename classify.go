package scrapsae

// PageKind is the archetype the navigation engine assigns to a page.
type PageKind string

// Page kinds. Unknown pages fall back to deep discovery only.
const (
	PageUnknown  PageKind = "unknown"
	PageCategory PageKind = "category"
	PageProduct  PageKind = "product"
)

// PageClassifier assigns an archetype to a rendered page using ordered
// heuristics: list/grid/pagination markers mean category; product
// headline/price markers or a product-shaped URL mean product; anything
// else is unknown.
type PageClassifier interface {
	Classify(html, pageURL string, selectors *SiteSelectors) PageKind
}

// LinkExtractor discovers links in rendered HTML.
type LinkExtractor interface {
	// ExtractLinks tries the ordered selector candidates and returns the
	// links matched by the first selector that yields any, resolved
	// against baseURL.
	ExtractLinks(html, baseURL string, selectors []string, priority LinkPriority, source string) ([]DiscoveredLink, error)

	// Breadcrumbs returns the page's breadcrumb trail in document order;
	// the last entry before the current page is its parent category.
	Breadcrumbs(html, baseURL, selector string) ([]DiscoveredLink, error)
}
