package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Compile-time interface verification.
var _ scrapsae.PageClassifier = (*PageClassifier)(nil)

// PageClassifier assigns an archetype to a rendered page. It checks the
// site's configured selectors first: a variant table or a lone product
// headline means a product page, repeated item containers mean a
// category listing. Generic commerce markers and URL shape break the
// remaining ties.
type PageClassifier struct{}

// NewPageClassifier creates a new PageClassifier.
func NewPageClassifier() *PageClassifier {
	return &PageClassifier{}
}

// productPathHints are URL path fragments typical of product detail
// pages.
var productPathHints = []string{"/product", "/item", "/p/", "/dp/", "/sku/"}

// categoryPathHints are URL path fragments typical of category and
// listing pages.
var categoryPathHints = []string{"/category", "/categories", "/c/", "/collections", "/catalog", "/shop", "/familia"}

// Classify returns the page's archetype.
func (c *PageClassifier) Classify(html, pageURL string, selectors *scrapsae.SiteSelectors) scrapsae.PageKind {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return scrapsae.PageUnknown
	}

	// Configured structure is the strongest signal.
	if sel := selectors.ProductItem; sel != "" && doc.Find(sel).Length() > 1 {
		return scrapsae.PageCategory
	}
	if sel := selectors.VariantRow; sel != "" && doc.Find(sel).Length() > 0 {
		return scrapsae.PageProduct
	}

	product := c.productScore(doc, pageURL, selectors)
	category := c.categoryScore(doc, pageURL, selectors)

	switch {
	case product > category:
		return scrapsae.PageProduct
	case category > product:
		return scrapsae.PageCategory
	default:
		return scrapsae.PageUnknown
	}
}

func (c *PageClassifier) productScore(doc *goquery.Document, pageURL string, selectors *scrapsae.SiteSelectors) int {
	score := 0

	if hasSelector(doc, "[itemtype*='schema.org/Product']") {
		score += 2
	}
	if doc.Find("meta[property='og:type'][content*='product']").Length() > 0 {
		score += 2
	}
	if hasSelector(doc, "[class*='add-to-cart'], [id*='add-to-cart'], button[name='add'], form[action*='cart']") {
		score += 1
	}

	// A matching title and price chain is what a detail page looks like
	// to the extraction strategies.
	if chainMatches(doc, selectors, scrapsae.FieldTitle) && chainMatches(doc, selectors, scrapsae.FieldPrice) {
		score += 2
	}

	if pathMatchesAny(pageURL, productPathHints) {
		score += 1
	}
	return score
}

func (c *PageClassifier) categoryScore(doc *goquery.Document, pageURL string, selectors *scrapsae.SiteSelectors) int {
	score := 0

	if hasSelector(doc, "[itemtype*='schema.org/ItemList'], [itemtype*='schema.org/CollectionPage']") {
		score += 2
	}
	if hasSelector(doc, ".pagination, .pager, a[rel='next'], link[rel='next']") {
		score += 1
	}

	// A page whose navigation selectors light up with several anchors is
	// a branch node, not a leaf.
	for _, sel := range selectors.Navigation {
		if doc.Find(sel).Length() >= 3 {
			score += 2
			break
		}
	}

	if pathMatchesAny(pageURL, categoryPathHints) {
		score += 1
	}
	return score
}

// chainMatches reports whether any selector in the field's chain matches
// an element with non-empty text.
func chainMatches(doc *goquery.Document, selectors *scrapsae.SiteSelectors, field string) bool {
	for _, sel := range selectors.Chain(field) {
		matched := false
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if strings.TrimSpace(s.Text()) != "" {
				matched = true
				return false
			}
			return true
		})
		if matched {
			return true
		}
	}
	return false
}

func hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}

func pathMatchesAny(pageURL string, hints []string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, hint := range hints {
		if strings.Contains(path, hint) {
			return true
		}
	}
	return false
}
