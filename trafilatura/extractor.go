// Package trafilatura extracts main content from HTML pages.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"golang.org/x/net/html"
)

// Ensure Extractor implements scrapsae.Extractor at compile time.
var _ scrapsae.Extractor = (*Extractor)(nil)

// minDescriptionChars is the smallest main-content text that counts as
// a usable product description. Shorter blocks are almost always stray
// navigation or cookie-banner text.
const minDescriptionChars = 40

// Extractor wraps go-trafilatura to pull the main content block out of
// a product page, used as the description source of last resort when
// every configured description selector fails.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content with
// boilerplate (navigation, footer, sidebars) removed. Spec tables are
// kept; product pages carry most of their substance in them. Returns
// ENOTFOUND when the page has no main block long enough to serve as a
// description.
func (e *Extractor) Extract(rawHTML string) (*scrapsae.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, scrapsae.Errorf(scrapsae.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		Deduplicate:    true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	if result.ContentNode == nil || len(textContent(result.ContentNode)) < minDescriptionChars {
		return nil, scrapsae.Errorf(scrapsae.ENOTFOUND, "no usable main content")
	}

	contentHTML, err := renderNode(result.ContentNode)
	if err != nil {
		return nil, err
	}

	return &scrapsae.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// textContent collects the node's text, whitespace-normalized.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
