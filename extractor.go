package scrapsae

// ExtractResult holds the extracted main content of an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML with boilerplate
	// (nav, footer, sidebar) removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
// The direct strategy falls back to an Extractor for the description
// when every description selector fails.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
