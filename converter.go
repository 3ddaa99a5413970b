package scrapsae

// Converter converts HTML to Markdown. Product descriptions are
// normalized through a Converter before staging.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}
