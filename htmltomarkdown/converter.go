// Package htmltomarkdown converts HTML fragments to Markdown.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Ensure Converter implements scrapsae.Converter at compile time.
var _ scrapsae.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to normalize product description
// HTML into Markdown. The table plugin is enabled because spec sheets
// and variant tables are common in description blocks.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown. Empty or
// whitespace-only input yields an empty string; descriptions are
// optional and absence is not an error.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(result), nil
}
