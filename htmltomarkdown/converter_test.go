package htmltomarkdown_test

import (
	"testing"

	"github.com/oscarfg78/ScrapSAE-sub000/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts description paragraphs", func(t *testing.T) {
		t.Parallel()

		html := `<p>Heavy-duty widget rated for outdoor use.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "Heavy-duty widget rated for outdoor use.")
	})

	t.Run("converts headings and feature lists", func(t *testing.T) {
		t.Parallel()

		html := `<h2>Features</h2><ul><li>Stainless body</li><li>IP67 rated</li></ul>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "## Features")
		assert.Contains(t, md, "- Stainless body")
		assert.Contains(t, md, "- IP67 rated")
	})

	t.Run("converts spec tables", func(t *testing.T) {
		t.Parallel()

		html := `<table>
<tr><th>Property</th><th>Value</th></tr>
<tr><td>Weight</td><td>1.2 kg</td></tr>
</table>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "| Property | Value |")
		assert.Contains(t, md, "| Weight | 1.2 kg |")
	})

	t.Run("converts links", func(t *testing.T) {
		t.Parallel()

		html := `<p>See the <a href="https://example.com/manual.pdf">manual</a>.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "[manual](https://example.com/manual.pdf)")
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()

		md, err := conv.Convert("")
		require.NoError(t, err)
		assert.Empty(t, md)

		md, err = conv.Convert("   \n\t")
		require.NoError(t, err)
		assert.Empty(t, md)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert("<p>compact</p>")

		require.NoError(t, err)
		assert.Equal(t, "compact", md)
	})
}
