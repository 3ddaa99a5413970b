package trafilatura_test

import (
	"testing"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title from meta tags", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
<title>Industrial Widget X100 - Acme Shop</title>
<meta property="og:title" content="Industrial Widget X100">
</head>
<body>
<nav>Categories</nav>
<main>
<h1>Industrial Widget X100</h1>
<p>The X100 is a compact widget designed for continuous operation in harsh environments.</p>
</main>
<footer>Footer content</footer>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
	})

	t.Run("extracts main content without boilerplate", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Widget</title></head>
<body>
<nav><a href="/">Home</a><a href="/category/widgets">Widgets</a></nav>
<article>
<h1>Widget X100</h1>
<p>Rugged aluminium housing with a sealed drive assembly, rated for continuous duty.</p>
<p>Ships with mounting hardware and a two year warranty.</p>
</article>
<aside>Related products</aside>
<footer>Copyright 2026</footer>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		result, err := ext.Extract(html)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "sealed drive assembly")
		assert.NotContains(t, result.ContentHTML, "Related products")
		assert.NotContains(t, result.ContentHTML, "Copyright 2026")
	})

	t.Run("returns ENOTFOUND when the main block is too short", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Widget</title></head>
<body>
<nav><a href="/">Home</a></nav>
<main><p>In stock.</p></main>
</body>
</html>`

		ext := trafilatura.NewExtractor()
		_, err := ext.Extract(html)

		require.Error(t, err)
		assert.Equal(t, scrapsae.ENOTFOUND, scrapsae.ErrorCode(err))
	})

	t.Run("returns EINVALID for empty input", func(t *testing.T) {
		t.Parallel()

		ext := trafilatura.NewExtractor()
		_, err := ext.Extract("")

		require.Error(t, err)
		assert.Equal(t, scrapsae.EINVALID, scrapsae.ErrorCode(err))
	})
}
