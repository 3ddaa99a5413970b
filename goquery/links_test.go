package goquery_test

import (
	"testing"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkExtractor_ExtractLinks(t *testing.T) {
	t.Parallel()

	e := goquery.NewLinkExtractor()

	t.Run("first selector yielding links wins", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<nav class="main"><a href="/c/drills">Drills</a><a href="/c/saws">Saws</a></nav>
			<div class="sidebar"><a href="/c/other">Other</a></div>
		</body></html>`

		links, err := e.ExtractLinks(html, "https://shop.test/", []string{".missing a", "nav.main a", ".sidebar a"}, scrapsae.PriorityChild, scrapsae.LinkSourceNavigation)

		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, "https://shop.test/c/drills", links[0].URL)
		assert.Equal(t, "Drills", links[0].Text)
		assert.Equal(t, scrapsae.PriorityChild, links[0].Priority)
		assert.Equal(t, scrapsae.LinkSourceNavigation, links[0].Source)
		assert.Equal(t, "https://shop.test/c/saws", links[1].URL)
	})

	t.Run("container selectors contribute their descendant anchors", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<ul class="cats">
				<li><a href="/c/one">One</a></li>
				<li><a href="/c/two">Two</a></li>
			</ul>
		</body></html>`

		links, err := e.ExtractLinks(html, "https://shop.test/", []string{"ul.cats li"}, scrapsae.PriorityChild, scrapsae.LinkSourceNavigation)

		require.NoError(t, err)
		assert.Len(t, links, 2)
	})

	t.Run("filters external hosts and non-HTTP schemes", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><nav>
			<a href="https://other.test/c/x">External</a>
			<a href="javascript:void(0)">JS</a>
			<a href="mailto:sales@shop.test">Mail</a>
			<a href="/c/local">Local</a>
		</nav></body></html>`

		links, err := e.ExtractLinks(html, "https://shop.test/", []string{"nav a"}, scrapsae.PriorityChild, scrapsae.LinkSourceNavigation)

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "https://shop.test/c/local", links[0].URL)
	})

	t.Run("deduplicates by resolved URL ignoring fragments", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><nav>
			<a href="/c/drills#top">Drills</a>
			<a href="/c/drills">Drills again</a>
			<a href="https://shop.test/c/drills">Absolute</a>
		</nav></body></html>`

		links, err := e.ExtractLinks(html, "https://shop.test/", []string{"nav a"}, scrapsae.PriorityChild, scrapsae.LinkSourceNavigation)

		require.NoError(t, err)
		assert.Len(t, links, 1)
	})

	t.Run("drops self-referential anchors", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><nav>
			<a href="#section">Jump</a>
			<a href="/other">Elsewhere</a>
		</nav></body></html>`

		links, err := e.ExtractLinks(html, "https://shop.test/page", []string{"nav a"}, scrapsae.PriorityChild, scrapsae.LinkSourceNavigation)

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, "https://shop.test/other", links[0].URL)
	})

	t.Run("no selectors yields nothing", func(t *testing.T) {
		t.Parallel()

		links, err := e.ExtractLinks("<html></html>", "https://shop.test/", nil, scrapsae.PriorityChild, scrapsae.LinkSourceNavigation)
		require.NoError(t, err)
		assert.Empty(t, links)
	})

	t.Run("invalid base URL is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := e.ExtractLinks("<html></html>", "://bad", []string{"a"}, scrapsae.PriorityChild, scrapsae.LinkSourceNavigation)
		assert.Equal(t, scrapsae.EINVALID, scrapsae.ErrorCode(err))
	})
}

func TestLinkExtractor_Breadcrumbs(t *testing.T) {
	t.Parallel()

	e := goquery.NewLinkExtractor()

	t.Run("returns trail in document order", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<nav aria-label="breadcrumb">
				<a href="/">Home</a>
				<a href="/c/tools">Tools</a>
				<a href="/c/tools/drills">Drills</a>
			</nav>
		</body></html>`

		crumbs, err := e.Breadcrumbs(html, "https://shop.test/p/drill-100", "")

		require.NoError(t, err)
		require.Len(t, crumbs, 3)
		assert.Equal(t, "https://shop.test/c/tools/drills", crumbs[2].URL)
		assert.Equal(t, scrapsae.LinkSourceBreadcrumb, crumbs[2].Source)
	})

	t.Run("configured selector takes precedence", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<div class="trail"><a href="/c/saws">Saws</a></div>
			<nav aria-label="breadcrumb"><a href="/c/wrong">Wrong</a></nav>
		</body></html>`

		crumbs, err := e.Breadcrumbs(html, "https://shop.test/p/saw-1", ".trail a")

		require.NoError(t, err)
		require.Len(t, crumbs, 1)
		assert.Equal(t, "https://shop.test/c/saws", crumbs[0].URL)
	})
}
