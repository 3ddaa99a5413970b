//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oscarfg78/ScrapSAE-sub000/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBrowserManager_RecyclesBrowserAfterMaxPages(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t, `<html><body><h1>ok</h1></body></html>`)

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(2))
	require.NoError(t, err)
	defer manager.Close()

	firstPID := manager.LauncherPID()
	ctx := context.Background()

	// Spend the navigation budget.
	for i := 0; i < 2; i++ {
		page, err := manager.OpenPage(ctx)
		require.NoError(t, err)
		require.NoError(t, page.Goto(ctx, srv.URL))
		require.NoError(t, page.Close())
	}

	// The next page comes from a relaunched browser.
	page, err := manager.OpenPage(ctx)
	require.NoError(t, err)
	defer page.Close()
	assert.NotEqual(t, firstPID, manager.LauncherPID())
}

func TestBrowserManager_DoesNotRecycleBeforeMaxPages(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t, `<html><body><h1>ok</h1></body></html>`)

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(5))
	require.NoError(t, err)
	defer manager.Close()

	firstPID := manager.LauncherPID()
	ctx := context.Background()

	page, err := manager.OpenPage(ctx)
	require.NoError(t, err)
	require.NoError(t, page.Goto(ctx, srv.URL))
	require.NoError(t, page.Close())

	assert.Equal(t, firstPID, manager.LauncherPID())
}

func TestBrowserManager_DefersRecyclingWhileAPageIsOpen(t *testing.T) {
	t.Parallel()

	srv := newFixtureServer(t, `<html><body><h1>ok</h1></body></html>`)

	manager, err := rod.NewBrowserManager(rod.WithMaxPages(1))
	require.NoError(t, err)
	defer manager.Close()

	firstPID := manager.LauncherPID()
	ctx := context.Background()

	pageA, err := manager.OpenPage(ctx)
	require.NoError(t, err)
	require.NoError(t, pageA.Goto(ctx, srv.URL))

	// Budget is spent but pageA is still open; a concurrent run must get
	// a page from the same browser.
	pageB, err := manager.OpenPage(ctx)
	require.NoError(t, err)
	assert.Equal(t, firstPID, manager.LauncherPID(), "recycling must wait for open pages")

	require.NoError(t, pageA.Close())
	require.NoError(t, pageB.Close())

	// With every page closed the next open recycles.
	pageC, err := manager.OpenPage(ctx)
	require.NoError(t, err)
	defer pageC.Close()
	assert.NotEqual(t, firstPID, manager.LauncherPID())
}

func TestBrowserManager_OpenPageAfterClose(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close(), "repeated close should be a no-op")

	_, err = manager.OpenPage(context.Background())
	require.Error(t, err)
}
