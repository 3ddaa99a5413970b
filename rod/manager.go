// Package rod implements browser automation using go-rod and headless
// Chrome.
package rod

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// DefaultMaxPages is the default number of navigations before browser
// recycling.
const DefaultMaxPages = 75

// Ensure BrowserManager implements scrapsae.BrowserPool at compile time.
var _ scrapsae.BrowserPool = (*BrowserManager)(nil)

// BrowserManager manages browser lifecycle with automatic recycling to
// prevent memory accumulation. Chrome accumulates memory over long
// scraping sessions and the baseline never returns to initial levels
// even with proper page cleanup, so the browser is relaunched after a
// bounded number of navigations. Recycling happens between runs, never
// under an open page.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	browser   *rod.Browser
	launcher  *launcher.Launcher
	pageCount int64
	maxPages  int64
	openPages int64
	mu        sync.Mutex
	closed    atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the number of navigations before the browser is
// recycled. Defaults to DefaultMaxPages.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// NewBrowserManager creates a BrowserManager backed by a headless
// Chrome instance. Close must be called when the manager is no longer
// needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{maxPages: DefaultMaxPages}
	for _, opt := range opts {
		opt(bm)
	}
	if err := bm.launchBrowser(); err != nil {
		return nil, err
	}
	return bm, nil
}

// OpenPage opens a fresh page, recycling the browser first if the
// navigation budget is spent.
func (bm *BrowserManager) OpenPage(ctx context.Context) (scrapsae.PageDriver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bm.mu.Lock()
	// Recycle only between runs: a spent budget waits until no page
	// from the current browser is still open.
	if atomic.LoadInt64(&bm.pageCount) >= bm.maxPages && bm.openPages == 0 {
		bm.recycleBrowser()
	}
	browser := bm.browser
	if browser != nil {
		bm.openPages++
	}
	bm.mu.Unlock()

	if browser == nil {
		return nil, scrapsae.Errorf(scrapsae.EUNAVAILABLE, "browser is not running")
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		bm.pageClosed()
		return nil, fmt.Errorf("opening page: %w", err)
	}
	return &Page{page: page, manager: bm}, nil
}

// pageClosed releases one outstanding page slot.
func (bm *BrowserManager) pageClosed() {
	bm.mu.Lock()
	if bm.openPages > 0 {
		bm.openPages--
	}
	bm.mu.Unlock()
}

// countNavigation tracks progress toward the recycling threshold.
func (bm *BrowserManager) countNavigation() {
	atomic.AddInt64(&bm.pageCount, 1)
}

// Close releases browser resources. Close is safe to call multiple
// times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.closeBrowser()
}

// launchBrowser starts a new browser instance with stability flags.
func (bm *BrowserManager) launchBrowser() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	bm.browser = browser
	bm.launcher = lnchr
	return nil
}

// closeBrowser shuts down the current browser and launcher.
// Must be called with mu held.
func (bm *BrowserManager) closeBrowser() error {
	var err error
	if bm.browser != nil {
		err = bm.browser.Close()
		bm.browser = nil
	}
	if bm.launcher != nil {
		bm.launcher.Kill()
		bm.launcher = nil
	}
	return err
}

// recycleBrowser starts a fresh browser and closes the old one. If the
// new launch fails the old browser is kept.
// Must be called with mu held.
func (bm *BrowserManager) recycleBrowser() {
	oldBrowser := bm.browser
	oldLauncher := bm.launcher
	bm.browser = nil
	bm.launcher = nil

	if err := bm.launchBrowser(); err != nil {
		bm.browser = oldBrowser
		bm.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	atomic.StoreInt64(&bm.pageCount, 0)
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}
