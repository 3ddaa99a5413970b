package scrapsae

import "context"

// Element is a handle to a DOM element on a driven page.
type Element interface {
	// InnerText returns the element's visible text.
	InnerText(ctx context.Context) (string, error)

	// GetAttribute returns the value of the named attribute, or "" if
	// the attribute is absent.
	GetAttribute(ctx context.Context, name string) (string, error)

	// HTML returns the element's outer HTML.
	HTML(ctx context.Context) (string, error)

	// QuerySelector returns the first descendant matching the selector,
	// or (nil, nil) if none matches.
	QuerySelector(ctx context.Context, selector string) (Element, error)

	// Click dispatches a click on the element.
	Click(ctx context.Context) error
}

// PageDriver drives a single browser page. Implementations hide the
// underlying automation library. All blocking operations honor the
// context; cancellation is advisory at I/O boundaries, not preemptive.
type PageDriver interface {
	// Goto navigates the page to the URL and waits for load.
	Goto(ctx context.Context, url string) error

	// URL returns the page's current URL.
	URL() string

	// QuerySelector returns the first element matching the selector,
	// or (nil, nil) if no element matches.
	QuerySelector(ctx context.Context, selector string) (Element, error)

	// QuerySelectorAll returns all elements matching the selector.
	QuerySelectorAll(ctx context.Context, selector string) ([]Element, error)

	// Content returns the page's rendered HTML.
	Content(ctx context.Context) (string, error)

	// Screenshot captures the current viewport as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// Close releases the page.
	Close() error
}

// BrowserPool hands out pages from a shared browser instance. The browser
// itself is a process-wide resource created lazily under a lock; pages
// from concurrent runs are independent.
type BrowserPool interface {
	// OpenPage opens a fresh page.
	OpenPage(ctx context.Context) (PageDriver, error)

	// Close shuts the shared browser down.
	Close() error
}
