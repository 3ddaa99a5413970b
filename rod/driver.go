package rod

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Ensure Page implements scrapsae.PageDriver at compile time.
var _ scrapsae.PageDriver = (*Page)(nil)

// Page drives a single browser tab. Queries never wait for elements to
// appear; navigation waits for the load event, after which the DOM is
// queried as-is.
type Page struct {
	page     *rod.Page
	manager  *BrowserManager
	lastURL  string
	released bool
}

// Goto navigates the page to the URL and waits for load.
func (p *Page) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}

	p.lastURL = url
	if p.manager != nil {
		p.manager.countNavigation()
	}
	return nil
}

// URL returns the page's current URL.
func (p *Page) URL() string {
	if info, err := p.page.Info(); err == nil && info.URL != "" {
		return info.URL
	}
	return p.lastURL
}

// QuerySelector returns the first element matching the selector, or
// (nil, nil) if no element matches.
func (p *Page) QuerySelector(ctx context.Context, selector string) (scrapsae.Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, nil
	}
	return &Element{el: els[0]}, nil
}

// QuerySelectorAll returns all elements matching the selector.
func (p *Page) QuerySelectorAll(ctx context.Context, selector string) ([]scrapsae.Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]scrapsae.Element, 0, len(els))
	for _, el := range els {
		out = append(out, &Element{el: el})
	}
	return out, nil
}

// Content returns the page's rendered HTML.
func (p *Page) Content(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

// Screenshot captures the current viewport as PNG bytes.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(false, nil)
}

// Close releases the page and its recycling slot. Pages are confined to
// their run's goroutine, so Close is not called concurrently.
func (p *Page) Close() error {
	err := p.page.Close()
	if p.manager != nil && !p.released {
		p.released = true
		p.manager.pageClosed()
	}
	return err
}

// Ensure Element implements scrapsae.Element at compile time.
var _ scrapsae.Element = (*Element)(nil)

// Element wraps a DOM element handle.
type Element struct {
	el *rod.Element
}

// InnerText returns the element's visible text.
func (e *Element) InnerText(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

// GetAttribute returns the value of the named attribute, or "" if the
// attribute is absent.
func (e *Element) GetAttribute(ctx context.Context, name string) (string, error) {
	val, err := e.el.Context(ctx).Attribute(name)
	if err != nil {
		return "", err
	}
	if val == nil {
		return "", nil
	}
	return *val, nil
}

// HTML returns the element's outer HTML.
func (e *Element) HTML(ctx context.Context) (string, error) {
	return e.el.Context(ctx).HTML()
}

// QuerySelector returns the first descendant matching the selector, or
// (nil, nil) if none matches.
func (e *Element) QuerySelector(ctx context.Context, selector string) (scrapsae.Element, error) {
	els, err := e.el.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, nil
	}
	return &Element{el: els[0]}, nil
}

// Click dispatches a click on the element.
func (e *Element) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}
