package mock

import (
	"context"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

var _ scrapsae.Element = (*Element)(nil)

// Element is a mock implementation of scrapsae.Element.
type Element struct {
	InnerTextFn     func(ctx context.Context) (string, error)
	GetAttributeFn  func(ctx context.Context, name string) (string, error)
	HTMLFn          func(ctx context.Context) (string, error)
	QuerySelectorFn func(ctx context.Context, selector string) (scrapsae.Element, error)
	ClickFn         func(ctx context.Context) error
}

func (e *Element) InnerText(ctx context.Context) (string, error) {
	return e.InnerTextFn(ctx)
}

func (e *Element) GetAttribute(ctx context.Context, name string) (string, error) {
	return e.GetAttributeFn(ctx, name)
}

func (e *Element) HTML(ctx context.Context) (string, error) {
	return e.HTMLFn(ctx)
}

func (e *Element) QuerySelector(ctx context.Context, selector string) (scrapsae.Element, error) {
	return e.QuerySelectorFn(ctx, selector)
}

func (e *Element) Click(ctx context.Context) error {
	return e.ClickFn(ctx)
}

var _ scrapsae.PageDriver = (*PageDriver)(nil)

// PageDriver is a mock implementation of scrapsae.PageDriver.
type PageDriver struct {
	GotoFn             func(ctx context.Context, url string) error
	URLFn              func() string
	QuerySelectorFn    func(ctx context.Context, selector string) (scrapsae.Element, error)
	QuerySelectorAllFn func(ctx context.Context, selector string) ([]scrapsae.Element, error)
	ContentFn          func(ctx context.Context) (string, error)
	ScreenshotFn       func(ctx context.Context) ([]byte, error)
	CloseFn            func() error
}

func (p *PageDriver) Goto(ctx context.Context, url string) error {
	return p.GotoFn(ctx, url)
}

func (p *PageDriver) URL() string {
	return p.URLFn()
}

func (p *PageDriver) QuerySelector(ctx context.Context, selector string) (scrapsae.Element, error) {
	return p.QuerySelectorFn(ctx, selector)
}

func (p *PageDriver) QuerySelectorAll(ctx context.Context, selector string) ([]scrapsae.Element, error) {
	return p.QuerySelectorAllFn(ctx, selector)
}

func (p *PageDriver) Content(ctx context.Context) (string, error) {
	return p.ContentFn(ctx)
}

func (p *PageDriver) Screenshot(ctx context.Context) ([]byte, error) {
	return p.ScreenshotFn(ctx)
}

func (p *PageDriver) Close() error {
	return p.CloseFn()
}

var _ scrapsae.BrowserPool = (*BrowserPool)(nil)

// BrowserPool is a mock implementation of scrapsae.BrowserPool.
type BrowserPool struct {
	OpenPageFn func(ctx context.Context) (scrapsae.PageDriver, error)
	CloseFn    func() error
}

func (b *BrowserPool) OpenPage(ctx context.Context) (scrapsae.PageDriver, error) {
	return b.OpenPageFn(ctx)
}

func (b *BrowserPool) Close() error {
	return b.CloseFn()
}
