package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Frontier sizing for per-run URL deduplication.
const (
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

// maxDiagnosticHTML bounds the HTML snapshot stored in a diagnostic
// package.
const maxDiagnosticHTML = 256 * 1024

// errCapReached signals that the site's max-products cap halted
// extraction. It terminates the walk without failing the run.
var errCapReached = errors.New("max products cap reached")

// walker holds the traversal state of one run. Navigation is inherently
// sequential (each step depends on the previous page's DOM), so a walker
// is confined to its run's goroutine.
type walker struct {
	e    *Engine
	site *scrapsae.SiteProfile
	page scrapsae.PageDriver
	rec  *Recorder
	gate *Gate
	orch *Orchestrator

	executionID string

	// visited deduplicates page URLs; emitted holds exact normalization
	// keys so a product reached via two paths is staged at most once.
	visited *Frontier
	emitted map[string]struct{}

	// deep queues related/accessory links harvested by deep discovery;
	// they are drained after the primary walk.
	deep *Frontier

	result scrapsae.RunResult
}

func newWalker(e *Engine, site *scrapsae.SiteProfile, page scrapsae.PageDriver, rec *Recorder, gate *Gate, orch *Orchestrator, executionID string) *walker {
	return &walker{
		e:           e,
		site:        site,
		page:        page,
		rec:         rec,
		gate:        gate,
		orch:        orch,
		executionID: executionID,
		visited:     NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate),
		emitted:     make(map[string]struct{}),
		deep:        NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate),
	}
}

// walk visits a node of the category tree. Branches that yield nothing
// terminate quietly; only cancellation and the product cap propagate.
func (w *walker) walk(ctx context.Context, url string, depth int) error {
	if depth > w.e.maxDepth() {
		return nil
	}
	if w.visited.Seen(url) {
		return nil
	}
	if err := w.gate.Wait(ctx); err != nil {
		return err
	}
	w.visited.MarkSeen(url)

	html, err := w.visit(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Branch ends; the failed navigation is already in the metrics.
		w.e.Logger.Debug("branch abandoned", "url", url, "err", err)
		return nil
	}

	kind := w.e.Classifier.Classify(html, url, &w.site.Selectors)
	w.observe(kind, url, depth)

	switch kind {
	case scrapsae.PageCategory:
		return w.walkCategory(ctx, url, html, depth)
	case scrapsae.PageProduct:
		return w.walkProduct(ctx, url, html, depth)
	default:
		// Unknown pages contribute only deep-discovery links.
		w.harvestRelated(html, url, depth)
		return nil
	}
}

// walkCategory extracts the category's visible items and recurses into
// its children. A category with zero items and zero children terminates
// the branch without error.
func (w *walker) walkCategory(ctx context.Context, url, html string, depth int) error {
	products := w.orch.Execute(ctx, w.page, w.site, w.executionID)
	if err := w.emitAll(ctx, products); err != nil {
		return err
	}
	if len(products) == 0 {
		w.diagnose(ctx, url, html)
	}

	children := w.childLinks(html, url)
	for _, child := range children {
		if err := w.walk(ctx, child.URL, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// walkProduct extracts the product (including variant families) and
// harvests related links for deep discovery without blocking the
// primary path.
func (w *walker) walkProduct(ctx context.Context, url, html string, depth int) error {
	products := w.orch.Execute(ctx, w.page, w.site, w.executionID)
	if len(products) == 0 {
		w.diagnose(ctx, url, html)
	}
	if err := w.emitAll(ctx, products); err != nil {
		return err
	}

	w.harvestRelated(html, url, depth)
	return nil
}

// drainDeepDiscovery visits the queued related/accessory links after the
// primary walk. After each product detail it recovers the parent
// category from the breadcrumb trail instead of browser history, so
// depth and parentage stay correct.
func (w *walker) drainDeepDiscovery(ctx context.Context) error {
	for {
		link, ok := w.deep.Pop()
		if !ok {
			return nil
		}
		if err := w.gate.Wait(ctx); err != nil {
			return err
		}

		html, err := w.visit(ctx, link.URL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		kind := w.e.Classifier.Classify(html, link.URL, &w.site.Selectors)
		w.observe(kind, link.URL, link.Depth)
		if kind == scrapsae.PageProduct {
			products := w.orch.Execute(ctx, w.page, w.site, w.executionID)
			if err := w.emitAll(ctx, products); err != nil {
				return err
			}
		}

		// Breadcrumb recovery: resume the walk at the product's real
		// parent category, at the depth the link was discovered at.
		if parent, ok := w.parentFromBreadcrumbs(html, link.URL); ok {
			if err := w.walk(ctx, parent, link.Depth); err != nil {
				return err
			}
		}
	}
}

// visit navigates the shared page to the URL with retry, honoring the
// per-domain limiter and the site's step delay, and returns the
// rendered HTML.
func (w *walker) visit(ctx context.Context, url string) (string, error) {
	if w.e.Limiter != nil {
		if err := w.e.Limiter.Wait(ctx, domainOf(url)); err != nil {
			return "", err
		}
	}

	navCtx := ctx
	if w.site.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, w.site.NavigationTimeout)
		defer cancel()
	}

	begin := time.Now()
	err := GotoWithRetry(navCtx, url, w.page.Goto, w.rec, w.e.retryDelays())
	if err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}
	w.rec.PageVisited(time.Since(begin))

	if w.site.StepDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(w.site.StepDelay):
		}
	}

	return w.page.Content(ctx)
}

// childLinks discovers child-category links using the ordered
// navigation-selector candidates; the first selector yielding any
// matches wins.
func (w *walker) childLinks(html, pageURL string) []scrapsae.DiscoveredLink {
	links, err := w.e.Links.ExtractLinks(html, pageURL, w.site.Selectors.Navigation, scrapsae.PriorityChild, scrapsae.LinkSourceNavigation)
	if err != nil {
		w.e.Logger.Debug("child link extraction failed", "url", pageURL, "err", err)
		return nil
	}
	var scoped []scrapsae.DiscoveredLink
	for _, link := range links {
		if sameHost(w.site.BaseURL, link.URL) {
			scoped = append(scoped, link)
		}
	}
	return scoped
}

// harvestRelated queues related/accessory links as low-priority deep
// discovery targets.
func (w *walker) harvestRelated(html, pageURL string, depth int) {
	links, err := w.e.Links.ExtractLinks(html, pageURL, w.site.Selectors.Chain(scrapsae.FieldRelatedLink), scrapsae.PriorityDeepDiscovery, scrapsae.LinkSourceRelated)
	if err != nil {
		return
	}
	for _, link := range links {
		if !sameHost(w.site.BaseURL, link.URL) {
			continue
		}
		if w.visited.Seen(link.URL) {
			continue
		}
		link.Depth = depth
		w.deep.Push(link)
	}
}

// parentFromBreadcrumbs returns the parent category URL from the page's
// breadcrumb trail: the last crumb that is not the page itself.
func (w *walker) parentFromBreadcrumbs(html, pageURL string) (string, bool) {
	crumbs, err := w.e.Links.Breadcrumbs(html, pageURL, w.site.Selectors.Breadcrumb)
	if err != nil || len(crumbs) == 0 {
		return "", false
	}
	for i := len(crumbs) - 1; i >= 0; i-- {
		if crumbs[i].URL != pageURL && sameHost(w.site.BaseURL, crumbs[i].URL) {
			return crumbs[i].URL, true
		}
	}
	return "", false
}

// emitAll stages products, enforcing the cap mid-page.
func (w *walker) emitAll(ctx context.Context, products []*scrapsae.Product) error {
	for _, p := range products {
		if err := w.emit(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// emit stages one product once per normalization key per run.
func (w *walker) emit(ctx context.Context, p *scrapsae.Product) error {
	if err := w.gate.Wait(ctx); err != nil {
		return err
	}
	if w.site.MaxProducts > 0 && w.result.ProductsFound >= w.site.MaxProducts {
		return errCapReached
	}

	key := p.NormalizationKey()
	if _, dup := w.emitted[key]; dup {
		w.rec.ProductSkipped()
		w.result.ProductsSkipped++
		return nil
	}

	_, created, err := w.e.Staging.Upsert(ctx, p)
	if err != nil {
		w.e.Logger.Warn("staging upsert failed", "key", key, "err", err)
		w.rec.ProductSkipped()
		w.result.ProductsSkipped++
		return nil
	}

	w.emitted[key] = struct{}{}
	w.rec.ProductFound(p)
	w.result.ProductsFound++
	if created {
		w.result.ProductsCreated++
	} else {
		w.result.ProductsUpdated++
	}
	return nil
}

// diagnose captures a diagnostic package for a page that resisted
// extraction: bounded HTML, a best-effort screenshot, and the selector
// attempts that failed. The reader here records no metrics so the
// evidence gathering does not distort selector statistics.
func (w *walker) diagnose(ctx context.Context, url, html string) {
	if w.e.Diagnostics == nil {
		return
	}

	reader := newFieldReader(w.page, &w.site.Selectors, nil)
	reader.text(ctx, scrapsae.FieldTitle)
	reader.text(ctx, scrapsae.FieldPrice)
	reader.text(ctx, scrapsae.FieldSKU)
	attempts := reader.failedAttempts()
	if len(attempts) == 0 {
		return
	}

	if len(html) > maxDiagnosticHTML {
		html = html[:maxDiagnosticHTML]
	}
	pkg := &scrapsae.DiagnosticPackage{
		ID:          uuid.New().String(),
		ExecutionID: w.executionID,
		PageURL:     url,
		FailureType: scrapsae.FailureSelector,
		HTML:        html,
		Attempts:    attempts,
		CreatedAt:   time.Now().UTC(),
	}
	if shot, err := w.page.Screenshot(ctx); err == nil && len(shot) > 0 {
		pkg.Screenshot = shot
		pkg.ScreenshotRef = fmt.Sprintf("%x", xxhash.Sum64(shot))
	}

	if err := w.e.Diagnostics.SaveDiagnostic(ctx, pkg); err != nil {
		w.e.Logger.Warn("diagnostic save failed", "url", url, "err", err)
	}
}

// observe feeds classified URLs to the pattern learner.
func (w *walker) observe(kind scrapsae.PageKind, url string, depth int) {
	if w.e.Learner == nil || kind == scrapsae.PageUnknown {
		return
	}
	w.e.Learner.Observe(w.site.ID, kind, url, depth)
}
