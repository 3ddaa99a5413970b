package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Default traversal bounds, used when the corresponding Engine field is
// zero.
const (
	DefaultMaxDepth = 5
	seedLimit       = 25
)

// Learner receives classified page URLs during a run and persists what
// it inferred when the run finishes. Depth is the traversal depth the
// page was reached at; category pages below the root are subcategories.
type Learner interface {
	Observe(siteID string, kind scrapsae.PageKind, url string, depth int)
	Flush(ctx context.Context, siteID string) error
}

// Engine executes one scraping run end to end: it seeds entry points,
// walks the category tree, extracts and stages products, and persists
// execution metrics. It holds no per-run state; every Run gets its own
// page, recorder, and walker, so a single Engine serves concurrent runs
// against different sites.
type Engine struct {
	Pool        scrapsae.BrowserPool
	Classifier  scrapsae.PageClassifier
	Links       scrapsae.LinkExtractor
	Staging     scrapsae.StagingSink
	SyncLog     scrapsae.SyncLogSink
	Metrics     scrapsae.MetricsService
	Diagnostics scrapsae.DiagnosticSink
	Patterns    scrapsae.PatternService
	Sitemaps    scrapsae.SitemapService
	Converter   scrapsae.Converter
	Extractor   scrapsae.Extractor
	Limiter     *DomainLimiter
	Learner     Learner
	Logger      *slog.Logger

	// MaxDepth bounds category recursion; zero means DefaultMaxDepth.
	MaxDepth int

	// RetryDelays overrides the navigation retry schedule.
	RetryDelays []time.Duration
}

func (e *Engine) maxDepth() int {
	if e.MaxDepth > 0 {
		return e.MaxDepth
	}
	return DefaultMaxDepth
}

func (e *Engine) retryDelays() []time.Duration {
	if len(e.RetryDelays) > 0 {
		return e.RetryDelays
	}
	return DefaultRetryDelays()
}

// Run performs a full scrape of the site. It returns the run summary
// and the final metrics snapshot. A canceled context surfaces as
// ECANCELED; an unusable selector configuration as EINVALID. Exhausted
// branches and failed extractions are not errors; they are recorded in
// the metrics.
func (e *Engine) Run(ctx context.Context, site *scrapsae.SiteProfile, executionID string, gate *Gate) (*scrapsae.RunResult, *scrapsae.ExecutionMetrics, error) {
	if len(site.Selectors.Chain(scrapsae.FieldTitle)) == 0 && len(site.Selectors.Chain(scrapsae.FieldProductItem)) == 0 {
		return nil, nil, scrapsae.Errorf(scrapsae.EINVALID, "site %q has no usable extraction selectors", site.Name)
	}

	begin := time.Now()
	rec := NewRecorder(executionID, site.ID)

	page, err := e.Pool.OpenPage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	orch := e.buildOrchestrator(rec, gate)
	w := newWalker(e, site, page, rec, gate, orch, executionID)

	walkErr := e.traverse(ctx, w, site)

	metrics := e.finishMetrics(ctx, rec)
	e.flushLearner(ctx, site.ID)

	w.result.Duration = time.Since(begin)
	result := w.result

	switch {
	case walkErr == nil:
		e.logSync(ctx, "completed", fmt.Sprintf("%d products (%d new, %d updated)", result.ProductsFound, result.ProductsCreated, result.ProductsUpdated), result.Duration)
		return &result, metrics, nil
	case errors.Is(walkErr, context.Canceled):
		e.logSync(ctx, "canceled", fmt.Sprintf("stopped after %d products", result.ProductsFound), result.Duration)
		return &result, metrics, scrapsae.Errorf(scrapsae.ECANCELED, "run canceled")
	default:
		e.logSync(ctx, "error", walkErr.Error(), result.Duration)
		return &result, metrics, walkErr
	}
}

// traverse walks every entry point and then drains the deep-discovery
// queue. The product cap ends the traversal cleanly.
func (e *Engine) traverse(ctx context.Context, w *walker, site *scrapsae.SiteProfile) error {
	for _, entry := range e.seedEntries(ctx, site) {
		if err := w.walk(ctx, entry, 0); err != nil {
			if errors.Is(err, errCapReached) {
				return nil
			}
			return err
		}
	}
	if err := w.drainDeepDiscovery(ctx); err != nil && !errors.Is(err, errCapReached) {
		return err
	}
	return nil
}

// seedEntries selects the run's entry URLs: learned listing and
// subcategory examples when available, otherwise a bounded sitemap
// sample, and always the site's base URL as the final fallback.
func (e *Engine) seedEntries(ctx context.Context, site *scrapsae.SiteProfile) []string {
	var entries []string
	seen := make(map[string]struct{})
	add := func(url string) {
		if url == "" || len(entries) >= seedLimit {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		entries = append(entries, url)
	}

	if e.Patterns != nil {
		patterns, err := e.Patterns.FindPatternsBySite(ctx, site.ID)
		if err == nil {
			for _, url := range patterns.ListingExamples {
				add(url)
			}
			for _, url := range patterns.SubcategoryExamples {
				add(url)
			}
		} else if scrapsae.ErrorCode(err) != scrapsae.ENOTFOUND {
			e.Logger.Warn("learned pattern lookup failed", "site", site.Name, "err", err)
		}
	}

	if len(entries) == 0 && e.Sitemaps != nil {
		urls, err := e.Sitemaps.DiscoverURLs(ctx, site.BaseURL, site.SitemapFilter())
		if err != nil {
			e.Logger.Debug("sitemap discovery failed", "site", site.Name, "err", err)
		}
		for _, url := range urls {
			if sameHost(site.BaseURL, url) {
				add(url)
			}
		}
	}

	add(site.BaseURL)
	return entries
}

// buildOrchestrator wires the strategy chain for one run, binding each
// strategy to the run's recorder and pause gate.
func (e *Engine) buildOrchestrator(rec *Recorder, gate *Gate) *Orchestrator {
	direct := NewDirectStrategy(rec, e.Converter, e.Extractor, e.Logger)
	list := NewListStrategy(rec, gate, e.Logger)
	families := NewFamiliesStrategy(rec, e.Logger)
	hybrid := NewHybridStrategy(families, list, direct, e.Logger)
	return NewOrchestrator(e.Logger, direct, list, families, hybrid)
}

// finishMetrics snapshots the recorder, applies the blocked-site
// heuristic, and persists the result.
func (e *Engine) finishMetrics(ctx context.Context, rec *Recorder) *scrapsae.ExecutionMetrics {
	snapshot := rec.Snapshot()
	blocked := snapshot.NavigationErrors > 0 &&
		(snapshot.PagesVisited == 0 ||
			float64(snapshot.NavigationErrors) > 0.3*float64(snapshot.PagesVisited))
	if blocked {
		rec.RequireManualIntervention()
		snapshot = rec.Snapshot()
	}

	if e.Metrics != nil {
		// Persist with a fresh context so a canceled run still records
		// its metrics.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := e.Metrics.SaveMetrics(saveCtx, snapshot); err != nil {
			e.Logger.Warn("metrics save failed", "execution", snapshot.ExecutionID, "err", err)
		}
	}
	return snapshot
}

func (e *Engine) flushLearner(ctx context.Context, siteID string) {
	if e.Learner == nil {
		return
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := e.Learner.Flush(flushCtx, siteID); err != nil {
		e.Logger.Warn("pattern flush failed", "site", siteID, "err", err)
	}
}

func (e *Engine) logSync(ctx context.Context, status, message string, duration time.Duration) {
	if e.SyncLog == nil {
		return
	}
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := e.SyncLog.Log(logCtx, "scrape", status, message, duration); err != nil {
		e.Logger.Warn("sync log write failed", "status", status, "err", err)
	}
}
