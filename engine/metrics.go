package engine

import (
	"sync"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// Recorder accumulates execution metrics for one run. It is safe for
// concurrent use; the engine shares a single Recorder between the
// primary walk and deep-discovery handling.
type Recorder struct {
	mu sync.Mutex
	m  scrapsae.ExecutionMetrics

	pageLoadTotal time.Duration
	pageLoads     int
}

// NewRecorder creates a Recorder for the execution.
func NewRecorder(executionID, siteID string) *Recorder {
	return &Recorder{
		m: scrapsae.ExecutionMetrics{
			ExecutionID: executionID,
			SiteID:      siteID,
			StartedAt:   time.Now().UTC(),
			Selectors:   make(map[string]*scrapsae.SelectorMetric),
		},
	}
}

// PageVisited records a completed page navigation and its load time.
func (r *Recorder) PageVisited(loadTime time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.PagesVisited++
	r.pageLoadTotal += loadTime
	r.pageLoads++
}

// Timeout records a navigation timeout.
func (r *Recorder) Timeout() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.Timeouts++
}

// NavigationError records a failed navigation.
func (r *Recorder) NavigationError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.NavigationErrors++
}

// ProductFound records an emitted product.
func (r *Recorder) ProductFound(p *scrapsae.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.ProductsFound++
	if p.SKU != "" {
		r.m.ProductsWithSKU++
	}
	if p.Price != "" {
		r.m.ProductsWithPrice++
	}
}

// ProductSkipped records a product dropped by deduplication or the cap.
func (r *Recorder) ProductSkipped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.ProductsSkipped++
}

// SelectorAttempt records one selector try and its outcome.
func (r *Recorder) SelectorAttempt(selector string, ok bool, took time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sm, exists := r.m.Selectors[selector]
	if !exists {
		sm = &scrapsae.SelectorMetric{}
		r.m.Selectors[selector] = sm
	}
	// Rolling average keeps the snapshot cheap to freeze.
	total := sm.AvgDuration*time.Duration(sm.Attempts) + took
	sm.Attempts++
	sm.AvgDuration = total / time.Duration(sm.Attempts)
	if ok {
		sm.Successes++
	} else {
		sm.Failures++
	}
}

// RequireManualIntervention flags the run for human follow-up.
func (r *Recorder) RequireManualIntervention() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.RequiresManualIntervention = true
}

// Snapshot freezes and returns the metrics. The returned value is a deep
// copy; it is read-only by convention after the run ends.
func (r *Recorder) Snapshot() *scrapsae.ExecutionMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.m
	m.EndedAt = time.Now().UTC()
	if r.pageLoads > 0 {
		m.AvgPageLoad = r.pageLoadTotal / time.Duration(r.pageLoads)
	}
	m.Selectors = make(map[string]*scrapsae.SelectorMetric, len(r.m.Selectors))
	for sel, sm := range r.m.Selectors {
		copied := *sm
		m.Selectors[sel] = &copied
	}
	return &m
}
