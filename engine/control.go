package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ scrapsae.RunController = (*Controller)(nil)

// Analyzer is the post-execution hook invoked after a run completes.
// Analysis is best-effort; its errors never affect the run's outcome.
type Analyzer interface {
	AnalyzeAndApply(ctx context.Context, metrics *scrapsae.ExecutionMetrics) (*scrapsae.AnalysisReport, error)
}

// Controller implements per-site run control. It owns one logical
// session per site ID; starting a new session for a site with a
// non-terminal session replaces it (the old cancellation fires first).
//
// Controller is safe for concurrent use.
type Controller struct {
	Engine   *Engine
	Sites    scrapsae.SiteService
	Analyzer Analyzer
	Logger   *slog.Logger

	// AnalysisTimeout bounds the post-execution analysis.
	AnalysisTimeout time.Duration

	mu   sync.Mutex
	runs map[string]*run
}

// run pairs a session snapshot with its control handles.
type run struct {
	session *scrapsae.Session
	cancel  context.CancelFunc
	gate    *Gate
	done    chan struct{}
	result  *scrapsae.RunResult
}

// NewController creates a Controller around an Engine.
func NewController(engine *Engine, sites scrapsae.SiteService, analyzer Analyzer, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		Engine:          engine,
		Sites:           sites,
		Analyzer:        analyzer,
		Logger:          logger,
		AnalysisTimeout: 2 * time.Minute,
		runs:            make(map[string]*run),
	}
}

// Start begins a run for the site. A prior non-terminal session for the
// same site is canceled and its gate opened before the new session
// reaches Running; replacement is last-writer-wins, so in-flight writes
// from the replaced run may still land (staging upserts are idempotent).
func (c *Controller) Start(ctx context.Context, siteID string) (*scrapsae.Session, error) {
	site, err := c.Sites.FindSiteByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !site.Active {
		return nil, scrapsae.Errorf(scrapsae.EINVALID, "site %q is not active", site.Name)
	}

	c.mu.Lock()
	if prev, ok := c.runs[siteID]; ok && !prev.session.State.Terminal() {
		prev.cancel()
		prev.gate.Open()
		prev.session.State = scrapsae.StateStopped
		prev.session.Message = "replaced by a new session"
		prev.session.EndedAt = time.Now().UTC()
		c.Logger.Info("session replaced", "site", siteID, "execution", prev.session.ExecutionID)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{
		session: &scrapsae.Session{
			SiteID:      siteID,
			ExecutionID: uuid.New().String(),
			State:       scrapsae.StateRunning,
			StartedAt:   time.Now().UTC(),
		},
		cancel: cancel,
		gate:   NewGate(),
		done:   make(chan struct{}),
	}
	c.runs[siteID] = r
	session := *r.session
	c.mu.Unlock()

	go c.execute(runCtx, site, r)

	return &session, nil
}

// execute runs the engine and drives the session to its terminal state.
func (c *Controller) execute(ctx context.Context, site *scrapsae.SiteProfile, r *run) {
	defer close(r.done)
	defer r.cancel()

	result, metrics, err := c.Engine.Run(ctx, site, r.session.ExecutionID, r.gate)

	c.mu.Lock()
	if c.runs[site.ID] != r {
		// Replaced while running; the new session owns the slot.
		c.mu.Unlock()
		return
	}
	r.result = result
	r.session.EndedAt = time.Now().UTC()
	switch {
	case ctx.Err() != nil:
		r.session.State = scrapsae.StateStopped
		if r.session.Message == "" {
			r.session.Message = "stopped by caller"
		}
	case err != nil:
		r.session.State = scrapsae.StateError
		r.session.Message = scrapsae.ErrorMessage(err)
	default:
		r.session.State = scrapsae.StateCompleted
		r.session.Message = "run completed"
	}
	state := r.session.State
	c.mu.Unlock()

	c.Logger.Info("run finished",
		"site", site.Name,
		"execution", r.session.ExecutionID,
		"state", state,
		"err", err,
	)

	if state == scrapsae.StateCompleted && c.Analyzer != nil && metrics != nil {
		actx, acancel := context.WithTimeout(context.Background(), c.AnalysisTimeout)
		defer acancel()
		if _, aerr := c.Analyzer.AnalyzeAndApply(actx, metrics); aerr != nil {
			c.Logger.Warn("post-execution analysis failed", "site", site.Name, "err", aerr)
		}
	}
}

// Pause closes the pause gate of the site's running session.
func (c *Controller) Pause(siteID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.runs[siteID]
	if !ok {
		return scrapsae.Errorf(scrapsae.ENOTFOUND, "no session for site %q", siteID)
	}
	if r.session.State != scrapsae.StateRunning {
		return scrapsae.Errorf(scrapsae.ECONFLICT, "session is %s, not running", r.session.State)
	}
	r.gate.Close()
	r.session.State = scrapsae.StatePaused
	r.session.Message = "paused"
	return nil
}

// Resume reopens the gate of a paused session.
func (c *Controller) Resume(siteID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.runs[siteID]
	if !ok {
		return scrapsae.Errorf(scrapsae.ENOTFOUND, "no session for site %q", siteID)
	}
	if r.session.State != scrapsae.StatePaused {
		return scrapsae.Errorf(scrapsae.ECONFLICT, "session is %s, not paused", r.session.State)
	}
	r.gate.Open()
	r.session.State = scrapsae.StateRunning
	r.session.Message = "resumed"
	return nil
}

// Stop cancels the session and opens the gate so paused waiters unblock
// and observe the cancellation. Stopping a terminal session is a no-op.
func (c *Controller) Stop(siteID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.runs[siteID]
	if !ok {
		return scrapsae.Errorf(scrapsae.ENOTFOUND, "no session for site %q", siteID)
	}
	if r.session.State.Terminal() {
		return nil
	}
	r.session.Message = "stop requested"
	r.cancel()
	r.gate.Open()
	return nil
}

// Status returns a copy of the site's latest session.
func (c *Controller) Status(siteID string) (*scrapsae.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.runs[siteID]
	if !ok {
		return nil, scrapsae.Errorf(scrapsae.ENOTFOUND, "no session for site %q", siteID)
	}
	session := *r.session
	return &session, nil
}

// Result returns the run result of the site's latest session, or nil if
// the session has not finished.
func (c *Controller) Result(siteID string) *scrapsae.RunResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.runs[siteID]; ok {
		return r.result
	}
	return nil
}

// Wait blocks until the site's current session finishes or the context
// is canceled.
func (c *Controller) Wait(ctx context.Context, siteID string) error {
	c.mu.Lock()
	r, ok := c.runs[siteID]
	c.mu.Unlock()
	if !ok {
		return scrapsae.Errorf(scrapsae.ENOTFOUND, "no session for site %q", siteID)
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
