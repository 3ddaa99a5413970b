// Package analyze implements the post-execution feedback loop: it turns
// a run's metrics into failure patterns, derives configuration
// suggestions (with AI-assisted selector inference for badly broken
// selectors), applies the mechanically safe ones, and records every
// applied change in the audit log.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"github.com/oscarfg78/ScrapSAE-sub000/engine"
	"github.com/google/uuid"
)

// Detection thresholds.
const (
	// minSelectorAttempts is the minimum sample size before a selector's
	// success rate is judged.
	minSelectorAttempts = 5

	// selectorSuccessFloor is the success rate below which a selector
	// counts as failing.
	selectorSuccessFloor = 0.8

	// timeoutRateCeiling is the timeout share of visited pages above
	// which timeouts count as a pattern.
	timeoutRateCeiling = 0.1

	// blockedRateCeiling is the navigation-error share above which the
	// site is presumed to be blocking automation.
	blockedRateCeiling = 0.3

	// inferenceEscalationRate is the failure rate at which a selector
	// failure escalates to AI-assisted inference.
	inferenceEscalationRate = 0.5
)

// fallbackConfidence is assigned to suggestions that promote a
// configured fallback selector; fallbacks were placed there by a human
// or a previously applied change, so they clear the auto-apply bar.
const fallbackConfidence = 0.75

// Compile-time interface verification.
var _ engine.Analyzer = (*Analyzer)(nil)

// Analyzer derives failure patterns and configuration suggestions from
// execution metrics and closes the loop by applying safe suggestions.
type Analyzer struct {
	Sites       scrapsae.SiteService
	Audit       scrapsae.AuditService
	Inference   scrapsae.Inference
	Diagnostics scrapsae.DiagnosticSink
	Logger      *slog.Logger

	// InferenceTimeout bounds one AI inference call.
	InferenceTimeout time.Duration
}

// NewAnalyzer creates an Analyzer with default timeouts.
func NewAnalyzer(sites scrapsae.SiteService, audit scrapsae.AuditService, inference scrapsae.Inference, diagnostics scrapsae.DiagnosticSink, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		Sites:            sites,
		Audit:            audit,
		Inference:        inference,
		Diagnostics:      diagnostics,
		Logger:           logger,
		InferenceTimeout: 30 * time.Second,
	}
}

// AnalyzeAndApply runs the full loop for one finished execution:
// detect patterns, derive suggestions, auto-apply the safe ones, and
// return the report. Suggestions that fail the auto-apply bar stay in
// the report for human review.
func (a *Analyzer) AnalyzeAndApply(ctx context.Context, m *scrapsae.ExecutionMetrics) (*scrapsae.AnalysisReport, error) {
	site, err := a.Sites.FindSiteByID(ctx, m.SiteID)
	if err != nil {
		return nil, fmt.Errorf("load site for analysis: %w", err)
	}

	report := a.Analyze(ctx, m, site)

	for _, s := range report.Suggestions {
		if !s.AutoApplicable() {
			continue
		}
		if err := a.ApplySuggestion(ctx, site, s, scrapsae.ChangeSourceAuto); err != nil {
			a.Logger.Warn("auto-apply failed",
				"site", site.Name,
				"type", s.Type,
				"property", s.Property,
				"err", err,
			)
			continue
		}
		a.Logger.Info("configuration updated",
			"site", site.Name,
			"property", s.Property,
			"old", s.CurrentValue,
			"new", s.SuggestedValue,
			"confidence", s.Confidence,
		)
	}

	return report, nil
}

// Analyze produces the report without applying anything.
func (a *Analyzer) Analyze(ctx context.Context, m *scrapsae.ExecutionMetrics, site *scrapsae.SiteProfile) *scrapsae.AnalysisReport {
	patterns := DetectPatterns(m, site)

	report := &scrapsae.AnalysisReport{
		ExecutionID:                m.ExecutionID,
		SiteID:                     m.SiteID,
		Patterns:                   patterns,
		RequiresManualIntervention: m.RequiresManualIntervention,
	}

	for _, p := range patterns {
		switch p.Type {
		case scrapsae.FailureSelector:
			if s, ok := a.suggestSelector(ctx, m, site, p); ok {
				report.Suggestions = append(report.Suggestions, s)
			}
		case scrapsae.FailureTimeout:
			report.Suggestions = append(report.Suggestions, suggestTimeout(site, p))
		case scrapsae.FailureBlocked:
			report.RequiresManualIntervention = true
			report.Suggestions = append(report.Suggestions, suggestBlocked(site, p)...)
		}
	}

	return report
}

// DetectPatterns derives failure patterns from one run's metrics.
func DetectPatterns(m *scrapsae.ExecutionMetrics, site *scrapsae.SiteProfile) []scrapsae.FailurePattern {
	var patterns []scrapsae.FailurePattern

	// Deterministic order for reports and tests.
	selectors := make([]string, 0, len(m.Selectors))
	for sel := range m.Selectors {
		selectors = append(selectors, sel)
	}
	sort.Strings(selectors)

	for _, sel := range selectors {
		sm := m.Selectors[sel]
		if sm.Attempts <= minSelectorAttempts || sm.SuccessRate() >= selectorSuccessFloor {
			continue
		}
		rate := 1 - sm.SuccessRate()
		patterns = append(patterns, scrapsae.FailurePattern{
			Type:        scrapsae.FailureSelector,
			Description: fmt.Sprintf("selector %q failed %d of %d attempts", sel, sm.Failures, sm.Attempts),
			Occurrences: sm.Failures,
			FailureRate: rate,
			Selector:    sel,
			Field:       fieldForSelector(site, sel),
		})
	}

	if m.PagesVisited > 0 && float64(m.Timeouts) > timeoutRateCeiling*float64(m.PagesVisited) {
		patterns = append(patterns, scrapsae.FailurePattern{
			Type:        scrapsae.FailureTimeout,
			Description: fmt.Sprintf("%d timeouts over %d pages", m.Timeouts, m.PagesVisited),
			Occurrences: m.Timeouts,
			FailureRate: float64(m.Timeouts) / float64(m.PagesVisited),
		})
	}

	// Navigation errors are judged against pages visited. A run that
	// never got a page up at all counts as fully blocked.
	if m.NavigationErrors > 0 {
		rate := 1.0
		if m.PagesVisited > 0 {
			rate = float64(m.NavigationErrors) / float64(m.PagesVisited)
		}
		if rate > blockedRateCeiling {
			patterns = append(patterns, scrapsae.FailurePattern{
				Type:        scrapsae.FailureBlocked,
				Description: fmt.Sprintf("%d navigation errors over %d pages; the site may be blocking automation", m.NavigationErrors, m.PagesVisited),
				Occurrences: m.NavigationErrors,
				FailureRate: rate,
			})
		}
	}

	return patterns
}

// suggestSelector derives a replacement suggestion for a failing
// selector. Badly broken selectors escalate to AI inference over the
// captured diagnostic evidence; otherwise the first healthy configured
// fallback is promoted.
func (a *Analyzer) suggestSelector(ctx context.Context, m *scrapsae.ExecutionMetrics, site *scrapsae.SiteProfile, p scrapsae.FailurePattern) (scrapsae.Suggestion, bool) {
	if p.FailureRate >= inferenceEscalationRate && a.Inference != nil {
		if s, ok := a.inferSelector(ctx, m, p); ok {
			return s, true
		}
	}

	for _, candidate := range site.Selectors.Chain(p.Field) {
		if candidate == p.Selector {
			continue
		}
		if sm, tried := m.Selectors[candidate]; tried && sm.Attempts > minSelectorAttempts && sm.SuccessRate() < selectorSuccessFloor {
			continue
		}
		return scrapsae.Suggestion{
			Type:           scrapsae.SuggestionSelectorReplacement,
			Property:       selectorProperty(p.Field),
			CurrentValue:   p.Selector,
			SuggestedValue: candidate,
			Confidence:     fallbackConfidence,
			Rationale:      fmt.Sprintf("promote configured fallback for %s; %s", p.Field, p.Description),
		}, true
	}

	return scrapsae.Suggestion{}, false
}

// inferSelector asks the AI provider for a replacement selector using
// the run's diagnostic evidence. Inference is best-effort.
func (a *Analyzer) inferSelector(ctx context.Context, m *scrapsae.ExecutionMetrics, p scrapsae.FailurePattern) (scrapsae.Suggestion, bool) {
	req := scrapsae.InferenceRequest{
		SiteID:          m.SiteID,
		Field:           p.Field,
		FailingSelector: p.Selector,
	}
	if a.Diagnostics != nil {
		if pkgs, err := a.Diagnostics.FindDiagnosticsByExecution(ctx, m.ExecutionID); err == nil && len(pkgs) > 0 {
			// The most recent capture has the freshest markup.
			latest := pkgs[len(pkgs)-1]
			req.HTML = latest.HTML
			req.Screenshot = latest.Screenshot
		}
	}
	if req.HTML == "" {
		return scrapsae.Suggestion{}, false
	}

	ictx, cancel := context.WithTimeout(ctx, a.InferenceTimeout)
	defer cancel()

	result, err := a.Inference.SuggestSelectors(ictx, req)
	if err != nil {
		a.Logger.Warn("selector inference failed", "field", p.Field, "err", err)
		return scrapsae.Suggestion{}, false
	}
	if len(result.Selectors) == 0 {
		return scrapsae.Suggestion{}, false
	}

	return scrapsae.Suggestion{
		Type:           scrapsae.SuggestionSelectorReplacement,
		Property:       selectorProperty(p.Field),
		CurrentValue:   p.Selector,
		SuggestedValue: result.Selectors[0],
		Confidence:     result.Confidence,
		Rationale:      result.Rationale,
	}, true
}

func suggestTimeout(site *scrapsae.SiteProfile, p scrapsae.FailurePattern) scrapsae.Suggestion {
	current := site.NavigationTimeout
	if current <= 0 {
		current = 30 * time.Second
	}
	suggested := current + current/2
	return scrapsae.Suggestion{
		Type:           scrapsae.SuggestionTimeoutIncrease,
		Property:       "navigationTimeout",
		CurrentValue:   site.NavigationTimeout.String(),
		SuggestedValue: suggested.String(),
		Confidence:     0.9,
		Rationale:      p.Description,
	}
}

func suggestBlocked(site *scrapsae.SiteProfile, p scrapsae.FailurePattern) []scrapsae.Suggestion {
	delay := site.StepDelay * 2
	if delay < time.Second {
		delay = time.Second
	}
	return []scrapsae.Suggestion{
		{
			Type:           scrapsae.SuggestionDelayIncrease,
			Property:       "stepDelay",
			CurrentValue:   site.StepDelay.String(),
			SuggestedValue: delay.String(),
			Confidence:     0.75,
			Rationale:      p.Description,
		},
		{
			// Stealth changes are never auto-applied regardless of
			// confidence.
			Type:           scrapsae.SuggestionStealth,
			Property:       "stealth",
			CurrentValue:   "off",
			SuggestedValue: "review anti-bot posture",
			Confidence:     0.9,
			Rationale:      p.Description,
		},
	}
}

// ApplySuggestion mutates the site's configuration per the suggestion
// and appends an audit entry. Selector replacements demote the current
// primary into the fallback list, never discarding it. The caller
// chooses the audit source: ChangeSourceAuto for the analyzer's own
// loop, ChangeSourceManual for operator-approved suggestions.
func (a *Analyzer) ApplySuggestion(ctx context.Context, site *scrapsae.SiteProfile, s scrapsae.Suggestion, source string) error {
	var upd scrapsae.SiteUpdate

	switch s.Type {
	case scrapsae.SuggestionSelectorReplacement:
		field := strings.TrimPrefix(s.Property, "selectors.")
		selectors := site.Selectors
		if err := selectors.Promote(field, s.SuggestedValue); err != nil {
			return err
		}
		upd.Selectors = &selectors
	case scrapsae.SuggestionTimeoutIncrease:
		d, err := time.ParseDuration(s.SuggestedValue)
		if err != nil {
			return scrapsae.Errorf(scrapsae.EINVALID, "invalid timeout value %q", s.SuggestedValue)
		}
		upd.NavigationTimeout = &d
	case scrapsae.SuggestionDelayIncrease:
		d, err := time.ParseDuration(s.SuggestedValue)
		if err != nil {
			return scrapsae.Errorf(scrapsae.EINVALID, "invalid delay value %q", s.SuggestedValue)
		}
		upd.StepDelay = &d
	default:
		return scrapsae.Errorf(scrapsae.EINVALID, "suggestion type %q cannot be applied mechanically", s.Type)
	}

	updated, err := a.Sites.UpdateSite(ctx, site.ID, upd)
	if err != nil {
		return fmt.Errorf("update site configuration: %w", err)
	}
	*site = *updated

	change := &scrapsae.ConfigurationChange{
		ID:        uuid.New().String(),
		SiteID:    site.ID,
		Property:  s.Property,
		OldValue:  s.CurrentValue,
		NewValue:  s.SuggestedValue,
		Source:    source,
		Reason:    s.Rationale,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Audit.AppendChange(ctx, change); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// fieldForSelector resolves the semantic field a selector serves by
// searching the site's chains.
func fieldForSelector(site *scrapsae.SiteProfile, selector string) string {
	fields := []string{
		scrapsae.FieldTitle,
		scrapsae.FieldPrice,
		scrapsae.FieldSKU,
		scrapsae.FieldImage,
		scrapsae.FieldDescription,
		scrapsae.FieldNextPage,
		scrapsae.FieldProductItem,
		scrapsae.FieldProductLink,
		scrapsae.FieldVariantRow,
		scrapsae.FieldBreadcrumb,
		scrapsae.FieldRelatedLink,
	}
	for _, field := range fields {
		for _, sel := range site.Selectors.Chain(field) {
			if sel == selector {
				return field
			}
		}
	}
	return ""
}

func selectorProperty(field string) string {
	return "selectors." + field
}
