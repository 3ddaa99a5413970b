package scrapsae

import (
	"context"
	"time"
)

// FailureType classifies a failure pattern derived from run metrics.
type FailureType string

// Failure pattern types.
const (
	FailureSelector FailureType = "selector_failure"
	FailureTimeout  FailureType = "timeout"
	FailureBlocked  FailureType = "blocked"
)

// FailurePattern is a failure signature derived from one run's metrics.
// Patterns are not persisted independently of the analysis report.
type FailurePattern struct {
	Type        FailureType `json:"type"`
	Description string      `json:"description"`
	Occurrences int         `json:"occurrences"`
	FailureRate float64     `json:"failureRate"`

	// Selector is the offending selector for selector failures.
	Selector string `json:"selector,omitempty"`

	// Field is the semantic field the selector serves.
	Field string `json:"field,omitempty"`
}

// SuggestionType classifies a configuration suggestion.
type SuggestionType string

// Suggestion types. Selector replacement and timing tuning are
// mechanically safe; strategy reordering and stealth tuning always
// require human review.
const (
	SuggestionSelectorReplacement SuggestionType = "selector_replacement"
	SuggestionTimeoutIncrease     SuggestionType = "timeout_increase"
	SuggestionDelayIncrease       SuggestionType = "delay_increase"
	SuggestionStrategyReorder     SuggestionType = "strategy_reorder"
	SuggestionStealth             SuggestionType = "stealth"
)

// AutoApplyThreshold is the minimum confidence for automatic application.
const AutoApplyThreshold = 0.7

// Suggestion is a proposed configuration change produced by the
// post-execution analyzer.
type Suggestion struct {
	Type           SuggestionType `json:"type"`
	Property       string         `json:"property"`
	CurrentValue   string         `json:"currentValue"`
	SuggestedValue string         `json:"suggestedValue"`
	Confidence     float64        `json:"confidence"`
	Rationale      string         `json:"rationale,omitempty"`
}

// AutoApplicable reports whether the suggestion may be applied without
// human review: the confidence must reach AutoApplyThreshold and the
// type must be mechanically safe.
func (s *Suggestion) AutoApplicable() bool {
	if s.Confidence < AutoApplyThreshold {
		return false
	}
	switch s.Type {
	case SuggestionSelectorReplacement, SuggestionTimeoutIncrease, SuggestionDelayIncrease:
		return true
	}
	return false
}

// AnalysisReport is the output of the post-execution analyzer.
type AnalysisReport struct {
	ExecutionID                string           `json:"executionId"`
	SiteID                     string           `json:"siteId"`
	Patterns                   []FailurePattern `json:"patterns"`
	Suggestions                []Suggestion     `json:"suggestions"`
	RequiresManualIntervention bool             `json:"requiresManualIntervention"`
}

// Change sources for the configuration audit log.
const (
	ChangeSourceAuto   = "auto"
	ChangeSourceManual = "manual"
)

// ConfigurationChange is one entry of the append-only configuration
// audit log.
type ConfigurationChange struct {
	ID        string    `json:"id"`
	SiteID    string    `json:"siteId"`
	Property  string    `json:"property"`
	OldValue  string    `json:"oldValue"`
	NewValue  string    `json:"newValue"`
	Source    string    `json:"source"` // "auto" or "manual"
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditService records and retrieves configuration changes.
type AuditService interface {
	// AppendChange appends an audit entry. Entries are never updated
	// or deleted.
	AppendChange(ctx context.Context, change *ConfigurationChange) error

	// FindChangesBySite retrieves audit entries for a site, newest first.
	FindChangesBySite(ctx context.Context, siteID string, limit int) ([]*ConfigurationChange, error)
}

// InferenceRequest carries the captured context for AI-assisted selector
// inference.
type InferenceRequest struct {
	SiteID          string `json:"siteId"`
	Field           string `json:"field"`
	FailingSelector string `json:"failingSelector"`
	HTML            string `json:"html"`
	Screenshot      []byte `json:"screenshot,omitempty"`
}

// InferenceResult holds candidate selectors suggested by the AI provider.
type InferenceResult struct {
	Selectors  []string `json:"selectors"`
	Confidence float64  `json:"confidence"`
	Rationale  string   `json:"rationale"`
}

// Inference suggests replacement selectors from captured page evidence.
// Calls are best-effort: failures degrade to "no suggestion".
type Inference interface {
	SuggestSelectors(ctx context.Context, req InferenceRequest) (*InferenceResult, error)
}
