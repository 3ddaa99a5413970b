package scrapsae

import (
	"context"
	"time"
)

// Selector attempt statuses recorded in diagnostic packages.
const (
	AttemptMatched  = "matched"
	AttemptEmpty    = "empty"
	AttemptNotFound = "not_found"
	AttemptError    = "error"
)

// SelectorAttempt annotates one selector tried on the failing page.
type SelectorAttempt struct {
	Field    string `json:"field"`
	Selector string `json:"selector"`
	Status   string `json:"status"`
}

// DiagnosticPackage bundles the evidence captured on an unresolved
// extraction failure: a bounded HTML snapshot, a screenshot, and the
// selector attempts that failed. Packages are write-once and keyed by
// execution ID for later retrieval.
type DiagnosticPackage struct {
	ID          string      `json:"id"`
	ExecutionID string      `json:"executionId"`
	PageURL     string      `json:"pageUrl"`
	FailureType FailureType `json:"failureType"`

	// HTML is a bounded snapshot of the page at failure time.
	HTML string `json:"html"`

	// Screenshot holds the captured PNG; ScreenshotRef is its content
	// hash, usable as a stable reference.
	Screenshot    []byte `json:"screenshot,omitempty"`
	ScreenshotRef string `json:"screenshotRef,omitempty"`

	Attempts  []SelectorAttempt `json:"attempts"`
	CreatedAt time.Time         `json:"createdAt"`
}

// DiagnosticSink persists diagnostic packages.
type DiagnosticSink interface {
	// SaveDiagnostic stores a package.
	SaveDiagnostic(ctx context.Context, pkg *DiagnosticPackage) error

	// FindDiagnosticsByExecution retrieves packages for an execution,
	// oldest first.
	FindDiagnosticsByExecution(ctx context.Context, executionID string) ([]*DiagnosticPackage, error)
}
