package scrapsae

import (
	"context"
	"time"
)

// SessionState is the run-control state of a site's scrape session.
type SessionState string

// Session states. Stopped, Completed and Error are terminal; a terminal
// session is only superseded by a fresh Start.
const (
	StateIdle      SessionState = "idle"
	StateRunning   SessionState = "running"
	StatePaused    SessionState = "paused"
	StateStopped   SessionState = "stopped"
	StateCompleted SessionState = "completed"
	StateError     SessionState = "error"
)

// Terminal reports whether the state admits no further transitions.
func (s SessionState) Terminal() bool {
	return s == StateStopped || s == StateCompleted || s == StateError
}

// Session is the observable status of one logical scrape run for a site.
// There is at most one non-terminal session per site ID at a time;
// starting a new session replaces (and cancels) the prior one.
type Session struct {
	SiteID      string       `json:"siteId"`
	ExecutionID string       `json:"executionId"`
	State       SessionState `json:"state"`
	Message     string       `json:"message,omitempty"`
	StartedAt   time.Time    `json:"startedAt"`
	EndedAt     time.Time    `json:"endedAt,omitzero"`
}

// RunController exposes per-site session control to orchestration callers.
//
// Pause is a cooperative gate checked between discrete traversal steps;
// it never cancels in-flight I/O. Stop is the only transition that fires
// the run's cancellation signal.
type RunController interface {
	// Start begins a run for the site. A non-terminal session for the
	// same site is replaced: its cancellation fires before the new
	// session reaches Running.
	Start(ctx context.Context, siteID string) (*Session, error)

	// Pause closes the pause gate of the site's running session.
	// Returns ENOTFOUND if no session exists, ECONFLICT if not Running.
	Pause(siteID string) error

	// Resume reopens the gate of a paused session.
	// Returns ECONFLICT if the session is not Paused.
	Resume(siteID string) error

	// Stop cancels the session and opens the gate so blocked waiters
	// unblock and observe cancellation.
	Stop(siteID string) error

	// Status returns the latest session for the site, including retained
	// terminal sessions. Returns ENOTFOUND if the site never ran.
	Status(siteID string) (*Session, error)
}
