package domain

import "time"

// SessionState is a step of the processing session state machine.
type SessionState int

// Session states in order. Failed is reachable from any non-terminal state.
const (
	SessionCreated SessionState = iota
	SessionNormalizing
	SessionSplitting
	SessionChunkProcessing
	SessionCombining
	SessionFinalized
	SessionFailed
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case SessionCreated:
		return "created"
	case SessionNormalizing:
		return "normalizing"
	case SessionSplitting:
		return "splitting"
	case SessionChunkProcessing:
		return "chunk-processing"
	case SessionCombining:
		return "combining"
	case SessionFinalized:
		return "finalized"
	case SessionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s SessionState) IsTerminal() bool {
	return s == SessionFinalized || s == SessionFailed
}

// CanTransition reports whether the state machine allows moving from s to next.
// Normalizing is optional, so Created may go straight to Splitting.
func (s SessionState) CanTransition(next SessionState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == SessionFailed {
		return true
	}
	if s == SessionCreated && next == SessionSplitting {
		return true
	}
	return next == s+1
}

// SessionResult describes a finished or failed session.
type SessionResult struct {
	RunID  string
	Input  Document
	Folder ProcessingFolder

	// Output is the final text artefact. Empty when the session failed.
	Output string
	Chunks int

	// Degraded is set when normalisation failed and the original was used.
	Degraded bool
	Backend  BackendKind
	State    SessionState

	// Trace lists every state the session entered, in order.
	Trace     []SessionState
	StartedAt time.Time
	Duration  time.Duration
}
