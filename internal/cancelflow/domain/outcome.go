package domain

import "time"

// OutcomeKind is the terminal result of a cancellation flow.
type OutcomeKind string

const (
	OutcomeCancelled OutcomeKind = "cancelled"
	OutcomeRetained  OutcomeKind = "retained"
	OutcomeDismissed OutcomeKind = "dismissed"
	OutcomePaused    OutcomeKind = "paused"
	// OutcomeUnavailable means the flow is disabled and nothing was shown.
	OutcomeUnavailable OutcomeKind = "unavailable"
)

// Outcome is how the flow ended. ResumesAt is set for OutcomePaused.
type Outcome struct {
	Kind      OutcomeKind
	ResumesAt *time.Time
}

// OutcomeFromState maps a terminal state to an outcome.
func OutcomeFromState(s State) (Outcome, bool) {
	switch s.Kind {
	case StateCancelled:
		return Outcome{Kind: OutcomeCancelled}, true
	case StateRetained:
		return Outcome{Kind: OutcomeRetained}, true
	case StateDismissed:
		return Outcome{Kind: OutcomeDismissed}, true
	case StatePaused:
		return Outcome{Kind: OutcomePaused, ResumesAt: s.ResumesAt}, true
	default:
		return Outcome{}, false
	}
}
