package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrFlowFinished indicates an event arrived after a terminal state.
	ErrFlowFinished = errors.New("cancel flow already finished")

	// ErrAnswerRequired indicates a required question was advanced without an answer.
	ErrAnswerRequired = errors.New("answer required")

	// ErrNoSuchOption indicates an answer referenced an unknown option.
	ErrNoSuchOption = errors.New("unknown option")

	// ErrEventNotAllowed indicates the event does not apply to the current state.
	ErrEventNotAllowed = errors.New("event not allowed in current state")
)

// StateKind enumerates wizard states.
type StateKind string

const (
	StateQuestion  StateKind = "question"
	StateRetention StateKind = "retention"
	StateCancelled StateKind = "cancelled"
	StateRetained  StateKind = "retained"
	StateDismissed StateKind = "dismissed"
	StatePaused    StateKind = "paused"
)

// State is the current wizard position. Question is valid for StateQuestion;
// ResumesAt is valid for StatePaused.
type State struct {
	Kind      StateKind
	Question  int
	ResumesAt *time.Time
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	switch s.Kind {
	case StateCancelled, StateRetained, StateDismissed, StatePaused:
		return true
	default:
		return false
	}
}

// Event drives the wizard forward.
type Event interface{ isEvent() }

// Answer answers the current question and advances.
type Answer struct {
	OptionID string
	Text     string
}

// AcceptOffer accepts the retention offer.
type AcceptOffer struct{}

// Decline declines the retention page. On pause-only pages this is the
// "cancel subscription" action; either way the flow ends cancelled.
type Decline struct{}

// ConfirmPause confirms the selected pause duration. The engine performs the
// backend call and feeds the result back as PauseResolved.
type ConfirmPause struct {
	OptionID string
}

// PauseResolved reports the resume date after the pause side effect ran.
type PauseResolved struct {
	ResumesAt *time.Time
}

// Dismiss abandons the flow from any non-terminal state.
type Dismiss struct{}

func (Answer) isEvent()        {}
func (AcceptOffer) isEvent()   {}
func (Decline) isEvent()       {}
func (ConfirmPause) isEvent()  {}
func (PauseResolved) isEvent() {}
func (Dismiss) isEvent()       {}

// Effect is a side effect the caller must execute after a transition.
type Effect interface{ isEffect() }

// RecordAnswer captures an answer for later submission.
type RecordAnswer struct {
	QuestionID string
	OptionID   string
	Text       string
}

// PauseSubscription instructs the caller to pause the subscription via the
// backend, then apply PauseResolved with the outcome.
type PauseSubscription struct {
	OptionID string
}

func (RecordAnswer) isEffect()      {}
func (PauseSubscription) isEffect() {}

// Machine is the pure cancellation wizard. It holds only static
// configuration; all mutable position lives in State, so transitions are
// independently testable without any presentation.
type Machine struct {
	config *Config
}

// NewMachine creates a wizard over the given configuration.
func NewMachine(config *Config) *Machine {
	return &Machine{config: config}
}

// Initial returns the starting state: the first question, or the retention
// page when no questions are configured, or cancelled outright when there is
// nothing to show at all.
func (m *Machine) Initial() State {
	if len(m.config.Questions) > 0 {
		return State{Kind: StateQuestion}
	}
	if m.config.HasRetention() {
		return State{Kind: StateRetention}
	}
	return State{Kind: StateCancelled}
}

// Next applies an event to a state, returning the next state and the side
// effects the caller must run. On a validation error the state is unchanged.
func (m *Machine) Next(state State, event Event) (State, []Effect, error) {
	if state.Terminal() {
		return state, nil, ErrFlowFinished
	}

	if _, ok := event.(Dismiss); ok {
		return State{Kind: StateDismissed}, nil, nil
	}

	switch state.Kind {
	case StateQuestion:
		answer, ok := event.(Answer)
		if !ok {
			return state, nil, ErrEventNotAllowed
		}
		return m.answerQuestion(state, answer)

	case StateRetention:
		return m.retentionEvent(state, event)

	default:
		return state, nil, fmt.Errorf("unhandled state %q", state.Kind)
	}
}

func (m *Machine) answerQuestion(state State, answer Answer) (State, []Effect, error) {
	question := m.config.Questions[state.Question]

	var opt *Option
	switch question.Type {
	case QuestionSingleSelect:
		if answer.OptionID == "" {
			if question.Required {
				return state, nil, ErrAnswerRequired
			}
		} else {
			opt = question.Option(answer.OptionID)
			if opt == nil {
				return state, nil, ErrNoSuchOption
			}
		}
	case QuestionFreeText:
		if question.Required && answer.Text == "" {
			return state, nil, ErrAnswerRequired
		}
	}

	effects := []Effect{RecordAnswer{
		QuestionID: question.ID,
		OptionID:   answer.OptionID,
		Text:       answer.Text,
	}}

	// A triggering option jumps straight to retention, skipping the
	// remaining questions.
	if opt != nil && (opt.TriggersOffer || opt.TriggersPause) && m.config.HasRetention() {
		return State{Kind: StateRetention}, effects, nil
	}

	if next := state.Question + 1; next < len(m.config.Questions) {
		return State{Kind: StateQuestion, Question: next}, effects, nil
	}
	if m.config.HasRetention() {
		return State{Kind: StateRetention}, effects, nil
	}
	return State{Kind: StateCancelled}, effects, nil
}

func (m *Machine) retentionEvent(state State, event Event) (State, []Effect, error) {
	switch ev := event.(type) {
	case AcceptOffer:
		if m.config.Offer == nil {
			return state, nil, ErrEventNotAllowed
		}
		return State{Kind: StateRetained}, nil, nil

	case Decline:
		return State{Kind: StateCancelled}, nil, nil

	case ConfirmPause:
		if m.config.Pause.Option(ev.OptionID) == nil {
			return state, nil, ErrNoSuchOption
		}
		return state, []Effect{PauseSubscription{OptionID: ev.OptionID}}, nil

	case PauseResolved:
		return State{Kind: StatePaused, ResumesAt: ev.ResumesAt}, nil, nil

	default:
		return state, nil, ErrEventNotAllowed
	}
}
