// Package application runs the cancellation flow: it fetches the
// backend-driven questionnaire, drives the pure wizard machine, executes its
// side effects, and reports the final outcome for retention analytics.
package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/tollgate/internal/cancelflow/domain"
)

// Backend is the slice of the API client the cancel flow depends on.
type Backend interface {
	GetCancelFlowConfig(ctx context.Context, userID, productID string) (*domain.Config, error)
	RespondCancelFlow(ctx context.Context, resp domain.Submission) error
	PauseSubscription(ctx context.Context, userID, optionID string) (time.Time, error)
}

// Engine creates cancellation flow sessions.
type Engine struct {
	backend Backend
	logger  *slog.Logger
	timeout time.Duration

	// submit is swapped in tests to run outcome reporting synchronously.
	submit func(func())
}

// NewEngine wires a cancel flow engine.
func NewEngine(backend Backend, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		backend: backend,
		logger:  logger,
		timeout: 10 * time.Second,
		submit:  func(fn func()) { go fn() },
	}
}

// Start fetches the flow configuration and opens a session. A disabled flow
// returns a session that is already finished with an unavailable outcome, so
// hosts can fall back to direct cancellation without a special code path.
func (e *Engine) Start(ctx context.Context, userID, productID string) (*Session, error) {
	config, err := e.backend.GetCancelFlowConfig(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		engine:    e,
		userID:    userID,
		productID: productID,
		config:    config,
		machine:   domain.NewMachine(config),
		answers:   make(map[string]string),
	}
	if config == nil || !config.Enabled {
		s.unavailable = true
		return s, nil
	}

	s.state = s.machine.Initial()
	s.noteState(s.state)
	if s.state.Terminal() {
		s.reportOutcome()
	}
	return s, nil
}

// Session is one user's run through the cancellation wizard. Methods are safe
// for concurrent use, though the flow is inherently sequential.
type Session struct {
	engine    *Engine
	userID    string
	productID string
	config    *domain.Config
	machine   *domain.Machine

	mu          sync.Mutex
	state       domain.State
	answers     map[string]string
	lastStep    int
	offerShown  bool
	pauseShown  bool
	unavailable bool
	reported    bool
}

// Config exposes the questionnaire for rendering.
func (s *Session) Config() *domain.Config { return s.config }

// State returns the current wizard position.
func (s *Session) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Finished reports whether the flow reached a terminal state.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unavailable || s.state.Terminal()
}

// Outcome returns how the flow ended. ok is false while the flow is running.
func (s *Session) Outcome() (domain.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return domain.Outcome{Kind: domain.OutcomeUnavailable}, true
	}
	return domain.OutcomeFromState(s.state)
}

// Answer submits the current question's answer and advances.
func (s *Session) Answer(ctx context.Context, optionID, text string) (domain.State, error) {
	return s.apply(ctx, domain.Answer{OptionID: optionID, Text: text})
}

// AcceptOffer accepts the retention offer.
func (s *Session) AcceptOffer(ctx context.Context) (domain.State, error) {
	return s.apply(ctx, domain.AcceptOffer{})
}

// Decline declines the retention page and cancels.
func (s *Session) Decline(ctx context.Context) (domain.State, error) {
	return s.apply(ctx, domain.Decline{})
}

// ConfirmPause pauses the subscription for the selected duration. The
// backend call runs inline; its failure falls back to the statically
// configured resume date rather than failing the flow.
func (s *Session) ConfirmPause(ctx context.Context, optionID string) (domain.State, error) {
	return s.apply(ctx, domain.ConfirmPause{OptionID: optionID})
}

// Dismiss abandons the flow.
func (s *Session) Dismiss(ctx context.Context) (domain.State, error) {
	return s.apply(ctx, domain.Dismiss{})
}

func (s *Session) apply(ctx context.Context, event domain.Event) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unavailable {
		return s.state, domain.ErrFlowFinished
	}

	next, effects, err := s.machine.Next(s.state, event)
	if err != nil {
		return s.state, err
	}

	for _, effect := range effects {
		switch eff := effect.(type) {
		case domain.RecordAnswer:
			if eff.OptionID != "" {
				s.answers[eff.QuestionID] = eff.OptionID
			} else {
				s.answers[eff.QuestionID] = eff.Text
			}

		case domain.PauseSubscription:
			resumesAt := s.pause(ctx, eff.OptionID)
			next, _, err = s.machine.Next(next, domain.PauseResolved{ResumesAt: resumesAt})
			if err != nil {
				return s.state, err
			}
		}
	}

	s.state = next
	s.noteState(next)
	if next.Terminal() {
		s.reportOutcome()
	}
	return next, nil
}

// pause runs the backend pause call. On failure the statically configured
// resume date stands in so the user still sees a confirmation.
func (s *Session) pause(ctx context.Context, optionID string) *time.Time {
	resumesAt, err := s.engine.backend.PauseSubscription(ctx, s.userID, optionID)
	if err == nil {
		return &resumesAt
	}
	s.engine.logger.Warn("pause subscription call failed, using configured resume date",
		"option_id", optionID,
		"error", err,
	)

	opt := s.config.Pause.Option(optionID)
	if opt == nil {
		return nil
	}
	if opt.ResumesAt != nil {
		return opt.ResumesAt
	}
	if opt.DurationType == domain.PauseFixedDays && opt.Days > 0 {
		fallback := time.Now().UTC().AddDate(0, 0, opt.Days)
		return &fallback
	}
	return nil
}

// noteState records how far the user got and which retention surfaces they
// were shown, for the final analytics submission. Caller holds s.mu or has
// exclusive access.
func (s *Session) noteState(state domain.State) {
	switch state.Kind {
	case domain.StateQuestion:
		// The last question index seen, answered or not.
		s.lastStep = state.Question
	case domain.StateRetention:
		s.offerShown = s.offerShown || s.config.Offer != nil
		s.pauseShown = s.pauseShown || s.config.HasPause()
	}
}

// reportOutcome submits the finished flow to the backend, fire-and-forget.
// Caller holds s.mu or has exclusive access.
func (s *Session) reportOutcome() {
	if s.reported {
		return
	}
	s.reported = true

	outcome, ok := domain.OutcomeFromState(s.state)
	if !ok {
		return
	}

	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	submission := domain.Submission{
		UserID:     s.userID,
		Outcome:    string(outcome.Kind),
		LastStep:   s.lastStep,
		OfferShown: s.offerShown,
		PauseShown: s.pauseShown,
		Answers:    answers,
	}

	engine := s.engine
	engine.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), engine.timeout)
		defer cancel()
		if err := engine.backend.RespondCancelFlow(ctx, submission); err != nil {
			engine.logger.Debug("cancel flow outcome submission failed",
				"outcome", submission.Outcome,
				"error", err,
			)
		}
	})
}
