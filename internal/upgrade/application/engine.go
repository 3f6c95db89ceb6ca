// Package application presents upgrade offers and executes accepted ones.
package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/tollgate/internal/upgrade/domain"
)

// Backend is the slice of the API client the upgrade flow depends on.
type Backend interface {
	GetUpgradeOffer(ctx context.Context, userID, productID string) (*domain.Offer, error)
	RespondUpgradeOffer(ctx context.Context, userID string, decision domain.Decision) error
	ExecuteUpgrade(ctx context.Context, userID, productID string) error
}

// Presenter is implemented by the host to show the upgrade offer surface.
type Presenter interface {
	// PresentOffer shows the offer and blocks until the surface closes.
	// The session's Accept/Decline/Dismiss methods record the answer.
	PresentOffer(ctx context.Context, offer *domain.Offer, session *Session) error
}

// Engine fetches and presents upgrade offers.
type Engine struct {
	backend Backend
	logger  *slog.Logger
	timeout time.Duration

	// submit is swapped in tests to run decision reporting synchronously.
	submit func(func())
}

// NewEngine wires an upgrade engine.
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

// Present fetches the offer for a user's current product and shows it. An
// offer that is missing or not presentable resolves as Dismissed without the
// surface ever appearing. The returned decision is what the user chose.
func (e *Engine) Present(ctx context.Context, userID, productID string, presenter Presenter) (domain.Decision, error) {
	offer, err := e.backend.GetUpgradeOffer(ctx, userID, productID)
	if err != nil {
		return "", err
	}
	if !offer.Presentable() {
		e.report(domain.DecisionDismissed, userID)
		return domain.DecisionDismissed, nil
	}

	session := &Session{engine: e, userID: userID, offer: offer}
	if err := presenter.PresentOffer(ctx, offer, session); err != nil {
		return "", err
	}

	decision := session.decisionOrDismissed()
	e.report(decision, userID)
	return decision, nil
}

// Session records the user's answer to a presented offer.
type Session struct {
	engine *Engine
	userID string
	offer  *domain.Offer

	mu       sync.Mutex
	decision domain.Decision
}

// Accept executes the upgrade. On backend failure the error is returned and
// no decision is recorded: the surface stays live so the user can retry or
// dismiss.
func (s *Session) Accept(ctx context.Context) error {
	if err := s.engine.backend.ExecuteUpgrade(ctx, s.userID, s.offer.Target.ID); err != nil {
		return err
	}
	s.record(domain.DecisionUpgraded)
	return nil
}

// Decline records an explicit "no thanks".
func (s *Session) Decline() {
	s.record(domain.DecisionDeclined)
}

// Dismiss records that the surface was closed without an answer.
func (s *Session) Dismiss() {
	s.record(domain.DecisionDismissed)
}

// Decided reports whether an answer was recorded.
func (s *Session) Decided() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decision != ""
}

// record keeps the first recorded decision.
func (s *Session) record(decision domain.Decision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decision == "" {
		s.decision = decision
	}
}

func (s *Session) decisionOrDismissed() domain.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decision == "" {
		return domain.DecisionDismissed
	}
	return s.decision
}

// report submits the decision for offer analytics, fire-and-forget.
func (e *Engine) report(decision domain.Decision, userID string) {
	e.submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		if err := e.backend.RespondUpgradeOffer(ctx, userID, decision); err != nil {
			e.logger.Debug("upgrade decision submission failed",
				"decision", decision,
				"error", err,
			)
		}
	})
}
