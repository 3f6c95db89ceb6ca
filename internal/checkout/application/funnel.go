package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/internal/shared/infrastructure/eventbus"
)

// FunnelReporter forwards checkout lifecycle events to the backend analytics
// funnel. Delivery is asynchronous and best-effort: a slow or failing backend
// never blocks the purchase that produced the event.
type FunnelReporter struct {
	backend FunnelBackend
	logger  *slog.Logger
	timeout time.Duration

	// submit is swapped in tests to run deliveries synchronously.
	submit func(func())
}

// NewFunnelReporter creates a reporter ready to register on the event bus.
func NewFunnelReporter(backend FunnelBackend, logger *slog.Logger) *FunnelReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FunnelReporter{
		backend: backend,
		logger:  logger,
		timeout: 10 * time.Second,
		submit:  func(fn func()) { go fn() },
	}
}

// EventTypes implements eventbus.EventConsumer.
func (r *FunnelReporter) EventTypes() []string {
	return []string{
		domain.EventCheckoutStarted,
		domain.EventCheckoutCompleted,
		domain.EventCheckoutCancelled,
		domain.EventCheckoutFailed,
	}
}

// Handle implements eventbus.EventConsumer. Errors are logged, never
// returned: funnel delivery must not surface as a consumer failure.
func (r *FunnelReporter) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload struct {
		ProductID string `json:"product_id"`
		UserID    string `json:"user_id"`
		Reason    string `json:"reason"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		r.logger.Warn("unparseable checkout event payload",
			"routing_key", event.RoutingKey,
			"error", err,
		)
		return nil
	}

	funnelEvent := domain.FunnelEvent{
		Name:      event.RoutingKey,
		UserID:    payload.UserID,
		ProductID: payload.ProductID,
	}
	if payload.Reason != "" {
		funnelEvent.Properties = map[string]string{"reason": payload.Reason}
	}

	r.submit(func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.backend.TrackFunnelEvent(sendCtx, funnelEvent); err != nil {
			r.logger.Debug("funnel event delivery failed",
				"event", funnelEvent.Name,
				"error", err,
			)
		}
	})
	return nil
}

var _ eventbus.EventConsumer = (*FunnelReporter)(nil)
