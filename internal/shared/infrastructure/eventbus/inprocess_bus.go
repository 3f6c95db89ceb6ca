package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/tollgate/internal/shared/domain"
)

// InProcessBus is an in-memory event bus, the default when the engine runs
// inside a host application with no broker. Events are delivered synchronously
// to registered consumers; a failing consumer is logged, never propagated to
// the publisher.
type InProcessBus struct {
	registry *ConsumerRegistry
	logger   *slog.Logger
	remote   Publisher
	mu       sync.Mutex
}

// NewInProcessBus creates a new in-process event bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		registry: NewConsumerRegistry(logger),
		logger:   logger,
	}
}

// RegisterConsumer registers an event consumer.
func (b *InProcessBus) RegisterConsumer(consumer EventConsumer) {
	b.registry.Register(consumer)
}

// MirrorTo additionally forwards every published envelope to a remote
// publisher, typically the RabbitMQ exchange in server-side deployments.
// Remote failures are logged; local delivery always proceeds.
func (b *InProcessBus) MirrorTo(remote Publisher) {
	b.mu.Lock()
	b.remote = remote
	b.mu.Unlock()
}

// Publish dispatches a serialized envelope to all registered consumers.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	event := &ConsumedEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		b.logger.Error("failed to unmarshal event payload",
			"routing_key", routingKey,
			"error", err,
		)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}

	if err := b.registry.Dispatch(ctx, event); err != nil {
		b.logger.Error("event dispatch failed",
			"routing_key", routingKey,
			"event_id", event.EventID,
			"error", err,
		)
	}

	if b.remote != nil {
		if err := b.remote.Publish(ctx, routingKey, payload); err != nil {
			b.logger.Warn("failed to mirror event to remote publisher",
				"routing_key", routingKey,
				"error", err,
			)
		}
	}
	return nil
}

// PublishDomainEvent serializes a domain event and dispatches it.
func (b *InProcessBus) PublishDomainEvent(ctx context.Context, event domain.DomainEvent, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	envelope, err := json.Marshal(Envelope(event, body))
	if err != nil {
		return err
	}
	return b.Publish(ctx, event.RoutingKey(), envelope)
}

// Close closes the mirrored remote publisher, if any.
func (b *InProcessBus) Close() error {
	b.mu.Lock()
	remote := b.remote
	b.mu.Unlock()
	if remote != nil {
		return remote.Close()
	}
	return nil
}

var _ Publisher = (*InProcessBus)(nil)
