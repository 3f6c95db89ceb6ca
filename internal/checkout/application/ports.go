// Package application orchestrates checkout: path selection, surface handoff,
// transaction verification, and two-source entitlement reconciliation.
package application

import (
	"context"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/internal/shared/async"
	shareddomain "github.com/felixgeelhaar/tollgate/internal/shared/domain"
)

// Backend is the slice of the API client the orchestrator depends on.
type Backend interface {
	GetProducts(ctx context.Context, userID string) (*domain.Catalog, error)
	CreateCheckoutSession(ctx context.Context, productID, userID string, path domain.CheckoutPath) (*domain.CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, productID, userID string) (*domain.PaymentIntent, error)
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ReportMigrationConverted(ctx context.Context, userID, transactionID string) error
}

// TransactionFetcher is the single-endpoint dependency of the verifier.
type TransactionFetcher interface {
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

// EntitlementBackend is the slice of the API client the reconciler depends on.
type EntitlementBackend interface {
	GetEntitlements(ctx context.Context, userID string) ([]domain.Entitlement, error)
}

// FunnelBackend receives analytics funnel events.
type FunnelBackend interface {
	TrackFunnelEvent(ctx context.Context, event domain.FunnelEvent) error
}

// CheckoutPresenter is implemented by the host to show checkout surfaces.
type CheckoutPresenter interface {
	// PresentEmbedded shows the embedded payment surface for the intent.
	// The surface must resolve result exactly once; teardown without a
	// payment outcome must Fail it with domain.ErrDismissed.
	PresentEmbedded(ctx context.Context, intent *domain.PaymentIntent, result *async.Bridge[domain.CheckoutCallback]) error

	// PresentExternal opens the session URL in an external surface and
	// returns when the user comes back to the application. External
	// surfaces have no dismissal signal.
	PresentExternal(ctx context.Context, session *domain.CheckoutSession) error
}

// EventSink publishes domain events. Satisfied by the in-process bus.
type EventSink interface {
	PublishDomainEvent(ctx context.Context, event shareddomain.DomainEvent, payload any) error
}
