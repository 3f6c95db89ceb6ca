package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/deeplink"
	shareddomain "github.com/felixgeelhaar/tollgate/internal/shared/domain"
	"github.com/felixgeelhaar/tollgate/pkg/observability"
	"github.com/google/uuid"
)

// PurchaseResult is the outcome of a completed purchase. Entitlements holds
// the refreshed snapshot; it may be nil when the post-checkout refresh failed,
// the purchase itself still succeeded.
type PurchaseResult struct {
	Transaction  *domain.Transaction
	Entitlements []domain.Entitlement
}

// Orchestrator drives a purchase end to end: catalog lookup, path selection,
// surface handoff, settlement verification, and entitlement refresh. At most
// one purchase is pending at a time; the pending flag is released on every
// exit path.
type Orchestrator struct {
	backend      Backend
	verifier     *Verifier
	reconciler   *Reconciler
	parser       *deeplink.Parser
	events       EventSink
	jurisdiction domain.Jurisdiction
	logger       *slog.Logger

	pending pendingState
}

// NewOrchestrator wires the checkout orchestrator.
func NewOrchestrator(
	backend Backend,
	verifier *Verifier,
	reconciler *Reconciler,
	parser *deeplink.Parser,
	events EventSink,
	jurisdiction domain.Jurisdiction,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		backend:      backend,
		verifier:     verifier,
		reconciler:   reconciler,
		parser:       parser,
		events:       events,
		jurisdiction: jurisdiction,
		logger:       logger,
	}
}

// Products returns the catalog with native-store prices reconciled in.
func (o *Orchestrator) Products(ctx context.Context, userID string) ([]domain.Product, error) {
	catalog, err := o.backend.GetProducts(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	return o.reconciler.ReconcileCatalog(ctx, catalog.Products), nil
}

// Pending reports whether a purchase attempt is currently in flight.
func (o *Orchestrator) Pending() bool {
	return o.pending.pending()
}

// Purchase runs one checkout attempt for a product. The presenter shows
// whichever surface the remote config selects for this jurisdiction. Returns
// ErrCancelled or ErrDismissed when the user backed out, a CheckoutError for
// classified failures.
func (o *Orchestrator) Purchase(ctx context.Context, productID, userID string, presenter CheckoutPresenter) (*PurchaseResult, error) {
	catalog, err := o.backend.GetProducts(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	product := catalog.FindProduct(productID)
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if userID == "" && product.Type.RequiresUserID() {
		return nil, domain.ErrUserIDRequired
	}
	if catalog.Config.WebCheckoutDisabled(o.jurisdiction) {
		return nil, domain.ErrWebCheckoutDisabled
	}
	path := catalog.Config.PathFor(o.jurisdiction)

	att := o.pending.begin(productID, userID)
	defer o.pending.clear(att)

	o.publish(ctx, domain.NewCheckoutStarted(productID, userID, path), userID)

	var txn *domain.Transaction
	switch path {
	case domain.PathEmbeddedView:
		txn, err = o.purchaseEmbedded(ctx, att, presenter)
	default:
		txn, err = o.purchaseExternal(ctx, att, path, presenter)
	}
	if err != nil {
		err = classify(err)
		if errors.Is(err, domain.ErrCancelled) || errors.Is(err, domain.ErrDismissed) {
			o.publish(ctx, domain.NewCheckoutCancelled(productID, userID), userID)
		} else {
			o.publish(ctx, domain.NewCheckoutFailed(productID, userID, failureReason(err)), userID)
		}
		return nil, err
	}

	o.reportMigrationConverted(ctx, catalog.Config, product, userID, txn)

	entitlements, refreshErr := o.reconciler.RefreshWeb(ctx, userID)
	if refreshErr != nil {
		o.logger.Warn("entitlement refresh after checkout failed",
			"transaction_id", txn.ID,
			"error", refreshErr,
		)
	}

	o.publish(ctx, domain.NewCheckoutCompleted(productID, userID, txn.ID), userID)
	return &PurchaseResult{Transaction: txn, Entitlements: entitlements}, nil
}

// HandleCallback feeds an incoming URI to the engine. Returns true when the
// URI was a checkout callback consumed by a pending attempt. Hosts call this
// for every URI the application receives; anything unrelated returns false.
func (o *Orchestrator) HandleCallback(ctx context.Context, raw string) bool {
	cb := o.parser.Parse(raw)
	if cb == nil {
		return false
	}
	if !o.pending.consume(*cb) {
		o.logger.Info("checkout callback with no pending attempt",
			"transaction_id", cb.TransactionID,
			"status", cb.Status,
		)
		return false
	}
	o.publish(ctx, domain.NewCallbackReceived(*cb), "")
	return true
}

// Restore runs the two-source entitlement reconciliation.
func (o *Orchestrator) Restore(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	entitlements, err := o.reconciler.Restore(ctx, userID)
	if err != nil {
		return nil, err
	}
	o.publish(ctx, domain.NewEntitlementsRestored(userID, len(entitlements)), userID)
	return entitlements, nil
}

// purchaseEmbedded runs the embedded-view path. The payment intent carries a
// pre-assigned transaction id, so a success signal needs one confirming fetch
// rather than a polling loop.
func (o *Orchestrator) purchaseEmbedded(ctx context.Context, att *attempt, presenter CheckoutPresenter) (*domain.Transaction, error) {
	intent, err := o.backend.CreatePaymentIntent(ctx, att.productID, att.userID)
	if err != nil {
		return nil, err
	}
	if err := presenter.PresentEmbedded(ctx, intent, att.bridge); err != nil {
		return nil, err
	}

	cb, err := att.bridge.Await(ctx)
	if err != nil {
		return nil, err
	}

	transactionID := cb.TransactionID
	if transactionID == "" {
		transactionID = intent.TransactionID
	}
	return o.confirm(ctx, cb, transactionID)
}

// purchaseExternal runs the external-session and browser-tab paths. The
// result arrives either as a deep link consumed while the surface was open,
// or not at all, in which case the session's transaction is polled.
func (o *Orchestrator) purchaseExternal(ctx context.Context, att *attempt, path domain.CheckoutPath, presenter CheckoutPresenter) (*domain.Transaction, error) {
	session, err := o.backend.CreateCheckoutSession(ctx, att.productID, att.userID, path)
	if err != nil {
		return nil, err
	}
	if err := presenter.PresentExternal(ctx, session); err != nil {
		return nil, err
	}

	if cb := att.consumedCallback(); cb != nil {
		return o.confirm(ctx, *cb, cb.TransactionID)
	}

	// No callback arrived. If the backend pre-assigned a transaction the
	// user may still have paid; poll it. Otherwise the attempt is
	// indistinguishable from an abandoned one.
	if session.TransactionID != "" {
		return o.verifier.Verify(ctx, session.TransactionID)
	}
	return nil, domain.ErrCancelled
}

// confirm turns a progressable callback into a verified transaction. An
// explicit success gets a single confirming fetch; a processing signal goes
// through the polling verifier.
func (o *Orchestrator) confirm(ctx context.Context, cb domain.CheckoutCallback, transactionID string) (*domain.Transaction, error) {
	if !cb.Progressable() {
		return nil, domain.ErrCancelled
	}
	if transactionID == "" {
		return nil, domain.ErrInvalidCallbackURL
	}
	if cb.Success() {
		txn, err := o.backend.GetTransaction(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		if txn.Status == domain.TransactionCompleted {
			return txn, nil
		}
		// The redirect raced the settlement record; fall back to polling.
	}
	return o.verifier.Verify(ctx, transactionID)
}

// reportMigrationConverted tells the backend a native-store subscriber bought
// the product the migration prompt steers to. Best-effort.
func (o *Orchestrator) reportMigrationConverted(ctx context.Context, cfg *domain.RemoteConfig, product *domain.Product, userID string, txn *domain.Transaction) {
	if cfg == nil || cfg.Migration == nil || !cfg.Migration.Enabled {
		return
	}
	if cfg.Migration.ProductID != product.ID || userID == "" {
		return
	}
	if err := o.backend.ReportMigrationConverted(ctx, userID, txn.ID); err != nil {
		o.logger.Warn("failed to report migration conversion",
			"transaction_id", txn.ID,
			"error", err,
		)
	}
}

func (o *Orchestrator) publish(ctx context.Context, event shareddomain.DomainEvent, userID string) {
	if o.events == nil {
		return
	}
	if base, ok := event.(interface{ SetMetadata(shareddomain.EventMetadata) }); ok {
		metadata := shareddomain.EventMetadata{UserID: userID}
		if id, err := uuid.Parse(observability.CorrelationIDFromContext(ctx)); err == nil {
			metadata.CorrelationID = id
		}
		base.SetMetadata(metadata)
	}
	if err := o.events.PublishDomainEvent(ctx, event, event); err != nil {
		o.logger.Warn("failed to publish checkout event",
			"routing_key", event.RoutingKey(),
			"error", err,
		)
	}
}
