package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/nativestore"
	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/persistence"
)

// Reconciler merges entitlements from the native store and the web backend.
// The two sources stay independent: native failures are logged and swallowed,
// web failures are fatal but carry the native entries collected so far. The
// merge never deduplicates; one purchase known to both sources appears twice.
type Reconciler struct {
	backend EntitlementBackend
	store   nativestore.Store
	cache   persistence.EntitlementCache
	logger  *slog.Logger

	mu     sync.Mutex
	native []domain.Entitlement
}

// NewReconciler creates a reconciler. A nil store or cache falls back to the
// disabled implementations.
func NewReconciler(backend EntitlementBackend, store nativestore.Store, cache persistence.EntitlementCache, logger *slog.Logger) *Reconciler {
	if store == nil {
		store = nativestore.Disabled{}
	}
	if cache == nil {
		cache = persistence.NoopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		backend: backend,
		store:   store,
		cache:   cache,
		logger:  logger,
	}
}

// Restore fetches both sources and returns the merged snapshot. When the web
// fetch fails the error is a RestoreError carrying the native entries already
// collected, so callers are never left with nothing.
func (r *Reconciler) Restore(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	native := r.refreshNative(ctx)

	web, err := r.backend.GetEntitlements(ctx, userID)
	if err != nil {
		return nil, &domain.RestoreError{Partial: native, Cause: err}
	}

	merged := merge(native, web)
	r.saveSnapshot(ctx, userID, merged)
	return merged, nil
}

// RefreshWeb re-fetches only the web source and splices it with the
// last-known native entries. Used after a completed web checkout, where
// re-querying the native store would be wasted work.
func (r *Reconciler) RefreshWeb(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	web, err := r.backend.GetEntitlements(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	native := append([]domain.Entitlement(nil), r.native...)
	r.mu.Unlock()

	merged := merge(native, web)
	r.saveSnapshot(ctx, userID, merged)
	return merged, nil
}

// ReconcileCatalog decorates backend products with native-store prices.
// Native lookup failures leave the products untouched.
func (r *Reconciler) ReconcileCatalog(ctx context.Context, products []domain.Product) []domain.Product {
	if len(products) == 0 {
		return products
	}
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	entries, err := r.store.FetchCatalogEntries(ctx, ids)
	if err != nil {
		r.logger.Warn("native catalog lookup failed", "error", err)
		return products
	}
	if len(entries) == 0 {
		return products
	}

	prices := make(map[string]domain.Price, len(entries))
	for _, e := range entries {
		prices[e.ProductID] = e.Price
	}
	out := append([]domain.Product(nil), products...)
	for i := range out {
		if p, ok := prices[out[i].ID]; ok {
			price := p
			out[i].NativePrice = &price
		}
	}
	return out
}

// CachedSnapshot returns the last persisted snapshot for a user, or nil.
func (r *Reconciler) CachedSnapshot(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	return r.cache.Load(ctx, userID)
}

// refreshNative queries the native store and updates the retained snapshot.
// On failure the previous snapshot stands in, so a flaky native layer does
// not erase entitlements the user was already shown.
func (r *Reconciler) refreshNative(ctx context.Context) []domain.Entitlement {
	items, err := r.store.CurrentOwnedItems(ctx)
	if err != nil {
		r.logger.Warn("native entitlement lookup failed", "error", err)
		r.mu.Lock()
		defer r.mu.Unlock()
		return append([]domain.Entitlement(nil), r.native...)
	}

	native := make([]domain.Entitlement, 0, len(items))
	for _, item := range items {
		native = append(native, item.Entitlement())
	}

	r.mu.Lock()
	r.native = native
	snapshot := append([]domain.Entitlement(nil), native...)
	r.mu.Unlock()
	return snapshot
}

func (r *Reconciler) saveSnapshot(ctx context.Context, userID string, entitlements []domain.Entitlement) {
	if userID == "" {
		return
	}
	if err := r.cache.Save(ctx, userID, entitlements); err != nil {
		r.logger.Warn("failed to cache entitlement snapshot",
			"user_id", userID,
			"error", err,
		)
	}
}

func merge(native, web []domain.Entitlement) []domain.Entitlement {
	merged := make([]domain.Entitlement, 0, len(native)+len(web))
	merged = append(merged, native...)
	merged = append(merged, web...)
	return merged
}
