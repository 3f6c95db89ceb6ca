// Package persistence provides optional last-known entitlement snapshots so
// hosts can render an entitlement view before the first restore completes.
// All implementations are best-effort from the reconciler's point of view.
package persistence

import (
	"context"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
)

// EntitlementCache stores the last reconciled entitlement snapshot per user.
type EntitlementCache interface {
	// Save replaces the cached snapshot for a user.
	Save(ctx context.Context, userID string, entitlements []domain.Entitlement) error

	// Load returns the cached snapshot, or nil when none exists.
	Load(ctx context.Context, userID string) ([]domain.Entitlement, error)
}

// NoopCache discards snapshots. Used when caching is disabled.
type NoopCache struct{}

func (NoopCache) Save(ctx context.Context, userID string, entitlements []domain.Entitlement) error {
	return nil
}

func (NoopCache) Load(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	return nil, nil
}

var _ EntitlementCache = NoopCache{}
