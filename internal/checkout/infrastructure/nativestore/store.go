// Package nativestore defines the port to the platform billing library. The
// real implementation is supplied by the host application; the engine only
// consumes this interface.
package nativestore

import (
	"context"
	"time"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
)

// CatalogEntry is a product as known to the native store, used to populate
// native prices during catalog reconciliation.
type CatalogEntry struct {
	ProductID string
	Price     domain.Price
}

// PurchaseDetails describes a native purchase request.
type PurchaseDetails struct {
	ProductID  string
	OfferToken string
}

// OwnedItem is a purchase currently owned by the user on the native store.
type OwnedItem struct {
	ID           string
	ProductID    string
	Status       string
	PurchasedAt  time.Time
	ExpiresAt    *time.Time
	AutoRenewing bool
	// AlternateSource marks items granted through a secondary native
	// billing channel rather than the primary store account.
	AlternateSource bool
}

// Store is the native billing library surface the engine depends on.
type Store interface {
	// FetchCatalogEntries returns native catalog data for the given ids.
	FetchCatalogEntries(ctx context.Context, ids []string) ([]CatalogEntry, error)

	// Purchase runs a native purchase and returns the purchase token.
	Purchase(ctx context.Context, details PurchaseDetails) (string, error)

	// CurrentOwnedItems lists the user's currently owned native purchases.
	CurrentOwnedItems(ctx context.Context) ([]OwnedItem, error)
}

// Entitlement converts an owned item to the engine's entitlement model.
func (i OwnedItem) Entitlement() domain.Entitlement {
	source := domain.SourceNativeStore
	if i.AlternateSource {
		source = domain.SourceAlternateNative
	}
	status := i.Status
	if status == "" {
		status = "active"
	}
	return domain.Entitlement{
		ID:          i.ID,
		ProductID:   i.ProductID,
		Source:      source,
		Active:      true,
		Status:      status,
		PurchasedAt: i.PurchasedAt,
		ExpiresAt:   i.ExpiresAt,
		WillRenew:   i.AutoRenewing,
	}
}

// Disabled is the no-op store used when native-store transaction syncing is
// switched off in configuration.
type Disabled struct{}

func (Disabled) FetchCatalogEntries(ctx context.Context, ids []string) ([]CatalogEntry, error) {
	return nil, nil
}

func (Disabled) Purchase(ctx context.Context, details PurchaseDetails) (string, error) {
	return "", domain.ErrNativeStoreVerification
}

func (Disabled) CurrentOwnedItems(ctx context.Context) ([]OwnedItem, error) {
	return nil, nil
}

var _ Store = Disabled{}
