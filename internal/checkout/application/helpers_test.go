package application

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/nativestore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend implements Backend, EntitlementBackend, and FunnelBackend.
type fakeBackend struct {
	mu sync.Mutex

	catalog    *domain.Catalog
	catalogErr error

	intent    *domain.PaymentIntent
	intentErr error

	session    *domain.CheckoutSession
	sessionErr error

	transactions   map[string]*domain.Transaction
	transactionErr error
	fetchCalls     int

	entitlements    []domain.Entitlement
	entitlementsErr error

	migrationCalls int
	funnelEvents   []domain.FunnelEvent
	funnelErr      error
}

func (b *fakeBackend) GetProducts(ctx context.Context, userID string) (*domain.Catalog, error) {
	if b.catalogErr != nil {
		return nil, b.catalogErr
	}
	return b.catalog, nil
}

func (b *fakeBackend) CreateCheckoutSession(ctx context.Context, productID, userID string, path domain.CheckoutPath) (*domain.CheckoutSession, error) {
	if b.sessionErr != nil {
		return nil, b.sessionErr
	}
	return b.session, nil
}

func (b *fakeBackend) CreatePaymentIntent(ctx context.Context, productID, userID string) (*domain.PaymentIntent, error) {
	if b.intentErr != nil {
		return nil, b.intentErr
	}
	return b.intent, nil
}

func (b *fakeBackend) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	b.mu.Lock()
	b.fetchCalls++
	b.mu.Unlock()
	if b.transactionErr != nil {
		return nil, b.transactionErr
	}
	if txn, ok := b.transactions[transactionID]; ok {
		return txn, nil
	}
	return &domain.Transaction{ID: transactionID, Status: domain.TransactionCompleted}, nil
}

func (b *fakeBackend) GetEntitlements(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	if b.entitlementsErr != nil {
		return nil, b.entitlementsErr
	}
	return b.entitlements, nil
}

func (b *fakeBackend) ReportMigrationConverted(ctx context.Context, userID, transactionID string) error {
	b.mu.Lock()
	b.migrationCalls++
	b.mu.Unlock()
	return nil
}

func (b *fakeBackend) TrackFunnelEvent(ctx context.Context, event domain.FunnelEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.funnelErr != nil {
		return b.funnelErr
	}
	b.funnelEvents = append(b.funnelEvents, event)
	return nil
}

func (b *fakeBackend) transactionFetches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetchCalls
}

// fakeStore implements nativestore.Store.
type fakeStore struct {
	entries    []nativestore.CatalogEntry
	entriesErr error
	owned      []nativestore.OwnedItem
	ownedErr   error
}

func (s *fakeStore) FetchCatalogEntries(ctx context.Context, ids []string) ([]nativestore.CatalogEntry, error) {
	if s.entriesErr != nil {
		return nil, s.entriesErr
	}
	return s.entries, nil
}

func (s *fakeStore) Purchase(ctx context.Context, details nativestore.PurchaseDetails) (string, error) {
	return "token", nil
}

func (s *fakeStore) CurrentOwnedItems(ctx context.Context) ([]nativestore.OwnedItem, error) {
	if s.ownedErr != nil {
		return nil, s.ownedErr
	}
	return s.owned, nil
}

// fakeCache implements persistence.EntitlementCache.
type fakeCache struct {
	mu      sync.Mutex
	saved   map[string][]domain.Entitlement
	saveErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{saved: make(map[string][]domain.Entitlement)}
}

func (c *fakeCache) Save(ctx context.Context, userID string, entitlements []domain.Entitlement) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.saved[userID] = entitlements
	return nil
}

func (c *fakeCache) Load(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved[userID], nil
}
