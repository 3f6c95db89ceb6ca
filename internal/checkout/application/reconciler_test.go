package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/nativestore"
	"github.com/stretchr/testify/require"
)

func ownedItem(id, productID string) nativestore.OwnedItem {
	return nativestore.OwnedItem{
		ID:          id,
		ProductID:   productID,
		Status:      "active",
		PurchasedAt: time.Now().Add(-24 * time.Hour),
	}
}

func webEntitlement(id, productID string) domain.Entitlement {
	return domain.Entitlement{
		ID:        id,
		ProductID: productID,
		Source:    domain.SourceWebCheckout,
		Active:    true,
		Status:    "active",
	}
}

func TestRestoreMergesBothSourcesWithoutDeduplicating(t *testing.T) {
	backend := &fakeBackend{entitlements: []domain.Entitlement{
		webEntitlement("web_1", "premium"),
	}}
	store := &fakeStore{owned: []nativestore.OwnedItem{
		ownedItem("native_1", "premium"),
	}}
	cache := newFakeCache()
	r := NewReconciler(backend, store, cache, testLogger())

	got, err := r.Restore(context.Background(), "user_1")
	require.NoError(t, err)

	// Same product from two rails stays as two entries.
	require.Len(t, got, 2)
	require.Equal(t, domain.SourceNativeStore, got[0].Source)
	require.Equal(t, domain.SourceWebCheckout, got[1].Source)

	cached, err := cache.Load(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, cached, 2)
}

func TestRestoreNativeFailureIsSwallowed(t *testing.T) {
	backend := &fakeBackend{entitlements: []domain.Entitlement{
		webEntitlement("web_1", "premium"),
	}}
	store := &fakeStore{ownedErr: errors.New("store unavailable")}
	r := NewReconciler(backend, store, newFakeCache(), testLogger())

	got, err := r.Restore(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "web_1", got[0].ID)
}

func TestRestoreWebFailureCarriesPartialNativeResult(t *testing.T) {
	cause := errors.New("backend down")
	backend := &fakeBackend{entitlementsErr: cause}
	store := &fakeStore{owned: []nativestore.OwnedItem{
		ownedItem("native_1", "premium"),
		ownedItem("native_2", "coins"),
	}}
	r := NewReconciler(backend, store, newFakeCache(), testLogger())

	got, err := r.Restore(context.Background(), "user_1")
	require.Nil(t, got)

	var restoreErr *domain.RestoreError
	require.ErrorAs(t, err, &restoreErr)
	require.ErrorIs(t, err, cause)
	require.Len(t, restoreErr.Partial, 2)
	require.Equal(t, domain.SourceNativeStore, restoreErr.Partial[0].Source)
}

func TestRestoreAlternateNativeSourceTagged(t *testing.T) {
	item := ownedItem("native_1", "premium")
	item.AlternateSource = true
	backend := &fakeBackend{}
	r := NewReconciler(backend, &fakeStore{owned: []nativestore.OwnedItem{item}}, nil, testLogger())

	got, err := r.Restore(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, domain.SourceAlternateNative, got[0].Source)
}

func TestRefreshWebSplicesLastKnownNative(t *testing.T) {
	backend := &fakeBackend{entitlements: []domain.Entitlement{
		webEntitlement("web_1", "premium"),
	}}
	store := &fakeStore{owned: []nativestore.OwnedItem{
		ownedItem("native_1", "coins"),
	}}
	r := NewReconciler(backend, store, newFakeCache(), testLogger())

	_, err := r.Restore(context.Background(), "user_1")
	require.NoError(t, err)

	// A later web-only refresh must not drop the native entries.
	backend.entitlements = append(backend.entitlements, webEntitlement("web_2", "premium"))
	got, err := r.RefreshWeb(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "native_1", got[0].ID)
}

func TestRefreshWebPropagatesBackendError(t *testing.T) {
	cause := errors.New("backend down")
	r := NewReconciler(&fakeBackend{entitlementsErr: cause}, nil, nil, testLogger())

	_, err := r.RefreshWeb(context.Background(), "user_1")
	require.ErrorIs(t, err, cause)
}

func TestRestoreCacheFailureDoesNotFailRestore(t *testing.T) {
	backend := &fakeBackend{entitlements: []domain.Entitlement{
		webEntitlement("web_1", "premium"),
	}}
	cache := newFakeCache()
	cache.saveErr = errors.New("disk full")
	r := NewReconciler(backend, nil, cache, testLogger())

	got, err := r.Restore(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestReconcileCatalogSetsNativePrices(t *testing.T) {
	store := &fakeStore{entries: []nativestore.CatalogEntry{
		{ProductID: "premium", Price: domain.Price{Amount: 999, Currency: "USD", Display: "$9.99"}},
	}}
	r := NewReconciler(&fakeBackend{}, store, nil, testLogger())

	products := []domain.Product{
		{ID: "premium", Price: domain.Price{Amount: 899, Currency: "USD"}},
		{ID: "coins", Price: domain.Price{Amount: 199, Currency: "USD"}},
	}
	got := r.ReconcileCatalog(context.Background(), products)

	require.NotNil(t, got[0].NativePrice)
	require.Equal(t, int64(999), got[0].NativePrice.Amount)
	require.Nil(t, got[1].NativePrice)

	// Input slice stays untouched.
	require.Nil(t, products[0].NativePrice)
}

func TestReconcileCatalogNativeFailureLeavesProductsUntouched(t *testing.T) {
	store := &fakeStore{entriesErr: errors.New("store unavailable")}
	r := NewReconciler(&fakeBackend{}, store, nil, testLogger())

	products := []domain.Product{{ID: "premium"}}
	got := r.ReconcileCatalog(context.Background(), products)
	require.Equal(t, products, got)
}
