package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/pkg/observability"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "pk_test_abc", Options{
		Logger:          testLogger(),
		Metrics:         observability.NewInMemoryMetrics(),
		BreakerDisabled: true,
	})
	require.NoError(t, err)
	return client, server
}

func TestNewClientKeyValidation(t *testing.T) {
	_, err := NewClient("https://api.example.com", "", Options{})
	require.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = NewClient("https://api.example.com", "sk_live_oops", Options{})
	require.ErrorIs(t, err, domain.ErrInvalidPublishableKey)

	c, err := NewClient("https://api.example.com/", "pk_live_abc", Options{})
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com", c.baseURL)
}

func TestGetProductsSendsKeyAndParsesCatalog(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "pk_test_abc", r.Header.Get("X-Publishable-Key"))
		require.Equal(t, "/iap/products/", r.URL.Path)
		require.Equal(t, "user_1", r.URL.Query().Get("user_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"products": [
				{"id": "premium", "name": "Premium", "type": "auto_renewing_subscription",
				 "price": {"amount": 999, "currency": "USD", "display": "$9.99"}}
			],
			"config": {
				"default_checkout_path": "external_session",
				"disabled_jurisdictions": ["regional_bloc"]
			}
		}`))
	})

	catalog, err := client.GetProducts(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, catalog.Products, 1)
	require.Equal(t, domain.ProductAutoRenewingSub, catalog.Products[0].Type)
	require.Equal(t, int64(999), catalog.Products[0].Price.Amount)
	require.Equal(t, domain.PathExternalSession, catalog.Config.PathFor(domain.JurisdictionDomestic))
	require.True(t, catalog.Config.WebCheckoutDisabled(domain.JurisdictionRegionalBloc))
}

func TestCreatePaymentIntentPostsJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/iap/payment-intents/", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "premium", body["product_id"])

		_, _ = w.Write([]byte(`{"id": "pi_1", "client_secret": "cs_x", "transaction_id": "txn_1",
			"amount": 999, "currency": "USD"}`))
	})

	intent, err := client.CreatePaymentIntent(context.Background(), "premium", "user_1")
	require.NoError(t, err)
	require.Equal(t, "pi_1", intent.ID)
	require.Equal(t, "txn_1", intent.TransactionID)
}

func TestAPIErrorParsing(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   string
		wantDetail string
	}{
		{"structured", http.StatusConflict, `{"code": "merchant_not_onboarded", "detail": "not onboarded"}`, "merchant_not_onboarded", "not onboarded"},
		{"error field", http.StatusBadRequest, `{"error": "bad request"}`, "", "bad request"},
		{"malformed body keeps raw text", http.StatusBadGateway, `upstream exploded`, "", "upstream exploded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GetTransaction(context.Background(), "txn_1")
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.wantCode, apiErr.Code)
			require.Equal(t, tt.wantDetail, apiErr.Detail)
		})
	}
}

func TestTransportErrorOnConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client, err := NewClient(server.URL, "pk_test_abc", Options{Logger: testLogger(), BreakerDisabled: true})
	require.NoError(t, err)

	_, err = client.GetTransaction(context.Background(), "txn_1")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestBreakerOpensAfterConsecutiveServerErrors(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, "pk_test_abc", Options{Logger: testLogger()})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := client.GetTransaction(context.Background(), "txn_1")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
	}
	require.Equal(t, 5, hits)

	// Breaker is open: the request never reaches the server and surfaces as
	// a connectivity failure.
	_, err = client.GetTransaction(context.Background(), "txn_1")
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, 5, hits)
}

func TestGetEntitlementsParsesSnapshot(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/iap/entitlements/", r.URL.Path)
		_, _ = w.Write([]byte(`{"entitlements": [
			{"id": "ent_1", "product_id": "premium", "source": "web_checkout",
			 "active": true, "status": "active", "will_renew": true}
		]}`))
	})

	got, err := client.GetEntitlements(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, domain.SourceWebCheckout, got[0].Source)
	require.True(t, got[0].WillRenew)
}

func TestPauseSubscriptionReturnsResumeDate(t *testing.T) {
	resumes := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/iap/subscriptions/pause/", r.URL.Path)
		_, _ = w.Write([]byte(`{"resumes_at": "2026-10-01T00:00:00Z"}`))
	})

	got, err := client.PauseSubscription(context.Background(), "user_1", "pause_30")
	require.NoError(t, err)
	require.Equal(t, resumes, got)
}

func TestTrackFunnelEventIgnoresResponseBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/iap/funnel-events/", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	})

	err := client.TrackFunnelEvent(context.Background(), domain.FunnelEvent{
		Name:      "checkout.started",
		ProductID: "premium",
	})
	require.NoError(t, err)
}
