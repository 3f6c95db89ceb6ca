// Package api implements the Tollgate backend client: JSON over HTTPS,
// authenticated with a static publishable key, circuit-broken against a
// flapping backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	cfdomain "github.com/felixgeelhaar/tollgate/internal/cancelflow/domain"
	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	updomain "github.com/felixgeelhaar/tollgate/internal/upgrade/domain"
	"github.com/felixgeelhaar/tollgate/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

const publishableKeyHeader = "X-Publishable-Key"

// Options tunes the client. Zero value gives production defaults.
type Options struct {
	HTTPClient      *http.Client
	Logger          *slog.Logger
	Metrics         observability.Metrics
	BreakerDisabled bool
}

type httpResult struct {
	status int
	body   []byte
}

// Client talks to the Tollgate backend.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[httpResult]
	logger     *slog.Logger
	metrics    observability.Metrics
}

// NewClient validates the publishable key and builds a client.
func NewClient(baseURL, publishableKey string, opts Options) (*Client, error) {
	if publishableKey == "" {
		return nil, domain.ErrNotConfigured
	}
	if !strings.HasPrefix(publishableKey, "pk_") {
		return nil, domain.ErrInvalidPublishableKey
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        publishableKey,
		httpClient: httpClient,
		logger:     logger,
		metrics:    metrics,
	}

	if !opts.BreakerDisabled {
		settings := gobreaker.Settings{
			Name:        "tollgate-backend",
			MaxRequests: 3,
			Interval:    10 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Info("circuit breaker state changed",
					"name", name,
					"from", from.String(),
					"to", to.String(),
				)
			},
		}
		c.breaker = gobreaker.NewCircuitBreaker[httpResult](settings)
	}

	return c, nil
}

// GetProducts fetches the catalog plus the remote checkout policy.
func (c *Client) GetProducts(ctx context.Context, userID string) (*domain.Catalog, error) {
	query := url.Values{}
	if userID != "" {
		query.Set("user_id", userID)
	}
	var resp productsResponse
	if err := c.get(ctx, "/iap/products/", query, &resp); err != nil {
		return nil, err
	}

	catalog := &domain.Catalog{Config: resp.Config.toDomain()}
	for _, p := range resp.Products {
		catalog.Products = append(catalog.Products, p.toDomain())
	}
	return catalog, nil
}

// CreateCheckoutSession opens an external browser-hosted checkout attempt.
func (c *Client) CreateCheckoutSession(ctx context.Context, productID, userID string, path domain.CheckoutPath) (*domain.CheckoutSession, error) {
	req := checkoutSessionRequest{ProductID: productID, UserID: userID, Path: string(path)}
	var resp checkoutSessionResponse
	if err := c.post(ctx, "/iap/checkout-sessions/", req, &resp); err != nil {
		return nil, err
	}
	return &domain.CheckoutSession{
		ID:            resp.ID,
		CheckoutURL:   resp.CheckoutURL,
		TransactionID: resp.TransactionID,
		ProductID:     resp.ProductID,
	}, nil
}

// CreatePaymentIntent opens an embedded-view checkout attempt.
func (c *Client) CreatePaymentIntent(ctx context.Context, productID, userID string) (*domain.PaymentIntent, error) {
	req := paymentIntentRequest{ProductID: productID, UserID: userID}
	var resp paymentIntentResponse
	if err := c.post(ctx, "/iap/payment-intents/", req, &resp); err != nil {
		return nil, err
	}
	return &domain.PaymentIntent{
		ID:            resp.ID,
		ClientSecret:  resp.ClientSecret,
		TransactionID: resp.TransactionID,
		CheckoutURL:   resp.CheckoutURL,
		ProductID:     resp.ProductID,
		Amount:        resp.Amount,
		Currency:      resp.Currency,
	}, nil
}

// GetTransaction fetches a transaction's settlement status.
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var resp transactionDTO
	path := fmt.Sprintf("/iap/transactions/%s/", url.PathEscape(transactionID))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// GetEntitlements fetches the web-checkout entitlement list for a user.
func (c *Client) GetEntitlements(ctx context.Context, userID string) ([]domain.Entitlement, error) {
	query := url.Values{}
	query.Set("user_id", userID)
	var resp entitlementsResponse
	if err := c.get(ctx, "/iap/entitlements/", query, &resp); err != nil {
		return nil, err
	}
	out := make([]domain.Entitlement, 0, len(resp.Entitlements))
	for _, e := range resp.Entitlements {
		out = append(out, e.toDomain())
	}
	return out, nil
}

// GetCancelFlowConfig fetches the cancellation questionnaire configuration.
func (c *Client) GetCancelFlowConfig(ctx context.Context, userID, productID string) (*cfdomain.Config, error) {
	req := cancelFlowConfigRequest{UserID: userID, ProductID: productID}
	var resp cancelFlowConfigResponse
	if err := c.post(ctx, "/iap/cancel-flow/", req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// RespondCancelFlow submits the outcome of a cancellation flow.
func (c *Client) RespondCancelFlow(ctx context.Context, resp cfdomain.Submission) error {
	req := cancelFlowRespondRequest{
		UserID:     resp.UserID,
		Outcome:    resp.Outcome,
		LastStep:   resp.LastStep,
		OfferShown: resp.OfferShown,
		PauseShown: resp.PauseShown,
		Answers:    resp.Answers,
	}
	return c.postVoid(ctx, "/iap/cancel-flow/respond/", req)
}

// PauseSubscription pauses the user's subscription for the selected option
// and returns the backend-computed resume date.
func (c *Client) PauseSubscription(ctx context.Context, userID, optionID string) (time.Time, error) {
	req := pauseSubscriptionRequest{UserID: userID, OptionID: optionID}
	var resp pauseSubscriptionResponse
	if err := c.post(ctx, "/iap/subscriptions/pause/", req, &resp); err != nil {
		return time.Time{}, err
	}
	return resp.ResumesAt, nil
}

// GetUpgradeOffer fetches the upgrade offer for a user.
func (c *Client) GetUpgradeOffer(ctx context.Context, userID, productID string) (*updomain.Offer, error) {
	req := upgradeOfferRequest{UserID: userID, ProductID: productID}
	var resp upgradeOfferResponse
	if err := c.post(ctx, "/iap/upgrade-offer/", req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// RespondUpgradeOffer reports the user's decision on an upgrade offer.
func (c *Client) RespondUpgradeOffer(ctx context.Context, userID string, decision updomain.Decision) error {
	req := upgradeRespondRequest{UserID: userID, Decision: string(decision)}
	return c.postVoid(ctx, "/iap/upgrade-offer/respond/", req)
}

// ExecuteUpgrade performs the subscription upgrade.
func (c *Client) ExecuteUpgrade(ctx context.Context, userID, productID string) error {
	req := executeUpgradeRequest{UserID: userID, ProductID: productID}
	return c.postVoid(ctx, "/iap/upgrade-offer/execute/", req)
}

// ReportMigrationConverted records that a native-store subscriber converted
// to web billing.
func (c *Client) ReportMigrationConverted(ctx context.Context, userID, transactionID string) error {
	req := migrationConvertedRequest{UserID: userID, TransactionID: transactionID}
	return c.postVoid(ctx, "/iap/migration-converted/", req)
}

// CreateCustomerPortalSession returns a URL to the hosted billing portal.
func (c *Client) CreateCustomerPortalSession(ctx context.Context, userID string) (string, error) {
	req := portalSessionRequest{UserID: userID}
	var resp portalSessionResponse
	if err := c.post(ctx, "/iap/customer-portal-sessions/", req, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// TrackFunnelEvent reports a funnel analytics event. Callers treat this as
// fire-and-forget; delivery is not guaranteed.
func (c *Client) TrackFunnelEvent(ctx context.Context, event domain.FunnelEvent) error {
	req := funnelEventRequest{
		Name:       event.Name,
		UserID:     event.UserID,
		ProductID:  event.ProductID,
		Properties: event.Properties,
		OccurredAt: time.Now().UTC(),
	}
	return c.postVoid(ctx, "/iap/funnel-events/", req)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) postVoid(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	op := method + " " + path
	start := time.Now()

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(publishableKeyHeader, c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	result, err := c.roundtrip(op, req)

	c.metrics.Timing("backend.request_duration", time.Since(start), observability.T("op", op))
	c.metrics.Counter("backend.requests", 1,
		observability.T("op", op),
		observability.T("status", strconv.Itoa(result.status)),
	)

	if err != nil {
		c.logger.DebugContext(ctx, "backend request failed", "op", op, "error", err)
		return err
	}

	if result.status < 200 || result.status > 299 {
		return parseAPIError(result)
	}
	if out != nil {
		if err := json.Unmarshal(result.body, out); err != nil {
			return fmt.Errorf("failed to decode response for %s: %w", op, err)
		}
	}
	return nil
}

// roundtrip performs the HTTP exchange under the circuit breaker. Only
// connectivity failures and 5xx responses count against the breaker.
func (c *Client) roundtrip(op string, req *http.Request) (httpResult, error) {
	exchange := func() (httpResult, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return httpResult{}, &TransportError{Op: op, Err: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return httpResult{status: resp.StatusCode}, &TransportError{Op: op, Err: err}
		}

		result := httpResult{status: resp.StatusCode, body: data}
		if resp.StatusCode >= 500 {
			return result, parseAPIError(result)
		}
		return result, nil
	}

	if c.breaker == nil {
		return exchange()
	}

	result, err := c.breaker.Execute(exchange)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return httpResult{}, &TransportError{Op: op, Err: err}
	}
	return result, err
}

func parseAPIError(result httpResult) error {
	apiErr := &APIError{StatusCode: result.status}

	var parsed errorBody
	if err := json.Unmarshal(result.body, &parsed); err == nil {
		apiErr.Code = parsed.Code
		apiErr.Detail = parsed.Detail
		if apiErr.Detail == "" {
			apiErr.Detail = parsed.Error
		}
	}
	if apiErr.Detail == "" {
		// Malformed body: keep the raw text so the status code is never lost.
		apiErr.Detail = strings.TrimSpace(string(result.body))
	}
	return apiErr
}
