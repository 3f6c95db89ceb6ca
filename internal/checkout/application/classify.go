package application

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/api"
)

// classify maps a backend error to a CheckoutError with a stable failure
// reason. Sentinel errors and already-classified errors pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var checkoutErr *domain.CheckoutError
	if errors.As(err, &checkoutErr) {
		return err
	}
	var verificationErr *domain.VerificationError
	if errors.As(err, &verificationErr) {
		return err
	}
	if errors.Is(err, domain.ErrCancelled) || errors.Is(err, domain.ErrDismissed) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var transportErr *api.TransportError
	if errors.As(err, &transportErr) {
		return domain.NewCheckoutError(domain.ReasonNetworkUnavailable, transportErr.Error(), err)
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		ce := domain.NewCheckoutError(domain.ReasonOther, apiErr.Detail, err)
		ce.Code = apiErr.Code
		ce.StatusCode = apiErr.StatusCode
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			ce.Reason = domain.ReasonProductNotFound
		case apiErr.Code == "merchant_not_onboarded":
			ce.Reason = domain.ReasonMerchantNotOnboarded
		case strings.HasPrefix(apiErr.Code, "stripe_"):
			ce.Reason = domain.ReasonStripe
		case apiErr.StatusCode >= 500:
			ce.Reason = domain.ReasonServer
		}
		return ce
	}

	return domain.NewCheckoutError(domain.ReasonOther, err.Error(), err)
}

// failureReason extracts the classified reason for event reporting.
func failureReason(err error) domain.FailureReason {
	var checkoutErr *domain.CheckoutError
	if errors.As(err, &checkoutErr) {
		return checkoutErr.Reason
	}
	var verificationErr *domain.VerificationError
	if errors.As(err, &verificationErr) {
		return domain.ReasonVerificationFailed
	}
	return domain.ReasonOther
}
