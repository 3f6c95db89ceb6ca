package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured indicates the client was built without a publishable key.
	ErrNotConfigured = errors.New("client not configured")

	// ErrInvalidPublishableKey indicates the publishable key has the wrong shape.
	ErrInvalidPublishableKey = errors.New("invalid publishable key")

	// ErrProductNotFound indicates the requested product is not in the catalog.
	ErrProductNotFound = errors.New("product not found")

	// ErrUserIDRequired indicates a purchase needs a backend user identity.
	ErrUserIDRequired = errors.New("user id required for this product type")

	// ErrWebCheckoutDisabled indicates web checkout is off for the caller's jurisdiction.
	ErrWebCheckoutDisabled = errors.New("web checkout disabled for jurisdiction")

	// ErrCancelled indicates the user abandoned the purchase before paying.
	ErrCancelled = errors.New("checkout cancelled")

	// ErrDismissed indicates the presenting surface was torn down without a result.
	ErrDismissed = errors.New("presentation surface dismissed")

	// ErrPurchasePending indicates another purchase attempt is already in flight.
	ErrPurchasePending = errors.New("purchase already pending")

	// ErrInvalidCallbackURL indicates a callback URI matched the checkout pattern
	// but carried unusable data.
	ErrInvalidCallbackURL = errors.New("invalid checkout callback url")

	// ErrNativeStoreVerification indicates the native store rejected a receipt.
	ErrNativeStoreVerification = errors.New("native store verification failed")
)

// FailureReason classifies why a checkout attempt failed.
type FailureReason string

const (
	ReasonProductNotFound      FailureReason = "product_not_found"
	ReasonMerchantNotOnboarded FailureReason = "merchant_not_onboarded"
	ReasonStripe               FailureReason = "stripe_error"
	ReasonServer               FailureReason = "server_error"
	ReasonNetworkUnavailable   FailureReason = "network_unavailable"
	ReasonVerificationFailed   FailureReason = "verification_failed"
	ReasonOther                FailureReason = "other"
)

// CheckoutError is a classified checkout failure. Code and StatusCode are
// populated for the provider and server variants respectively.
type CheckoutError struct {
	Reason     FailureReason
	Code       string
	StatusCode int
	Message    string
	cause      error
}

// NewCheckoutError builds a classified failure wrapping its cause.
func NewCheckoutError(reason FailureReason, message string, cause error) *CheckoutError {
	return &CheckoutError{Reason: reason, Message: message, cause: cause}
}

func (e *CheckoutError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("checkout failed (%s): %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("checkout failed (%s)", e.Reason)
}

func (e *CheckoutError) Unwrap() error { return e.cause }

// VerificationError indicates transaction settlement could not be confirmed.
// StillProcessing distinguishes "did not settle in time" from a genuine
// failure; it must never be reported as success.
type VerificationError struct {
	TransactionID   string
	Attempts        int
	LastStatus      TransactionStatus
	StillProcessing bool
}

func (e *VerificationError) Error() string {
	if e.StillProcessing {
		return fmt.Sprintf("transaction %s still processing after %d attempts", e.TransactionID, e.Attempts)
	}
	return fmt.Sprintf("transaction %s verification timed out after %d attempts", e.TransactionID, e.Attempts)
}

// RestoreError indicates the web entitlement fetch failed during restore.
// Partial carries whatever native-store entitlements were already collected so
// the caller is never left with nothing.
type RestoreError struct {
	Partial []Entitlement
	Cause   error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore entitlements failed (%d partial): %v", len(e.Partial), e.Cause)
}

func (e *RestoreError) Unwrap() error { return e.Cause }
