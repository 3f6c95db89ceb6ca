package domain

import (
	shared "github.com/felixgeelhaar/tollgate/internal/shared/domain"
)

// Routing keys for checkout lifecycle events.
const (
	EventCheckoutStarted      = "checkout.started"
	EventCheckoutCompleted    = "checkout.completed"
	EventCheckoutCancelled    = "checkout.cancelled"
	EventCheckoutFailed       = "checkout.failed"
	EventCallbackReceived     = "checkout.callback_received"
	EventEntitlementsRestored = "checkout.entitlements_restored"
)

// CheckoutStarted is published right before a checkout surface is presented.
type CheckoutStarted struct {
	shared.BaseEvent
	ProductID string       `json:"product_id"`
	UserID    string       `json:"user_id,omitempty"`
	Path      CheckoutPath `json:"path"`
}

// NewCheckoutStarted creates a CheckoutStarted event.
func NewCheckoutStarted(productID, userID string, path CheckoutPath) *CheckoutStarted {
	return &CheckoutStarted{
		BaseEvent: shared.NewBaseEvent(productID, "checkout", EventCheckoutStarted),
		ProductID: productID,
		UserID:    userID,
		Path:      path,
	}
}

// CheckoutCompleted is published once a purchase reached a completed
// transaction and entitlements were refreshed.
type CheckoutCompleted struct {
	shared.BaseEvent
	ProductID     string `json:"product_id"`
	UserID        string `json:"user_id,omitempty"`
	TransactionID string `json:"transaction_id"`
}

// NewCheckoutCompleted creates a CheckoutCompleted event.
func NewCheckoutCompleted(productID, userID, transactionID string) *CheckoutCompleted {
	return &CheckoutCompleted{
		BaseEvent:     shared.NewBaseEvent(transactionID, "checkout", EventCheckoutCompleted),
		ProductID:     productID,
		UserID:        userID,
		TransactionID: transactionID,
	}
}

// CheckoutCancelled is published when the user abandoned a checkout attempt.
type CheckoutCancelled struct {
	shared.BaseEvent
	ProductID string `json:"product_id"`
	UserID    string `json:"user_id,omitempty"`
}

// NewCheckoutCancelled creates a CheckoutCancelled event.
func NewCheckoutCancelled(productID, userID string) *CheckoutCancelled {
	return &CheckoutCancelled{
		BaseEvent: shared.NewBaseEvent(productID, "checkout", EventCheckoutCancelled),
		ProductID: productID,
		UserID:    userID,
	}
}

// CheckoutFailed is published when a checkout attempt ended in an error.
type CheckoutFailed struct {
	shared.BaseEvent
	ProductID string        `json:"product_id"`
	UserID    string        `json:"user_id,omitempty"`
	Reason    FailureReason `json:"reason"`
}

// NewCheckoutFailed creates a CheckoutFailed event.
func NewCheckoutFailed(productID, userID string, reason FailureReason) *CheckoutFailed {
	return &CheckoutFailed{
		BaseEvent: shared.NewBaseEvent(productID, "checkout", EventCheckoutFailed),
		ProductID: productID,
		UserID:    userID,
		Reason:    reason,
	}
}

// CallbackReceived is published when a checkout deep link was parsed and
// consumed by a pending attempt.
type CallbackReceived struct {
	shared.BaseEvent
	TransactionID string `json:"transaction_id"`
	ProductID     string `json:"product_id,omitempty"`
	Status        string `json:"status"`
}

// NewCallbackReceived creates a CallbackReceived event.
func NewCallbackReceived(cb CheckoutCallback) *CallbackReceived {
	return &CallbackReceived{
		BaseEvent:     shared.NewBaseEvent(cb.TransactionID, "checkout", EventCallbackReceived),
		TransactionID: cb.TransactionID,
		ProductID:     cb.ProductID,
		Status:        cb.Status,
	}
}

// EntitlementsRestored is published after a successful two-source restore.
type EntitlementsRestored struct {
	shared.BaseEvent
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// NewEntitlementsRestored creates an EntitlementsRestored event.
func NewEntitlementsRestored(userID string, count int) *EntitlementsRestored {
	return &EntitlementsRestored{
		BaseEvent: shared.NewBaseEvent(userID, "entitlements", EventEntitlementsRestored),
		UserID:    userID,
		Count:     count,
	}
}
