package domain

import "time"

// EntitlementSource identifies which rail granted an entitlement.
// A source is immutable for the lifetime of the entitlement.
type EntitlementSource string

const (
	SourceNativeStore     EntitlementSource = "native_store"
	SourceAlternateNative EntitlementSource = "alternate_native_source"
	SourceWebCheckout     EntitlementSource = "web_checkout"
)

// Entitlement is a user's right to access a product, tagged with the source
// that granted it. Entitlements are never deduplicated by product id across
// sources: during a migration a user can legitimately hold the same product
// through two rails at once.
type Entitlement struct {
	ID             string
	ProductID      string
	Source         EntitlementSource
	Active         bool
	Status         string
	PurchasedAt    time.Time
	ExpiresAt      *time.Time
	PausedAt       *time.Time
	PauseResumesAt *time.Time
	WillRenew      bool
	IsTrial        bool
	TrialEndsAt    *time.Time
	CancelledAt    *time.Time
}
