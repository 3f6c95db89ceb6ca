// Package domain holds the core purchase and entitlement model.
package domain

// ProductType classifies how a product is owned and billed.
type ProductType string

const (
	ProductConsumable              ProductType = "consumable"
	ProductNonConsumable           ProductType = "non_consumable"
	ProductAutoRenewingSub         ProductType = "auto_renewing_subscription"
	ProductNonRenewingSubscription ProductType = "non_renewing_subscription"
)

// RequiresUserID reports whether purchases of this type must be tied to a
// backend user identity.
func (t ProductType) RequiresUserID() bool {
	switch t {
	case ProductAutoRenewingSub, ProductNonRenewingSubscription, ProductNonConsumable:
		return true
	default:
		return false
	}
}

// Price is an amount in minor units with its currency code.
type Price struct {
	Amount   int64
	Currency string
	Display  string
}

// Promotion describes an active discount attached to a product.
type Promotion struct {
	ID             string
	Name           string
	PercentOff     int
	PromoPrice     *Price
	ExpiresAt      string
	RequiresCoupon bool
}

// Product is a sellable catalog entry. Type never changes after creation;
// NativePrice is filled in by catalog reconciliation against the native store.
type Product struct {
	ID          string
	Name        string
	Description string
	Type        ProductType
	Price       Price
	NativePrice *Price
	Promotion   *Promotion
}
