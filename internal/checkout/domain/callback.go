package domain

// CallbackStatusSuccess is the status value a checkout redirect carries when
// payment succeeded. "processing" is also progressable; anything else means
// the user did not complete payment.
const (
	CallbackStatusSuccess    = "success"
	CallbackStatusProcessing = "processing"
)

// CheckoutCallback is the structured payload of a checkout redirect URI.
type CheckoutCallback struct {
	TransactionID string
	ProductID     string
	Status        string
}

// Success reports whether the callback signals a completed payment.
func (c CheckoutCallback) Success() bool {
	return c.Status == CallbackStatusSuccess
}

// Progressable reports whether the callback should advance the purchase
// (success or still settling) rather than cancel it.
func (c CheckoutCallback) Progressable() bool {
	return c.Status == CallbackStatusSuccess || c.Status == CallbackStatusProcessing
}
