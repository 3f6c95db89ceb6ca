package domain

// FunnelEvent is one analytics event in the purchase funnel. Delivery is
// fire-and-forget: the engine never blocks or fails a purchase on it.
type FunnelEvent struct {
	Name       string
	UserID     string
	ProductID  string
	Properties map[string]string
}
