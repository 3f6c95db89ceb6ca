// Package domain holds the subscription upgrade offer model.
package domain

import checkout "github.com/felixgeelhaar/tollgate/internal/checkout/domain"

// ProductSummary is the condensed product view shown in an upgrade offer.
type ProductSummary struct {
	ID    string
	Name  string
	Price checkout.Price
}

// Offer is a backend-driven subscription upgrade proposal. Presentable only
// when Available and both product summaries are present.
type Offer struct {
	Available      bool
	Current        *ProductSummary
	Target         *ProductSummary
	SavingsPercent int
	Proration      string
	Title          string
	Body           string
	CTA            string
}

// Presentable reports whether the offer can be shown at all.
func (o *Offer) Presentable() bool {
	return o != nil && o.Available && o.Current != nil && o.Target != nil
}

// Decision is how the user answered an upgrade offer.
type Decision string

const (
	DecisionUpgraded  Decision = "upgraded"
	DecisionDeclined  Decision = "declined"
	DecisionDismissed Decision = "dismissed"
)
