package domain

// CheckoutPath selects which surface hosts the web checkout.
type CheckoutPath string

const (
	PathEmbeddedView    CheckoutPath = "embedded_view"
	PathExternalSession CheckoutPath = "external_session"
	PathBrowserTab      CheckoutPath = "browser_tab"
)

// Jurisdiction is a coarse geographic bucket used to select checkout policy.
type Jurisdiction string

const (
	JurisdictionDomestic     Jurisdiction = "domestic"
	JurisdictionRegionalBloc Jurisdiction = "regional_bloc"
	JurisdictionRestOfWorld  Jurisdiction = "rest_of_world"
)

// MigrationPrompt asks a native-store subscriber to convert to web billing.
type MigrationPrompt struct {
	Enabled   bool
	ProductID string
	Title     string
	Body      string
}

// RemoteConfig is checkout policy delivered alongside the product catalog.
type RemoteConfig struct {
	DefaultPath           CheckoutPath
	PathByJurisdiction    map[Jurisdiction]CheckoutPath
	DisabledJurisdictions []Jurisdiction
	Migration             *MigrationPrompt
}

// PathFor resolves the checkout path for a jurisdiction, falling back to the
// global default, then to the embedded view.
func (c *RemoteConfig) PathFor(j Jurisdiction) CheckoutPath {
	if c != nil {
		if p, ok := c.PathByJurisdiction[j]; ok && p != "" {
			return p
		}
		if c.DefaultPath != "" {
			return c.DefaultPath
		}
	}
	return PathEmbeddedView
}

// WebCheckoutDisabled reports whether web checkout is off for a jurisdiction.
func (c *RemoteConfig) WebCheckoutDisabled(j Jurisdiction) bool {
	if c == nil {
		return false
	}
	for _, d := range c.DisabledJurisdictions {
		if d == j {
			return true
		}
	}
	return false
}

// CheckoutSession is a backend record for one external browser-hosted attempt.
// TransactionID may be empty when the backend has not pre-assigned one.
type CheckoutSession struct {
	ID            string
	CheckoutURL   string
	TransactionID string
	ProductID     string
}

// PaymentIntent is the backend record for an embedded-view checkout. The
// transaction id is pre-assigned so completion can be confirmed by fetch.
type PaymentIntent struct {
	ID            string
	ClientSecret  string
	TransactionID string
	CheckoutURL   string
	ProductID     string
	Amount        int64
	Currency      string
}

// Catalog is the product list plus the remote checkout policy.
type Catalog struct {
	Products []Product
	Config   *RemoteConfig
}

// FindProduct returns the catalog product with the given id, or nil.
func (c *Catalog) FindProduct(id string) *Product {
	if c == nil {
		return nil
	}
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i]
		}
	}
	return nil
}
