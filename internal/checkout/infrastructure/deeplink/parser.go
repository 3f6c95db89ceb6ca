// Package deeplink validates and extracts checkout callbacks from redirect
// URIs handed to the host application.
package deeplink

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
)

const callbackPath = "/checkout/callback"

// Parser recognizes checkout callback URIs. Hosts pass every incoming URI
// through Parse; anything that is not a checkout callback comes back nil,
// never an error.
type Parser struct {
	scheme       string
	allowedHosts map[string]struct{}
	logger       *slog.Logger
}

// NewParser creates a parser for the application's custom scheme and the
// HTTPS hosts allowed to issue callbacks.
func NewParser(scheme string, allowedHosts []string, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, h := range allowedHosts {
		hosts[strings.ToLower(h)] = struct{}{}
	}
	return &Parser{scheme: scheme, allowedHosts: hosts, logger: logger}
}

// Parse returns the structured callback, or nil for any URI that is not a
// checkout callback. A matching URI with missing parameters is logged and
// also treated as nil.
func (p *Parser) Parse(raw string) *domain.CheckoutCallback {
	u, err := url.Parse(raw)
	if err != nil {
		return nil
	}

	if !p.matches(u) {
		return nil
	}

	query := u.Query()
	callback := &domain.CheckoutCallback{
		TransactionID: query.Get("transaction_id"),
		ProductID:     query.Get("product_id"),
		Status:        query.Get("status"),
	}
	if callback.TransactionID == "" || callback.ProductID == "" || callback.Status == "" {
		p.logger.Warn("checkout callback missing required parameters", "uri", raw)
		return nil
	}
	return callback
}

func (p *Parser) matches(u *url.URL) bool {
	switch {
	case p.scheme != "" && u.Scheme == p.scheme:
		// Custom scheme: in app://checkout/callback the "checkout" segment
		// parses as the host component.
		return u.Host == "checkout" && strings.TrimSuffix(u.Path, "/") == "/callback"
	case u.Scheme == "https":
		if _, ok := p.allowedHosts[strings.ToLower(u.Host)]; !ok {
			return false
		}
		return strings.HasPrefix(u.Path, callbackPath)
	default:
		return false
	}
}
