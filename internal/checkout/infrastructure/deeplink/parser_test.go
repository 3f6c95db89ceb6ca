package deeplink

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	return NewParser("app", []string{"checkout.tollgate.dev"}, nil)
}

func TestParse_CustomScheme(t *testing.T) {
	p := newTestParser()

	cb := p.Parse("app://checkout/callback?transaction_id=txn_1&product_id=prod_1&status=success")
	require.NotNil(t, cb)
	require.Equal(t, "txn_1", cb.TransactionID)
	require.Equal(t, "prod_1", cb.ProductID)
	require.True(t, cb.Success())
}

func TestParse_HTTPSAllowedHost(t *testing.T) {
	p := newTestParser()

	cb := p.Parse("https://checkout.tollgate.dev/checkout/callback?transaction_id=txn_2&product_id=prod_2&status=processing")
	require.NotNil(t, cb)
	require.Equal(t, "txn_2", cb.TransactionID)
	require.False(t, cb.Success())
	require.True(t, cb.Progressable())
}

func TestParse_RejectsNonMatching(t *testing.T) {
	p := newTestParser()

	cases := []string{
		"https://evil.example.com/checkout/callback?transaction_id=t&product_id=p&status=success",
		"https://checkout.tollgate.dev/other/path?transaction_id=t&product_id=p&status=success",
		"other://checkout/callback?transaction_id=t&product_id=p&status=success",
		"app://settings/profile",
		"not a url at all ::",
		"",
	}
	for _, raw := range cases {
		require.Nil(t, p.Parse(raw), "expected nil for %q", raw)
	}
}

func TestParse_MissingParamsIsNil(t *testing.T) {
	p := newTestParser()

	cases := []string{
		"app://checkout/callback?product_id=p&status=success",
		"app://checkout/callback?transaction_id=t&status=success",
		"app://checkout/callback?transaction_id=t&product_id=p",
		"app://checkout/callback",
	}
	for _, raw := range cases {
		require.Nil(t, p.Parse(raw), "expected nil for %q", raw)
	}
}

func TestParse_StatusClassification(t *testing.T) {
	p := newTestParser()

	cancelled := p.Parse("app://checkout/callback?transaction_id=t&product_id=p&status=cancelled")
	require.NotNil(t, cancelled)
	require.False(t, cancelled.Success())
	require.False(t, cancelled.Progressable())
}

func TestParse_HostCaseInsensitive(t *testing.T) {
	p := newTestParser()

	cb := p.Parse("https://Checkout.Tollgate.Dev/checkout/callback?transaction_id=t&product_id=p&status=success")
	require.NotNil(t, cb)
}
