package app

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/persistence"
	"github.com/felixgeelhaar/tollgate/pkg/config"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:               "development",
		PublishableKey:       "pk_test_abc",
		BaseURL:              "https://api.example.com",
		DeepLinkScheme:       "app",
		AllowedCallbackHosts: []string{"checkout.example.com"},
		Jurisdiction:         "domestic",
		CacheBackend:         "none",
		EventBus:             "inprocess",
	}
}

func testOptions() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestNewContainerWiresEngine(t *testing.T) {
	c, err := NewContainer(testConfig(t), testOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NotNil(t, c.Client)
	require.NotNil(t, c.Orchestrator)
	require.NotNil(t, c.Reconciler)
	require.NotNil(t, c.CancelFlow)
	require.NotNil(t, c.Upgrade)
	require.IsType(t, persistence.NoopCache{}, c.Cache)
}

func TestNewContainerRejectsMissingKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.PublishableKey = ""
	_, err := NewContainer(cfg, testOptions())
	require.Error(t, err)
}

func TestNewContainerSQLiteCache(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheBackend = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "entitlements.db")

	c, err := NewContainer(cfg, testOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.IsType(t, &persistence.SQLiteEntitlementCache{}, c.Cache)
}

func TestNewContainerUnknownCacheBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheBackend = "memcached"
	_, err := NewContainer(cfg, testOptions())
	require.Error(t, err)
}
