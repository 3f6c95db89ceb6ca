package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, 6, cfg.VerifyMaxAttempts)
	require.Equal(t, 2*time.Second, cfg.VerifyPollInterval)
	require.Equal(t, 1500*time.Millisecond, cfg.VerifyInitialDelay)
	require.Equal(t, "none", cfg.CacheBackend)
	require.Equal(t, "inprocess", cfg.EventBus)
	require.True(t, cfg.NativeSyncEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TOLLGATE_PUBLISHABLE_KEY", "pk_test_123")
	t.Setenv("TOLLGATE_BASE_URL", "http://localhost:9000")
	t.Setenv("TOLLGATE_VERIFY_MAX_ATTEMPTS", "3")
	t.Setenv("TOLLGATE_VERIFY_POLL_INTERVAL", "500ms")
	t.Setenv("TOLLGATE_NATIVE_SYNC", "false")
	t.Setenv("TOLLGATE_CALLBACK_HOSTS", "pay.example.com, checkout.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "pk_test_123", cfg.PublishableKey)
	require.Equal(t, "http://localhost:9000", cfg.BaseURL)
	require.Equal(t, 3, cfg.VerifyMaxAttempts)
	require.Equal(t, 500*time.Millisecond, cfg.VerifyPollInterval)
	require.False(t, cfg.NativeSyncEnabled)
	require.Equal(t, []string{"pay.example.com", "checkout.example.com"}, cfg.AllowedCallbackHosts)
}

func TestLoad_ProductionPinsBaseURL(t *testing.T) {
	t.Setenv("TOLLGATE_ENV", "production")
	t.Setenv("TOLLGATE_BASE_URL", "http://localhost:9000")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("TOLLGATE_VERIFY_MAX_ATTEMPTS", "lots")
	t.Setenv("TOLLGATE_VERIFY_POLL_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 6, cfg.VerifyMaxAttempts)
	require.Equal(t, 2*time.Second, cfg.VerifyPollInterval)
}
