// Package app wires the engine from configuration: API client, event bus,
// entitlement cache, and the checkout, cancel flow, and upgrade services.
package app

import (
	"fmt"
	"log/slog"

	cancelApp "github.com/felixgeelhaar/tollgate/internal/cancelflow/application"
	checkoutApp "github.com/felixgeelhaar/tollgate/internal/checkout/application"
	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/api"
	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/deeplink"
	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/nativestore"
	"github.com/felixgeelhaar/tollgate/internal/checkout/infrastructure/persistence"
	"github.com/felixgeelhaar/tollgate/internal/shared/infrastructure/eventbus"
	upgradeApp "github.com/felixgeelhaar/tollgate/internal/upgrade/application"
	"github.com/felixgeelhaar/tollgate/pkg/config"
	"github.com/felixgeelhaar/tollgate/pkg/observability"
)

// Options carries the host-supplied pieces the engine cannot construct
// itself. All fields are optional.
type Options struct {
	Logger  *slog.Logger
	Metrics observability.Metrics

	// NativeStore is the platform billing integration. Nil disables
	// native-store syncing regardless of configuration.
	NativeStore nativestore.Store
}

// Container holds the wired engine.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	Client   *api.Client
	EventBus *eventbus.InProcessBus
	Cache    persistence.EntitlementCache

	Orchestrator *checkoutApp.Orchestrator
	Reconciler   *checkoutApp.Reconciler
	CancelFlow   *cancelApp.Engine
	Upgrade      *upgradeApp.Engine
}

// NewContainer builds the engine from configuration.
func NewContainer(cfg *config.Config, opts Options) (*Container, error) {
	logger := opts.Logger
	if logger == nil {
		logger = observability.LoggerFromEnv()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	client, err := api.NewClient(cfg.BaseURL, cfg.PublishableKey, api.Options{
		Logger:  logger,
		Metrics: metrics,
	})
	if err != nil {
		return nil, err
	}

	bus := eventbus.NewInProcessBus(logger)
	if cfg.EventBus == "rabbitmq" {
		remote, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect event bus: %w", err)
		}
		bus.MirrorTo(remote)
	}

	cache, err := newCache(cfg)
	if err != nil {
		return nil, err
	}

	store := opts.NativeStore
	if store == nil || !cfg.NativeSyncEnabled {
		store = nativestore.Disabled{}
	}

	reconciler := checkoutApp.NewReconciler(client, store, cache, logger)
	verifier := checkoutApp.NewVerifier(client, checkoutApp.VerifierConfig{
		MaxAttempts:  cfg.VerifyMaxAttempts,
		InitialDelay: cfg.VerifyInitialDelay,
		PollInterval: cfg.VerifyPollInterval,
	}, logger, metrics)
	parser := deeplink.NewParser(cfg.DeepLinkScheme, cfg.AllowedCallbackHosts, logger)

	orchestrator := checkoutApp.NewOrchestrator(
		client,
		verifier,
		reconciler,
		parser,
		bus,
		domain.Jurisdiction(cfg.Jurisdiction),
		logger,
	)

	bus.RegisterConsumer(checkoutApp.NewFunnelReporter(client, logger))

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Metrics:      metrics,
		Client:       client,
		EventBus:     bus,
		Cache:        cache,
		Orchestrator: orchestrator,
		Reconciler:   reconciler,
		CancelFlow:   cancelApp.NewEngine(client, logger),
		Upgrade:      upgradeApp.NewEngine(client, logger),
	}, nil
}

// Close releases held connections.
func (c *Container) Close() error {
	var firstErr error
	if closer, ok := c.Cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			firstErr = err
		}
	}
	if err := c.EventBus.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func newCache(cfg *config.Config) (persistence.EntitlementCache, error) {
	switch cfg.CacheBackend {
	case "", "none":
		return persistence.NoopCache{}, nil
	case "sqlite":
		return persistence.NewSQLiteEntitlementCache(cfg.SQLitePath)
	case "postgres":
		return persistence.NewPostgresEntitlementCache(cfg.PostgresURL)
	case "redis":
		return persistence.NewRedisEntitlementCacheFromURL(cfg.RedisURL, cfg.CacheTTL)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
