package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tollgate/internal/checkout/domain"
	"github.com/felixgeelhaar/tollgate/pkg/observability"
)

// VerifierConfig bounds the polling loop: one initial delay, then at most
// MaxAttempts fetches PollInterval apart.
type VerifierConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	PollInterval time.Duration
}

// DefaultVerifierConfig matches payment settlement timing: most transactions
// complete within the first two polls.
func DefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{
		MaxAttempts:  6,
		InitialDelay: 1500 * time.Millisecond,
		PollInterval: 2 * time.Second,
	}
}

// Verifier confirms that a transaction settled by polling the backend.
type Verifier struct {
	backend TransactionFetcher
	config  VerifierConfig
	logger  *slog.Logger
	metrics observability.Metrics

	// sleep is swapped in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewVerifier creates a verifier. Zero-value config fields fall back to the
// defaults.
func NewVerifier(backend TransactionFetcher, config VerifierConfig, logger *slog.Logger, metrics observability.Metrics) *Verifier {
	defaults := DefaultVerifierConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = defaults.InitialDelay
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Verifier{
		backend: backend,
		config:  config,
		logger:  logger,
		metrics: metrics,
		sleep:   sleepCtx,
	}
}

// Verify polls until the transaction completes or attempts are exhausted.
// A transaction still processing after the last attempt is an error,
// never a success. Statuses that can no longer complete map to ErrCancelled.
func (v *Verifier) Verify(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	start := time.Now()
	if err := v.sleep(ctx, v.config.InitialDelay); err != nil {
		return nil, err
	}

	var lastStatus domain.TransactionStatus
	for attempt := 1; attempt <= v.config.MaxAttempts; attempt++ {
		txn, err := v.backend.GetTransaction(ctx, transactionID)
		if err != nil {
			v.metrics.Counter("verify.result", 1, observability.T("outcome", "fetch_error"))
			return nil, fmt.Errorf("failed to fetch transaction %s: %w", transactionID, err)
		}
		lastStatus = txn.Status

		switch txn.Status {
		case domain.TransactionCompleted:
			v.metrics.Counter("verify.result", 1, observability.T("outcome", "completed"))
			v.metrics.Timing("verify.duration", time.Since(start))
			v.logger.Debug("transaction verified",
				"transaction_id", transactionID,
				"attempts", attempt,
			)
			return txn, nil

		case domain.TransactionProcessing:
			if attempt == v.config.MaxAttempts {
				v.metrics.Counter("verify.result", 1, observability.T("outcome", "still_processing"))
				return nil, &domain.VerificationError{
					TransactionID:   transactionID,
					Attempts:        attempt,
					LastStatus:      lastStatus,
					StillProcessing: true,
				}
			}
			if err := v.sleep(ctx, v.config.PollInterval); err != nil {
				return nil, err
			}

		default:
			// pending, failed, refunded: the user did not pay or the
			// payment was undone.
			v.metrics.Counter("verify.result", 1, observability.T("outcome", string(txn.Status)))
			v.logger.Info("transaction did not settle",
				"transaction_id", transactionID,
				"status", txn.Status,
			)
			return nil, domain.ErrCancelled
		}
	}

	return nil, &domain.VerificationError{
		TransactionID: transactionID,
		Attempts:      v.config.MaxAttempts,
		LastStatus:    lastStatus,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
