// Package cli is the terminal front end for the engine, used for manual
// testing against a backend and for headless checkout flows.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tollgate/internal/app"
	"github.com/felixgeelhaar/tollgate/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	container *app.Container
	logger    *slog.Logger
	userID    string
	verbose   bool
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tollgate",
	Short: "Tollgate - web checkout and entitlements",
	Long: `Tollgate drives web-based in-app purchases: product catalogs,
checkout sessions, transaction verification, entitlement restore,
cancellation flows, and upgrade offers.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx := observability.WithCorrelationID(cmd.Context(), info.correlationID.String())
		cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
		logger.Debug("command start",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
		)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.Debug("command end",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute runs the root command. The error is returned rather than exiting
// here so main can release resources before deciding the exit code.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "backend user id")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// SetContainer injects the wired engine. Commands that need it fail with a
// configuration hint when it is absent.
func SetContainer(c *app.Container) {
	container = c
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// requireContainer guards commands that need a configured engine.
func requireContainer() (*app.Container, error) {
	if container == nil {
		return nil, fmt.Errorf("engine not configured: set TOLLGATE_PUBLISHABLE_KEY")
	}
	return container, nil
}

// resolveUserID prefers the --user flag over the configured default.
func resolveUserID(c *app.Container) string {
	if userID != "" {
		return userID
	}
	return c.Config.UserID
}
