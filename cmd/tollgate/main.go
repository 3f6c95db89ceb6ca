package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/tollgate/adapter/cli"
	"github.com/felixgeelhaar/tollgate/internal/app"
	"github.com/felixgeelhaar/tollgate/pkg/config"
	"github.com/felixgeelhaar/tollgate/pkg/observability"
)

func main() {
	os.Exit(run())
}

// run keeps os.Exit out of the deferred-cleanup path: the container closes
// before the process decides its exit code.
func run() int {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	cli.SetLogger(logger)

	container, err := app.NewContainer(cfg, app.Options{Logger: logger})
	if err != nil {
		// The version command and help still work without a key.
		logger.Warn("engine not configured", "error", err)
	} else {
		defer func() { _ = container.Close() }()
		cli.SetContainer(container)
	}

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
