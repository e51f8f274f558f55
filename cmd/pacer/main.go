package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/felixgeelhaar/pacer/adapter/cli"
	"github.com/felixgeelhaar/pacer/adapter/cli/history"
	"github.com/felixgeelhaar/pacer/adapter/cli/schedule"
	"github.com/felixgeelhaar/pacer/adapter/cli/validate"
	"github.com/felixgeelhaar/pacer/internal/app"
	"github.com/felixgeelhaar/pacer/pkg/config"
	"github.com/felixgeelhaar/pacer/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	cli.SetLogger(logger)

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
		os.Exit(1)
	}

	getContainer := containerFactory(ctx, cfg, logger)

	cli.AddCommand(schedule.NewCommand(getContainer))
	cli.AddCommand(history.NewCommand(getContainer))
	cli.AddCommand(validate.NewCommand())

	cli.Execute()
}

// containerFactory lazily builds a single Container per process,
// wiring local SQLite mode unless local mode is off (DATABASE_URL is set,
// or PACER_LOCAL_MODE=false), in which case it wires the full
// PostgreSQL/Redis/RabbitMQ stack.
func containerFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger) func() (*app.Container, error) {
	var (
		once      sync.Once
		container *app.Container
		buildErr  error
	)
	return func() (*app.Container, error) {
		once.Do(func() {
			if cfg.IsLocalMode() {
				container, buildErr = app.NewLocalContainer(ctx, cfg, logger)
				return
			}
			container, buildErr = app.NewContainer(ctx, cfg, logger)
		})
		return container, buildErr
	}
}
