package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hirewire/hirewire-api/config"
	"github.com/hirewire/hirewire-api/internal/adapters/sweeper"
	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/observability/statsd"
)

// SweeperRunConfig contains configuration for the sweeper runner.
type SweeperRunConfig struct {
	DB       *sql.DB
	Config   config.SweeperConfig
	Logger   *slog.Logger
	Notifier core.NotificationSink
	Metrics  statsd.Sink

	ExpireEnabled bool
	RemindEnabled bool
}

// RunSweeper starts the expiration sweeper service. The expiry and reminder
// sweeps share one loop; SERVICES selects which of them are active.
func RunSweeper(ctx context.Context, cfg SweeperRunConfig) error {
	runner, err := sweeper.NewRunner(sweeper.RunnerOptions{
		DB:            cfg.DB,
		Config:        cfg.Config,
		Logger:        cfg.Logger,
		Notifier:      cfg.Notifier,
		Metrics:       cfg.Metrics,
		ExpireEnabled: cfg.ExpireEnabled,
		RemindEnabled: cfg.RemindEnabled,
	})
	if err != nil {
		return fmt.Errorf("create sweeper runner: %w", err)
	}

	return runner.Run(ctx)
}
