// Package sweeper provides adapters for running the expiration sweeper.
package sweeper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hirewire/hirewire-api/config"
	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/data"
	"github.com/hirewire/hirewire-api/internal/observability/statsd"
	"github.com/hirewire/hirewire-api/internal/service"
)

// Runner provides a simple adapter to run the sweeper loop.
// It constructs the sweeper service and runs the maintenance loop.
type Runner struct {
	sweeper *service.SweeperService
	logger  *slog.Logger
}

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	DB       *sql.DB
	Config   config.SweeperConfig
	Logger   *slog.Logger
	Notifier core.NotificationSink

	// ExpireEnabled and RemindEnabled select which sweeps run per the
	// SERVICES configuration.
	ExpireEnabled bool
	RemindEnabled bool

	// Optional dependency injection for testing/decoupling
	Repo    core.SweeperRepository
	Metrics statsd.Sink
}

// NewRunner creates a new sweeper runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if err := validateRunnerOptions(&opts); err != nil {
		return nil, err
	}

	sweeper, err := wireSweeperService(opts)
	if err != nil {
		return nil, fmt.Errorf("wire sweeper service: %w", err)
	}

	return &Runner{
		sweeper: sweeper,
		logger:  opts.Logger,
	}, nil
}

// validateRunnerOptions validates and sets defaults for RunnerOptions.
func validateRunnerOptions(opts *RunnerOptions) error {
	if opts.DB == nil && opts.Repo == nil {
		return errors.New("database connection is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return nil
}

// wireSweeperService wires up all dependencies for the sweeper service.
func wireSweeperService(opts RunnerOptions) (*service.SweeperService, error) {
	var repo core.SweeperRepository
	if opts.Repo != nil {
		repo = opts.Repo
	} else {
		repo = data.NewJobRepo(opts.DB, data.JobRepoConfig{Logger: opts.Logger})
	}

	return service.NewSweeperService(service.SweeperServiceOptions{
		Repo:          repo,
		Config:        opts.Config,
		Notifier:      opts.Notifier,
		Logger:        opts.Logger,
		Metrics:       opts.Metrics,
		ExpireEnabled: opts.ExpireEnabled,
		RemindEnabled: opts.RemindEnabled,
	})
}

// Run starts the sweeper loop and runs until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting sweeper runner",
		"expire_enabled", r.sweeper.ExpireEnabled(),
		"remind_enabled", r.sweeper.RemindEnabled(),
	)
	return r.sweeper.Run(ctx)
}
