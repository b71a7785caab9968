package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hirewire/hirewire-api/config"
	"github.com/hirewire/hirewire-api/internal/adapters/recommender"
	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/data"
	"github.com/hirewire/hirewire-api/internal/observability/notify/webhook"
	"github.com/hirewire/hirewire-api/internal/observability/statsd"
	"github.com/hirewire/hirewire-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs          *service.JobService
	Applications  *service.ApplicationService
	Categories    core.CategoryRepository
	Recommender   *recommender.Gateway
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink    *statsd.Client
	MetricsConfig  config.ObservabilityMetricsConfig
	Notifier       *service.Notifier
	NotifierConfig config.ObservabilityNotificationsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient *redis.Client
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB              *sql.DB
	Redis           *redis.Client
	JobRepo         *data.JobRepo
	ApplicationRepo *data.ApplicationRepo
	CategoryRepo    *data.CategoryRepo
	CacheRepo       *data.RedisCacheRepo
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  "hirewire",
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	notifier := buildNotifier(obsLogger, cfg.Notifications)

	return ObservabilityContainer{
		MetricsSink:    metricsSink,
		MetricsConfig:  cfg.Metrics,
		Notifier:       notifier,
		NotifierConfig: cfg.Notifications,
	}
}

func buildNotifier(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) *service.Notifier {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}

	if !cfg.Enabled {
		return service.NewNotifier(service.NotifierOptions{
			Logger: baseLogger.With("component", "notifier"),
		})
	}

	sinks := make([]service.SinkRegistration, 0, 1)

	if cfg.Webhook.Enabled {
		sink, err := webhook.NewSink(webhook.Options{
			Config:     cfg.Webhook,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
			Logger:     baseLogger,
		})
		if err != nil {
			baseLogger.Error("failed to initialise webhook notifier", "error", err)
		} else {
			sinks = append(sinks, service.SinkRegistration{
				Name: "webhook",
				Sink: sink,
			})
		}
	}

	return service.NewNotifier(service.NotifierOptions{
		Logger:  baseLogger.With("component", "notifier"),
		Sinks:   sinks,
		Timeout: cfg.Timeout,
	})
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient *redis.Client, logger *slog.Logger) *serviceRepositories {
	repos := &serviceRepositories{
		DB:              db,
		Redis:           redisClient,
		JobRepo:         data.NewJobRepo(db, data.JobRepoConfig{Logger: logger}),
		ApplicationRepo: data.NewApplicationRepo(db, data.ApplicationRepoConfig{Logger: logger}),
		CategoryRepo:    data.NewCategoryRepo(db),
	}
	if redisClient != nil {
		repos.CacheRepo = data.NewRedisCacheRepo(redisClient)
	}
	return repos
}

func newRecommenderGateway(
	repos *serviceRepositories,
	cfg config.GatewayConfig,
	observability ObservabilityContainer,
	logger *slog.Logger,
) (*recommender.Gateway, error) {
	var cache core.CacheRepository
	if repos.CacheRepo != nil {
		cache = repos.CacheRepo
	}
	return recommender.NewGateway(recommender.GatewayOptions{
		Cache:   cache,
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.MetricsSink,
	})
}

// DomainServicesOptions groups inputs for buildDomainServices.
type DomainServicesOptions struct {
	Repos         *serviceRepositories
	Observability ObservabilityContainer
	Config        *config.AppConfig
	Logger        *slog.Logger
}

// buildDomainServices wires business services using repositories and observability adapters.
func buildDomainServices(opts *DomainServicesOptions) (ServiceContainer, error) {
	if opts == nil {
		return ServiceContainer{}, errors.New("domain services options are required")
	}
	svcLogger := opts.Logger
	if svcLogger == nil {
		svcLogger = slog.Default()
	}

	appCfg := opts.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	gateway, err := newRecommenderGateway(opts.Repos, appCfg.Gateway, opts.Observability, svcLogger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build recommender gateway: %w", err)
	}

	jobService, err := service.NewJobService(service.JobServiceOptions{
		Jobs:        opts.Repos.JobRepo,
		Categories:  opts.Repos.CategoryRepo,
		Recommender: gateway,
		Config:      appCfg.Marketplace,
		Logger:      svcLogger,
		Metrics:     opts.Observability.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build job service: %w", err)
	}

	applicationService, err := service.NewApplicationService(service.ApplicationServiceOptions{
		Applications: opts.Repos.ApplicationRepo,
		Jobs:         opts.Repos.JobRepo,
		Recommender:  gateway,
		Notifier:     opts.Observability.Notifier,
		Config:       appCfg.Marketplace,
		Logger:       svcLogger,
		Metrics:      opts.Observability.MetricsSink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build application service: %w", err)
	}

	return ServiceContainer{
		Jobs:          jobService,
		Applications:  applicationService,
		Categories:    opts.Repos.CategoryRepo,
		Recommender:   gateway,
		Observability: opts.Observability,
	}, nil
}

// NewServices wires the full service container from shared infrastructure.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil {
		return ServiceContainer{}, errors.New("service dependencies are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var obsCfg config.ObservabilityConfig
	if deps.Config != nil {
		obsCfg = deps.Config.Observability
	}
	observability := buildObservability(logger, obsCfg)
	repos := buildRepositories(deps.DB, deps.RedisClient, logger)
	return buildDomainServices(&DomainServicesOptions{
		Repos:         repos,
		Observability: observability,
		Config:        deps.Config,
		Logger:        logger,
	})
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient *redis.Client
	Logger      *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// serviceStartupDeps groups dependencies for service startup.
type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	name    string
	enabled bool
	start   func(context.Context) error
}

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !descriptor.enabled {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error",
					"service", descriptor.name,
					"error", errMsg,
				)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name)

	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))

	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}

		handles = append(handles, backgroundServiceHandle{
			name: svc.name,
			done: done,
		})
	}

	return handles
}

// newSweeperBackgroundService runs the expiration and reminder sweeps in a
// single loop; either SERVICES mode activates it.
func newSweeperBackgroundService(deps *serviceStartupDeps) backgroundService {
	expireEnabled := deps.enabledServices[config.ServiceModeSweeper]
	remindEnabled := deps.enabledServices[config.ServiceModeReminder]

	return backgroundService{
		name:    "sweeper",
		enabled: expireEnabled || remindEnabled,
		start: func(ctx context.Context) error {
			if deps.cfg == nil {
				return nil
			}
			var sweeperCfg config.SweeperConfig
			if deps.cfg.Config != nil {
				sweeperCfg = deps.cfg.Config.Sweeper
			}
			return RunSweeper(ctx, SweeperRunConfig{
				DB:            deps.cfg.DB,
				Config:        sweeperCfg,
				Logger:        deps.logger,
				Notifier:      deps.cfg.Services.Observability.Notifier,
				Metrics:       deps.cfg.Services.Observability.MetricsSink,
				ExpireEnabled: expireEnabled,
				RemindEnabled: remindEnabled,
			})
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil {
		return nil
	}
	return []backgroundService{
		newSweeperBackgroundService(deps),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	ctx := context.Background()
	serviceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	// Determine which services are enabled
	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, len(enabledServices)+1)

	deps := &serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	}
	handles := startBackgroundServices(deps, buildBackgroundServices(deps))

	// Wait for shutdown signal or error
	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		notifier:    cfg.Services.Observability.Notifier,
		logger:      logger,
		backgrounds: handles,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	notifier    *service.Notifier
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		gracefulStop(cfg)
		return nil
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		gracefulStop(cfg)
		return err
	}
}

// gracefulStop waits for background services and drains pending notifications.
func gracefulStop(cfg shutdownConfig) {
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	if cfg.notifier != nil {
		cfg.notifier.Close()
	}
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
