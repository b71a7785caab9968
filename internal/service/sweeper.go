package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hirewire/hirewire-api/config"
	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	obserrors "github.com/hirewire/hirewire-api/internal/observability/errors"
	"github.com/hirewire/hirewire-api/internal/observability/metrics"
	"github.com/hirewire/hirewire-api/internal/observability/notify"
	"github.com/hirewire/hirewire-api/internal/observability/statsd"
)

// SweeperServiceOptions groups dependencies for SweeperService.
type SweeperServiceOptions struct {
	Repo     core.SweeperRepository // Required: sweeper repository
	Config   config.SweeperConfig   // Required: sweeper configuration
	Notifier core.NotificationSink  // Optional: expiry reminder delivery
	Logger   *slog.Logger           // Optional: structured logger
	Metrics  statsd.Sink            // Optional: metrics sink (StatsD-compatible)

	// ExpireEnabled and RemindEnabled select which sweeps run. Both default
	// to false; the bootstrap enables them per the SERVICES configuration.
	ExpireEnabled bool
	RemindEnabled bool
}

// SweeperService runs the periodic maintenance sweeps over job postings.
//
// This service manages:
// - Expiring published jobs whose expiry has passed.
// - Sending expiry reminders for jobs approaching their deadline.
//
// Both sweeps are idempotent. Expiration is a batch compare-and-set on the
// published status, so concurrent sweepers and lazy expiration on the read
// path converge on the same result. Reminders may repeat across runs when a
// job stays inside the window; recipients tolerate duplicates.
type SweeperService struct {
	repo     core.SweeperRepository
	config   config.SweeperConfig
	notifier core.NotificationSink
	logger   *slog.Logger
	metrics  statsd.Sink

	expireEnabled bool
	remindEnabled bool
}

// NewSweeperService constructs a new SweeperService.
func NewSweeperService(opts SweeperServiceOptions) (*SweeperService, error) {
	if opts.Repo == nil {
		return nil, errors.New("SweeperRepository is required")
	}
	if opts.RemindEnabled && opts.Notifier == nil {
		return nil, errors.New("NotificationSink is required when reminders are enabled")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "sweeper_service")
		logger.Debug("SweeperService initialized",
			"interval", opts.Config.Interval,
			"batch_size", opts.Config.BatchSize,
			"expire_enabled", opts.ExpireEnabled,
			"remind_enabled", opts.RemindEnabled,
		)
	}

	return &SweeperService{
		repo:          opts.Repo,
		config:        opts.Config,
		notifier:      opts.Notifier,
		logger:        logger,
		metrics:       opts.Metrics,
		expireEnabled: opts.ExpireEnabled,
		remindEnabled: opts.RemindEnabled,
	}, nil
}

// ExpireEnabled reports whether the expiration sweep is active.
func (s *SweeperService) ExpireEnabled() bool { return s.expireEnabled }

// RemindEnabled reports whether the reminder sweep is active.
func (s *SweeperService) RemindEnabled() bool { return s.remindEnabled }

// Run starts the sweep loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *SweeperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting sweeper service", "interval", s.config.Interval)
	}

	// Add jitter to prevent thundering herd if multiple instances start together
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run a sweep immediately after jitter
	if err := s.runSweep(ctx); err != nil {
		s.logSweepError(err, "initial sweep")
	}

	return s.runLoop(ctx, ticker)
}

// waitWithJitter adds a random delay up to 10% of the interval to prevent thundering herd.
func (s *SweeperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.config.Interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// If crypto/rand fails, skip jitter rather than failing startup
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	// Use modulo on uint64 before converting to avoid overflow
	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
		// Graceful shutdown during jitter
	}
}

// runLoop runs the sweep loop until context is cancelled.
func (s *SweeperService) runLoop(ctx context.Context, ticker *time.Ticker) error {
	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "sweeper service stopping", "reason", ctx.Err())
			}
			// Return nil on graceful shutdown to avoid treating it as a failure
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := s.runSweep(ctx); err != nil {
				s.logSweepError(err, "sweep")
				if isContextCancellation(err) {
					continue
				}
				// Continue running despite errors
			}
		}
	}
}

// runSweep performs one sweep of all enabled operations under the sweep timeout.
func (s *SweeperService) runSweep(ctx context.Context) error {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	start := time.Now()
	var (
		errs               []error
		allContextCanceled = true
		metricsData        = sweepMetrics{}
	)

	steps := []sweepStep{}
	if s.expireEnabled {
		steps = append(steps, sweepStep{
			fn:        s.expireDueJobs,
			label:     "expire due jobs",
			count:     &metricsData.ExpiredCount,
			metricErr: &metricsData.ExpiredErr,
		})
	}
	if s.remindEnabled {
		steps = append(steps, sweepStep{
			fn:        s.sendExpiryReminders,
			label:     "send expiry reminders",
			count:     &metricsData.RemindedCount,
			metricErr: &metricsData.RemindedErr,
		})
	}

	for _, step := range steps {
		outcome := s.executeSweepStep(sweepCtx, step.fn, step.label)
		*step.count = outcome.count
		*step.metricErr = outcome.metricErr
		if outcome.aggregateErr != nil {
			errs = append(errs, outcome.aggregateErr)
			allContextCanceled = allContextCanceled && outcome.canceled
		}
	}

	metricsData.Elapsed = time.Since(start)
	s.emitSweepMetrics(metricsData)

	if len(errs) > 0 {
		joined := errors.Join(errs...)
		if allContextCanceled && isContextCancellation(joined) {
			return context.Canceled
		}
		return fmt.Errorf("sweep failed: %w", joined)
	}

	return nil
}

type sweepFunc func(context.Context) (int64, error)

type sweepStep struct {
	fn        sweepFunc
	label     string
	count     *int64
	metricErr *error
}

type sweepStepOutcome struct {
	count        int64
	metricErr    error
	aggregateErr error
	canceled     bool
}

func (s *SweeperService) executeSweepStep(
	ctx context.Context,
	fn sweepFunc,
	label string,
) sweepStepOutcome {
	count, err := fn(ctx)
	outcome := sweepStepOutcome{
		count:     count,
		metricErr: suppressContextCancellation(err),
		canceled:  isContextCancellation(err),
	}
	if err != nil {
		outcome.aggregateErr = fmt.Errorf("%s: %w", label, err)
	}
	return outcome
}

// expireDueJobs transitions overdue published jobs to expired.
// Loops until no more rows are affected to handle large backlogs in batches.
func (s *SweeperService) expireDueJobs(ctx context.Context) (int64, error) {
	var totalCount int64
	for {
		count, err := s.repo.ExpireDueJobs(ctx, core.ExpireDueJobsParams{
			BatchSize: s.config.BatchSize,
		})
		if err != nil {
			return totalCount, err
		}
		totalCount += count
		if count == 0 {
			break
		}
		// Check context between batches
		if ctx.Err() != nil {
			return totalCount, ctx.Err()
		}
	}

	if totalCount > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "expired due jobs",
			"count", totalCount,
			"batch_size", s.config.BatchSize,
		)
	}

	return totalCount, nil
}

// sendExpiryReminders notifies posters of published jobs entering the expiry
// window. Fan-out is bounded; a single failed delivery does not stop the rest.
func (s *SweeperService) sendExpiryReminders(ctx context.Context) (int64, error) {
	now := time.Now()
	jobs, err := s.repo.ListExpiringBetween(ctx, core.ExpiringWindowParams{
		From:  now.Add(s.config.ReminderWindowFrom),
		To:    now.Add(s.config.ReminderWindowTo),
		Limit: s.config.ReminderBatchLimit,
	})
	if err != nil {
		return 0, err
	}
	if len(jobs) == 0 {
		return 0, nil
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.DispatchConcurrency)

	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if sendErr := s.notifier.Send(groupCtx, reminderNotification(job)); sendErr != nil {
				if s.logger != nil {
					s.logger.WarnContext(groupCtx, "expiry reminder dropped",
						"job_id", job.ID, "error", sendErr)
				}
			}
			return nil
		})
	}
	if waitErr := g.Wait(); waitErr != nil {
		return int64(len(jobs)), waitErr
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "sent expiry reminders", "count", len(jobs))
	}
	return int64(len(jobs)), nil
}

func reminderNotification(job *model.Job) model.Notification {
	payload := map[string]any{
		"job_id":    job.ID,
		"job_title": job.Title,
	}
	if job.ExpiresAt != nil {
		payload["expires_at"] = *job.ExpiresAt
	}
	return model.Notification{
		RecipientID: job.PosterID,
		TemplateKey: notify.TemplateJobExpiryReminder,
		Payload:     payload,
	}
}

type sweepMetrics struct {
	ExpiredCount  int64
	ExpiredErr    error
	RemindedCount int64
	RemindedErr   error
	Elapsed       time.Duration
}

func (s *SweeperService) emitSweepMetrics(m sweepMetrics) {
	if s.metrics == nil {
		return
	}

	totalCount := m.ExpiredCount + m.RemindedCount
	firstErr := firstError(m.ExpiredErr, m.RemindedErr)

	result := metrics.ResultSuccess
	if firstErr != nil {
		result = metrics.ResultError
	} else if totalCount == 0 {
		result = metrics.ResultNoop
	}

	tags := map[string]string{
		"result": result,
	}

	if firstErr != nil {
		if class := obserrors.Classify(firstErr); class != "" {
			tags["error_class"] = class
		}
	}

	s.metrics.Count("sweeper.sweep", 1, tags)

	if m.Elapsed > 0 {
		s.metrics.Timing("sweeper.sweep_duration", m.Elapsed, metrics.CloneTags(tags))
	}

	s.emitSweepOperationMetric("expire", m.ExpiredCount, m.ExpiredErr)
	s.emitSweepOperationMetric("remind", m.RemindedCount, m.RemindedErr)

	if firstErr == nil {
		s.metrics.Gauge("sweeper.last_success_epoch", float64(time.Now().Unix()), nil)
	}
}

func (s *SweeperService) emitSweepOperationMetric(operation string, count int64, err error) {
	if s.metrics == nil {
		return
	}

	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	} else if count == 0 {
		result = metrics.ResultNoop
	}

	tags := map[string]string{
		"operation": operation,
		"result":    result,
	}

	if err != nil {
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	}

	s.metrics.Count("sweeper.sweep_operation", 1, tags)

	if err == nil && count > 0 {
		s.metrics.Count("sweeper.jobs_processed", count, metrics.CloneTags(tags))
	}
}

func (s *SweeperService) logSweepError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}

	if isContextCancellation(err) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}

	s.logger.Error(label+" failed", "error", err)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func isContextCancellation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func suppressContextCancellation(err error) error {
	if isContextCancellation(err) {
		return nil
	}
	return err
}
