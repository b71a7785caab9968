package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hirewire/hirewire-api/config"
	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/data"
	appdomain "github.com/hirewire/hirewire-api/internal/domain/application"
	jobdomain "github.com/hirewire/hirewire-api/internal/domain/job"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
	"github.com/hirewire/hirewire-api/internal/observability/metrics"
	"github.com/hirewire/hirewire-api/internal/observability/notify"
	"github.com/hirewire/hirewire-api/internal/observability/statsd"
)

// ApplicationServiceOptions groups dependencies for ApplicationService.
type ApplicationServiceOptions struct {
	Applications core.ApplicationRepository // Required: application repository
	Jobs         core.JobRepository         // Required: job repository
	Recommender  core.Recommender           // Optional: recommendation gateway
	Notifier     core.NotificationSink      // Optional: fire-and-forget notifications
	Config       config.MarketplaceConfig

	Logger       *slog.Logger      // Optional: structured logger
	Metrics      statsd.Sink       // Optional: metrics sink
	TimeProvider data.TimeProvider // Optional: defaults to real time
}

// ApplicationService orchestrates the application workflow: submission,
// review decisions, withdrawal, and interview scheduling. Transition rules
// live in internal/domain/application; persistence is compare-and-set so a
// concurrent reviewer loses with a conflict instead of clobbering state.
//
// Gateway and notification side effects are advisory. They run after the
// transaction commits and their failures never surface to the caller.
type ApplicationService struct {
	apps         core.ApplicationRepository
	jobs         core.JobRepository
	recommender  core.Recommender
	notifier     core.NotificationSink
	config       config.MarketplaceConfig
	logger       *slog.Logger
	metrics      statsd.Sink
	timeProvider data.TimeProvider
}

// NewApplicationService constructs a new ApplicationService.
func NewApplicationService(opts ApplicationServiceOptions) (*ApplicationService, error) {
	if opts.Applications == nil {
		return nil, errors.New("ApplicationRepository is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "application_service")
	}

	timeProvider := opts.TimeProvider
	if timeProvider == nil {
		timeProvider = &data.RealTimeProvider{}
	}

	return &ApplicationService{
		apps:         opts.Applications,
		jobs:         opts.Jobs,
		recommender:  opts.Recommender,
		notifier:     opts.Notifier,
		config:       opts.Config,
		logger:       logger,
		metrics:      opts.Metrics,
		timeProvider: timeProvider,
	}, nil
}

// Create submits a new application. Eligibility is pre-checked against the
// job for precise errors, then re-verified inside the repository transaction
// where the slot claim and insert are atomic, so a stale pre-check can only
// produce a conflict, never an oversubscribed job.
func (s *ApplicationService) Create(
	ctx context.Context,
	req *model.CreateApplicationRequest,
) (*model.Application, error) {
	if req == nil {
		return nil, errors.New("create application request is required")
	}
	if err := req.Validate(s.config.MaxCoverLetterLen); err != nil {
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if err := jobdomain.CheckApplicationEligibility(job, s.timeProvider.Now()); err != nil {
		s.emitTransition("submit", err)
		return nil, err
	}

	app, err := s.apps.Create(ctx, &model.Application{
		JobID:       req.JobID,
		ApplicantID: req.ApplicantID,
		CoverLetter: req.CoverLetter,
		ResumeRef:   req.ResumeRef,
	})
	if err != nil {
		s.emitTransition("submit", err)
		return nil, err
	}

	s.emitTransition("submit", nil)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "application submitted",
			"application_id", app.ID, "job_id", app.JobID)
	}

	s.recordActivity(ctx, app)
	s.notify(ctx, model.Notification{
		RecipientID: job.PosterID,
		TemplateKey: notify.TemplateApplicationReceived,
		Payload: map[string]any{
			"job_id":         job.ID,
			"job_title":      job.Title,
			"application_id": app.ID,
		},
	})

	return app, nil
}

// Review applies a reviewer decision: approve, reject, or request review.
func (s *ApplicationService) Review(
	ctx context.Context,
	id string,
	reviewerID string,
	decision model.ReviewDecision,
	notes string,
) (*model.Application, error) {
	if reviewerID == "" {
		return nil, apperrors.ValidationField("reviewer_id", "reviewer id is required")
	}
	if len(notes) > s.config.MaxReviewNotesLen {
		return nil, apperrors.ValidationField("notes", "review notes exceed the maximum length")
	}

	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := app.Status

	if err := appdomain.ApplyDecision(app, decision, reviewerID, notes, s.timeProvider.Now()); err != nil {
		s.emitTransition("review", err)
		return nil, err
	}

	app, err = s.apps.Update(ctx, core.UpdateApplicationParams{App: app, From: from})
	if err != nil {
		s.emitTransition("review", err)
		return nil, err
	}

	s.emitTransition("review", nil)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "application reviewed",
			"application_id", app.ID, "decision", decision, "status", app.Status)
	}

	s.recordActivity(ctx, app)
	if app.Status == model.ApplicationStatusApproved || app.Status == model.ApplicationStatusRejected {
		s.notify(ctx, model.Notification{
			RecipientID: app.ApplicantID,
			TemplateKey: notify.TemplateApplicationDecision,
			Payload: map[string]any{
				"application_id": app.ID,
				"job_id":         app.JobID,
				"status":         string(app.Status),
			},
		})
	}

	return app, nil
}

// Withdraw retires the applicant's own application. Only the applicant may
// withdraw, and only from a non-terminal state.
func (s *ApplicationService) Withdraw(
	ctx context.Context,
	id string,
	actorID string,
) (*model.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := app.Status

	if err := appdomain.Withdraw(app, actorID, s.timeProvider.Now()); err != nil {
		s.emitTransition("withdraw", err)
		return nil, err
	}

	app, err = s.apps.Update(ctx, core.UpdateApplicationParams{App: app, From: from})
	if err != nil {
		s.emitTransition("withdraw", err)
		return nil, err
	}

	s.emitTransition("withdraw", nil)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "application withdrawn", "application_id", app.ID)
	}

	s.recordActivity(ctx, app)
	return app, nil
}

// ScheduleInterview books an interview slot on an approved application.
func (s *ApplicationService) ScheduleInterview(
	ctx context.Context,
	id string,
	at time.Time,
	location string,
) (*model.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := app.Status

	if err := appdomain.ScheduleInterview(app, at, location, s.timeProvider.Now()); err != nil {
		return nil, err
	}

	app, err = s.apps.Update(ctx, core.UpdateApplicationParams{App: app, From: from})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, model.Notification{
		RecipientID: app.ApplicantID,
		TemplateKey: notify.TemplateInterviewScheduled,
		Payload: map[string]any{
			"application_id":     app.ID,
			"job_id":             app.JobID,
			"interview_at":       at,
			"interview_location": location,
		},
	})

	return app, nil
}

// Get retrieves an application by ID.
func (s *ApplicationService) Get(ctx context.Context, id string) (*model.Application, error) {
	return s.apps.GetByID(ctx, id)
}

// MatchScore returns the gateway's relevance score for the application's
// applicant against its job. Degrades to the neutral score.
func (s *ApplicationService) MatchScore(ctx context.Context, id string) (float64, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if s.recommender == nil {
		return 0, apperrors.Internal("recommendation gateway not configured")
	}
	return s.recommender.MatchScore(ctx, app.ApplicantID, app.JobID)
}

// ListByJob returns a page of applications for a job, excluding deleted ones.
func (s *ApplicationService) ListByJob(
	ctx context.Context,
	opts *model.ApplicationListOptions,
) ([]*model.Application, error) {
	if opts == nil {
		return nil, errors.New("list options are required")
	}
	s.clampPage(&opts.Limit, &opts.Offset)
	return s.apps.ListByJob(ctx, opts)
}

// ListByApplicant returns a page of the applicant's own applications.
func (s *ApplicationService) ListByApplicant(
	ctx context.Context,
	applicantID string,
	page core.PageOptions,
) ([]*model.Application, error) {
	s.clampPage(&page.Limit, &page.Offset)
	return s.apps.ListByApplicant(ctx, applicantID, page)
}

// Stats returns application counts by status for a job.
func (s *ApplicationService) Stats(ctx context.Context, jobID string) (*model.ApplicationStats, error) {
	return s.apps.Stats(ctx, jobID)
}

func (s *ApplicationService) clampPage(limit, offset *int) {
	if *limit < 1 {
		*limit = s.config.DefaultSearchLimit
	}
	if *limit > s.config.MaxSearchLimit {
		*limit = s.config.MaxSearchLimit
	}
	if *offset < 0 {
		*offset = 0
	}
}

// recordActivity pings the recommendation gateway about application activity.
// The gateway absorbs failures; the call is detached from the request context
// so it survives the caller returning.
func (s *ApplicationService) recordActivity(ctx context.Context, app *model.Application) {
	if s.recommender == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		_ = s.recommender.NotifyApplication(detached, app.ApplicantID, app.JobID, app.ID)
	}()
}

func (s *ApplicationService) notify(ctx context.Context, n model.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, n); err != nil && s.logger != nil {
		s.logger.DebugContext(ctx, "notification dropped",
			"template_key", n.TemplateKey, "error", err)
	}
}

func (s *ApplicationService) emitTransition(op string, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitTransition(s.metrics, metrics.TransitionMetric{
		Entity:     "application",
		Transition: op,
		Result:     result,
		Err:        err,
	})
}
