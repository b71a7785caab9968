package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hirewire/hirewire-api/config"
	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/data"
	jobdomain "github.com/hirewire/hirewire-api/internal/domain/job"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
	"github.com/hirewire/hirewire-api/internal/observability/metrics"
	"github.com/hirewire/hirewire-api/internal/observability/statsd"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Jobs        core.JobRepository      // Required: job repository
	Categories  core.CategoryRepository // Required: category repository
	Recommender core.Recommender        // Optional: recommendation gateway
	Config      config.MarketplaceConfig

	Logger       *slog.Logger  // Optional: structured logger
	Metrics      statsd.Sink   // Optional: metrics sink
	TimeProvider data.TimeProvider // Optional: defaults to real time
}

// JobService orchestrates the job posting lifecycle: creation, publication,
// closing, search, and read paths. Status transitions go through the pure
// policy in internal/domain/job and are persisted with compare-and-set
// updates, so concurrent transitions lose cleanly with a conflict.
type JobService struct {
	jobs         core.JobRepository
	categories   core.CategoryRepository
	recommender  core.Recommender
	config       config.MarketplaceConfig
	logger       *slog.Logger
	metrics      statsd.Sink
	timeProvider data.TimeProvider
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Categories == nil {
		return nil, errors.New("CategoryRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "job_service")
	}

	timeProvider := opts.TimeProvider
	if timeProvider == nil {
		timeProvider = &data.RealTimeProvider{}
	}

	return &JobService{
		jobs:         opts.Jobs,
		categories:   opts.Categories,
		recommender:  opts.Recommender,
		config:       opts.Config,
		logger:       logger,
		metrics:      opts.Metrics,
		timeProvider: timeProvider,
	}, nil
}

// Create validates the category reference and persists a new draft job.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}

	exists, err := s.categories.Exists(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return nil, apperrors.ValidationField("category_id", "category does not exist")
	}

	job, err := s.jobs.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "job created", "job_id", job.ID, "poster_id", job.PosterID)
	}
	return job, nil
}

// Get retrieves a job and records a best-effort view event. A known viewer
// is also reported to the recommendation gateway; an empty viewerID means an
// anonymous read. A published job whose expiry has passed is expired lazily
// so readers never see a stale published status between sweeps.
func (s *JobService) Get(ctx context.Context, id, viewerID string) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if job.Status == model.JobStatusPublished && job.Expired(s.timeProvider.Now()) {
		job, err = s.expireLazily(ctx, job)
		if err != nil {
			return nil, err
		}
	}

	if viewErr := s.jobs.RecordView(ctx, id); viewErr != nil && s.logger != nil {
		s.logger.DebugContext(ctx, "view event dropped", "job_id", id, "error", viewErr)
	}
	s.recordViewActivity(ctx, viewerID, id)

	return job, nil
}

// recordViewActivity pings the recommendation gateway about a job view. The
// gateway absorbs failures; the call is detached from the request context so
// it survives the caller returning.
func (s *JobService) recordViewActivity(ctx context.Context, viewerID, jobID string) {
	if s.recommender == nil || viewerID == "" {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		_ = s.recommender.NotifyView(detached, viewerID, jobID)
	}()
}

// expireLazily transitions an overdue job to expired. A concurrent sweep or
// reader may win the compare-and-set; the fresh row is authoritative either way.
func (s *JobService) expireLazily(ctx context.Context, job *model.Job) (*model.Job, error) {
	expired := *job
	if err := jobdomain.Expire(&expired, s.timeProvider.Now()); err != nil {
		return job, nil
	}

	fresh, err := s.jobs.UpdateStatus(ctx, core.UpdateJobStatusParams{
		Job:  &expired,
		From: model.JobStatusPublished,
	})
	if err == nil {
		s.emitTransition("expire", nil)
		return fresh, nil
	}
	if apperrors.IsConflict(err) || apperrors.IsNotFound(err) {
		return s.jobs.GetByID(ctx, job.ID)
	}
	return nil, err
}

// Update applies partial updates to a draft or published job.
func (s *JobService) Update(
	ctx context.Context,
	id string,
	req *model.UpdateJobRequest,
) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("update job request is required")
	}

	if req.CategoryID != nil {
		exists, err := s.categories.Exists(ctx, *req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("check category: %w", err)
		}
		if !exists {
			return nil, apperrors.ValidationField("category_id", "category does not exist")
		}
	}

	return s.jobs.Update(ctx, id, req)
}

// Publish transitions a draft job to published, stamping PublishedAt and
// deriving the expiry from the default posting TTL when none was set.
func (s *JobService) Publish(ctx context.Context, id string) (*model.Job, error) {
	return s.transition(ctx, id, "publish", model.JobStatusDraft, func(job *model.Job, now time.Time) error {
		return jobdomain.Publish(job, now, s.config.DefaultPostingTTL)
	})
}

// Close transitions a published job to closed.
func (s *JobService) Close(ctx context.Context, id string) (*model.Job, error) {
	return s.transition(ctx, id, "close", model.JobStatusPublished, jobdomain.Close)
}

// transition loads the job, applies the policy mutation, and persists it with
// a compare-and-set on the prior status.
func (s *JobService) transition(
	ctx context.Context,
	id string,
	op string,
	from model.JobStatus,
	apply func(*model.Job, time.Time) error,
) (*model.Job, error) {
	start := s.timeProvider.Now()

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(job, start); err != nil {
		s.emitTransition(op, err)
		return nil, err
	}

	updated, err := s.jobs.UpdateStatus(ctx, core.UpdateJobStatusParams{Job: job, From: from})
	if err != nil {
		s.emitTransition(op, err)
		return nil, err
	}

	s.emitTransition(op, nil)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "job transitioned",
			"job_id", updated.ID, "op", op, "status", updated.Status)
	}
	return updated, nil
}

func (s *JobService) emitTransition(op string, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitTransition(s.metrics, metrics.TransitionMetric{
		Entity:     "job",
		Transition: op,
		Result:     result,
		Err:        err,
	})
}

// SearchResult bundles a page of job summaries with the total match count.
type SearchResult struct {
	Jobs  []*model.JobSummary `json:"jobs"`
	Total int                 `json:"total"`
}

// Search returns published, unexpired jobs matching the filters. Options are
// normalized before hitting the store: paging clamped, sort key allowlisted.
func (s *JobService) Search(ctx context.Context, opts *model.JobSearchOptions) (*SearchResult, error) {
	if opts == nil {
		opts = &model.JobSearchOptions{}
	}
	opts.Normalize(s.config.DefaultSearchLimit, s.config.MaxSearchLimit)

	jobs, err := s.jobs.Search(ctx, opts)
	if err != nil {
		return nil, err
	}
	total, err := s.jobs.CountSearch(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &SearchResult{Jobs: jobs, Total: total}, nil
}

// SearchForApplicant runs Search and enriches each summary with the
// applicant's match score. The gateway degrades to a neutral score, so
// enrichment never fails the search.
func (s *JobService) SearchForApplicant(
	ctx context.Context,
	applicantID string,
	opts *model.JobSearchOptions,
) (*SearchResult, error) {
	result, err := s.Search(ctx, opts)
	if err != nil {
		return nil, err
	}
	if s.recommender == nil || applicantID == "" {
		return result, nil
	}

	for _, summary := range result.Jobs {
		score, scoreErr := s.recommender.MatchScore(ctx, applicantID, summary.ID)
		if scoreErr != nil {
			continue
		}
		summary.MatchScore = &score
	}
	return result, nil
}

// Recommendations returns gateway recommendations for an applicant, degrading
// to an empty list when the engine is unavailable.
func (s *JobService) Recommendations(
	ctx context.Context,
	applicantID string,
	limit int,
) ([]model.Recommendation, error) {
	if s.recommender == nil {
		return []model.Recommendation{}, nil
	}
	if limit < 1 {
		limit = s.config.DefaultSearchLimit
	}
	return s.recommender.RecommendJobs(ctx, applicantID, limit)
}

// ListByPoster returns a page of the poster's own jobs in any status.
func (s *JobService) ListByPoster(
	ctx context.Context,
	posterID string,
	page core.PageOptions,
) ([]*model.Job, error) {
	if page.Limit < 1 {
		page.Limit = s.config.DefaultSearchLimit
	}
	if page.Limit > s.config.MaxSearchLimit {
		page.Limit = s.config.MaxSearchLimit
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	return s.jobs.ListByPoster(ctx, posterID, page)
}

// Stats returns job counts by status, optionally scoped to one poster.
func (s *JobService) Stats(ctx context.Context, posterID *string) (*model.JobStats, error) {
	return s.jobs.Stats(ctx, posterID)
}
