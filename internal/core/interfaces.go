// Package core defines the ports between the marketplace services and
// their infrastructure adapters.
package core

import (
	"context"
	"time"

	"github.com/hirewire/hirewire-api/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// UpdateJobStatusParams groups parameters for JobRepository.UpdateStatus to keep param count ≤3.
// The update only lands when the stored status still equals From.
type UpdateJobStatusParams struct {
	Job  *model.Job
	From model.JobStatus
}

// JobRepository defines the interface for job posting data operations.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	Update(ctx context.Context, id string, req *model.UpdateJobRequest) (*model.Job, error)

	// UpdateStatus persists the job's status and lifecycle timestamps guarded
	// by a compare-and-set on the previous status. A lost race surfaces as a
	// conflict carrying the status found in storage.
	UpdateStatus(ctx context.Context, params UpdateJobStatusParams) (*model.Job, error)

	Search(ctx context.Context, opts *model.JobSearchOptions) ([]*model.JobSummary, error)
	CountSearch(ctx context.Context, opts *model.JobSearchOptions) (int, error)
	ListByPoster(ctx context.Context, posterID string, opts PageOptions) ([]*model.Job, error)
	Stats(ctx context.Context, posterID *string) (*model.JobStats, error)

	// RecordView bumps the job's view counter. Best-effort; callers ignore failures.
	RecordView(ctx context.Context, id string) error
}

// PageOptions is plain limit/offset paging for list endpoints.
type PageOptions struct {
	Limit  int
	Offset int
}

// UpdateApplicationParams groups parameters for ApplicationRepository.Update.
// The write only lands when the stored status still equals From.
type UpdateApplicationParams struct {
	App  *model.Application
	From model.ApplicationStatus
}

// ApplicationRepository defines the interface for application data operations.
type ApplicationRepository interface {
	// Create inserts the application and claims one of the job's slots in a
	// single transaction. The insert fails with a conflict when the applicant
	// already holds an active application, and with the matching domain error
	// when the job is unpublished, expired, or full.
	Create(ctx context.Context, app *model.Application) (*model.Application, error)

	GetByID(ctx context.Context, id string) (*model.Application, error)

	// Update persists status, lifecycle, review, and interview fields guarded
	// by a compare-and-set on the previous status.
	Update(ctx context.Context, params UpdateApplicationParams) (*model.Application, error)

	ListByJob(ctx context.Context, opts *model.ApplicationListOptions) ([]*model.Application, error)
	ListByApplicant(
		ctx context.Context,
		applicantID string,
		opts PageOptions,
	) ([]*model.Application, error)
	Stats(ctx context.Context, jobID string) (*model.ApplicationStats, error)
}

// CategoryRepository defines the interface for category taxonomy operations.
type CategoryRepository interface {
	Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	GetByID(ctx context.Context, id string) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// ExpireDueJobsParams groups parameters for SweeperRepository.ExpireDueJobs.
type ExpireDueJobsParams struct {
	Now       time.Time
	BatchSize int
}

// ExpiringWindowParams groups parameters for SweeperRepository.ListExpiringBetween.
type ExpiringWindowParams struct {
	From  time.Time
	To    time.Time
	Limit int
}

// SweeperRepository defines the interface for bulk lifecycle maintenance.
type SweeperRepository interface {
	// ExpireDueJobs transitions published jobs whose expiry has passed to
	// expired. Processes up to BatchSize jobs per call to prevent long locks.
	// Returns the number of jobs transitioned.
	ExpireDueJobs(ctx context.Context, params ExpireDueJobsParams) (int64, error)

	// ListExpiringBetween returns published jobs whose expiry falls inside
	// the window, for expiry reminder dispatch.
	ListExpiringBetween(ctx context.Context, params ExpiringWindowParams) ([]*model.Job, error)
}

// Recommender is the outbound port to the recommendation engine. All of its
// calls are advisory; callers degrade gracefully when the engine is down.
type Recommender interface {
	// MatchScore returns the engine's relevance score (0..100) for an
	// applicant against a job.
	MatchScore(ctx context.Context, applicantID, jobID string) (float64, error)

	// RecommendJobs returns up to limit job recommendations for an applicant.
	RecommendJobs(ctx context.Context, applicantID string, limit int) ([]model.Recommendation, error)

	// NotifyApplication tells the engine an applicant applied to a job so it
	// can refresh its signals. applicationID is carried as metadata.
	NotifyApplication(ctx context.Context, applicantID, jobID, applicationID string) error

	// NotifyView tells the engine an applicant viewed a job.
	NotifyView(ctx context.Context, applicantID, jobID string) error
}

// NotificationSink receives fire-and-forget notifications. Implementations
// must not block the caller beyond their own timeout.
type NotificationSink interface {
	Send(ctx context.Context, n model.Notification) error
}
