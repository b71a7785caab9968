// Package testutil provides testing utilities and helpers for the hirewire marketplace.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirewire/hirewire-api/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest objects in tests.
type JobRequestBuilder struct {
	request *model.CreateJobRequest
}

// NewJobRequest creates a new JobRequestBuilder with sensible defaults.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		request: &model.CreateJobRequest{
			PosterID:    uuid.NewString(),
			Title:       "Backend Engineer",
			Description: "Design and run marketplace services.",
			CategoryID:  uuid.NewString(),
			Employment:  model.EmploymentFullTime,
			WorkMode:    model.WorkModeRemote,
		},
	}
}

// WithPoster sets the poster ID.
func (b *JobRequestBuilder) WithPoster(posterID string) *JobRequestBuilder {
	b.request.PosterID = posterID
	return b
}

// WithTitle sets the title.
func (b *JobRequestBuilder) WithTitle(title string) *JobRequestBuilder {
	b.request.Title = title
	return b
}

// WithCategory sets the category ID.
func (b *JobRequestBuilder) WithCategory(categoryID string) *JobRequestBuilder {
	b.request.CategoryID = categoryID
	return b
}

// WithEmployment sets the employment type.
func (b *JobRequestBuilder) WithEmployment(t model.EmploymentType) *JobRequestBuilder {
	b.request.Employment = t
	return b
}

// WithWorkMode sets the work mode.
func (b *JobRequestBuilder) WithWorkMode(m model.WorkMode) *JobRequestBuilder {
	b.request.WorkMode = m
	return b
}

// WithLocation sets the location.
func (b *JobRequestBuilder) WithLocation(location string) *JobRequestBuilder {
	b.request.Location = location
	return b
}

// WithSalaryRange sets the salary bounds.
func (b *JobRequestBuilder) WithSalaryRange(minSalary, maxSalary int) *JobRequestBuilder {
	b.request.SalaryMin = &minSalary
	b.request.SalaryMax = &maxSalary
	return b
}

// WithExpiresAt sets the expiry time.
func (b *JobRequestBuilder) WithExpiresAt(t time.Time) *JobRequestBuilder {
	b.request.ExpiresAt = &t
	return b
}

// WithMaxApplications caps the number of applications.
func (b *JobRequestBuilder) WithMaxApplications(limit int) *JobRequestBuilder {
	b.request.MaxApplications = limit
	return b
}

// Featured marks the posting as featured.
func (b *JobRequestBuilder) Featured() *JobRequestBuilder {
	b.request.Featured = true
	return b
}

// Urgent marks the posting as urgent.
func (b *JobRequestBuilder) Urgent() *JobRequestBuilder {
	b.request.Urgent = true
	return b
}

// Build returns the constructed CreateJobRequest.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.request
}

// JobBuilder provides a fluent interface for building Job models directly,
// for tests that exercise policy without a database.
type JobBuilder struct {
	job *model.Job
}

// NewJob creates a JobBuilder for a draft job with sensible defaults.
func NewJob() *JobBuilder {
	now := TestTime()
	return &JobBuilder{
		job: &model.Job{
			ID:          uuid.NewString(),
			PosterID:    uuid.NewString(),
			Title:       "Backend Engineer",
			Description: "Design and run marketplace services.",
			CategoryID:  uuid.NewString(),
			Employment:  model.EmploymentFullTime,
			WorkMode:    model.WorkModeRemote,
			Status:      model.JobStatusDraft,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}

// Published moves the job to published with the given expiry.
func (b *JobBuilder) Published(expiresAt time.Time) *JobBuilder {
	now := TestTime()
	b.job.Status = model.JobStatusPublished
	b.job.PublishedAt = &now
	b.job.ExpiresAt = &expiresAt
	return b
}

// WithStatus sets the job status directly.
func (b *JobBuilder) WithStatus(status model.JobStatus) *JobBuilder {
	b.job.Status = status
	return b
}

// WithApplications sets the application counters.
func (b *JobBuilder) WithApplications(count, maxApplications int) *JobBuilder {
	b.job.ApplicationCount = count
	b.job.MaxApplications = maxApplications
	return b
}

// WithPoster sets the poster ID.
func (b *JobBuilder) WithPoster(posterID string) *JobBuilder {
	b.job.PosterID = posterID
	return b
}

// Build returns the constructed Job.
func (b *JobBuilder) Build() *model.Job {
	return b.job
}

// ApplicationBuilder provides a fluent interface for building Application models.
type ApplicationBuilder struct {
	app *model.Application
}

// NewApplication creates an ApplicationBuilder for a submitted application.
func NewApplication() *ApplicationBuilder {
	now := TestTime()
	return &ApplicationBuilder{
		app: &model.Application{
			ID:          uuid.NewString(),
			JobID:       uuid.NewString(),
			ApplicantID: uuid.NewString(),
			CoverLetter: "I would be a great fit.",
			ResumeRef:   "resumes/" + uuid.NewString() + ".pdf",
			Status:      model.ApplicationStatusSubmitted,
			Lifecycle:   model.LifecycleActive,
			SubmittedAt: now,
			UpdatedAt:   now,
		},
	}
}

// ForJob sets the job ID.
func (b *ApplicationBuilder) ForJob(jobID string) *ApplicationBuilder {
	b.app.JobID = jobID
	return b
}

// ByApplicant sets the applicant ID.
func (b *ApplicationBuilder) ByApplicant(applicantID string) *ApplicationBuilder {
	b.app.ApplicantID = applicantID
	return b
}

// WithStatus sets the review status.
func (b *ApplicationBuilder) WithStatus(status model.ApplicationStatus) *ApplicationBuilder {
	b.app.Status = status
	return b
}

// Build returns the constructed Application.
func (b *ApplicationBuilder) Build() *model.Application {
	return b.app
}
