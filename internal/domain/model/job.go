// Package model defines the core data types and structures used throughout the hirewire marketplace.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle status of a job posting.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

// EmploymentType represents the employment arrangement of a job posting.
type EmploymentType string

// WorkMode represents where the work is performed.
type WorkMode string

const (
	// JobStatusDraft indicates a job is being drafted and is not yet visible.
	JobStatusDraft JobStatus = "draft"
	// JobStatusPublished indicates a job is live and accepting applications.
	JobStatusPublished JobStatus = "published"
	// JobStatusExpired indicates a job passed its expiry without being closed.
	JobStatusExpired JobStatus = "expired"
	// JobStatusClosed indicates a job was closed by its poster.
	JobStatusClosed JobStatus = "closed"

	// EmploymentFullTime is a full-time position.
	EmploymentFullTime EmploymentType = "full_time"
	// EmploymentPartTime is a part-time position.
	EmploymentPartTime EmploymentType = "part_time"
	// EmploymentContract is a fixed-term contract position.
	EmploymentContract EmploymentType = "contract"
	// EmploymentInternship is an internship position.
	EmploymentInternship EmploymentType = "internship"

	// WorkModeOnsite requires presence at the job location.
	WorkModeOnsite WorkMode = "onsite"
	// WorkModeRemote is fully remote.
	WorkModeRemote WorkMode = "remote"
	// WorkModeHybrid mixes onsite and remote work.
	WorkModeHybrid WorkMode = "hybrid"
)

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus to allow env parsing.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	js := JobStatus(v)
	if js.Valid() {
		*s = js
		return nil
	}
	return fmt.Errorf("invalid JobStatus: %q", v)
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusDraft || s == JobStatusPublished || s == JobStatusExpired ||
		s == JobStatusClosed
}

// jobTransitions is the central transition table for job statuses.
// Transitions are monotonic: draft → published → {expired, closed}.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusDraft:     {JobStatusPublished},
	JobStatusPublished: {JobStatusExpired, JobStatusClosed},
	JobStatusExpired:   {},
	JobStatusClosed:    {},
}

// CanTransitionTo returns true if the status graph permits moving to next.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal returns true if no further transitions are permitted.
func (s JobStatus) Terminal() bool {
	return len(jobTransitions[s]) == 0
}

// Valid returns true if the EmploymentType is valid.
func (t EmploymentType) Valid() bool {
	return t == EmploymentFullTime || t == EmploymentPartTime || t == EmploymentContract ||
		t == EmploymentInternship
}

// Valid returns true if the WorkMode is valid.
func (m WorkMode) Valid() bool {
	return m == WorkModeOnsite || m == WorkModeRemote || m == WorkModeHybrid
}

// Job represents a posted opportunity with a bounded application window and
// lifecycle status. Jobs are never physically deleted, only state-transitioned.
type Job struct {
	ID          string         `json:"id"                     db:"id"`
	PosterID    string         `json:"poster_id"              db:"poster_id"`
	Title       string         `json:"title"                  db:"title"`
	Description string         `json:"description"            db:"description"`
	CategoryID  string         `json:"category_id"            db:"category_id"`
	Employment  EmploymentType `json:"employment_type"        db:"employment_type"`
	WorkMode    WorkMode       `json:"work_mode"              db:"work_mode"`
	Location    string         `json:"location"               db:"location"`
	SalaryMin   *int           `json:"salary_min,omitempty"   db:"salary_min"`
	SalaryMax   *int           `json:"salary_max,omitempty"   db:"salary_max"`
	Status      JobStatus      `json:"status"                 db:"status"`
	PublishedAt *time.Time     `json:"published_at,omitempty" db:"published_at"`
	ExpiresAt   *time.Time     `json:"expires_at,omitempty"   db:"expires_at"`
	ClosedAt    *time.Time     `json:"closed_at,omitempty"    db:"closed_at"`
	// ApplicationCount never exceeds MaxApplications when MaxApplications > 0.
	ApplicationCount int  `json:"application_count" db:"application_count"`
	MaxApplications  int  `json:"max_applications"  db:"max_applications"` // 0 = unlimited
	ViewCount        int  `json:"view_count"        db:"view_count"`
	Featured         bool `json:"featured"          db:"featured"`
	Urgent           bool `json:"urgent"            db:"urgent"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AcceptsApplications returns true when the job is published and has not
// exhausted its application slots. Expiry is checked against the caller's clock.
func (j *Job) AcceptsApplications(now time.Time) bool {
	if j.Status != JobStatusPublished {
		return false
	}
	if j.ExpiresAt != nil && !now.Before(*j.ExpiresAt) {
		return false
	}
	if j.MaxApplications > 0 && j.ApplicationCount >= j.MaxApplications {
		return false
	}
	return true
}

// Expired returns true when the job carries an expiry that has passed.
// The expiry instant itself counts as expired.
func (j *Job) Expired(now time.Time) bool {
	return j.ExpiresAt != nil && !now.Before(*j.ExpiresAt)
}

// CreateJobRequest represents a request to create a new job posting. Jobs are
// always created as drafts owned by the posting actor.
type CreateJobRequest struct {
	PosterID        string         `json:"poster_id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	CategoryID      string         `json:"category_id"`
	Employment      EmploymentType `json:"employment_type"`
	WorkMode        WorkMode       `json:"work_mode"`
	Location        string         `json:"location,omitempty"`
	SalaryMin       *int           `json:"salary_min,omitempty"`
	SalaryMax       *int           `json:"salary_max,omitempty"`
	ExpiresAt       *time.Time     `json:"expires_at,omitempty"`
	MaxApplications int            `json:"max_applications,omitempty"`
	Featured        bool           `json:"featured,omitempty"`
	Urgent          bool           `json:"urgent,omitempty"`
}

const maxJobTitleLen = 200

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if _, err := uuid.Parse(r.PosterID); err != nil {
		return errors.New("poster id must be a valid UUID")
	}
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required")
	}
	if len(title) > maxJobTitleLen {
		return fmt.Errorf("title must be at most %d characters", maxJobTitleLen)
	}
	if strings.TrimSpace(r.CategoryID) == "" {
		return errors.New("category id is required")
	}
	if !r.Employment.Valid() {
		return errors.New("invalid employment type")
	}
	if !r.WorkMode.Valid() {
		return errors.New("invalid work mode")
	}
	if r.MaxApplications < 0 {
		return errors.New("max applications must be >= 0")
	}
	return validateSalaryRange(r.SalaryMin, r.SalaryMax)
}

// UpdateJobRequest represents a partial update to a job posting. Only fields
// with non-nil pointers are applied. Updates are permitted while the job is
// draft or published.
type UpdateJobRequest struct {
	Title           *string         `json:"title,omitempty"`
	Description     *string         `json:"description,omitempty"`
	CategoryID      *string         `json:"category_id,omitempty"`
	Employment      *EmploymentType `json:"employment_type,omitempty"`
	WorkMode        *WorkMode       `json:"work_mode,omitempty"`
	Location        *string         `json:"location,omitempty"`
	SalaryMin       *int            `json:"salary_min,omitempty"`
	SalaryMax       *int            `json:"salary_max,omitempty"`
	ExpiresAt       *time.Time      `json:"expires_at,omitempty"`
	MaxApplications *int            `json:"max_applications,omitempty"`
	Featured        *bool           `json:"featured,omitempty"`
	Urgent          *bool           `json:"urgent,omitempty"`
}

// Validate validates the UpdateJobRequest fields.
func (r *UpdateJobRequest) Validate() error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errors.New("title cannot be empty")
		}
		if len(title) > maxJobTitleLen {
			return fmt.Errorf("title must be at most %d characters", maxJobTitleLen)
		}
	}
	if r.CategoryID != nil && strings.TrimSpace(*r.CategoryID) == "" {
		return errors.New("category id cannot be empty")
	}
	if r.Employment != nil && !r.Employment.Valid() {
		return errors.New("invalid employment type")
	}
	if r.WorkMode != nil && !r.WorkMode.Valid() {
		return errors.New("invalid work mode")
	}
	if r.MaxApplications != nil && *r.MaxApplications < 0 {
		return errors.New("max applications must be >= 0")
	}
	return validateSalaryRange(r.SalaryMin, r.SalaryMax)
}

// IsEmpty returns true if no fields are set.
func (r *UpdateJobRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.CategoryID == nil &&
		r.Employment == nil && r.WorkMode == nil && r.Location == nil &&
		r.SalaryMin == nil && r.SalaryMax == nil && r.ExpiresAt == nil &&
		r.MaxApplications == nil && r.Featured == nil && r.Urgent == nil
}

func validateSalaryRange(minSalary, maxSalary *int) error {
	if minSalary != nil && *minSalary < 0 {
		return errors.New("salary min must be >= 0")
	}
	if maxSalary != nil && *maxSalary < 0 {
		return errors.New("salary max must be >= 0")
	}
	if minSalary != nil && maxSalary != nil && *maxSalary < *minSalary {
		return errors.New("salary max must be >= salary min")
	}
	return nil
}

// JobStats represents counts of jobs in each lifecycle status.
type JobStats struct {
	Draft     int `json:"draft"`
	Published int `json:"published"`
	Expired   int `json:"expired"`
	Closed    int `json:"closed"`
}

// JobSummary is the search-result projection of a job.
type JobSummary struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	CategoryID       string         `json:"category_id"`
	CategoryName     string         `json:"category_name,omitempty"`
	Employment       EmploymentType `json:"employment_type"`
	WorkMode         WorkMode       `json:"work_mode"`
	Location         string         `json:"location,omitempty"`
	SalaryMin        *int           `json:"salary_min,omitempty"`
	SalaryMax        *int           `json:"salary_max,omitempty"`
	Featured         bool           `json:"featured"`
	Urgent           bool           `json:"urgent"`
	PublishedAt      *time.Time     `json:"published_at,omitempty"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
	ApplicationCount int            `json:"application_count"`

	// MatchScore is filled by the recommendation gateway for per-applicant
	// searches. It is not persisted.
	MatchScore *float64 `json:"match_score,omitempty"`
}

// Recommendation pairs a recommended job with its relevance score.
type Recommendation struct {
	JobID string  `json:"job_id"`
	Score float64 `json:"score"`
}

// Notification is a fire-and-forget message handed to the external notifier.
// Delivery is never awaited by the core.
type Notification struct {
	RecipientID string         `json:"recipient_id"`
	TemplateKey string         `json:"template_key"`
	Payload     map[string]any `json:"payload,omitempty"`
}
