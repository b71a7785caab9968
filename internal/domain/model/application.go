package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus represents the review status of an application.
type ApplicationStatus string

// LifecycleState represents the storage lifecycle of an application record,
// replacing soft-delete booleans with an explicit state.
type LifecycleState string

// ReviewDecision represents a reviewer's decision on an application.
type ReviewDecision string

const (
	// ApplicationStatusSubmitted indicates an application awaiting review.
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	// ApplicationStatusUnderReview indicates a reviewer has picked up the application.
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	// ApplicationStatusApproved is a terminal accepting decision.
	ApplicationStatusApproved ApplicationStatus = "approved"
	// ApplicationStatusRejected is a terminal rejecting decision.
	ApplicationStatusRejected ApplicationStatus = "rejected"
	// ApplicationStatusWithdrawn is a terminal applicant-initiated retraction.
	ApplicationStatusWithdrawn ApplicationStatus = "withdrawn"

	// LifecycleActive is a live application counted toward uniqueness.
	LifecycleActive LifecycleState = "active"
	// LifecycleWithdrawn marks an application retracted by its applicant.
	LifecycleWithdrawn LifecycleState = "withdrawn"
	// LifecycleDeleted marks an application removed by moderation.
	LifecycleDeleted LifecycleState = "deleted"

	// DecisionApprove approves the application (terminal).
	DecisionApprove ReviewDecision = "approve"
	// DecisionReject rejects the application (terminal).
	DecisionReject ReviewDecision = "reject"
	// DecisionRequestReview moves the application to under_review (non-terminal).
	DecisionRequestReview ReviewDecision = "request_review"
)

// Valid returns true if the ApplicationStatus is valid.
func (s ApplicationStatus) Valid() bool {
	return s == ApplicationStatusSubmitted || s == ApplicationStatusUnderReview ||
		s == ApplicationStatusApproved || s == ApplicationStatusRejected ||
		s == ApplicationStatusWithdrawn
}

// applicationTransitions is the central transition table for application statuses.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusSubmitted: {
		ApplicationStatusUnderReview,
		ApplicationStatusApproved,
		ApplicationStatusRejected,
		ApplicationStatusWithdrawn,
	},
	ApplicationStatusUnderReview: {
		ApplicationStatusApproved,
		ApplicationStatusRejected,
		ApplicationStatusWithdrawn,
	},
	ApplicationStatusApproved:  {},
	ApplicationStatusRejected:  {},
	ApplicationStatusWithdrawn: {},
}

// CanTransitionTo returns true if the status graph permits moving to next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal returns true if no further transitions are permitted.
func (s ApplicationStatus) Terminal() bool {
	return len(applicationTransitions[s]) == 0
}

// ReviewVisible returns true if review fields may be populated in this status.
func (s ApplicationStatus) ReviewVisible() bool {
	return s == ApplicationStatusUnderReview || s == ApplicationStatusApproved ||
		s == ApplicationStatusRejected
}

// Valid returns true if the LifecycleState is valid.
func (l LifecycleState) Valid() bool {
	return l == LifecycleActive || l == LifecycleWithdrawn || l == LifecycleDeleted
}

// Valid returns true if the ReviewDecision is valid.
func (d ReviewDecision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject || d == DecisionRequestReview
}

// Application represents an applicant's submission against a specific job.
// At most one active application exists per (job, applicant) pair.
type Application struct {
	ID          string            `json:"id"           db:"id"`
	JobID       string            `json:"job_id"       db:"job_id"`
	ApplicantID string            `json:"applicant_id" db:"applicant_id"`
	CoverLetter string            `json:"cover_letter" db:"cover_letter"`
	ResumeRef   string            `json:"resume_ref"   db:"resume_ref"`
	Status      ApplicationStatus `json:"status"       db:"status"`
	Lifecycle   LifecycleState    `json:"lifecycle"    db:"lifecycle"`

	// Review fields are set only when Status is under_review, approved, or rejected.
	ReviewerID  *string    `json:"reviewer_id,omitempty"  db:"reviewer_id"`
	ReviewNotes *string    `json:"review_notes,omitempty" db:"review_notes"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"  db:"reviewed_at"`

	// Interview metadata, populated by reviewers for approved candidates.
	InterviewAt       *time.Time `json:"interview_at,omitempty"       db:"interview_at"`
	InterviewLocation *string    `json:"interview_location,omitempty" db:"interview_location"`

	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"   db:"updated_at"`
}

// CreateApplicationRequest represents an applicant submitting against a job.
type CreateApplicationRequest struct {
	JobID       string `json:"job_id"`
	ApplicantID string `json:"applicant_id"`
	CoverLetter string `json:"cover_letter,omitempty"`
	ResumeRef   string `json:"resume_ref"`
}

// Validate validates the CreateApplicationRequest fields. The cover letter
// bound is injected so the marketplace guardrail stays configurable.
func (r *CreateApplicationRequest) Validate(maxCoverLetterLen int) error {
	if _, err := uuid.Parse(r.JobID); err != nil {
		return errors.New("job id must be a valid UUID")
	}
	if _, err := uuid.Parse(r.ApplicantID); err != nil {
		return errors.New("applicant id must be a valid UUID")
	}
	if strings.TrimSpace(r.ResumeRef) == "" {
		return errors.New("resume reference is required")
	}
	if maxCoverLetterLen > 0 && len(r.CoverLetter) > maxCoverLetterLen {
		return fmt.Errorf("cover letter must be at most %d characters", maxCoverLetterLen)
	}
	return nil
}

// ApplicationStats represents counts of applications in each review status.
type ApplicationStats struct {
	Submitted   int `json:"submitted"`
	UnderReview int `json:"under_review"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
	Withdrawn   int `json:"withdrawn"`
}

// ApplicationListOptions controls listing applications for a job.
type ApplicationListOptions struct {
	JobID  string
	Status *ApplicationStatus
	Limit  int
	Offset int
}
