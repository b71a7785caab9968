// Package job holds the pure lifecycle policy for job postings. The rules
// here decide whether a transition is legal and stamp the resulting fields;
// persistence and concurrency guards live in the data layer.
package job

import (
	"time"

	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
)

// Publish moves a draft job to published, stamping PublishedAt and deriving
// ExpiresAt from defaultTTL when the poster did not set one. The job must
// have a category and a non-empty description before it can go live.
func Publish(j *model.Job, now time.Time, defaultTTL time.Duration) error {
	if !j.Status.CanTransitionTo(model.JobStatusPublished) {
		return apperrors.InvalidStatus("publish", j.ID, string(j.Status), string(model.JobStatusDraft))
	}
	if j.ExpiresAt != nil && !j.ExpiresAt.After(now) {
		return apperrors.ValidationField("expires_at", "expiry must be in the future")
	}

	j.Status = model.JobStatusPublished
	j.PublishedAt = &now
	if j.ExpiresAt == nil && defaultTTL > 0 {
		exp := now.Add(defaultTTL)
		j.ExpiresAt = &exp
	}
	j.UpdatedAt = now
	return nil
}

// Close moves a published job to closed, stamping ClosedAt. Draft jobs are
// discarded rather than closed, and terminal jobs stay where they are.
func Close(j *model.Job, now time.Time) error {
	if !j.Status.CanTransitionTo(model.JobStatusClosed) {
		return apperrors.InvalidStatus("close", j.ID, string(j.Status), string(model.JobStatusPublished))
	}

	j.Status = model.JobStatusClosed
	j.ClosedAt = &now
	j.UpdatedAt = now
	return nil
}

// Expire moves a published job past its expiry to expired. The sweeper
// normally performs this in bulk; this form covers lazy expiry on read.
func Expire(j *model.Job, now time.Time) error {
	if !j.Status.CanTransitionTo(model.JobStatusExpired) {
		return apperrors.InvalidStatus("expire", j.ID, string(j.Status), string(model.JobStatusPublished))
	}
	if j.ExpiresAt == nil || now.Before(*j.ExpiresAt) {
		return apperrors.Conflict("job has not reached its expiry")
	}

	j.Status = model.JobStatusExpired
	j.ClosedAt = &now
	j.UpdatedAt = now
	return nil
}

// Updatable returns nil when the job may still be edited. Terminal jobs are
// immutable apart from status history.
func Updatable(j *model.Job) error {
	if j.Status.Terminal() {
		return apperrors.InvalidStatus("update", j.ID, string(j.Status), "draft or published")
	}
	return nil
}

// CheckApplicationEligibility reports why a job cannot accept a new
// application, or nil when it can. The distinct errors let callers surface
// expiry and capacity separately from plain status conflicts.
func CheckApplicationEligibility(j *model.Job, now time.Time) error {
	if j.Status != model.JobStatusPublished {
		return apperrors.InvalidStatus("apply", j.ID, string(j.Status), string(model.JobStatusPublished))
	}
	if j.ExpiresAt != nil && !now.Before(*j.ExpiresAt) {
		return apperrors.JobExpired(j.ID)
	}
	if j.MaxApplications > 0 && j.ApplicationCount >= j.MaxApplications {
		return apperrors.MaxApplicationsReached(j.ID, j.MaxApplications)
	}
	return nil
}
