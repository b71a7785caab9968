// Package application holds the pure review workflow for applications.
// Reviewer authorization is resolved by the service layer; the rules here
// only enforce the status graph and stamp review metadata.
package application

import (
	"strings"
	"time"

	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
)

// decisionTargets maps each reviewer decision to its resulting status.
var decisionTargets = map[model.ReviewDecision]model.ApplicationStatus{
	model.DecisionRequestReview: model.ApplicationStatusUnderReview,
	model.DecisionApprove:       model.ApplicationStatusApproved,
	model.DecisionReject:        model.ApplicationStatusRejected,
}

// ApplyDecision applies a reviewer decision to the application, stamping the
// reviewer identity, optional notes, and the review time. Terminal
// applications and withdrawn ones reject every decision.
func ApplyDecision(
	app *model.Application,
	decision model.ReviewDecision,
	reviewerID string,
	notes string,
	now time.Time,
) error {
	if !decision.Valid() {
		return apperrors.ValidationField("decision", "unknown review decision")
	}
	if app.Lifecycle != model.LifecycleActive {
		return apperrors.InvalidStatus(
			"review", app.ID, string(app.Lifecycle), string(model.LifecycleActive))
	}

	target := decisionTargets[decision]
	if !app.Status.CanTransitionTo(target) {
		return apperrors.InvalidStatus("review", app.ID, string(app.Status), string(target))
	}

	app.Status = target
	app.ReviewerID = &reviewerID
	if trimmed := strings.TrimSpace(notes); trimmed != "" {
		app.ReviewNotes = &trimmed
	}
	app.ReviewedAt = &now
	app.UpdatedAt = now
	return nil
}

// Withdraw retracts the application on behalf of its applicant. Only the
// applicant may withdraw, and only before a terminal decision lands. The
// lifecycle moves to withdrawn so the uniqueness slot is released.
func Withdraw(app *model.Application, actorID string, now time.Time) error {
	if actorID != app.ApplicantID {
		return apperrors.Unauthorized("only the applicant may withdraw an application")
	}
	if !app.Status.CanTransitionTo(model.ApplicationStatusWithdrawn) {
		return apperrors.InvalidStatus(
			"withdraw", app.ID, string(app.Status), "submitted or under_review")
	}

	app.Status = model.ApplicationStatusWithdrawn
	app.Lifecycle = model.LifecycleWithdrawn
	app.UpdatedAt = now
	return nil
}

// ScheduleInterview records interview details on an approved application.
func ScheduleInterview(app *model.Application, at time.Time, location string, now time.Time) error {
	if app.Status != model.ApplicationStatusApproved {
		return apperrors.InvalidStatus(
			"schedule_interview", app.ID, string(app.Status), string(model.ApplicationStatusApproved))
	}
	if at.Before(now) {
		return apperrors.ValidationField("interview_at", "interview time must be in the future")
	}

	app.InterviewAt = &at
	if trimmed := strings.TrimSpace(location); trimmed != "" {
		app.InterviewLocation = &trimmed
	}
	app.UpdatedAt = now
	return nil
}
