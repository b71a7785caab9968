package errors

import (
	"errors"
	"fmt"
)

// Conflict reasons distinguish the state-conflict subtypes the workflow
// engines raise. They refine ErrCodeConflict without multiplying codes.
const (
	// ReasonInvalidStatus marks an illegal state transition attempt.
	ReasonInvalidStatus = "invalid_status"
	// ReasonJobExpired marks an application against a job past its expiry.
	ReasonJobExpired = "job_expired"
	// ReasonMaxApplications marks an application against a full job.
	ReasonMaxApplications = "max_applications_reached"
	// ReasonDuplicateApplication marks a second active application for the
	// same (job, applicant) pair.
	ReasonDuplicateApplication = "duplicate_application"
)

// InvalidStatus creates a Conflict error for an operation attempted from a
// state it does not accept.
func InvalidStatus(op, entityID, current, expected string) *AppError {
	return &AppError{
		Code:     ErrCodeConflict,
		Reason:   ReasonInvalidStatus,
		Message:  fmt.Sprintf("cannot %s: status is %q, requires %q", op, current, expected),
		EntityID: entityID,
		Op:       op,
		Current:  current,
		Expected: expected,
	}
}

// JobExpired creates a Conflict error for an application against a job whose
// expiry has passed.
func JobExpired(jobID string) *AppError {
	return &AppError{
		Code:     ErrCodeConflict,
		Reason:   ReasonJobExpired,
		Message:  "job is past its application deadline",
		EntityID: jobID,
		Op:       "apply",
	}
}

// MaxApplicationsReached creates a Conflict error for an application against
// a job that has exhausted its application slots.
func MaxApplicationsReached(jobID string, max int) *AppError {
	return &AppError{
		Code:     ErrCodeConflict,
		Reason:   ReasonMaxApplications,
		Message:  fmt.Sprintf("job has reached its maximum of %d applications", max),
		EntityID: jobID,
		Op:       "apply",
	}
}

// DuplicateApplication creates a Conflict error for a second active
// application by the same applicant against the same job.
func DuplicateApplication(jobID, applicantID string) *AppError {
	return &AppError{
		Code:     ErrCodeConflict,
		Reason:   ReasonDuplicateApplication,
		Message:  fmt.Sprintf("applicant %s already has an active application for this job", applicantID),
		EntityID: jobID,
		Op:       "apply",
	}
}

// hasReason checks if an error is a Conflict with the given reason.
func hasReason(err error, reason string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeConflict && appErr.Reason == reason
}

// IsInvalidStatus checks if an error marks an illegal state transition.
func IsInvalidStatus(err error) bool {
	return hasReason(err, ReasonInvalidStatus)
}

// IsJobExpired checks if an error marks an expired-job application attempt.
func IsJobExpired(err error) bool {
	return hasReason(err, ReasonJobExpired)
}

// IsMaxApplicationsReached checks if an error marks a full job.
func IsMaxApplicationsReached(err error) bool {
	return hasReason(err, ReasonMaxApplications)
}

// IsDuplicateApplication checks if an error marks a duplicate active application.
func IsDuplicateApplication(err error) bool {
	return hasReason(err, ReasonDuplicateApplication)
}

// GetReason returns the conflict reason from an error, or empty string.
func GetReason(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}
