package notify

import (
	"context"

	"github.com/hirewire/hirewire-api/internal/domain/model"
)

// Template keys recognised by downstream sinks.
const (
	TemplateApplicationReceived = "application_received"
	TemplateApplicationDecision = "application_decision"
	TemplateInterviewScheduled  = "interview_scheduled"
	TemplateJobExpiryReminder   = "job_expiry_reminder"
	TemplateJobExpired          = "job_expired"
)

// Sink describes a destination capable of consuming recipient notifications.
type Sink interface {
	Send(ctx context.Context, n model.Notification) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, n model.Notification) error

// Send implements the Sink interface.
func (f SinkFunc) Send(ctx context.Context, n model.Notification) error {
	if f == nil {
		return nil
	}
	return f(ctx, n)
}
