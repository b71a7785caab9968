package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available background service modes.
type ServiceMode string

const (
	// ServiceModeSweeper runs the expiration sweeper that transitions
	// overdue published jobs to expired.
	ServiceModeSweeper ServiceMode = "sweeper"
	// ServiceModeReminder runs the expiry reminder sweep that notifies
	// posters of jobs approaching their expiry window.
	ServiceModeReminder ServiceMode = "reminder"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeSweeper,
		ServiceModeReminder,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	parts := strings.Split(servicesStr, ",")
	for _, part := range parts {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeSweeper, ServiceModeReminder:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: sweeper, reminder)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// SweeperConfig contains expiration sweeper configuration.
type SweeperConfig struct {
	// Interval is the sweep tick interval.
	Interval time.Duration `env:"SWEEPER_INTERVAL" envDefault:"24h"`

	// BatchSize is the number of jobs to expire per batch update.
	BatchSize int `env:"SWEEPER_BATCH_SIZE" envDefault:"500"`

	// ReminderWindowFrom is the lower bound of the expiry reminder window,
	// relative to the sweep time.
	ReminderWindowFrom time.Duration `env:"SWEEPER_REMINDER_WINDOW_FROM" envDefault:"72h"`

	// ReminderWindowTo is the upper bound of the expiry reminder window,
	// relative to the sweep time.
	ReminderWindowTo time.Duration `env:"SWEEPER_REMINDER_WINDOW_TO" envDefault:"96h"`

	// ReminderBatchLimit caps the number of reminders emitted per sweep.
	ReminderBatchLimit int `env:"SWEEPER_REMINDER_BATCH_LIMIT" envDefault:"1000"`

	// DispatchConcurrency bounds concurrent reminder notifications.
	DispatchConcurrency int `env:"SWEEPER_DISPATCH_CONCURRENCY" envDefault:"8"`

	// SweepTimeout bounds a single sweep run independent of request-serving capacity.
	SweepTimeout time.Duration `env:"SWEEPER_SWEEP_TIMEOUT" envDefault:"5m"`
}

// Sanitize applies guardrails to sweeper configuration values.
func (s *SweeperConfig) Sanitize() {
	if s.Interval <= 0 {
		s.Interval = 24 * time.Hour
	}
	if s.BatchSize < 1 {
		s.BatchSize = 1
	}
	if s.ReminderWindowFrom < 0 {
		s.ReminderWindowFrom = 72 * time.Hour
	}
	if s.ReminderWindowTo <= s.ReminderWindowFrom {
		s.ReminderWindowTo = s.ReminderWindowFrom + 24*time.Hour
	}
	if s.ReminderBatchLimit < 1 {
		s.ReminderBatchLimit = 1
	}
	if s.DispatchConcurrency < 1 {
		s.DispatchConcurrency = 1
	}
	if s.SweepTimeout <= 0 {
		s.SweepTimeout = 5 * time.Minute
	}
}
