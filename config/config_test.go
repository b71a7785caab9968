package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:  "single service - sweeper",
			input: "sweeper",
			expected: map[ServiceMode]bool{
				ServiceModeSweeper: true,
			},
		},
		{
			name:  "single service - reminder",
			input: "reminder",
			expected: map[ServiceMode]bool{
				ServiceModeReminder: true,
			},
		},
		{
			name:  "both services",
			input: "sweeper,reminder",
			expected: map[ServiceMode]bool{
				ServiceModeSweeper:  true,
				ServiceModeReminder: true,
			},
		},
		{
			name:  "services with spaces",
			input: " sweeper , reminder ",
			expected: map[ServiceMode]bool{
				ServiceModeSweeper:  true,
				ServiceModeReminder: true,
			},
		},
		{
			name:        "invalid service name",
			input:       "sweeper,reaper",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only commas",
			input:       ",,,",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServices(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for input %q, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("ParseServices(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Postgres.Host != "localhost" {
		t.Errorf("Postgres.Host = %q, want localhost", cfg.Postgres.Host)
	}
	if cfg.Sweeper.Interval != 24*time.Hour {
		t.Errorf("Sweeper.Interval = %v, want 24h", cfg.Sweeper.Interval)
	}
	if cfg.Gateway.FailureThreshold != 5 {
		t.Errorf("Gateway.FailureThreshold = %d, want 5", cfg.Gateway.FailureThreshold)
	}
	if cfg.Gateway.Cooldown != 30*time.Second {
		t.Errorf("Gateway.Cooldown = %v, want 30s", cfg.Gateway.Cooldown)
	}
	if !cfg.IsSweeperEnabled() || !cfg.IsReminderEnabled() {
		t.Error("expected sweeper and reminder enabled by default")
	}
}

func TestSweeperConfigSanitize(t *testing.T) {
	cfg := SweeperConfig{
		Interval:           -1,
		BatchSize:          0,
		ReminderWindowFrom: 48 * time.Hour,
		ReminderWindowTo:   24 * time.Hour, // inverted on purpose
	}
	cfg.Sanitize()

	if cfg.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", cfg.Interval)
	}
	if cfg.BatchSize != 1 {
		t.Errorf("BatchSize = %d, want 1", cfg.BatchSize)
	}
	if cfg.ReminderWindowTo != 72*time.Hour {
		t.Errorf("ReminderWindowTo = %v, want 72h", cfg.ReminderWindowTo)
	}
}

func TestGatewayConfigSanitize(t *testing.T) {
	cfg := GatewayConfig{
		BaseURL:              "  https://recs.internal  ",
		FailureRateThreshold: 1.5,
		WindowSize:           0,
	}
	cfg.Sanitize()

	if cfg.BaseURL != "https://recs.internal" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.FailureRateThreshold != 0.5 {
		t.Errorf("FailureRateThreshold = %v, want 0.5", cfg.FailureRateThreshold)
	}
	if cfg.WindowSize != 10 {
		t.Errorf("WindowSize = %d, want 10", cfg.WindowSize)
	}
}
