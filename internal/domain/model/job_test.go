package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from JobStatus
		to   JobStatus
		want bool
	}{
		{"draft to published", JobStatusDraft, JobStatusPublished, true},
		{"draft to closed", JobStatusDraft, JobStatusClosed, false},
		{"draft to expired", JobStatusDraft, JobStatusExpired, false},
		{"published to expired", JobStatusPublished, JobStatusExpired, true},
		{"published to closed", JobStatusPublished, JobStatusClosed, true},
		{"published back to draft", JobStatusPublished, JobStatusDraft, false},
		{"expired to closed", JobStatusExpired, JobStatusClosed, false},
		{"closed to published", JobStatusClosed, JobStatusPublished, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, JobStatusDraft.Terminal())
	assert.False(t, JobStatusPublished.Terminal())
	assert.True(t, JobStatusExpired.Terminal())
	assert.True(t, JobStatusClosed.Terminal())
}

func TestJobStatusUnmarshalText(t *testing.T) {
	var s JobStatus
	require.NoError(t, s.UnmarshalText([]byte(" Published ")))
	assert.Equal(t, JobStatusPublished, s)

	assert.Error(t, s.UnmarshalText([]byte("archived")))
}

func TestJobAcceptsApplications(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Minute)

	tests := []struct {
		name string
		job  Job
		want bool
	}{
		{"published open", Job{Status: JobStatusPublished, ExpiresAt: &future}, true},
		{"published no expiry", Job{Status: JobStatusPublished}, true},
		{"draft", Job{Status: JobStatusDraft}, false},
		{"closed", Job{Status: JobStatusClosed, ExpiresAt: &future}, false},
		{"past expiry", Job{Status: JobStatusPublished, ExpiresAt: &past}, false},
		{"expiry boundary is closed", Job{Status: JobStatusPublished, ExpiresAt: &now}, false},
		{
			"slots exhausted",
			Job{Status: JobStatusPublished, ApplicationCount: 3, MaxApplications: 3},
			false,
		},
		{
			"unlimited slots",
			Job{Status: JobStatusPublished, ApplicationCount: 9000, MaxApplications: 0},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.AcceptsApplications(now))
		})
	}
}

func validCreateJobRequest() CreateJobRequest {
	return CreateJobRequest{
		PosterID:    uuid.NewString(),
		Title:       "Backend Engineer",
		Description: "Build services.",
		CategoryID:  uuid.NewString(),
		Employment:  EmploymentFullTime,
		WorkMode:    WorkModeRemote,
	}
}

func TestCreateJobRequestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := validCreateJobRequest()
		assert.NoError(t, req.Validate())
	})

	t.Run("bad poster id", func(t *testing.T) {
		req := validCreateJobRequest()
		req.PosterID = "nope"
		assert.ErrorContains(t, req.Validate(), "poster id")
	})

	t.Run("blank title", func(t *testing.T) {
		req := validCreateJobRequest()
		req.Title = "   "
		assert.ErrorContains(t, req.Validate(), "title is required")
	})

	t.Run("title too long", func(t *testing.T) {
		req := validCreateJobRequest()
		req.Title = string(make([]byte, 201))
		assert.ErrorContains(t, req.Validate(), "at most 200")
	})

	t.Run("missing category", func(t *testing.T) {
		req := validCreateJobRequest()
		req.CategoryID = ""
		assert.ErrorContains(t, req.Validate(), "category id")
	})

	t.Run("bad employment type", func(t *testing.T) {
		req := validCreateJobRequest()
		req.Employment = "gig"
		assert.ErrorContains(t, req.Validate(), "employment type")
	})

	t.Run("negative max applications", func(t *testing.T) {
		req := validCreateJobRequest()
		req.MaxApplications = -1
		assert.ErrorContains(t, req.Validate(), "max applications")
	})

	t.Run("inverted salary range", func(t *testing.T) {
		req := validCreateJobRequest()
		lo, hi := 90000, 60000
		req.SalaryMin = &lo
		req.SalaryMax = &hi
		assert.ErrorContains(t, req.Validate(), "salary max")
	})
}

func TestUpdateJobRequestValidate(t *testing.T) {
	t.Run("empty update is valid but empty", func(t *testing.T) {
		req := UpdateJobRequest{}
		assert.NoError(t, req.Validate())
		assert.True(t, req.IsEmpty())
	})

	t.Run("blank title rejected", func(t *testing.T) {
		title := " "
		req := UpdateJobRequest{Title: &title}
		assert.Error(t, req.Validate())
		assert.False(t, req.IsEmpty())
	})

	t.Run("bad work mode rejected", func(t *testing.T) {
		mode := WorkMode("floating")
		req := UpdateJobRequest{WorkMode: &mode}
		assert.ErrorContains(t, req.Validate(), "work mode")
	})
}

func TestJobSearchOptionsNormalize(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		opts := JobSearchOptions{}
		opts.Normalize(20, 100)
		assert.Equal(t, 20, opts.Limit)
		assert.Equal(t, SortPublishedAt, opts.SortBy)
		assert.Equal(t, SortDesc, opts.SortOrder)
	})

	t.Run("limit clamped and sort key allowlisted", func(t *testing.T) {
		opts := JobSearchOptions{
			Limit:     5000,
			Offset:    -3,
			SortBy:    "poster_id; DROP TABLE jobs",
			SortOrder: "DESC",
		}
		opts.Normalize(20, 100)
		assert.Equal(t, 100, opts.Limit)
		assert.Equal(t, 0, opts.Offset)
		assert.Equal(t, SortPublishedAt, opts.SortBy)
		assert.Equal(t, SortDesc, opts.SortOrder)
	})

	t.Run("valid sort preserved", func(t *testing.T) {
		opts := JobSearchOptions{SortBy: "Salary_Max", SortOrder: "ASC"}
		opts.Normalize(20, 100)
		assert.Equal(t, SortSalaryMax, opts.SortBy)
		assert.Equal(t, SortAsc, opts.SortOrder)
	})

	t.Run("remote only resolves to the remote work mode", func(t *testing.T) {
		opts := JobSearchOptions{RemoteOnly: true}
		opts.Normalize(20, 100)
		require.NotNil(t, opts.WorkMode)
		assert.Equal(t, WorkModeRemote, *opts.WorkMode)
	})

	t.Run("remote only never overrides an explicit work mode", func(t *testing.T) {
		hybrid := WorkModeHybrid
		opts := JobSearchOptions{RemoteOnly: true, WorkMode: &hybrid}
		opts.Normalize(20, 100)
		assert.Equal(t, WorkModeHybrid, *opts.WorkMode)
	})
}
