package data

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/hirewire-api/internal/domain/model"
)

func TestBuildJobSearchWhere(t *testing.T) {
	t.Run("empty options only constrain status and expiry", func(t *testing.T) {
		where, args := buildJobSearchWhere(&model.JobSearchOptions{})

		assert.Equal(t,
			"j.status = 'published' AND (j.expires_at IS NULL OR j.expires_at > now())",
			where)
		assert.Empty(t, args)
	})

	t.Run("keyword matches title and description with one arg", func(t *testing.T) {
		where, args := buildJobSearchWhere(&model.JobSearchOptions{Keyword: "  engineer "})

		assert.Contains(t, where, "(j.title ILIKE $1 OR j.description ILIKE $1)")
		require.Len(t, args, 1)
		assert.Equal(t, "%engineer%", args[0])
	})

	t.Run("filters number their placeholders sequentially", func(t *testing.T) {
		employment := model.EmploymentFullTime
		salaryMin := 50000
		opts := &model.JobSearchOptions{
			Keyword:    "go",
			CategoryID: "cat-1",
			Employment: &employment,
			SalaryMin:  &salaryMin,
		}

		where, args := buildJobSearchWhere(opts)

		assert.Contains(t, where, "j.category_id = $2")
		assert.Contains(t, where, "j.employment_type = $3")
		assert.Contains(t, where, "j.salary_max >= $4")
		require.Len(t, args, 4)
		assert.Equal(t, "cat-1", args[1])
		assert.Equal(t, employment, args[2])
		assert.Equal(t, salaryMin, args[3])
	})

	t.Run("salary bounds overlap the posted range", func(t *testing.T) {
		salaryMin := 60000
		salaryMax := 90000
		where, args := buildJobSearchWhere(&model.JobSearchOptions{
			SalaryMin: &salaryMin,
			SalaryMax: &salaryMax,
		})

		// a posting matches when its range overlaps the requested one
		assert.Contains(t, where, "j.salary_max >= $1")
		assert.Contains(t, where, "j.salary_min <= $2")
		assert.Len(t, args, 2)
	})

	t.Run("boolean flags add conditions without args", func(t *testing.T) {
		where, args := buildJobSearchWhere(&model.JobSearchOptions{
			FeaturedOnly: true,
			UrgentOnly:   true,
		})

		assert.Contains(t, where, "j.featured")
		assert.Contains(t, where, "j.urgent")
		assert.Empty(t, args)
	})

	t.Run("posted within days builds an interval", func(t *testing.T) {
		where, args := buildJobSearchWhere(&model.JobSearchOptions{PostedWithinDays: 7})

		assert.Contains(t, where, "j.published_at >= now() - ($1 || ' days')::interval")
		require.Len(t, args, 1)
		assert.Equal(t, 7, args[0])
	})
}

func TestBuildJobSearchQuery(t *testing.T) {
	t.Run("orders featured first then by the normalized sort", func(t *testing.T) {
		opts := &model.JobSearchOptions{SortBy: "zzz", SortOrder: "up"}
		opts.Normalize(20, 100)

		query, args := buildJobSearchQuery(opts)

		assert.Contains(t, query, "ORDER BY j.featured DESC, j.published_at DESC")
		assert.Contains(t, query, "LIMIT $1 OFFSET $2")
		require.Len(t, args, 2)
		assert.Equal(t, 20, args[0])
		assert.Equal(t, 0, args[1])
	})

	t.Run("paging placeholders follow the filter args", func(t *testing.T) {
		opts := &model.JobSearchOptions{
			Keyword:   "backend",
			SortBy:    model.SortSalaryMax,
			SortOrder: model.SortAsc,
			Limit:     10,
			Offset:    30,
		}
		opts.Normalize(20, 100)

		query, args := buildJobSearchQuery(opts)

		assert.Contains(t, query, "ORDER BY j.featured DESC, j.salary_max ASC")
		assert.Contains(t, query, "LIMIT $2 OFFSET $3")
		require.Len(t, args, 3)
		assert.Equal(t, 10, args[1])
		assert.Equal(t, 30, args[2])
	})
}

func TestBuildJobUpdateSet(t *testing.T) {
	t.Run("empty request builds no clauses", func(t *testing.T) {
		clauses, args := buildJobUpdateSet(&model.UpdateJobRequest{})
		assert.Empty(t, clauses)
		assert.Empty(t, args)
	})

	t.Run("title is trimmed", func(t *testing.T) {
		title := "  Senior Engineer  "
		clauses, args := buildJobUpdateSet(&model.UpdateJobRequest{Title: &title})

		require.Len(t, clauses, 1)
		assert.Equal(t, "title = $1", clauses[0])
		assert.Equal(t, "Senior Engineer", args[0])
	})

	t.Run("set fields number placeholders in order", func(t *testing.T) {
		title := "Engineer"
		location := "Minneapolis"
		salaryMax := 150000
		featured := true
		expires := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

		clauses, args := buildJobUpdateSet(&model.UpdateJobRequest{
			Title:     &title,
			Location:  &location,
			SalaryMax: &salaryMax,
			ExpiresAt: &expires,
			Featured:  &featured,
		})

		require.Len(t, clauses, 5)
		require.Len(t, args, 5)
		joined := strings.Join(clauses, ", ")
		assert.Equal(t,
			"title = $1, location = $2, salary_max = $3, expires_at = $4, featured = $5",
			joined)
		assert.Equal(t, expires, args[3])
	})
}

func TestExpireSweepStampsClosure(t *testing.T) {
	// expired rows must carry closed_at alongside the status flip
	assert.Contains(t, expireDueJobsQuery, "closed_at = $1")
	assert.Contains(t, expireDueJobsQuery, "status = 'expired'")
	assert.Contains(t, expireDueJobsQuery, "FOR UPDATE SKIP LOCKED")
}

func TestJobSummaryColumnsMatchScanner(t *testing.T) {
	// scanJobSummary scans exactly the columns the summary projection selects.
	cols := strings.Split(jobSummaryColumns, ",")
	assert.Len(t, cols, 14, fmt.Sprintf("projection drifted: %s", jobSummaryColumns))
}
