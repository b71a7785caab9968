package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
)

const jobSummaryColumns = `
  j.id,
  j.title,
  j.category_id,
  c.name,
  j.employment_type,
  j.work_mode,
  j.location,
  j.salary_min,
  j.salary_max,
  j.featured,
  j.urgent,
  j.published_at,
  j.expires_at,
  j.application_count
`

// buildJobSearchWhere translates search options into WHERE conditions. Only
// published jobs whose window is still open are searchable. Pure so the SQL
// shape is testable without a database.
func buildJobSearchWhere(opts *model.JobSearchOptions) (string, []any) {
	conditions := []string{"j.status = 'published'"}
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	conditions = append(conditions, "(j.expires_at IS NULL OR j.expires_at > now())")

	if kw := strings.TrimSpace(opts.Keyword); kw != "" {
		add("(j.title ILIKE $%[1]d OR j.description ILIKE $%[1]d)", "%"+kw+"%")
	}
	if opts.CategoryID != "" {
		add("j.category_id = $%d", opts.CategoryID)
	}
	if opts.Employment != nil {
		add("j.employment_type = $%d", *opts.Employment)
	}
	if opts.WorkMode != nil {
		add("j.work_mode = $%d", *opts.WorkMode)
	}
	if loc := strings.TrimSpace(opts.Location); loc != "" {
		add("j.location ILIKE $%d", "%"+loc+"%")
	}
	if opts.SalaryMin != nil {
		// a job matches a minimum when its top of range clears it
		add("j.salary_max >= $%d", *opts.SalaryMin)
	}
	if opts.SalaryMax != nil {
		add("j.salary_min <= $%d", *opts.SalaryMax)
	}
	if opts.PostedWithinDays > 0 {
		add("j.published_at >= now() - ($%d || ' days')::interval", opts.PostedWithinDays)
	}
	if opts.FeaturedOnly {
		conditions = append(conditions, "j.featured")
	}
	if opts.UrgentOnly {
		conditions = append(conditions, "j.urgent")
	}

	return strings.Join(conditions, " AND "), args
}

// buildJobSearchQuery assembles the full search query. The sort key comes
// from the Normalize allowlist, never from raw caller input.
func buildJobSearchQuery(opts *model.JobSearchOptions) (string, []any) {
	where, args := buildJobSearchWhere(opts)

	order := fmt.Sprintf("j.%s %s", opts.SortBy, strings.ToUpper(opts.SortOrder))
	// featured postings float above the requested ordering
	order = "j.featured DESC, " + order

	args = append(args, opts.Limit)
	limitParam := len(args)
	args = append(args, opts.Offset)
	offsetParam := len(args)

	query := fmt.Sprintf(`
		SELECT%s
		FROM jobs j
		JOIN categories c ON c.id = j.category_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		jobSummaryColumns, where, order, limitParam, offsetParam)

	return query, args
}

// Search returns published-job summaries matching the options.
func (r *JobRepo) Search(
	ctx context.Context,
	opts *model.JobSearchOptions,
) ([]*model.JobSummary, error) {
	if opts == nil {
		opts = &model.JobSearchOptions{}
	}

	query, args := buildJobSearchQuery(opts)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var results []*model.JobSummary
	for rows.Next() {
		summary, scanErr := scanJobSummary(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan job summary: %w", scanErr)
		}
		results = append(results, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return results, nil
}

// CountSearch returns the total number of jobs matching the options,
// ignoring paging.
func (r *JobRepo) CountSearch(ctx context.Context, opts *model.JobSearchOptions) (int, error) {
	if opts == nil {
		opts = &model.JobSearchOptions{}
	}

	where, args := buildJobSearchWhere(opts)
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM jobs j WHERE `+where, args...).Scan(&count)
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return count, nil
}

func scanJobSummary(rows *sql.Rows) (*model.JobSummary, error) {
	var (
		s         model.JobSummary
		salaryMin sql.NullInt64
		salaryMax sql.NullInt64
		published sql.NullTime
		expires   sql.NullTime
	)

	err := rows.Scan(
		&s.ID,
		&s.Title,
		&s.CategoryID,
		&s.CategoryName,
		&s.Employment,
		&s.WorkMode,
		&s.Location,
		&salaryMin,
		&salaryMax,
		&s.Featured,
		&s.Urgent,
		&published,
		&expires,
		&s.ApplicationCount,
	)
	if err != nil {
		return nil, err
	}

	if salaryMin.Valid {
		v := int(salaryMin.Int64)
		s.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := int(salaryMax.Int64)
		s.SalaryMax = &v
	}
	if published.Valid {
		t := published.Time
		s.PublishedAt = &t
	}
	if expires.Valid {
		t := expires.Time
		s.ExpiresAt = &t
	}
	return &s, nil
}
