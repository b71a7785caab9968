package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/data/database"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
)

// JobRepoConfig holds configuration options for the job repository.
type JobRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo provides database operations for job postings.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

var _ core.JobRepository = (*JobRepo)(nil)

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg JobRepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

var jobColumnList = []string{
	"id",
	"poster_id",
	"title",
	"description",
	"category_id",
	"employment_type",
	"work_mode",
	"location",
	"salary_min",
	"salary_max",
	"status",
	"published_at",
	"expires_at",
	"closed_at",
	"application_count",
	"max_applications",
	"view_count",
	"featured",
	"urgent",
	"created_at",
	"updated_at",
}

var jobColumns = " " + strings.Join(jobColumnList, ", ") + " "

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		j         model.Job
		salaryMin sql.NullInt64
		salaryMax sql.NullInt64
		published sql.NullTime
		expires   sql.NullTime
		closed    sql.NullTime
	)

	err := row.Scan(
		&j.ID,
		&j.PosterID,
		&j.Title,
		&j.Description,
		&j.CategoryID,
		&j.Employment,
		&j.WorkMode,
		&j.Location,
		&salaryMin,
		&salaryMax,
		&j.Status,
		&published,
		&expires,
		&closed,
		&j.ApplicationCount,
		&j.MaxApplications,
		&j.ViewCount,
		&j.Featured,
		&j.Urgent,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if salaryMin.Valid {
		v := int(salaryMin.Int64)
		j.SalaryMin = &v
	}
	if salaryMax.Valid {
		v := int(salaryMax.Int64)
		j.SalaryMax = &v
	}
	if published.Valid {
		t := published.Time
		j.PublishedAt = &t
	}
	if expires.Valid {
		t := expires.Time
		j.ExpiresAt = &t
	}
	if closed.Valid {
		t := closed.Time
		j.ClosedAt = &t
	}

	return &j, nil
}

// Create inserts a new job posting as a draft.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job")
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
		INSERT INTO jobs (
			poster_id, title, description, category_id, employment_type, work_mode,
			location, salary_min, salary_max, status, expires_at, max_applications,
			featured, urgent, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'draft', $10, $11, $12, $13, $14, $14)
		RETURNING`+jobColumns,
		req.PosterID,
		strings.TrimSpace(req.Title),
		req.Description,
		req.CategoryID,
		req.Employment,
		req.WorkMode,
		req.Location,
		req.SalaryMin,
		req.SalaryMax,
		req.ExpiresAt,
		req.MaxApplications,
		req.Featured,
		req.Urgent,
		now,
	)

	job, err := scanJob(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// GetByID retrieves a job posting by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrJobIDRequired
	}

	row := r.DB.QueryRowContext(ctx, `SELECT`+jobColumns+`FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// Update applies a partial update to a draft or published job. Terminal jobs
// are immutable; racing a concurrent transition surfaces as a conflict.
func (r *JobRepo) Update(
	ctx context.Context,
	id string,
	req *model.UpdateJobRequest,
) (*model.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrJobIDRequired
	}
	if req == nil || req.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job update")
	}

	setClauses, args := buildJobUpdateSet(req)
	args = append(args, r.timeProvider.Now().UTC())
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE jobs SET %s
		WHERE id = $%d AND status IN ('draft', 'published')
		RETURNING`+jobColumns,
		strings.Join(setClauses, ", "), len(args))

	row := r.DB.QueryRowContext(ctx, query, args...)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifyMissedUpdate(ctx, id, "update")
		}
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// buildJobUpdateSet turns the non-nil request fields into SET clauses.
func buildJobUpdateSet(req *model.UpdateJobRequest) ([]string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Title != nil {
		add("title", strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.CategoryID != nil {
		add("category_id", *req.CategoryID)
	}
	if req.Employment != nil {
		add("employment_type", *req.Employment)
	}
	if req.WorkMode != nil {
		add("work_mode", *req.WorkMode)
	}
	if req.Location != nil {
		add("location", *req.Location)
	}
	if req.SalaryMin != nil {
		add("salary_min", *req.SalaryMin)
	}
	if req.SalaryMax != nil {
		add("salary_max", *req.SalaryMax)
	}
	if req.ExpiresAt != nil {
		add("expires_at", req.ExpiresAt.UTC())
	}
	if req.MaxApplications != nil {
		add("max_applications", *req.MaxApplications)
	}
	if req.Featured != nil {
		add("featured", *req.Featured)
	}
	if req.Urgent != nil {
		add("urgent", *req.Urgent)
	}
	return clauses, args
}

// UpdateStatus persists the job's status and lifecycle timestamps with a
// compare-and-set on the previous status. Exactly one racing transition wins;
// the losers get a conflict carrying the status found in storage.
func (r *JobRepo) UpdateStatus(
	ctx context.Context,
	params core.UpdateJobStatusParams,
) (*model.Job, error) {
	j := params.Job
	if j == nil || strings.TrimSpace(j.ID) == "" {
		return nil, ErrJobIDRequired
	}

	row := r.DB.QueryRowContext(ctx, `
		UPDATE jobs
		SET status = $1,
			published_at = $2,
			expires_at = $3,
			closed_at = $4,
			updated_at = $5
		WHERE id = $6 AND status = $7
		RETURNING`+jobColumns,
		j.Status,
		j.PublishedAt,
		j.ExpiresAt,
		j.ClosedAt,
		r.timeProvider.Now().UTC(),
		j.ID,
		params.From,
	)

	updated, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifyMissedUpdate(ctx, j.ID, "transition")
		}
		return nil, apperrors.MapDBError(err)
	}
	return updated, nil
}

// classifyMissedUpdate distinguishes a missing job from a guard that did not
// match, so callers can tell not-found apart from a lost race.
func (r *JobRepo) classifyMissedUpdate(ctx context.Context, id, op string) error {
	var status model.JobStatus
	err := r.DB.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&status)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return apperrors.InvalidStatus(op, id, string(status), "draft or published")
}

// RecordView bumps the job's view counter. Best-effort; callers ignore failures.
func (r *JobRepo) RecordView(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrJobIDRequired
	}

	_, err := r.DB.ExecContext(ctx,
		`UPDATE jobs SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// ListByPoster returns the poster's jobs in every status, newest first.
func (r *JobRepo) ListByPoster(
	ctx context.Context,
	posterID string,
	opts core.PageOptions,
) ([]*model.Job, error) {
	queryOpts := database.NewListQueryOptions("jobs",
		database.WithColumns(jobColumnList...),
		database.WithCondition(database.WhereCond("poster_id", database.Equal, posterID)),
		database.WithOrderBy("created_at", "DESC"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset),
	)
	query, args := database.BuildListQuery(queryOpts)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan job: %w", scanErr)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return jobs, nil
}

// Stats returns job counts per status, optionally scoped to one poster.
func (r *JobRepo) Stats(ctx context.Context, posterID *string) (*model.JobStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'published'),
			COUNT(*) FILTER (WHERE status = 'expired'),
			COUNT(*) FILTER (WHERE status = 'closed')
		FROM jobs`
	args := []any{}
	if posterID != nil {
		query += ` WHERE poster_id = $1`
		args = append(args, *posterID)
	}

	var stats model.JobStats
	err := r.DB.QueryRowContext(ctx, query, args...).
		Scan(&stats.Draft, &stats.Published, &stats.Expired, &stats.Closed)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &stats, nil
}
