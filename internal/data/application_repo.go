package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/data/database"
	"github.com/hirewire/hirewire-api/internal/data/pgxutil"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
)

// ApplicationRepoConfig holds configuration options for the application repository.
type ApplicationRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// ApplicationRepo provides database operations for applications.
type ApplicationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

var _ core.ApplicationRepository = (*ApplicationRepo)(nil)

// NewApplicationRepo creates a new ApplicationRepo with the given database
// connection and configuration.
func NewApplicationRepo(db *sql.DB, cfg ApplicationRepoConfig) *ApplicationRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &ApplicationRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

var applicationColumnList = []string{
	"id",
	"job_id",
	"applicant_id",
	"cover_letter",
	"resume_ref",
	"status",
	"lifecycle",
	"reviewer_id",
	"review_notes",
	"reviewed_at",
	"interview_at",
	"interview_location",
	"submitted_at",
	"updated_at",
}

var applicationColumns = " " + strings.Join(applicationColumnList, ", ") + " "

func scanApplication(row rowScanner) (*model.Application, error) {
	var (
		a          model.Application
		reviewerID sql.NullString
		notes      sql.NullString
		reviewedAt sql.NullTime
		ivAt       sql.NullTime
		ivLocation sql.NullString
	)

	err := row.Scan(
		&a.ID,
		&a.JobID,
		&a.ApplicantID,
		&a.CoverLetter,
		&a.ResumeRef,
		&a.Status,
		&a.Lifecycle,
		&reviewerID,
		&notes,
		&reviewedAt,
		&ivAt,
		&ivLocation,
		&a.SubmittedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reviewerID.Valid {
		v := reviewerID.String
		a.ReviewerID = &v
	}
	if notes.Valid {
		v := notes.String
		a.ReviewNotes = &v
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}
	if ivAt.Valid {
		t := ivAt.Time
		a.InterviewAt = &t
	}
	if ivLocation.Valid {
		v := ivLocation.String
		a.InterviewLocation = &v
	}
	return &a, nil
}

// claimSlotSQL claims one application slot on the job. The guard re-checks
// status, expiry, and capacity inside the transaction so the cached job read
// in the service layer can never oversubscribe a posting.
const claimSlotSQL = `
	UPDATE jobs
	SET application_count = application_count + 1,
		updated_at = $2
	WHERE id = $1
	  AND status = 'published'
	  AND (expires_at IS NULL OR expires_at > $2)
	  AND (max_applications = 0 OR application_count < max_applications)
	RETURNING max_applications`

// Create inserts the application and claims one of the job's slots in a
// single transaction. Exactly one of N racing submissions for the last slot
// commits; the rest roll back with the matching domain error.
func (r *ApplicationRepo) Create(
	ctx context.Context,
	app *model.Application,
) (*model.Application, error) {
	if app == nil {
		return nil, errors.New("application is required")
	}

	now := r.timeProvider.Now().UTC()

	var created *model.Application
	txErr := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			var maxApplications int
			err := tx.QueryRow(ctx, claimSlotSQL, app.JobID, now).Scan(&maxApplications)
			if errors.Is(err, pgx.ErrNoRows) {
				return r.classifyRejectedSlot(ctx, tx, app.JobID, now)
			}
			if err != nil {
				return fmt.Errorf("claim application slot: %w", err)
			}

			row := tx.QueryRow(ctx, `
				INSERT INTO applications (
					job_id, applicant_id, cover_letter, resume_ref,
					status, lifecycle, submitted_at, updated_at
				)
				VALUES ($1, $2, $3, $4, 'submitted', 'active', $5, $5)
				RETURNING`+applicationColumns,
				app.JobID, app.ApplicantID, app.CoverLetter, app.ResumeRef, now)

			created, err = scanApplication(row)
			if err != nil {
				return err
			}
			return nil
		},
	})
	if txErr != nil {
		return nil, apperrors.MapDBError(txErr)
	}
	return created, nil
}

// classifyRejectedSlot reads the job inside the same transaction to report
// why the slot claim found no row.
func (r *ApplicationRepo) classifyRejectedSlot(
	ctx context.Context,
	tx pgx.Tx,
	jobID string,
	now time.Time,
) error {
	var (
		status          model.JobStatus
		expiresAt       sql.NullTime
		appCount        int
		maxApplications int
	)
	err := tx.QueryRow(ctx, `
		SELECT status, expires_at, application_count, max_applications
		FROM jobs WHERE id = $1`, jobID).
		Scan(&status, &expiresAt, &appCount, &maxApplications)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFoundf("job %s not found", jobID)
	}
	if err != nil {
		return fmt.Errorf("inspect job for slot claim: %w", err)
	}

	switch {
	case status != model.JobStatusPublished:
		return apperrors.InvalidStatus(
			"apply", jobID, string(status), string(model.JobStatusPublished))
	case expiresAt.Valid && !now.Before(expiresAt.Time):
		return apperrors.JobExpired(jobID)
	case maxApplications > 0 && appCount >= maxApplications:
		return apperrors.MaxApplicationsReached(jobID, maxApplications)
	default:
		return apperrors.Conflict("application slot could not be claimed")
	}
}

// GetByID retrieves an application by its ID.
func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrApplicationIDRequired
	}

	row := r.DB.QueryRowContext(ctx,
		`SELECT`+applicationColumns+`FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return app, nil
}

// Update persists status, lifecycle, review, and interview fields guarded by
// a compare-and-set on the previous status.
func (r *ApplicationRepo) Update(
	ctx context.Context,
	params core.UpdateApplicationParams,
) (*model.Application, error) {
	app := params.App
	if app == nil || strings.TrimSpace(app.ID) == "" {
		return nil, ErrApplicationIDRequired
	}

	row := r.DB.QueryRowContext(ctx, `
		UPDATE applications
		SET status = $1,
			lifecycle = $2,
			reviewer_id = $3,
			review_notes = $4,
			reviewed_at = $5,
			interview_at = $6,
			interview_location = $7,
			updated_at = $8
		WHERE id = $9 AND status = $10
		RETURNING`+applicationColumns,
		app.Status,
		app.Lifecycle,
		app.ReviewerID,
		app.ReviewNotes,
		app.ReviewedAt,
		app.InterviewAt,
		app.InterviewLocation,
		r.timeProvider.Now().UTC(),
		app.ID,
		params.From,
	)

	updated, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.classifyMissedUpdate(ctx, app.ID)
		}
		return nil, apperrors.MapDBError(err)
	}
	return updated, nil
}

func (r *ApplicationRepo) classifyMissedUpdate(ctx context.Context, id string) error {
	var status model.ApplicationStatus
	err := r.DB.QueryRowContext(ctx,
		`SELECT status FROM applications WHERE id = $1`, id).Scan(&status)
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return apperrors.InvalidStatus("update", id, string(status), "submitted or under_review")
}

// ListByJob returns a job's applications, newest first, optionally filtered
// by review status. Deleted applications are hidden.
func (r *ApplicationRepo) ListByJob(
	ctx context.Context,
	opts *model.ApplicationListOptions,
) ([]*model.Application, error) {
	if opts == nil || strings.TrimSpace(opts.JobID) == "" {
		return nil, ErrJobIDRequired
	}

	conditions := []database.Condition{
		database.WhereCond("job_id", database.Equal, opts.JobID),
		database.WhereCond("lifecycle", database.NotEqual, model.LifecycleDeleted),
	}
	if opts.Status != nil {
		conditions = append(conditions,
			database.WhereCond("status", database.Equal, *opts.Status))
	}

	queryOpts := database.NewListQueryOptions("applications",
		database.WithColumns(applicationColumnList...),
		database.WithConditions(conditions...),
		database.WithOrderBy("submitted_at", "DESC"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset),
	)
	query, args := database.BuildListQuery(queryOpts)

	return r.queryApplications(ctx, query, args)
}

// ListByApplicant returns an applicant's applications, newest first. Deleted
// applications are hidden.
func (r *ApplicationRepo) ListByApplicant(
	ctx context.Context,
	applicantID string,
	opts core.PageOptions,
) ([]*model.Application, error) {
	if strings.TrimSpace(applicantID) == "" {
		return nil, errors.New("applicant id is required")
	}

	queryOpts := database.NewListQueryOptions("applications",
		database.WithColumns(applicationColumnList...),
		database.WithConditions(
			database.WhereCond("applicant_id", database.Equal, applicantID),
			database.WhereCond("lifecycle", database.NotEqual, model.LifecycleDeleted),
		),
		database.WithOrderBy("submitted_at", "DESC"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset),
	)
	query, args := database.BuildListQuery(queryOpts)

	return r.queryApplications(ctx, query, args)
}

func (r *ApplicationRepo) queryApplications(
	ctx context.Context,
	query string,
	args []any,
) ([]*model.Application, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var apps []*model.Application
	for rows.Next() {
		app, scanErr := scanApplication(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan application: %w", scanErr)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return apps, nil
}

// Stats returns application counts per review status for a job.
func (r *ApplicationRepo) Stats(ctx context.Context, jobID string) (*model.ApplicationStats, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrJobIDRequired
	}

	var stats model.ApplicationStats
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'submitted'),
			COUNT(*) FILTER (WHERE status = 'under_review'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'withdrawn')
		FROM applications
		WHERE job_id = $1 AND lifecycle <> 'deleted'`, jobID).
		Scan(&stats.Submitted, &stats.UnderReview, &stats.Approved,
			&stats.Rejected, &stats.Withdrawn)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &stats, nil
}
