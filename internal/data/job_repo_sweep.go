package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hirewire/hirewire-api/internal/core"
	"github.com/hirewire/hirewire-api/internal/data/pgxutil"
	"github.com/hirewire/hirewire-api/internal/domain/model"
	apperrors "github.com/hirewire/hirewire-api/internal/errors"
)

// Advisory lock namespace for sweeper operations.
// Using two-arg pg_try_advisory_xact_lock(major, minor) for proper namespacing.
// Major key 2000 is reserved for hirewire sweeper operations.
const (
	advisoryLockSweeperMajor  = 2000
	advisoryLockSweeperExpire = 1 // minor key for ExpireDueJobs
)

var _ core.SweeperRepository = (*JobRepo)(nil)

// Expired jobs keep their closure timestamp; closed_at doubles as the
// expiry stamp so both terminal paths record when the posting went dark.
const expireDueJobsQuery = `
	UPDATE jobs
	SET status = 'expired',
		closed_at = $1,
		updated_at = $1
	WHERE id IN (
		SELECT id FROM jobs
		WHERE status = 'published'
		  AND expires_at IS NOT NULL
		  AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	)
`

// ExpireDueJobs transitions published jobs whose expiry has passed to expired.
// Processes up to BatchSize jobs per call to prevent long locks and I/O spikes.
// Uses advisory locks so concurrent sweeper instances do not conflict.
// Returns the number of jobs transitioned.
func (r *JobRepo) ExpireDueJobs(ctx context.Context, params core.ExpireDueJobsParams) (int64, error) {
	if params.BatchSize <= 0 {
		return 0, errors.New("batch size must be greater than zero")
	}

	now := params.Now
	if now.IsZero() {
		now = r.timeProvider.Now()
	}

	var rowsAffected int64
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{
		Fn: func(tx *sql.Tx) error {
			var locked bool
			if err := tx.QueryRowContext(ctx,
				"SELECT pg_try_advisory_xact_lock($1, $2)",
				advisoryLockSweeperMajor, advisoryLockSweeperExpire,
			).Scan(&locked); err != nil {
				return fmt.Errorf("acquire advisory lock: %w", err)
			}
			if !locked {
				rowsAffected = 0
				return nil
			}

			res, err := tx.ExecContext(ctx, expireDueJobsQuery, now.UTC(), params.BatchSize)
			if err != nil {
				return fmt.Errorf("expire due jobs: %w", err)
			}

			ra, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			rowsAffected = ra
			return nil
		},
	})
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return rowsAffected, nil
}

// ListExpiringBetween returns published jobs whose expiry falls inside the
// window, soonest first, for expiry reminder dispatch.
func (r *JobRepo) ListExpiringBetween(
	ctx context.Context,
	params core.ExpiringWindowParams,
) ([]*model.Job, error) {
	if !params.To.After(params.From) {
		return nil, errors.New("window end must be after window start")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT`+jobColumns+`
		FROM jobs
		WHERE status = 'published'
		  AND expires_at >= $1
		  AND expires_at < $2
		ORDER BY expires_at
		LIMIT $3
	`, params.From.UTC(), params.To.UTC(), limit)
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
