package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/data/pgxutil"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// SQL used by ClaimNext to atomically claim the next pending job. The
// CTE row-locks one candidate row and skips rows locked by concurrent
// claimers, so each job is handed to at most one worker.
const claimNextSQL = `
  WITH cte AS (
    SELECT job_id FROM jobs
    WHERE kind = $1 AND status = 'pending'
    ORDER BY created_at ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
  )
  UPDATE jobs j
  SET
    status = 'running',
    started_at = COALESCE(j.started_at, $2)
  FROM cte
  WHERE j.job_id = cte.job_id
  RETURNING ` + jobColumns

// SQL used by ClaimNextApproved; approved jobs are executed in
// approval order, not creation order.
const claimNextApprovedSQL = `
  WITH cte AS (
    SELECT job_id FROM jobs
    WHERE kind = $1 AND status = 'approved'
    ORDER BY approved_at ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
  )
  UPDATE jobs j
  SET
    status = 'executing',
    started_at = COALESCE(j.started_at, $2)
  FROM cte
  WHERE j.job_id = cte.job_id
  RETURNING ` + jobColumns

// Create creates a new pending job with the given kind and payload.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload := req.Payload
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}

	id := uuid.NewString()
	row := r.DB.QueryRowContext(ctx, `
      INSERT INTO jobs (job_id, kind, status, payload, created_at)
      VALUES ($1, $2, 'pending', $3, $4)
      RETURNING `+jobColumns,
		id, req.Kind, []byte(payload), r.timeProvider.Now().UTC())

	job, err := scanJobFromRow(row)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE job_id = $1
	`, id)

	job, err := scanJobFromRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ClaimNext claims the oldest pending job of the given kind for
// processing, transitioning it to running and stamping its start time.
func (r *JobRepo) ClaimNext(ctx context.Context, kind model.JobKind) (*model.Job, error) {
	return r.claim(ctx, claimNextSQL, kind)
}

// ClaimNextApproved claims the oldest approved job of the given kind,
// transitioning it to executing.
func (r *JobRepo) ClaimNextApproved(ctx context.Context, kind model.JobKind) (*model.Job, error) {
	return r.claim(ctx, claimNextApprovedSQL, kind)
}

func (r *JobRepo) claim(ctx context.Context, query string, kind model.JobKind) (*model.Job, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid job kind: %s", kind)
	}

	var job *model.Job
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{
			Isolation: sql.LevelReadCommitted,
			ReadOnly:  false,
		},
		Fn: func(tx pgx.Tx) error {
			rows, qerr := tx.Query(ctx, query, kind, r.timeProvider.Now().UTC())
			if qerr != nil {
				return fmt.Errorf("claim job: %w", qerr)
			}
			defer rows.Close()

			j, cerr := collectJobFromRows(rows)
			if errors.Is(cerr, pgx.ErrNoRows) {
				return model.ErrNoJobsAvailable
			}
			if cerr != nil {
				return fmt.Errorf("claim job: %w", cerr)
			}
			job = j
			return nil
		},
	})
	if err != nil {
		if errors.Is(err, model.ErrNoJobsAvailable) {
			return nil, model.ErrNoJobsAvailable
		}
		return nil, err
	}
	return job, nil
}

// collectJobFromRows collects a single job from pgx rows.
func collectJobFromRows(rows pgx.Rows) (*model.Job, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	job, err := scanJobFromRow(rows)
	if err != nil {
		return nil, err
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, rowsErr
	}

	return job, nil
}

// RequestCancel sets the cancel flag on a job that has not finished.
// Returns whether the flag was actually set; false means the job was
// already terminal (or unknown). The flag is never reset once set.
func (r *JobRepo) RequestCancel(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET cancel_requested = TRUE
		WHERE job_id = $1
		  AND status IN ('pending', 'running', 'executing')
	`, id)
	if err != nil {
		return false, fmt.Errorf("request cancel: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("request cancel rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// IsCancelRequested reads the cancel flag. Batch loops call this at
// chunk boundaries; cancellation is cooperative, never a forced abort.
func (r *JobRepo) IsCancelRequested(ctx context.Context, id string) (bool, error) {
	var requested bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT cancel_requested FROM jobs WHERE job_id = $1`, id).Scan(&requested)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrJobNotFound
	}
	if err != nil {
		return false, fmt.Errorf("read cancel flag: %w", err)
	}
	return requested, nil
}

// MarkFinished sets a terminal status and finish time. Calling it a
// second time with the same terminal status is a no-op; a conflicting
// terminal status is an error.
func (r *JobRepo) MarkFinished(ctx context.Context, params core.MarkFinishedParams) error {
	if !params.Status.Terminal() {
		return fmt.Errorf("non-terminal status: %s", params.Status)
	}

	var errText *string
	if params.Error != "" {
		errText = &params.Error
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET status = $2, finished_at = $3, error = $4
		WHERE job_id = $1
		  AND status NOT IN ('completed', 'failed')
	`, params.ID, params.Status, r.timeProvider.Now().UTC(), errText)
	if err != nil {
		return fmt.Errorf("mark finished: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark finished rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	job, err := r.GetByID(ctx, params.ID)
	if err != nil {
		return err
	}
	if job.Status == params.Status {
		return nil // idempotent repeat
	}
	return fmt.Errorf("job %s already finished as %s", params.ID, job.Status)
}

// UpdateProgress partially updates the processed and total-estimate
// counters. Nil fields are untouched. This is a single-row UPDATE so
// frequent calls from batch loops never contend with the claim path.
func (r *JobRepo) UpdateProgress(ctx context.Context, params core.UpdateProgressParams) error {
	sets := make([]string, 0, 2)
	args := []any{params.ID}

	if params.Processed != nil {
		args = append(args, *params.Processed)
		sets = append(sets, fmt.Sprintf("processed = $%d", len(args)))
	}
	if params.TotalEstimate != nil {
		args = append(args, *params.TotalEstimate)
		sets = append(sets, fmt.Sprintf("total_estimate = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	_, err := r.DB.ExecContext(ctx,
		`UPDATE jobs SET `+strings.Join(sets, ", ")+` WHERE job_id = $1`, args...)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// Stats returns counts of jobs of the given kind per state.
func (r *JobRepo) Stats(ctx context.Context, kind model.JobKind) (*model.JobStats, error) {
	var s model.JobStats
	err := r.DB.QueryRowContext(ctx, `
  SELECT
    count(*) FILTER (WHERE status = 'pending')   AS pending,
    count(*) FILTER (WHERE status = 'running')   AS running,
    count(*) FILTER (WHERE status = 'completed') AS completed,
    count(*) FILTER (WHERE status = 'failed')    AS failed,
    count(*) FILTER (WHERE status = 'approved')  AS approved,
    count(*) FILTER (WHERE status = 'executing') AS executing
  FROM jobs
  WHERE kind = $1
  `, kind).Scan(
		&s.Pending,
		&s.Running,
		&s.Completed,
		&s.Failed,
		&s.Approved,
		&s.Executing,
	)
	if err != nil {
		return nil, fmt.Errorf("get job stats: %w", err)
	}
	return &s, nil
}
