package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// Approve attaches the human approval and queues the job for execution
// in one guarded write. The job must still be in completed (a finished
// proposal) or pending (approved before it ran) and must not carry a
// prior approval; a rejected approval persists nothing. The guard on
// approved_at makes the write first-wins: a second approval attempt
// fails with ErrAlreadyApproved and the original payload is untouched.
func (r *JobRepo) Approve(ctx context.Context, params core.RecordApprovalParams) error {
	if err := params.Payload.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(params.Payload)
	if err != nil {
		return fmt.Errorf("marshal approval payload: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE jobs
		SET status = 'approved', approved_at = $2, approved_by = $3, approval_payload = $4
		WHERE job_id = $1
		  AND approved_at IS NULL
		  AND status IN ('completed', 'pending')
	`, params.ID, r.timeProvider.Now().UTC(), params.ApprovedBy, payload)
	if err != nil {
		return fmt.Errorf("approve job: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("approve job rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	job, getErr := r.GetByID(ctx, params.ID)
	if getErr != nil {
		return getErr
	}
	if job.Approved() {
		return ErrAlreadyApproved
	}
	return ErrNotApprovable
}

// GetApproval reads the approval record collocated on the job row.
// Returns nil when the job has not been approved.
func (r *JobRepo) GetApproval(ctx context.Context, id string) (*model.Approval, error) {
	var (
		approvedAt sql.NullTime
		approvedBy sql.NullString
		payload    []byte
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT approved_at, approved_by, approval_payload
		FROM jobs
		WHERE job_id = $1
	`, id).Scan(&approvedAt, &approvedBy, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get approval: %w", err)
	}
	if !approvedAt.Valid {
		return nil, nil
	}

	approval := &model.Approval{
		ApprovedAt: approvedAt.Time.UTC(),
		ApprovedBy: approvedBy.String,
	}
	if len(payload) > 0 {
		if uerr := json.Unmarshal(payload, &approval.Payload); uerr != nil {
			return nil, fmt.Errorf("decode approval payload: %w", uerr)
		}
	}
	return approval, nil
}
