package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// MutationRepo is the durable journal of mutation attempts against
// mailbox items. It is deliberately decoupled from jobs and candidates
// so an operator can reconstruct what touched an item after the
// originating job has aged out of routine inspection.
type MutationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewMutationRepo creates a new MutationRepo.
func NewMutationRepo(db *sql.DB, tp TimeProvider) *MutationRepo {
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &MutationRepo{DB: db, timeProvider: tp}
}

// Begin journals one mutation attempt in pending status, capturing the
// pre-mutation state, and returns the journal row id.
func (r *MutationRepo) Begin(ctx context.Context, params model.BeginMutationParams) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO mutation_journal (email_uid, email_folder, action, params, pre_state, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		RETURNING id
	`, params.UID, params.Folder, params.Action,
		nullableJSON(params.Params), nullableJSON(params.PreState)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("begin mutation: %w", err)
	}
	return id, nil
}

// Finish updates the journal row after the attempt completes. Rows are
// updated in place, never deleted.
func (r *MutationRepo) Finish(ctx context.Context, params core.FinishMutationParams) error {
	var errText *string
	if params.Error != "" {
		errText = &params.Error
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE mutation_journal
		SET status = $2, error = $3, updated_at = $4
		WHERE id = $1
	`, params.ID, params.Status, errText, r.timeProvider.Now().UTC())
	if err != nil {
		return fmt.Errorf("finish mutation: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish mutation rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrMutationNotFound
	}
	return nil
}

// ListByItem returns every journaled attempt against one mailbox item,
// oldest first.
func (r *MutationRepo) ListByItem(ctx context.Context, uid int, folder string) ([]*model.MutationRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, email_uid, email_folder, action, params, status, pre_state, error, created_at, updated_at
		FROM mutation_journal
		WHERE email_uid = $1 AND email_folder = $2
		ORDER BY created_at ASC, id ASC
	`, uid, folder)
	if err != nil {
		return nil, fmt.Errorf("list mutations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*model.MutationRecord
	for rows.Next() {
		m := &model.MutationRecord{}
		var (
			params, preState []byte
			errText          sql.NullString
		)
		if scanErr := rows.Scan(
			&m.ID, &m.UID, &m.Folder, &m.Action, &params, &m.Status,
			&preState, &errText, &m.CreatedAt, &m.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("scan mutation: %w", scanErr)
		}
		m.Params = cloneRawJSON(params)
		m.PreState = cloneRawJSON(preState)
		m.Error = cloneNullableString(errText)
		records = append(records, m)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("list mutations rows: %w", rowsErr)
	}
	return records, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
