package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/workspace-secretary/secretary-go/internal/data/pgxutil"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

const defaultCandidateListLimit = 500

// CandidateRepo provides database operations for per-job proposed
// mutations.
type CandidateRepo struct{ DB *sql.DB }

// NewCandidateRepo creates a new CandidateRepo.
func NewCandidateRepo(db *sql.DB) *CandidateRepo {
	return &CandidateRepo{DB: db}
}

// InsertBatch inserts candidates for a proposal job using one pgx
// batch round-trip. Proposal jobs insert in the thousands, so callers
// insert incrementally per classifier page rather than buffering all
// rows first.
func (r *CandidateRepo) InsertBatch(ctx context.Context, jobID string, cands []*model.Candidate) (int, error) {
	if len(cands) == 0 {
		return 0, nil
	}

	var created int
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for _, c := range cands {
				signals := c.Signals
				if len(signals) == 0 {
					signals = []byte(`{}`)
				}
				actions, merr := json.Marshal(c.ProposedActions)
				if merr != nil {
					return fmt.Errorf("marshal proposed actions: %w", merr)
				}
				batch.Queue(`
					INSERT INTO job_candidates (
						job_id, uid, folder, message_id, from_addr, to_addr, cc_addr,
						subject, date, body_preview, category, confidence, signals, proposed_actions
					)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
				`, jobID, c.UID, c.Folder, c.MessageID, c.FromAddr, c.ToAddr, c.CcAddr,
					c.Subject, c.Date, c.BodyPreview, c.Category, c.Confidence,
					[]byte(signals), actions)
			}

			br := tx.SendBatch(ctx, batch)
			for i := range cands {
				if _, execErr := br.Exec(); execErr != nil {
					return fmt.Errorf("insert candidate %d: %w", i, execErr)
				}
				created++
			}
			if cerr := br.Close(); cerr != nil {
				return fmt.Errorf("batch close: %w", cerr)
			}
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// List returns a job's candidates ordered by descending confidence.
// The ordering is load-bearing: reviewers and the auto-apply policy
// both assume highest-confidence items surface first.
func (r *CandidateRepo) List(
	ctx context.Context,
	jobID string,
	filter model.CandidateFilter,
) ([]*model.Candidate, error) {
	query := `
		SELECT
			id, job_id, uid, folder, message_id, from_addr, to_addr, cc_addr,
			subject, date, body_preview, category, confidence, signals,
			proposed_actions, user_decision, created_at
		FROM job_candidates
		WHERE job_id = $1`
	args := []any{jobID}

	if filter.MinConfidence > 0 {
		args = append(args, filter.MinConfidence)
		query += fmt.Sprintf(" AND confidence >= $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultCandidateListLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY confidence DESC LIMIT $%d", len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var cands []*model.Candidate
	for rows.Next() {
		c, scanErr := scanCandidate(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		cands = append(cands, c)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("list candidates rows: %w", rowsErr)
	}
	return cands, nil
}

// SetDecision records the execution outcome for one candidate.
func (r *CandidateRepo) SetDecision(ctx context.Context, candidateID int64, decision string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE job_candidates SET user_decision = $2 WHERE id = $1`, candidateID, decision)
	if err != nil {
		return fmt.Errorf("set candidate decision: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set candidate decision rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func scanCandidate(rows *sql.Rows) (*model.Candidate, error) {
	c := &model.Candidate{}
	var (
		messageID, fromAddr, toAddr, ccAddr sql.NullString
		subject, bodyPreview, decision      sql.NullString
		date                                sql.NullTime
		signals, actions                    []byte
	)
	if err := rows.Scan(
		&c.ID, &c.JobID, &c.UID, &c.Folder, &messageID, &fromAddr, &toAddr, &ccAddr,
		&subject, &date, &bodyPreview, &c.Category, &c.Confidence, &signals,
		&actions, &decision, &c.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan candidate: %w", err)
	}

	c.MessageID = cloneNullableString(messageID)
	c.FromAddr = cloneNullableString(fromAddr)
	c.ToAddr = cloneNullableString(toAddr)
	c.CcAddr = cloneNullableString(ccAddr)
	c.Subject = cloneNullableString(subject)
	c.BodyPreview = cloneNullableString(bodyPreview)
	c.UserDecision = cloneNullableString(decision)
	c.Date = cloneNullableTime(date)
	c.Signals = cloneJSON(signals)

	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &c.ProposedActions); err != nil {
			return nil, fmt.Errorf("decode proposed actions: %w", err)
		}
	}
	return c, nil
}
