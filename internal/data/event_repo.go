package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

const defaultEventListLimit = 200

// EventRepo provides database operations for the append-only per-job
// event log.
type EventRepo struct{ DB *sql.DB }

// NewEventRepo creates a new EventRepo.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{DB: db}
}

// Append inserts one event and returns its id. Events are never
// mutated or deleted; within one job the id is the ordering key.
func (r *EventRepo) Append(ctx context.Context, params core.AppendEventParams) (int64, error) {
	level := params.Level
	if !level.Valid() {
		level = model.EventLevelInfo
	}
	data := params.Data
	if len(data) == 0 {
		data = []byte(`{}`)
	}

	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO job_events (job_id, level, message, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, params.JobID, level, params.Message, []byte(data)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return 0, ErrJobNotFound
		}
		return 0, fmt.Errorf("append event: %w", err)
	}
	return id, nil
}

// ListAfter returns events with id > AfterID in ascending id order.
func (r *EventRepo) ListAfter(ctx context.Context, params core.ListEventsParams) ([]*model.JobEvent, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultEventListLimit
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, job_id, created_at, level, message, data
		FROM job_events
		WHERE job_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3
	`, params.JobID, params.AfterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var events []*model.JobEvent
	for rows.Next() {
		e := &model.JobEvent{}
		var data []byte
		if scanErr := rows.Scan(&e.ID, &e.JobID, &e.CreatedAt, &e.Level, &e.Message, &data); scanErr != nil {
			return nil, fmt.Errorf("scan event: %w", scanErr)
		}
		e.Data = cloneJSON(data)
		events = append(events, e)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("list events rows: %w", rowsErr)
	}
	return events, nil
}
