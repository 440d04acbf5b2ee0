// Package data provides the PostgreSQL access layer for the secretary job engine.
package data

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// RepoConfig holds configuration options for the job repository.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo provides database operations for job management.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
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

const jobColumns = `
  job_id,
  kind,
  status,
  payload,
  processed,
  total_estimate,
  cancel_requested,
  error,
  created_at,
  started_at,
  finished_at,
  approved_at,
  approved_by,
  approval_payload
`

type jobRowScanner interface {
	Scan(dest ...any) error
}

type jobRowData struct {
	payload, approvalPayload []byte
	errText, approvedBy      sql.NullString
	startedAt, finishedAt    sql.NullTime
	approvedAt               sql.NullTime
}

func (d *jobRowData) scanInto(scanner jobRowScanner, job *model.Job) error {
	return scanner.Scan(
		&job.ID,
		&job.Kind,
		&job.Status,
		&d.payload,
		&job.Processed,
		&job.TotalEstimate,
		&job.CancelRequested,
		&d.errText,
		&job.CreatedAt,
		&d.startedAt,
		&d.finishedAt,
		&d.approvedAt,
		&d.approvedBy,
		&d.approvalPayload,
	)
}

func (d *jobRowData) apply(job *model.Job) {
	job.Payload = cloneJSON(d.payload)
	job.ApprovalPayload = cloneRawJSON(d.approvalPayload)
	job.Error = cloneNullableString(d.errText)
	job.ApprovedBy = cloneNullableString(d.approvedBy)
	job.StartedAt = cloneNullableTime(d.startedAt)
	job.FinishedAt = cloneNullableTime(d.finishedAt)
	job.ApprovedAt = cloneNullableTime(d.approvedAt)
}

func scanJobFromRow(scanner jobRowScanner) (*model.Job, error) {
	job := &model.Job{}
	var data jobRowData
	if err := data.scanInto(scanner, job); err != nil {
		return nil, err
	}

	data.apply(job)
	return job, nil
}

func cloneJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return append(json.RawMessage(nil), raw...)
}

// cloneRawJSON preserves NULL as nil instead of substituting {}.
func cloneRawJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

func cloneNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
