// Package model defines the core data types and structures used throughout the secretary job engine.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobKind represents the kind of mailbox job to be executed.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobKind string

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobKindMailboxSync represents a full mailbox synchronization job.
	JobKindMailboxSync JobKind = "mailbox_sync"
	// JobKindTriagePreview represents a classification job that proposes candidates for review.
	JobKindTriagePreview JobKind = "triage_preview"
	// JobKindBulkCleanup represents a bulk move/mark-read cleanup job.
	JobKindBulkCleanup JobKind = "bulk_cleanup"
	// JobKindTriageApply represents a job that applies labels and high-confidence actions.
	JobKindTriageApply JobKind = "triage_apply"

	// JobStatusPending indicates a job is waiting to be claimed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates a job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates a job has finished successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates a job has failed to complete.
	JobStatusFailed JobStatus = "failed"
	// JobStatusApproved indicates a proposal job whose candidates were approved for execution.
	JobStatusApproved JobStatus = "approved"
	// JobStatusExecuting indicates an approved job whose mutations are being applied.
	JobStatusExecuting JobStatus = "executing"
)

// ErrNoJobsAvailable is returned when no claimable jobs exist for a kind.
var ErrNoJobsAvailable = errors.New("no jobs available")

// UnmarshalText implements encoding.TextUnmarshaler for JobKind to allow env parsing.
func (k *JobKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	jk := JobKind(v)
	if jk.Valid() {
		*k = jk
		return nil
	}
	return fmt.Errorf("invalid JobKind: %q", v)
}

// Valid returns true if the JobKind is valid.
func (k JobKind) Valid() bool {
	return k == JobKindMailboxSync || k == JobKindTriagePreview ||
		k == JobKindBulkCleanup || k == JobKindTriageApply
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted,
		JobStatusFailed, JobStatusApproved, JobStatusExecuting:
		return true
	}
	return false
}

// Terminal returns true if the status is an end state for the job.
// An approved proposal job leaves the terminal completed state again,
// so IsTerminal is about the simple lifecycle, not the approval loop.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransition reports whether the status may move to next along the
// allowed edges:
//
//	pending -> running -> {completed, failed}
//	completed|pending -> approved -> executing -> {completed, failed}
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusRunning || next == JobStatusApproved
	case JobStatusRunning:
		return next == JobStatusCompleted || next == JobStatusFailed
	case JobStatusCompleted:
		return next == JobStatusApproved
	case JobStatusApproved:
		return next == JobStatusExecuting
	case JobStatusExecuting:
		return next == JobStatusCompleted || next == JobStatusFailed
	case JobStatusFailed:
		return false
	}
	return false
}

// Job represents one durable unit of asynchronous mailbox work.
type Job struct {
	ID              string          `json:"job_id"                     db:"job_id"`
	Kind            JobKind         `json:"kind"                       db:"kind"`
	Status          JobStatus       `json:"status"                     db:"status"`
	Payload         json.RawMessage `json:"payload"                    db:"payload"`
	Processed       int             `json:"processed"                  db:"processed"`
	TotalEstimate   int             `json:"total_estimate"             db:"total_estimate"`
	CancelRequested bool            `json:"cancel_requested"           db:"cancel_requested"`
	Error           *string         `json:"error,omitempty"            db:"error"`
	CreatedAt       time.Time       `json:"created_at"                 db:"created_at"`
	StartedAt       *time.Time      `json:"started_at,omitempty"       db:"started_at"`
	FinishedAt      *time.Time      `json:"finished_at,omitempty"      db:"finished_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"      db:"approved_at"`
	ApprovedBy      *string         `json:"approved_by,omitempty"      db:"approved_by"`
	ApprovalPayload json.RawMessage `json:"approval_payload,omitempty" db:"approval_payload"`
}

// Approved returns true once the job carries an approval record.
func (j *Job) Approved() bool {
	return j.ApprovedAt != nil
}

// CreateJobRequest represents a request to create a new job.
type CreateJobRequest struct {
	Kind    JobKind         `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Validate validates the CreateJobRequest fields, including the
// kind-specific payload schema.
func (r *CreateJobRequest) Validate() error {
	if !r.Kind.Valid() {
		return errors.New("invalid job kind")
	}
	return ValidatePayload(r.Kind, r.Payload)
}

// Approval is the human authorization attached to a proposal job.
// It is collocated on the job row and written exactly once.
type Approval struct {
	ApprovedAt time.Time       `json:"approved_at"`
	ApprovedBy string          `json:"approved_by"`
	Payload    ApprovalPayload `json:"payload"`
}

// ApprovalPayload selects a subset of candidates and the action set to
// apply to them.
type ApprovalPayload struct {
	CandidateIDs []int64  `json:"candidate_ids"`
	Actions      []string `json:"actions"`
}

// Validate checks the approval payload.
func (p *ApprovalPayload) Validate() error {
	if len(p.CandidateIDs) == 0 {
		return errors.New("candidate_ids is required")
	}
	if len(p.Actions) == 0 {
		return errors.New("actions is required")
	}
	for _, a := range p.Actions {
		if !ValidAction(a) {
			return fmt.Errorf("unknown action: %q", a)
		}
	}
	return nil
}

// JobStats represents counts of jobs per state for one kind.
type JobStats struct {
	Pending   int `json:"pending"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Approved  int `json:"approved"`
	Executing int `json:"executing"`
}

// JobStatusResponse is the status snapshot exposed to producers.
type JobStatusResponse struct {
	ID            string     `json:"job_id"`
	Kind          JobKind    `json:"kind"`
	Status        JobStatus  `json:"status"`
	Processed     int        `json:"processed"`
	TotalEstimate int        `json:"total_estimate"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Error         *string    `json:"error,omitempty"`
}

// StatusSnapshot converts a job row into the producer-facing snapshot.
func (j *Job) StatusSnapshot() *JobStatusResponse {
	return &JobStatusResponse{
		ID:            j.ID,
		Kind:          j.Kind,
		Status:        j.Status,
		Processed:     j.Processed,
		TotalEstimate: j.TotalEstimate,
		FinishedAt:    j.FinishedAt,
		Error:         j.Error,
	}
}
