package core

import (
	"context"
	"encoding/json"

	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// This file contains repository and collaborator interface definitions
// (ports in hexagonal architecture). Service and executor code depends
// on these contracts, not on the concrete Postgres implementations.

// JobRepository defines the interface for job data operations.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// ClaimNext atomically claims the oldest pending job of the given
	// kind, transitioning it to running. Returns ErrNoJobsAvailable
	// when nothing is claimable.
	ClaimNext(ctx context.Context, kind model.JobKind) (*model.Job, error)
	// ClaimNextApproved claims the oldest approved job of the given
	// kind by approval time, transitioning it to executing.
	ClaimNextApproved(ctx context.Context, kind model.JobKind) (*model.Job, error)
	RequestCancel(ctx context.Context, id string) (bool, error)
	IsCancelRequested(ctx context.Context, id string) (bool, error)
	MarkFinished(ctx context.Context, params MarkFinishedParams) error
	UpdateProgress(ctx context.Context, params UpdateProgressParams) error
	// Approve records the human approval and transitions the job to
	// approved in one guarded write. A job that is neither completed
	// nor pending, or that already carries an approval, is rejected
	// with nothing persisted.
	Approve(ctx context.Context, params RecordApprovalParams) error
	GetApproval(ctx context.Context, id string) (*model.Approval, error)
	Stats(ctx context.Context, kind model.JobKind) (*model.JobStats, error)
}

// MarkFinishedParams groups parameters for MarkFinished to keep the
// param count ≤3.
type MarkFinishedParams struct {
	ID     string
	Status model.JobStatus // completed or failed
	Error  string          // empty for completed
}

// UpdateProgressParams is a partial progress update; nil fields are
// left untouched so batch loops can report cheaply and often.
type UpdateProgressParams struct {
	ID            string
	Processed     *int
	TotalEstimate *int
}

// RecordApprovalParams groups parameters for Approve.
type RecordApprovalParams struct {
	ID         string
	ApprovedBy string
	Payload    model.ApprovalPayload
}

// EventRepository defines the append-only per-job event log.
type EventRepository interface {
	Append(ctx context.Context, params AppendEventParams) (int64, error)
	// ListAfter returns events with id > afterID in ascending id order.
	ListAfter(ctx context.Context, params ListEventsParams) ([]*model.JobEvent, error)
}

// AppendEventParams groups parameters for EventRepository.Append.
type AppendEventParams struct {
	JobID   string
	Level   model.EventLevel
	Message string
	Data    json.RawMessage
}

// ListEventsParams groups parameters for EventRepository.ListAfter.
type ListEventsParams struct {
	JobID   string
	AfterID int64
	Limit   int
}

// CandidateRepository defines the per-job proposed-mutation store.
type CandidateRepository interface {
	InsertBatch(ctx context.Context, jobID string, cands []*model.Candidate) (int, error)
	List(ctx context.Context, jobID string, filter model.CandidateFilter) ([]*model.Candidate, error)
	SetDecision(ctx context.Context, candidateID int64, decision string) error
}

// MutationJournal is the audit trail of mutation attempts, decoupled
// from the job and candidate tables.
type MutationJournal interface {
	Begin(ctx context.Context, params model.BeginMutationParams) (int64, error)
	Finish(ctx context.Context, params FinishMutationParams) error
	ListByItem(ctx context.Context, uid int, folder string) ([]*model.MutationRecord, error)
}

// FinishMutationParams groups parameters for MutationJournal.Finish.
type FinishMutationParams struct {
	ID     int64
	Status model.MutationStatus
	Error  string
}

// MessageRepository is the local mailbox cache the preview scan reads
// and the mutation jobs keep in sync.
type MessageRepository interface {
	Upsert(ctx context.Context, m *model.Message) error
	SearchUnread(ctx context.Context, params SearchMessagesParams) ([]*model.Message, error)
	CountInFolder(ctx context.Context, folder string) (int, error)
	MarkRead(ctx context.Context, uid int, folder string) error
	Remove(ctx context.Context, uid int, folder string) error
	AddLabel(ctx context.Context, params LabelParams) error
	RemoveLabel(ctx context.Context, params LabelParams) error
}

// SearchMessagesParams groups parameters for SearchUnread.
type SearchMessagesParams struct {
	Folder string
	Limit  int
	Offset int
}

// LabelParams groups parameters for label updates on the local cache.
type LabelParams struct {
	UID    int
	Folder string
	Label  string
}

// StatusCache is an optional short-TTL cache for job status snapshots
// serving the status/event-stream hot path. Implementations must be
// safe to skip entirely (a nil StatusCache disables caching).
type StatusCache interface {
	GetStatus(ctx context.Context, jobID string) (*model.JobStatusResponse, bool)
	PutStatus(ctx context.Context, snap *model.JobStatusResponse)
	Invalidate(ctx context.Context, jobID string)
}
