package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/data"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Jobs       core.JobRepository       // Required: job repository
	Events     core.EventRepository     // Required: per-job event log
	Candidates core.CandidateRepository // Required: triage candidate store
	Mutations  core.MutationJournal     // Required: mutation audit trail
	Cache      core.StatusCache         // Optional: status snapshot cache
	Logger     *slog.Logger             // Optional: structured logger
}

// JobService is the producer-facing surface of the job engine: enqueue
// jobs, observe their progress, cancel them, and approve proposals for
// execution. Workers never go through this service; they claim straight
// from the repository.
type JobService struct {
	jobs       core.JobRepository
	events     core.EventRepository
	candidates core.CandidateRepository
	mutations  core.MutationJournal
	cache      core.StatusCache
	logger     *slog.Logger
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Jobs == nil {
		return nil, errors.New("JobRepository is required")
	}
	if opts.Events == nil {
		return nil, errors.New("EventRepository is required")
	}
	if opts.Candidates == nil {
		return nil, errors.New("CandidateRepository is required")
	}
	if opts.Mutations == nil {
		return nil, errors.New("MutationJournal is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &JobService{
		jobs:       opts.Jobs,
		events:     opts.Events,
		candidates: opts.Candidates,
		mutations:  opts.Mutations,
		cache:      opts.Cache,
		logger:     logger.With("component", "job_service"),
	}, nil
}

// Create validates and enqueues a new job, recording a queued event.
func (s *JobService) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	job, err := s.jobs.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if _, err := s.events.Append(ctx, core.AppendEventParams{
		JobID:   job.ID,
		Level:   model.EventLevelInfo,
		Message: fmt.Sprintf("%s job queued", job.Kind),
	}); err != nil {
		s.logger.WarnContext(ctx, "queued event not recorded", "job_id", job.ID, "error", err)
	}

	s.logger.InfoContext(ctx, "job created", "job_id", job.ID, "kind", job.Kind)
	return job, nil
}

// Get returns the full job row.
func (s *JobService) Get(ctx context.Context, id string) (*model.Job, error) {
	return s.jobs.GetByID(ctx, id)
}

// GetStatus returns the producer-facing status snapshot, served from
// the short-TTL cache when available.
func (s *JobService) GetStatus(ctx context.Context, id string) (*model.JobStatusResponse, error) {
	if s.cache != nil {
		if snap, ok := s.cache.GetStatus(ctx, id); ok {
			return snap, nil
		}
	}

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := job.StatusSnapshot()
	if s.cache != nil {
		s.cache.PutStatus(ctx, snap)
	}
	return snap, nil
}

// RequestCancel flags a live job for cooperative cancellation. Returns
// false when the job is already terminal.
func (s *JobService) RequestCancel(ctx context.Context, id string) (bool, error) {
	flagged, err := s.jobs.RequestCancel(ctx, id)
	if err != nil {
		return false, err
	}
	if !flagged {
		return false, nil
	}

	if _, err := s.events.Append(ctx, core.AppendEventParams{
		JobID:   id,
		Level:   model.EventLevelWarn,
		Message: "cancellation requested",
	}); err != nil {
		s.logger.WarnContext(ctx, "cancel event not recorded", "job_id", id, "error", err)
	}
	s.invalidate(ctx, id)

	s.logger.InfoContext(ctx, "cancellation requested", "job_id", id)
	return true, nil
}

// Approve records the human approval on a proposal job and queues it
// for execution. The first approval wins; a second one returns
// ErrAlreadyApproved. Only triage_preview jobs in completed or pending
// status are approvable; a rejected approval writes nothing.
func (s *JobService) Approve(ctx context.Context, params core.RecordApprovalParams) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, params.ID)
	if err != nil {
		return nil, err
	}
	if job.Kind != model.JobKindTriagePreview {
		return nil, fmt.Errorf("%w: %s jobs cannot be approved", data.ErrNotApprovable, job.Kind)
	}

	if err := s.jobs.Approve(ctx, params); err != nil {
		return nil, err
	}

	detail, _ := json.Marshal(map[string]any{
		"approved_by":   params.ApprovedBy,
		"candidate_ids": params.Payload.CandidateIDs,
		"actions":       params.Payload.Actions,
	})
	if _, err := s.events.Append(ctx, core.AppendEventParams{
		JobID:   params.ID,
		Level:   model.EventLevelInfo,
		Message: fmt.Sprintf("approved by %s, queued for execution", params.ApprovedBy),
		Data:    detail,
	}); err != nil {
		s.logger.WarnContext(ctx, "approval event not recorded", "job_id", params.ID, "error", err)
	}
	s.invalidate(ctx, params.ID)

	s.logger.InfoContext(ctx, "job approved",
		"job_id", params.ID, "approved_by", params.ApprovedBy,
		"candidates", len(params.Payload.CandidateIDs))
	return s.jobs.GetByID(ctx, params.ID)
}

// ListCandidates returns a preview job's candidates grouped into
// confidence buckets for review.
func (s *JobService) ListCandidates(
	ctx context.Context,
	jobID string,
	filter model.CandidateFilter,
) (*model.CandidateBuckets, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	cands, err := s.candidates.List(ctx, jobID, filter)
	if err != nil {
		return nil, err
	}
	return model.BucketCandidates(job.ID, job.Status, cands), nil
}

// Events tails the job's event log after the given event id.
func (s *JobService) Events(ctx context.Context, params core.ListEventsParams) ([]*model.JobEvent, error) {
	if _, err := s.jobs.GetByID(ctx, params.JobID); err != nil {
		return nil, err
	}
	return s.events.ListAfter(ctx, params)
}

// ItemHistory returns the journaled mutation attempts against one
// mailbox item, oldest first.
func (s *JobService) ItemHistory(ctx context.Context, uid int, folder string) ([]*model.MutationRecord, error) {
	return s.mutations.ListByItem(ctx, uid, folder)
}

// Stats returns per-status job counts for one kind.
func (s *JobService) Stats(ctx context.Context, kind model.JobKind) (*model.JobStats, error) {
	return s.jobs.Stats(ctx, kind)
}

func (s *JobService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}
