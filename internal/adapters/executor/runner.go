// Package executor polls the job table and drives claimed jobs to a
// terminal status. It is the only component that talks to the remote
// mailbox, through a bounded connection pool.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/workspace-secretary/secretary-go/internal/classify"
	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
	"github.com/workspace-secretary/secretary-go/internal/mail"
)

// errCancelled propagates a cooperative cancellation out of a handler.
// The job still finishes as completed, with partial progress kept.
var errCancelled = errors.New("cancellation requested")

const (
	defaultPollInterval = 2 * time.Second
	defaultConcurrency  = 2
)

// RunnerOptions groups dependencies for Runner.
type RunnerOptions struct {
	Jobs       core.JobRepository       // Required
	Events     core.EventRepository     // Required
	Candidates core.CandidateRepository // Required
	Mutations  core.MutationJournal     // Required
	Messages   core.MessageRepository   // Required
	Pool       *mail.Pool               // Required: mailbox sessions
	Classifier classify.Classifier      // Required: preview scans
	Cache      core.StatusCache         // Optional
	Logger     *slog.Logger             // Optional

	PollInterval time.Duration // defaults to 2s
	Concurrency  int           // max in-flight jobs; defaults to 2
}

// claimSpec is one entry in the fixed claim priority order.
type claimSpec struct {
	kind     model.JobKind
	approved bool // claim approved proposals instead of pending jobs
}

// Claim order: keep the cache fresh first, surface proposals next,
// execute what the user approved before grinding through bulk work.
var claimOrder = []claimSpec{
	{kind: model.JobKindMailboxSync},
	{kind: model.JobKindTriagePreview},
	{kind: model.JobKindTriagePreview, approved: true},
	{kind: model.JobKindBulkCleanup},
	{kind: model.JobKindTriageApply},
}

// Runner claims jobs in priority order and executes them with bounded
// concurrency. Multiple runner replicas can share one database; claim
// exclusivity comes from the repository, not from the runner.
type Runner struct {
	jobs       core.JobRepository
	events     core.EventRepository
	candidates core.CandidateRepository
	mutations  core.MutationJournal
	messages   core.MessageRepository
	pool       *mail.Pool
	classifier classify.Classifier
	cache      core.StatusCache
	logger     *slog.Logger

	pollInterval time.Duration
	concurrency  int64
	sem          *semaphore.Weighted
}

// NewRunner constructs a Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	switch {
	case opts.Jobs == nil:
		return nil, errors.New("JobRepository is required")
	case opts.Events == nil:
		return nil, errors.New("EventRepository is required")
	case opts.Candidates == nil:
		return nil, errors.New("CandidateRepository is required")
	case opts.Mutations == nil:
		return nil, errors.New("MutationJournal is required")
	case opts.Messages == nil:
		return nil, errors.New("MessageRepository is required")
	case opts.Pool == nil:
		return nil, errors.New("mail pool is required")
	case opts.Classifier == nil:
		return nil, errors.New("Classifier is required")
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	concurrency := int64(opts.Concurrency)
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		jobs:         opts.Jobs,
		events:       opts.Events,
		candidates:   opts.Candidates,
		mutations:    opts.Mutations,
		messages:     opts.Messages,
		pool:         opts.Pool,
		classifier:   opts.Classifier,
		cache:        opts.Cache,
		logger:       logger.With("component", "executor"),
		pollInterval: pollInterval,
		concurrency:  concurrency,
		sem:          semaphore.NewWeighted(concurrency),
	}, nil
}

// Run polls for claimable jobs until the context is cancelled, then
// waits for in-flight jobs to finish.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "executor started",
		"poll_interval", r.pollInterval, "concurrency", r.concurrency)

	// A worker slot is held before claiming so a busy pool never pulls
	// jobs it cannot start, and the poll loop never parks on a claim.
	for ctx.Err() == nil {
		if acquireErr := r.sem.Acquire(ctx, 1); acquireErr != nil {
			break
		}

		claimed, err := r.claimOne(ctx)
		if err != nil {
			r.sem.Release(1)
			if ctx.Err() != nil {
				break
			}
			r.logger.ErrorContext(ctx, "claim failed", "error", err)
			r.sleep(ctx)
			continue
		}
		if claimed == nil {
			r.sem.Release(1)
			r.sleep(ctx)
			continue
		}

		if ctx.Err() != nil {
			// Shutting down with an unstarted claim: run it to a
			// terminal status rather than stranding it in running.
			r.process(context.WithoutCancel(ctx), claimed)
			r.sem.Release(1)
			break
		}
		go func(c *claimedJob) {
			defer r.sem.Release(1)
			r.process(ctx, c)
		}(claimed)
	}

	// Drain: wait for every in-flight job.
	if err := r.sem.Acquire(context.Background(), r.concurrency); err != nil {
		return err
	}
	r.sem.Release(r.concurrency)

	r.logger.Info("executor stopped")
	return ctx.Err()
}

type claimedJob struct {
	job     *model.Job
	execute bool // run the approved-proposal path
}

// claimOne walks the claim order and returns the first claimable job,
// or nil when every queue is empty.
func (r *Runner) claimOne(ctx context.Context) (*claimedJob, error) {
	for _, spec := range claimOrder {
		var (
			job *model.Job
			err error
		)
		if spec.approved {
			job, err = r.jobs.ClaimNextApproved(ctx, spec.kind)
		} else {
			job, err = r.jobs.ClaimNext(ctx, spec.kind)
		}
		if err != nil {
			if errors.Is(err, model.ErrNoJobsAvailable) {
				continue
			}
			return nil, fmt.Errorf("claim %s: %w", spec.kind, err)
		}
		return &claimedJob{job: job, execute: spec.approved}, nil
	}
	return nil, nil
}

// process drives one claimed job to a terminal status. Handler panics
// are contained and fail the job rather than the runner.
func (r *Runner) process(ctx context.Context, claimed *claimedJob) {
	job := claimed.job
	logger := r.logger.With("job_id", job.ID, "kind", job.Kind)
	logger.InfoContext(ctx, "job claimed", "execute", claimed.execute)

	r.appendEvent(ctx, job.ID, model.EventLevelInfo, "claimed by worker", nil)
	r.invalidate(ctx, job.ID)

	var err error
	func() {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("handler panic: %v", p)
				logger.ErrorContext(ctx, "handler panicked", "panic", p)
			}
		}()
		err = r.dispatch(ctx, claimed)
	}()

	// Finishing must survive a cancelled runner context.
	finishCtx := context.WithoutCancel(ctx)
	switch {
	case errors.Is(err, errCancelled):
		r.appendEvent(finishCtx, job.ID, model.EventLevelWarn, "cancelled by user", nil)
		r.finish(finishCtx, job, nil)
		logger.InfoContext(ctx, "job cancelled, partial progress kept")
	case err != nil:
		r.appendEvent(finishCtx, job.ID, model.EventLevelError,
			fmt.Sprintf("job failed: %v", err), nil)
		r.finish(finishCtx, job, err)
		logger.ErrorContext(ctx, "job failed", "error", err)
	default:
		r.finish(finishCtx, job, nil)
		logger.InfoContext(ctx, "job completed")
	}
}

func (r *Runner) dispatch(ctx context.Context, claimed *claimedJob) error {
	job := claimed.job
	if claimed.execute {
		return r.handleTriageExecute(ctx, job)
	}

	switch job.Kind {
	case model.JobKindMailboxSync:
		return r.handleSync(ctx, job)
	case model.JobKindTriagePreview:
		return r.handlePreview(ctx, job)
	case model.JobKindBulkCleanup:
		return r.handleCleanup(ctx, job)
	case model.JobKindTriageApply:
		return r.handleTriageApply(ctx, job)
	default:
		return fmt.Errorf("no handler for job kind %s", job.Kind)
	}
}

// finish records the terminal status exactly once.
func (r *Runner) finish(ctx context.Context, job *model.Job, jobErr error) {
	params := core.MarkFinishedParams{ID: job.ID, Status: model.JobStatusCompleted}
	if jobErr != nil {
		params.Status = model.JobStatusFailed
		params.Error = jobErr.Error()
	}
	if err := r.jobs.MarkFinished(ctx, params); err != nil {
		r.logger.ErrorContext(ctx, "mark finished failed", "job_id", job.ID, "error", err)
	}
	r.invalidate(ctx, job.ID)
}

func (r *Runner) appendEvent(ctx context.Context, jobID string, level model.EventLevel, msg string, data []byte) {
	if _, err := r.events.Append(ctx, core.AppendEventParams{
		JobID:   jobID,
		Level:   level,
		Message: msg,
		Data:    data,
	}); err != nil {
		r.logger.WarnContext(ctx, "event not recorded", "job_id", jobID, "error", err)
	}
}

func (r *Runner) invalidate(ctx context.Context, jobID string) {
	if r.cache != nil {
		r.cache.Invalidate(ctx, jobID)
	}
}

func (r *Runner) sleep(ctx context.Context) {
	timer := time.NewTimer(r.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// acquireMail obtains a pooled mailbox session.
func (r *Runner) acquireMail(ctx context.Context) (mail.Client, error) {
	client, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire mail session: %w", err)
	}
	return client, nil
}

// releaseMail returns the session, discarding it when the handler
// failed with something other than a per-item protocol error.
func (r *Runner) releaseMail(client mail.Client, err error) {
	broken := err != nil &&
		!errors.Is(err, errCancelled) &&
		!errors.Is(err, mail.ErrNotFound) &&
		!errors.Is(err, mail.ErrConflict)
	r.pool.Release(client, broken)
}
