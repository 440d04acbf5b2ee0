package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
	"github.com/workspace-secretary/secretary-go/internal/testutil"
)

// TestJobRepo_Integration_CreateAndClaim verifies jobs are claimed in
// creation order and each claim transitions the job to running.
func TestJobRepo_Integration_CreateAndClaim(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		tp := NewFixedTimeProvider(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		repo := NewJobRepo(db, RepoConfig{TimeProvider: tp})
		ctx := context.Background()

		var created []*model.Job
		for range 3 {
			job, err := repo.Create(ctx, &model.CreateJobRequest{Kind: model.JobKindMailboxSync})
			require.NoError(t, err)
			assert.Equal(t, model.JobStatusPending, job.Status)
			created = append(created, job)
			tp.AddTime(time.Second)
		}

		// A different kind has nothing to claim.
		_, err := repo.ClaimNext(ctx, model.JobKindBulkCleanup)
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)

		for i := range 3 {
			claimed, claimErr := repo.ClaimNext(ctx, model.JobKindMailboxSync)
			require.NoError(t, claimErr)
			assert.Equal(t, created[i].ID, claimed.ID, "oldest pending job claims first")
			assert.Equal(t, model.JobStatusRunning, claimed.Status)
			assert.NotNil(t, claimed.StartedAt)
		}

		_, err = repo.ClaimNext(ctx, model.JobKindMailboxSync)
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)
	})
}

// TestJobRepo_Integration_ClaimExclusivity runs concurrent claimers
// against one set of pending jobs and verifies no job is handed out
// twice.
func TestJobRepo_Integration_ClaimExclusivity(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		const jobCount = 8
		for range jobCount {
			_, err := repo.Create(ctx, &model.CreateJobRequest{Kind: model.JobKindTriagePreview})
			require.NoError(t, err)
		}

		var (
			mu      sync.Mutex
			claimed = map[string]int{}
			wg      sync.WaitGroup
		)
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					job, err := repo.ClaimNext(ctx, model.JobKindTriagePreview)
					if err != nil {
						return
					}
					mu.Lock()
					claimed[job.ID]++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Len(t, claimed, jobCount)
		for id, times := range claimed {
			assert.Equal(t, 1, times, "job %s claimed more than once", id)
		}
	})
}

// TestJobRepo_Integration_Lifecycle walks a job from creation through
// claim, progress updates and a terminal status.
func TestJobRepo_Integration_Lifecycle(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		job, err := repo.Create(ctx, &model.CreateJobRequest{
			Kind:    model.JobKindBulkCleanup,
			Payload: json.RawMessage(`{"uids":[{"uid":1,"folder":"INBOX"}],"destination":"Archive"}`),
		})
		require.NoError(t, err)

		claimed, err := repo.ClaimNext(ctx, model.JobKindBulkCleanup)
		require.NoError(t, err)
		assert.Equal(t, job.ID, claimed.ID)

		processed, total := 1, 1
		require.NoError(t, repo.UpdateProgress(ctx, core.UpdateProgressParams{
			ID: job.ID, Processed: &processed, TotalEstimate: &total,
		}))
		require.NoError(t, repo.UpdateProgress(ctx, core.UpdateProgressParams{ID: job.ID}))

		require.NoError(t, repo.MarkFinished(ctx, core.MarkFinishedParams{
			ID: job.ID, Status: model.JobStatusCompleted,
		}))

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusCompleted, got.Status)
		assert.Equal(t, 1, got.Processed)
		assert.Equal(t, 1, got.TotalEstimate)
		assert.NotNil(t, got.FinishedAt)
		assert.Nil(t, got.Error)

		// Repeating the same terminal status is a no-op.
		require.NoError(t, repo.MarkFinished(ctx, core.MarkFinishedParams{
			ID: job.ID, Status: model.JobStatusCompleted,
		}))

		// A conflicting terminal status is rejected.
		err = repo.MarkFinished(ctx, core.MarkFinishedParams{
			ID: job.ID, Status: model.JobStatusFailed, Error: "late failure",
		})
		require.Error(t, err)

		// Non-terminal statuses are rejected outright.
		err = repo.MarkFinished(ctx, core.MarkFinishedParams{
			ID: job.ID, Status: model.JobStatusRunning,
		})
		require.Error(t, err)
	})
}

// TestJobRepo_Integration_FailedJobKeepsError verifies the error text
// survives on a failed job.
func TestJobRepo_Integration_FailedJobKeepsError(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		job, err := repo.Create(ctx, &model.CreateJobRequest{Kind: model.JobKindMailboxSync})
		require.NoError(t, err)

		_, err = repo.ClaimNext(ctx, model.JobKindMailboxSync)
		require.NoError(t, err)

		require.NoError(t, repo.MarkFinished(ctx, core.MarkFinishedParams{
			ID: job.ID, Status: model.JobStatusFailed, Error: "dial mail session: timeout",
		}))

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusFailed, got.Status)
		require.NotNil(t, got.Error)
		assert.Equal(t, "dial mail session: timeout", *got.Error)
	})
}

// TestJobRepo_Integration_Cancel covers the cooperative cancel flag.
func TestJobRepo_Integration_Cancel(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		job, err := repo.Create(ctx, &model.CreateJobRequest{Kind: model.JobKindMailboxSync})
		require.NoError(t, err)

		requested, err := repo.IsCancelRequested(ctx, job.ID)
		require.NoError(t, err)
		assert.False(t, requested)

		flagged, err := repo.RequestCancel(ctx, job.ID)
		require.NoError(t, err)
		assert.True(t, flagged)

		requested, err = repo.IsCancelRequested(ctx, job.ID)
		require.NoError(t, err)
		assert.True(t, requested)

		// The flag stays set across the claim.
		claimed, err := repo.ClaimNext(ctx, model.JobKindMailboxSync)
		require.NoError(t, err)
		assert.True(t, claimed.CancelRequested)

		require.NoError(t, repo.MarkFinished(ctx, core.MarkFinishedParams{
			ID: job.ID, Status: model.JobStatusCompleted,
		}))

		// Terminal jobs cannot be flagged.
		flagged, err = repo.RequestCancel(ctx, job.ID)
		require.NoError(t, err)
		assert.False(t, flagged)

		_, err = repo.IsCancelRequested(ctx, "00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, ErrJobNotFound)
	})
}

// TestJobRepo_Integration_ApprovalFlow walks a finished preview job
// through approval and the approved-claim path.
func TestJobRepo_Integration_ApprovalFlow(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		job, err := repo.Create(ctx, &model.CreateJobRequest{Kind: model.JobKindTriagePreview})
		require.NoError(t, err)
		_, err = repo.ClaimNext(ctx, model.JobKindTriagePreview)
		require.NoError(t, err)
		require.NoError(t, repo.MarkFinished(ctx, core.MarkFinishedParams{
			ID: job.ID, Status: model.JobStatusCompleted,
		}))

		approval, err := repo.GetApproval(ctx, job.ID)
		require.NoError(t, err)
		assert.Nil(t, approval, "no approval before one is recorded")

		payload := model.ApprovalPayload{
			CandidateIDs: []int64{1, 2, 3},
			Actions:      []string{model.ActionAddLabel, model.ActionMarkRead},
		}
		require.NoError(t, repo.Approve(ctx, core.RecordApprovalParams{
			ID: job.ID, ApprovedBy: "user@example.com", Payload: payload,
		}))

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusApproved, got.Status)

		// The first approval wins; a second attempt changes nothing.
		err = repo.Approve(ctx, core.RecordApprovalParams{
			ID: job.ID, ApprovedBy: "intruder@example.com", Payload: payload,
		})
		require.ErrorIs(t, err, ErrAlreadyApproved)

		approval, err = repo.GetApproval(ctx, job.ID)
		require.NoError(t, err)
		require.NotNil(t, approval)
		assert.Equal(t, "user@example.com", approval.ApprovedBy)
		assert.Equal(t, payload.CandidateIDs, approval.Payload.CandidateIDs)
		assert.Equal(t, payload.Actions, approval.Payload.Actions)

		// Approved jobs are invisible to the pending-claim path.
		_, err = repo.ClaimNext(ctx, model.JobKindTriagePreview)
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)

		claimed, err := repo.ClaimNextApproved(ctx, model.JobKindTriagePreview)
		require.NoError(t, err)
		assert.Equal(t, job.ID, claimed.ID)
		assert.Equal(t, model.JobStatusExecuting, claimed.Status)
		assert.True(t, claimed.Approved())

		// An executing job still carries its approval and rejects another.
		err = repo.Approve(ctx, core.RecordApprovalParams{
			ID: job.ID, ApprovedBy: "intruder@example.com", Payload: payload,
		})
		require.ErrorIs(t, err, ErrAlreadyApproved)
	})
}

// TestJobRepo_Integration_ApproveRunningJobWritesNothing covers the
// rejection path: approving a proposal mid-scan must leave no partial
// state behind, so the same approval succeeds once the scan finishes.
func TestJobRepo_Integration_ApproveRunningJobWritesNothing(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		job, err := repo.Create(ctx, &model.CreateJobRequest{Kind: model.JobKindTriagePreview})
		require.NoError(t, err)
		_, err = repo.ClaimNext(ctx, model.JobKindTriagePreview)
		require.NoError(t, err)

		params := core.RecordApprovalParams{
			ID:         job.ID,
			ApprovedBy: "user@example.com",
			Payload: model.ApprovalPayload{
				CandidateIDs: []int64{1},
				Actions:      []string{model.ActionAddLabel},
			},
		}

		err = repo.Approve(ctx, params)
		require.ErrorIs(t, err, ErrNotApprovable)

		approval, err := repo.GetApproval(ctx, job.ID)
		require.NoError(t, err)
		assert.Nil(t, approval, "rejected approval must not persist a payload")
		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusRunning, got.Status)

		// Once the scan finishes the retried approval goes through and
		// the executor can claim the job.
		require.NoError(t, repo.MarkFinished(ctx, core.MarkFinishedParams{
			ID: job.ID, Status: model.JobStatusCompleted,
		}))
		require.NoError(t, repo.Approve(ctx, params))

		claimed, err := repo.ClaimNextApproved(ctx, model.JobKindTriagePreview)
		require.NoError(t, err)
		assert.Equal(t, job.ID, claimed.ID)
	})
}

// TestJobRepo_Integration_ApprovePendingJob covers approving a proposal
// before it ever ran.
func TestJobRepo_Integration_ApprovePendingJob(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		job, err := repo.Create(ctx, &model.CreateJobRequest{Kind: model.JobKindTriagePreview})
		require.NoError(t, err)

		require.NoError(t, repo.Approve(ctx, core.RecordApprovalParams{
			ID:         job.ID,
			ApprovedBy: "user@example.com",
			Payload: model.ApprovalPayload{
				CandidateIDs: []int64{1},
				Actions:      []string{model.ActionAddLabel},
			},
		}))

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusApproved, got.Status)
	})
}

// TestJobRepo_Integration_Stats verifies the per-kind state counts.
func TestJobRepo_Integration_Stats(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})
		ctx := context.Background()

		for range 2 {
			_, err := repo.Create(ctx, &model.CreateJobRequest{Kind: model.JobKindMailboxSync})
			require.NoError(t, err)
		}
		_, err := repo.Create(ctx, &model.CreateJobRequest{Kind: model.JobKindMailboxSync})
		require.NoError(t, err)
		claimed, err := repo.ClaimNext(ctx, model.JobKindMailboxSync)
		require.NoError(t, err)
		require.NoError(t, repo.MarkFinished(ctx, core.MarkFinishedParams{
			ID: claimed.ID, Status: model.JobStatusFailed, Error: "boom",
		}))

		// Another kind does not leak into the counts.
		_, err = repo.Create(ctx, &model.CreateJobRequest{Kind: model.JobKindTriagePreview})
		require.NoError(t, err)

		stats, err := repo.Stats(ctx, model.JobKindMailboxSync)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Pending)
		assert.Equal(t, 0, stats.Running)
		assert.Equal(t, 1, stats.Failed)
		assert.Equal(t, 0, stats.Completed)
	})
}

// TestJobRepo_Integration_GetByID_Unknown checks the not-found sentinel.
func TestJobRepo_Integration_GetByID_Unknown(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, ErrJobNotFound)
	})
}
