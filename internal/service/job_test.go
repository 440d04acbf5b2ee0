package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/data"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
	"github.com/workspace-secretary/secretary-go/internal/mocks"
	"go.uber.org/mock/gomock"
)

type serviceMocks struct {
	jobs       *mocks.MockJobRepository
	events     *mocks.MockEventRepository
	candidates *mocks.MockCandidateRepository
	mutations  *mocks.MockMutationJournal
	cache      *mocks.MockStatusCache
}

func newTestJobService(t *testing.T, withCache bool) (*JobService, serviceMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := serviceMocks{
		jobs:       mocks.NewMockJobRepository(ctrl),
		events:     mocks.NewMockEventRepository(ctrl),
		candidates: mocks.NewMockCandidateRepository(ctrl),
		mutations:  mocks.NewMockMutationJournal(ctrl),
	}
	opts := JobServiceOptions{
		Jobs:       m.jobs,
		Events:     m.events,
		Candidates: m.candidates,
		Mutations:  m.mutations,
	}
	if withCache {
		m.cache = mocks.NewMockStatusCache(ctrl)
		opts.Cache = m.cache
	}

	svc, err := NewJobService(opts)
	require.NoError(t, err)
	return svc, m
}

func TestNewJobService_RequiresRepositories(t *testing.T) {
	_, err := NewJobService(JobServiceOptions{})
	assert.ErrorContains(t, err, "JobRepository is required")

	ctrl := gomock.NewController(t)
	_, err = NewJobService(JobServiceOptions{Jobs: mocks.NewMockJobRepository(ctrl)})
	assert.ErrorContains(t, err, "EventRepository is required")
}

func TestJobService_Create(t *testing.T) {
	svc, m := newTestJobService(t, false)
	ctx := context.Background()

	req := &model.CreateJobRequest{Kind: model.JobKindMailboxSync}
	created := &model.Job{ID: "job-1", Kind: model.JobKindMailboxSync, Status: model.JobStatusPending}

	m.jobs.EXPECT().Create(ctx, req).Return(created, nil)
	m.events.EXPECT().Append(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.AppendEventParams) (int64, error) {
			assert.Equal(t, "job-1", params.JobID)
			assert.Equal(t, model.EventLevelInfo, params.Level)
			assert.Equal(t, "mailbox_sync job queued", params.Message)
			return 1, nil
		})

	job, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
}

func TestJobService_Create_RejectsInvalidPayload(t *testing.T) {
	svc, _ := newTestJobService(t, false)

	req := &model.CreateJobRequest{Kind: model.JobKindBulkCleanup, Payload: json.RawMessage(`{"uids":[]}`)}
	_, err := svc.Create(context.Background(), req)
	assert.ErrorContains(t, err, "uids is required")
}

func TestJobService_GetStatus_CacheHit(t *testing.T) {
	svc, m := newTestJobService(t, true)
	ctx := context.Background()

	cached := &model.JobStatusResponse{ID: "job-1", Status: model.JobStatusRunning, Processed: 7}
	m.cache.EXPECT().GetStatus(ctx, "job-1").Return(cached, true)

	snap, err := svc.GetStatus(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 7, snap.Processed)
}

func TestJobService_GetStatus_CacheMissFillsCache(t *testing.T) {
	svc, m := newTestJobService(t, true)
	ctx := context.Background()

	job := &model.Job{ID: "job-1", Kind: model.JobKindTriagePreview, Status: model.JobStatusRunning, Processed: 3, TotalEstimate: 10}
	m.cache.EXPECT().GetStatus(ctx, "job-1").Return(nil, false)
	m.jobs.EXPECT().GetByID(ctx, "job-1").Return(job, nil)
	m.cache.EXPECT().PutStatus(ctx, gomock.Any()).Do(
		func(_ context.Context, snap *model.JobStatusResponse) {
			assert.Equal(t, 3, snap.Processed)
			assert.Equal(t, 10, snap.TotalEstimate)
		})

	snap, err := svc.GetStatus(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusRunning, snap.Status)
}

func TestJobService_RequestCancel(t *testing.T) {
	svc, m := newTestJobService(t, true)
	ctx := context.Background()

	m.jobs.EXPECT().RequestCancel(ctx, "job-1").Return(true, nil)
	m.events.EXPECT().Append(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.AppendEventParams) (int64, error) {
			assert.Equal(t, model.EventLevelWarn, params.Level)
			assert.Equal(t, "cancellation requested", params.Message)
			return 2, nil
		})
	m.cache.EXPECT().Invalidate(ctx, "job-1")

	flagged, err := svc.RequestCancel(ctx, "job-1")
	require.NoError(t, err)
	assert.True(t, flagged)
}

func TestJobService_RequestCancel_TerminalJob(t *testing.T) {
	svc, m := newTestJobService(t, false)
	ctx := context.Background()

	// No event appended when the flag was not set.
	m.jobs.EXPECT().RequestCancel(ctx, "job-1").Return(false, nil)

	flagged, err := svc.RequestCancel(ctx, "job-1")
	require.NoError(t, err)
	assert.False(t, flagged)
}

func TestJobService_Approve(t *testing.T) {
	svc, m := newTestJobService(t, false)
	ctx := context.Background()

	params := core.RecordApprovalParams{
		ID:         "job-1",
		ApprovedBy: "user@example.com",
		Payload: model.ApprovalPayload{
			CandidateIDs: []int64{1, 2},
			Actions:      []string{model.ActionAddLabel, model.ActionMarkRead},
		},
	}
	preview := &model.Job{ID: "job-1", Kind: model.JobKindTriagePreview, Status: model.JobStatusCompleted}
	approved := &model.Job{ID: "job-1", Kind: model.JobKindTriagePreview, Status: model.JobStatusApproved}

	gomock.InOrder(
		m.jobs.EXPECT().GetByID(ctx, "job-1").Return(preview, nil),
		m.jobs.EXPECT().Approve(ctx, params).Return(nil),
		m.events.EXPECT().Append(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, p core.AppendEventParams) (int64, error) {
				assert.Contains(t, p.Message, "approved by user@example.com")
				return 3, nil
			}),
		m.jobs.EXPECT().GetByID(ctx, "job-1").Return(approved, nil),
	)

	job, err := svc.Approve(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusApproved, job.Status)
}

func TestJobService_Approve_OnlyPreviewJobs(t *testing.T) {
	svc, m := newTestJobService(t, false)
	ctx := context.Background()

	sync := &model.Job{ID: "job-1", Kind: model.JobKindMailboxSync, Status: model.JobStatusCompleted}
	m.jobs.EXPECT().GetByID(ctx, "job-1").Return(sync, nil)

	_, err := svc.Approve(ctx, core.RecordApprovalParams{ID: "job-1", ApprovedBy: "user"})
	assert.ErrorIs(t, err, data.ErrNotApprovable)
}

func TestJobService_Approve_FirstApprovalWins(t *testing.T) {
	svc, m := newTestJobService(t, false)
	ctx := context.Background()

	preview := &model.Job{ID: "job-1", Kind: model.JobKindTriagePreview, Status: model.JobStatusCompleted}
	m.jobs.EXPECT().GetByID(ctx, "job-1").Return(preview, nil)
	m.jobs.EXPECT().Approve(ctx, gomock.Any()).Return(data.ErrAlreadyApproved)

	_, err := svc.Approve(ctx, core.RecordApprovalParams{ID: "job-1", ApprovedBy: "second-user"})
	assert.ErrorIs(t, err, data.ErrAlreadyApproved)
}

func TestJobService_Approve_RunningJobRejectedWithoutSideEffects(t *testing.T) {
	svc, m := newTestJobService(t, false)
	ctx := context.Background()

	// A scan still in flight cannot be approved; no event is appended
	// and nothing is left behind for a later retry to trip over.
	running := &model.Job{ID: "job-1", Kind: model.JobKindTriagePreview, Status: model.JobStatusRunning}
	m.jobs.EXPECT().GetByID(ctx, "job-1").Return(running, nil)
	m.jobs.EXPECT().Approve(ctx, gomock.Any()).Return(data.ErrNotApprovable)

	_, err := svc.Approve(ctx, core.RecordApprovalParams{ID: "job-1", ApprovedBy: "user@example.com"})
	assert.ErrorIs(t, err, data.ErrNotApprovable)
}

func TestJobService_ListCandidates(t *testing.T) {
	svc, m := newTestJobService(t, false)
	ctx := context.Background()

	job := &model.Job{ID: "job-1", Kind: model.JobKindTriagePreview, Status: model.JobStatusCompleted}
	cands := []*model.Candidate{
		{ID: 1, Confidence: 0.95},
		{ID: 2, Confidence: 0.60},
	}
	filter := model.CandidateFilter{MinConfidence: 0.5}

	m.jobs.EXPECT().GetByID(ctx, "job-1").Return(job, nil)
	m.candidates.EXPECT().List(ctx, "job-1", filter).Return(cands, nil)

	buckets, err := svc.ListCandidates(ctx, "job-1", filter)
	require.NoError(t, err)
	assert.Equal(t, 2, buckets.Total)
	assert.Len(t, buckets.High, 1)
	assert.Len(t, buckets.Medium, 1)
	assert.Empty(t, buckets.Low)
}

func TestJobService_Events_UnknownJob(t *testing.T) {
	svc, m := newTestJobService(t, false)
	ctx := context.Background()

	m.jobs.EXPECT().GetByID(ctx, "nope").Return(nil, data.ErrJobNotFound)

	_, err := svc.Events(ctx, core.ListEventsParams{JobID: "nope"})
	assert.ErrorIs(t, err, data.ErrJobNotFound)
}
