package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/data"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
	"github.com/workspace-secretary/secretary-go/internal/mocks"
	"github.com/workspace-secretary/secretary-go/internal/service"
)

type routerMocks struct {
	jobs       *mocks.MockJobRepository
	events     *mocks.MockEventRepository
	candidates *mocks.MockCandidateRepository
	mutations  *mocks.MockMutationJournal
}

func newTestRouter(t *testing.T) (http.Handler, *routerMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := &routerMocks{
		jobs:       mocks.NewMockJobRepository(ctrl),
		events:     mocks.NewMockEventRepository(ctrl),
		candidates: mocks.NewMockCandidateRepository(ctrl),
		mutations:  mocks.NewMockMutationJournal(ctrl),
	}

	svc, err := service.NewJobService(service.JobServiceOptions{
		Jobs:       m.jobs,
		Events:     m.events,
		Candidates: m.candidates,
		Mutations:  m.mutations,
	})
	require.NoError(t, err)

	return NewRouter(RouterServices{Jobs: svc}), m
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestCreateTriage(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.CreateJobRequest) (*model.Job, error) {
			assert.Equal(t, model.JobKindTriagePreview, req.Kind)
			assert.JSONEq(t, `{"folder":"INBOX","limit":100}`, string(req.Payload))
			return &model.Job{ID: "job-1", Kind: req.Kind, Status: model.JobStatusPending}, nil
		})
	m.events.EXPECT().Append(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	rec := doRequest(router, http.MethodPost, "/api/jobs/triage", `{"folder":"INBOX","limit":100}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "job-1", body["job_id"])
	assert.Equal(t, "pending", body["status"])
}

func TestCreateSync_EmptyBody(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.CreateJobRequest) (*model.Job, error) {
			assert.Equal(t, model.JobKindMailboxSync, req.Kind)
			assert.Empty(t, req.Payload)
			return &model.Job{ID: "job-2", Kind: req.Kind, Status: model.JobStatusPending}, nil
		})
	m.events.EXPECT().Append(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	rec := doRequest(router, http.MethodPost, "/api/jobs/sync", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestCreateCleanup_RejectsEmptyUIDs(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/api/jobs/cleanup", `{"uids":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "create_failed", body["error"])
	assert.Contains(t, body["message"], "uids is required")
}

func TestGetStatus(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(&model.Job{
		ID:            "job-1",
		Kind:          model.JobKindBulkCleanup,
		Status:        model.JobStatusRunning,
		Processed:     40,
		TotalEstimate: 120,
	}, nil)

	rec := doRequest(router, http.MethodGet, "/api/jobs/job-1/status", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, float64(40), body["processed"])
	assert.Equal(t, float64(120), body["total_estimate"])
}

func TestGetStatus_UnknownJob(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, data.ErrJobNotFound)

	rec := doRequest(router, http.MethodGet, "/api/jobs/missing/status", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "job_not_found", decodeBody(t, rec)["error"])
}

func TestCancel(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().RequestCancel(gomock.Any(), "job-1").Return(true, nil)
	m.events.EXPECT().Append(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	rec := doRequest(router, http.MethodPost, "/api/jobs/job-1/cancel", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["cancel_requested"])
}

func TestCancel_TerminalJob(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().RequestCancel(gomock.Any(), "job-1").Return(false, nil)

	rec := doRequest(router, http.MethodPost, "/api/jobs/job-1/cancel", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["cancel_requested"])
}

func TestApprove(t *testing.T) {
	router, m := newTestRouter(t)

	preview := &model.Job{ID: "job-1", Kind: model.JobKindTriagePreview, Status: model.JobStatusCompleted}
	approved := &model.Job{ID: "job-1", Kind: model.JobKindTriagePreview, Status: model.JobStatusApproved}

	gomock.InOrder(
		m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(preview, nil),
		m.jobs.EXPECT().Approve(gomock.Any(), core.RecordApprovalParams{
			ID:         "job-1",
			ApprovedBy: "user@example.com",
			Payload: model.ApprovalPayload{
				CandidateIDs: []int64{1, 2},
				Actions:      []string{model.ActionAddLabel, model.ActionMarkRead},
			},
		}).Return(nil),
		m.events.EXPECT().Append(gomock.Any(), gomock.Any()).Return(int64(9), nil),
		m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(approved, nil),
	)

	rec := doRequest(router, http.MethodPost, "/api/jobs/job-1/approve",
		`{"approved_by":"user@example.com","candidate_ids":[1,2],"actions":["add_label","mark_read"]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", decodeBody(t, rec)["status"])
}

func TestApprove_RequiresApprovedBy(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodPost, "/api/jobs/job-1/approve",
		`{"candidate_ids":[1],"actions":["add_label"]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeBody(t, rec)["error"])
}

func TestApprove_SecondApprovalConflicts(t *testing.T) {
	router, m := newTestRouter(t)

	preview := &model.Job{ID: "job-1", Kind: model.JobKindTriagePreview, Status: model.JobStatusApproved}
	m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(preview, nil)
	m.jobs.EXPECT().Approve(gomock.Any(), gomock.Any()).Return(data.ErrAlreadyApproved)

	rec := doRequest(router, http.MethodPost, "/api/jobs/job-1/approve",
		`{"approved_by":"other@example.com","candidate_ids":[3],"actions":["add_label"]}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_approved", decodeBody(t, rec)["error"])
}

func TestApprove_OnlyPreviewJobs(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(&model.Job{
		ID: "job-1", Kind: model.JobKindBulkCleanup, Status: model.JobStatusCompleted,
	}, nil)

	rec := doRequest(router, http.MethodPost, "/api/jobs/job-1/approve",
		`{"approved_by":"user@example.com","candidate_ids":[1],"actions":["add_label"]}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_approvable", decodeBody(t, rec)["error"])
}

func TestCandidates_BucketsByConfidence(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(&model.Job{
		ID: "job-1", Kind: model.JobKindTriagePreview, Status: model.JobStatusCompleted,
	}, nil)
	m.candidates.EXPECT().List(gomock.Any(), "job-1", model.CandidateFilter{MinConfidence: 0.5}).
		Return([]*model.Candidate{
			{ID: 1, Confidence: 0.95, Category: "action-required"},
			{ID: 2, Confidence: 0.60, Category: "fyi"},
		}, nil)

	rec := doRequest(router, http.MethodGet, "/api/jobs/job-1/candidates?min_confidence=0.5", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["total"])
	assert.Len(t, body["high_confidence"], 1)
	assert.Len(t, body["medium_confidence"], 1)
	assert.Empty(t, body["low_confidence"])
}

func TestStats(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().Stats(gomock.Any(), model.JobKindMailboxSync).Return(&model.JobStats{
		Pending: 2, Completed: 7,
	}, nil)

	rec := doRequest(router, http.MethodGet, "/api/jobs/kind/mailbox_sync/stats", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["pending"])
	assert.Equal(t, float64(7), body["completed"])
}

func TestStats_InvalidKind(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/api/jobs/kind/reaper/stats", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_path", decodeBody(t, rec)["error"])
}

func TestItemHistory(t *testing.T) {
	router, m := newTestRouter(t)

	m.mutations.EXPECT().ListByItem(gomock.Any(), 42, "INBOX").Return([]*model.MutationRecord{
		{ID: 1, UID: 42, Folder: "INBOX", Action: model.ActionMove, Status: model.MutationStatusApplied},
	}, nil)

	rec := doRequest(router, http.MethodGet, "/api/mutations?uid=42&folder=INBOX", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	muts, ok := body["mutations"].([]any)
	require.True(t, ok)
	assert.Len(t, muts, 1)
}

func TestItemHistory_RequiresUIDAndFolder(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/api/mutations?uid=42", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_query", decodeBody(t, rec)["error"])
}

func TestListEvents(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(&model.Job{ID: "job-1"}, nil)
	m.events.EXPECT().ListAfter(gomock.Any(), core.ListEventsParams{
		JobID: "job-1", AfterID: 5, Limit: 10,
	}).Return([]*model.JobEvent{
		{ID: 6, JobID: "job-1", Level: model.EventLevelInfo, Message: "claimed by worker"},
	}, nil)

	rec := doRequest(router, http.MethodGet, "/api/jobs/job-1/events?after_id=5&limit=10", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	events, ok := decodeBody(t, rec)["events"].([]any)
	require.True(t, ok)
	assert.Len(t, events, 1)
}

func TestListEvents_EmptyIsNotNull(t *testing.T) {
	router, m := newTestRouter(t)

	m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(&model.Job{ID: "job-1"}, nil)
	m.events.EXPECT().ListAfter(gomock.Any(), gomock.Any()).Return(nil, nil)

	rec := doRequest(router, http.MethodGet, "/api/jobs/job-1/events", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"events":[]`)
}

func TestStream_TerminalJobEndsStream(t *testing.T) {
	router, m := newTestRouter(t)

	done := &model.Job{
		ID: "job-1", Kind: model.JobKindBulkCleanup, Status: model.JobStatusCompleted,
		Processed: 10, TotalEstimate: 10,
	}
	m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(done, nil).AnyTimes()
	m.events.EXPECT().ListAfter(gomock.Any(), gomock.Any()).Return([]*model.JobEvent{
		{ID: 1, JobID: "job-1", Level: model.EventLevelInfo, Message: "claimed by worker"},
		{ID: 2, JobID: "job-1", Level: model.EventLevelInfo, Message: "cleanup complete"},
	}, nil)

	rec := doRequest(router, http.MethodGet, "/api/jobs/job-1/events/stream", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "id: 1\n")
	assert.Contains(t, body, "id: 2\n")
	assert.Contains(t, body, "event: event\n")
	assert.Contains(t, body, "event: status\n")
	assert.Contains(t, body, `"status":"completed"`)
}

func TestStream_ResumesAfterLastEventID(t *testing.T) {
	router, m := newTestRouter(t)

	done := &model.Job{ID: "job-1", Kind: model.JobKindBulkCleanup, Status: model.JobStatusCompleted}
	m.jobs.EXPECT().GetByID(gomock.Any(), "job-1").Return(done, nil).AnyTimes()
	m.events.EXPECT().ListAfter(gomock.Any(), core.ListEventsParams{
		JobID: "job-1", AfterID: 7, Limit: 200,
	}).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/job-1/events/stream", nil)
	req.Header.Set("Last-Event-ID", "7")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: status\n")
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(router, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
