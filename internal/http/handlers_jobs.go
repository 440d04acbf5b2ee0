// Package httpx provides the HTTP API surface of the job engine.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/data"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
	"github.com/workspace-secretary/secretary-go/internal/service"
)

// JobHandlers provides HTTP handlers for job-related operations.
type JobHandlers struct {
	Svc *service.JobService
}

var errJobIDRequired = errors.New("job id is required")

// enqueue is the shared create path: decode an optional payload body
// and queue a job of the given kind.
func (h *JobHandlers) enqueue(w http.ResponseWriter, r *http.Request, kind model.JobKind) {
	var payload json.RawMessage
	if r.ContentLength != 0 {
		if !DecodeJSON(w, r, &payload) {
			return
		}
	}

	job, err := h.Svc.Create(r.Context(), &model.CreateJobRequest{
		Kind:    kind,
		Payload: payload,
	})
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "create_failed", Err: err})
		return
	}
	WriteJSON(w, http.StatusAccepted, job)
}

// CreateSync queues a mailbox_sync job.
func (h *JobHandlers) CreateSync(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, model.JobKindMailboxSync)
}

// CreateTriage queues a triage_preview job.
func (h *JobHandlers) CreateTriage(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, model.JobKindTriagePreview)
}

// CreateCleanup queues a bulk_cleanup job.
func (h *JobHandlers) CreateCleanup(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, model.JobKindBulkCleanup)
}

// CreateTriageApply queues a triage_apply job.
func (h *JobHandlers) CreateTriageApply(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, model.JobKindTriageApply)
}

// Get returns the full job row.
func (h *JobHandlers) Get(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errJobIDRequired})
		return
	}

	job, err := h.Svc.Get(r.Context(), jobID)
	if err != nil {
		writeJobError(w, err, "get_failed")
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// GetStatus returns the producer-facing status snapshot.
func (h *JobHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errJobIDRequired})
		return
	}

	status, err := h.Svc.GetStatus(r.Context(), jobID)
	if err != nil {
		writeJobError(w, err, "get_status_failed")
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// Cancel flags a job for cooperative cancellation.
func (h *JobHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errJobIDRequired})
		return
	}

	flagged, err := h.Svc.RequestCancel(r.Context(), jobID)
	if err != nil {
		writeJobError(w, err, "cancel_failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"cancel_requested": flagged})
}

// Candidates lists a preview job's proposed mutations grouped by
// confidence. Supports min_confidence, category and limit filters.
func (h *JobHandlers) Candidates(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errJobIDRequired})
		return
	}

	filter := model.CandidateFilter{
		MinConfidence: parseFloatQuery(r, "min_confidence", 0),
		Category:      r.URL.Query().Get("category"),
		Limit:         parseIntQuery(r, "limit", 0),
	}

	buckets, err := h.Svc.ListCandidates(r.Context(), jobID, filter)
	if err != nil {
		writeJobError(w, err, "list_candidates_failed")
		return
	}
	WriteJSON(w, http.StatusOK, buckets)
}

// approveRequest is the body of an approval call.
type approveRequest struct {
	ApprovedBy   string   `json:"approved_by"`
	CandidateIDs []int64  `json:"candidate_ids"`
	Actions      []string `json:"actions"`
}

// Approve records a human approval on a proposal job and queues it for
// execution. The first approval wins.
func (h *JobHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errJobIDRequired})
		return
	}

	var req approveRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.ApprovedBy == "" {
		WriteError(w, ErrorParams{
			Code: http.StatusBadRequest, ErrCode: "invalid_request",
			Err: errors.New("approved_by is required"),
		})
		return
	}

	job, err := h.Svc.Approve(r.Context(), core.RecordApprovalParams{
		ID:         jobID,
		ApprovedBy: req.ApprovedBy,
		Payload: model.ApprovalPayload{
			CandidateIDs: req.CandidateIDs,
			Actions:      req.Actions,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, data.ErrAlreadyApproved):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "already_approved", Err: err})
		case errors.Is(err, data.ErrNotApprovable):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "not_approvable", Err: err})
		default:
			writeJobError(w, err, "approve_failed")
		}
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Stats returns per-status job counts for one kind.
func (h *JobHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	var kind model.JobKind
	if err := kind.UnmarshalText([]byte(r.PathValue("kind"))); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: err})
		return
	}

	stats, err := h.Svc.Stats(r.Context(), kind)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "stats_failed", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// ItemHistory returns the journaled mutation attempts against one
// mailbox item, identified by uid and folder query params.
func (h *JobHandlers) ItemHistory(w http.ResponseWriter, r *http.Request) {
	uid := parseIntQuery(r, "uid", 0)
	folder := r.URL.Query().Get("folder")
	if uid <= 0 || folder == "" {
		WriteError(w, ErrorParams{
			Code: http.StatusBadRequest, ErrCode: "invalid_query",
			Err: errors.New("uid and folder are required"),
		})
		return
	}

	records, err := h.Svc.ItemHistory(r.Context(), uid, folder)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "history_failed", Err: err})
		return
	}
	if records == nil {
		records = []*model.MutationRecord{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"mutations": records})
}

func writeJobError(w http.ResponseWriter, err error, code string) {
	if errors.Is(err, data.ErrJobNotFound) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "job_not_found", Err: err})
		return
	}
	WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: code, Err: err})
}
