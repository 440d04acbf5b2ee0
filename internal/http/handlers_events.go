package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/workspace-secretary/secretary-go/internal/core"
	"github.com/workspace-secretary/secretary-go/internal/data"
	"github.com/workspace-secretary/secretary-go/internal/domain/model"
	"github.com/workspace-secretary/secretary-go/internal/service"
)

const (
	defaultStreamPollInterval = time.Second
	streamBatchLimit          = 200
)

// EventHandlers serves a job's event log, both as a plain list and as
// a live SSE stream.
type EventHandlers struct {
	Svc          *service.JobService
	Logger       *slog.Logger
	PollInterval time.Duration // SSE poll cadence; defaults to 1s
}

func (h *EventHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// List returns events for a job after the given event id.
func (h *EventHandlers) List(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errJobIDRequired})
		return
	}

	events, err := h.Svc.Events(r.Context(), core.ListEventsParams{
		JobID:   jobID,
		AfterID: int64(parseIntQuery(r, "after_id", 0)),
		Limit:   parseIntQuery(r, "limit", 0),
	})
	if err != nil {
		writeJobError(w, err, "list_events_failed")
		return
	}
	if events == nil {
		events = []*model.JobEvent{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Stream pushes a job's events over SSE until the job reaches a
// terminal status. Each event row becomes an `event` frame; status
// snapshots are interleaved as `status` frames so a client can render
// progress without polling separately. Supports resumption via the
// after_id query param or the Last-Event-ID header convention.
func (h *EventHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errJobIDRequired})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, ErrorParams{
			Code: http.StatusInternalServerError, ErrCode: "streaming_unsupported",
			Err: errors.New("response writer does not support streaming"),
		})
		return
	}

	// Existence check before committing to the stream content type.
	if _, err := h.Svc.GetStatus(r.Context(), jobID); err != nil {
		writeJobError(w, err, "stream_failed")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	afterID := int64(parseIntQuery(r, "after_id", 0))
	if lastID := r.Header.Get("Last-Event-ID"); lastID != "" {
		var parsed int64
		if _, err := fmt.Sscanf(lastID, "%d", &parsed); err == nil && parsed > afterID {
			afterID = parsed
		}
	}

	interval := h.PollInterval
	if interval <= 0 {
		interval = defaultStreamPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		afterID, ok = h.pushPending(w, r, jobID, afterID)
		if !ok {
			return
		}

		status, err := h.Svc.GetStatus(r.Context(), jobID)
		if err != nil {
			h.logger().WarnContext(r.Context(), "status read failed during stream",
				"job_id", jobID, "error", err)
			return
		}
		if !writeSSE(w, "status", 0, status) {
			return
		}
		flusher.Flush()

		if status.Status.Terminal() {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// pushPending writes all events after afterID and returns the new
// cursor. ok is false when the client went away or a write failed.
func (h *EventHandlers) pushPending(
	w http.ResponseWriter,
	r *http.Request,
	jobID string,
	afterID int64,
) (int64, bool) {
	for {
		events, err := h.Svc.Events(r.Context(), core.ListEventsParams{
			JobID:   jobID,
			AfterID: afterID,
			Limit:   streamBatchLimit,
		})
		if err != nil {
			if !errors.Is(err, data.ErrJobNotFound) {
				h.logger().WarnContext(r.Context(), "event read failed during stream",
					"job_id", jobID, "error", err)
			}
			return afterID, false
		}
		for _, ev := range events {
			if !writeSSE(w, "event", ev.ID, ev) {
				return afterID, false
			}
			afterID = ev.ID
		}
		if len(events) < streamBatchLimit {
			return afterID, true
		}
	}
}

// writeSSE writes one SSE frame. A zero id omits the id field.
func writeSSE(w http.ResponseWriter, event string, id int64, v any) bool {
	payload, err := json.Marshal(v)
	if err != nil {
		return false
	}
	if id > 0 {
		if _, err := fmt.Fprintf(w, "id: %d\n", id); err != nil {
			return false
		}
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return false
	}
	return true
}
