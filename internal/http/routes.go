package httpx

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/workspace-secretary/secretary-go/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Jobs   *service.JobService
	Logger *slog.Logger // Optional
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	jobHandlers := &JobHandlers{Svc: services.Jobs}
	eventHandlers := &EventHandlers{Svc: services.Jobs, Logger: services.Logger}

	registerJobRoutes(mux, jobHandlers)
	registerEventRoutes(mux, eventHandlers)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return RequestLogging(services.Logger)(mux)
}

func registerJobRoutes(mux *http.ServeMux, h *JobHandlers) {
	mux.HandleFunc("POST /api/jobs/sync", h.CreateSync)
	mux.HandleFunc("POST /api/jobs/triage", h.CreateTriage)
	mux.HandleFunc("POST /api/jobs/cleanup", h.CreateCleanup)
	mux.HandleFunc("POST /api/jobs/triage-apply", h.CreateTriageApply)
	mux.HandleFunc("GET /api/jobs/{id}", h.Get)
	mux.HandleFunc("GET /api/jobs/{id}/status", h.GetStatus)
	mux.HandleFunc("POST /api/jobs/{id}/cancel", h.Cancel)
	mux.HandleFunc("GET /api/jobs/{id}/candidates", h.Candidates)
	mux.HandleFunc("POST /api/jobs/{id}/approve", h.Approve)
	mux.HandleFunc("GET /api/jobs/kind/{kind}/stats", h.Stats)
	mux.HandleFunc("GET /api/mutations", h.ItemHistory)
}

func registerEventRoutes(mux *http.ServeMux, h *EventHandlers) {
	mux.HandleFunc("GET /api/jobs/{id}/events", h.List)
	mux.HandleFunc("GET /api/jobs/{id}/events/stream", h.Stream)
}

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}
