package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/ternarybob/tradedeck/internal/services/monitor"
	"github.com/ternarybob/tradedeck/internal/upstream"
)

// QueueHandler serves the queue-monitor surface the dashboard consumes.
// Reads come from the monitor's local snapshot; job listings and commands
// go through the monitor to the upstream bridge.
type QueueHandler struct {
	monitor interfaces.MonitorService
	logger  arbor.ILogger
}

func NewQueueHandler(monitorService interfaces.MonitorService, logger arbor.ILogger) *QueueHandler {
	return &QueueHandler{
		monitor: monitorService,
		logger:  logger,
	}
}

// GetStatsHandler handles GET /api/queue/stats
func (h *QueueHandler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	snap := h.monitor.Snapshot()
	stats := snap.Stats
	if stats == nil {
		stats = []models.QueueStats{}
	}
	WriteJSON(w, http.StatusOK, stats)
}

// GetHealthHandler handles GET /api/queue/health
func (h *QueueHandler) GetHealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	snap := h.monitor.Snapshot()
	health := snap.Health
	if health == nil {
		health = []models.QueueHealthStatus{}
	}
	WriteJSON(w, http.StatusOK, health)
}

// GetHistoricalStatsHandler handles GET /api/queue/historical-stats?queue=
func (h *QueueHandler) GetHistoricalStatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	points, err := h.monitor.HistoricalStats(r.Context(), r.URL.Query().Get("queue"))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load historical stats")
		WriteError(w, http.StatusInternalServerError, "Failed to load historical stats")
		return
	}
	if points == nil {
		points = []models.HistoricalPoint{}
	}
	WriteJSON(w, http.StatusOK, points)
}

// JobsHandler routes /api/queue/jobs/{queue} and its command sub-paths:
//
//	GET    /api/queue/jobs/{queue}?status=waiting
//	POST   /api/queue/jobs/{queue}/{id}/retry
//	DELETE /api/queue/jobs/{queue}/{id}
func (h *QueueHandler) JobsHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/queue/jobs/"), "/")
	if rest == "" {
		WriteError(w, http.StatusBadRequest, "Queue name is required")
		return
	}
	parts := strings.Split(rest, "/")

	switch {
	case r.Method == "GET" && len(parts) == 1:
		h.listJobs(w, r, parts[0])
	case r.Method == "POST" && len(parts) == 3 && parts[2] == "retry":
		h.retryJob(w, r, parts[0], parts[1])
	case r.Method == "DELETE" && len(parts) == 2:
		h.removeJob(w, r, parts[0], parts[1])
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *QueueHandler) listJobs(w http.ResponseWriter, r *http.Request, queue string) {
	jobs, err := h.monitor.Jobs(r.Context(), queue, r.URL.Query().Get("status"))
	if err != nil {
		h.writeQueueError(w, err, "Failed to fetch jobs")
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	WriteJSON(w, http.StatusOK, jobs)
}

func (h *QueueHandler) retryJob(w http.ResponseWriter, r *http.Request, queue, id string) {
	if err := h.monitor.RetryJob(r.Context(), queue, id); err != nil {
		h.writeQueueError(w, err, "Failed to retry job")
		return
	}
	WriteSuccess(w, fmt.Sprintf("Job %s queued for retry", id))
}

func (h *QueueHandler) removeJob(w http.ResponseWriter, r *http.Request, queue, id string) {
	if err := h.monitor.RemoveJob(r.Context(), queue, id); err != nil {
		h.writeQueueError(w, err, "Failed to remove job")
		return
	}
	WriteSuccess(w, fmt.Sprintf("Job %s removed", id))
}

// ActionHandler routes POST /api/queue/{queue}/pause|resume|clean
func (h *QueueHandler) ActionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/queue/"), "/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		WriteError(w, http.StatusNotFound, "Unknown queue endpoint")
		return
	}
	queue, action := parts[0], parts[1]

	var err error
	switch action {
	case "pause":
		err = h.monitor.PauseQueue(r.Context(), queue)
	case "resume":
		err = h.monitor.ResumeQueue(r.Context(), queue)
	case "clean":
		err = h.monitor.CleanQueue(r.Context(), queue)
	default:
		WriteError(w, http.StatusNotFound, "Unknown queue action: "+action)
		return
	}
	if err != nil {
		h.writeQueueError(w, err, "Failed to "+action+" queue")
		return
	}
	WriteSuccess(w, fmt.Sprintf("Queue %s %s requested", queue, action))
}

// writeQueueError maps monitor/upstream errors to status codes. Unknown
// queues and jobs surface the bridge's 404; rate limiting maps to 503;
// anything else from the bridge is a bad gateway.
func (h *QueueHandler) writeQueueError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, monitor.ErrInvalidStatus) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.IsNotFound() {
		WriteError(w, http.StatusNotFound, apiErr.Message)
		return
	}

	var rateErr *upstream.RateLimitError
	if errors.As(err, &rateErr) {
		WriteError(w, http.StatusServiceUnavailable, rateErr.Error())
		return
	}

	h.logger.Error().Err(err).Msg(message)
	WriteError(w, http.StatusBadGateway, message)
}
