package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// StatusHandler reports application status for the dashboard footer
type StatusHandler struct {
	storage   interfaces.StorageManager
	monitor   interfaces.MonitorService
	scheduler interfaces.SchedulerService
	assistant interfaces.AssistantService
	wsHandler *WebSocketHandler
	startedAt time.Time
	logger    arbor.ILogger
}

func NewStatusHandler(
	storage interfaces.StorageManager,
	monitor interfaces.MonitorService,
	scheduler interfaces.SchedulerService,
	assistant interfaces.AssistantService,
	wsHandler *WebSocketHandler,
	logger arbor.ILogger,
) *StatusHandler {
	return &StatusHandler{
		storage:   storage,
		monitor:   monitor,
		scheduler: scheduler,
		assistant: assistant,
		wsHandler: wsHandler,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status := map[string]interface{}{
		"version":        common.GetVersion(),
		"build":          common.GetBuild(),
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	}

	snap := h.monitor.Snapshot()
	queue := map[string]interface{}{
		"queues": len(snap.Stats),
	}
	if !snap.FetchedAt.IsZero() {
		queue["fetched_at"] = snap.FetchedAt
	}
	if lastErr := h.monitor.LastError(); lastErr != "" {
		queue["last_error"] = lastErr
	}
	status["queue"] = queue

	if stats, err := h.storage.Stats(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to collect storage stats")
	} else {
		status["storage"] = stats
	}

	status["scheduler"] = map[string]interface{}{
		"running": h.scheduler.IsRunning(),
		"jobs":    h.scheduler.GetAllJobStatuses(),
	}

	status["assistant"] = map[string]interface{}{
		"enabled":  h.assistant.Enabled(),
		"provider": h.assistant.Provider(),
	}

	if h.wsHandler != nil {
		status["websocket_clients"] = h.wsHandler.ClientCount()
	}

	WriteJSON(w, http.StatusOK, status)
}
