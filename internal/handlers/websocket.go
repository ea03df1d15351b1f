package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is the envelope every WebSocket frame carries
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// LogEntry is one parsed log line served to the dashboard log panel
type LogEntry struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

const recentLogCapacity = 200

// WebSocketHandler pushes queue snapshots, alert triggers, layout changes
// and log lines to connected dashboard clients.
type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]bool
	clientMutex      map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	eventService     interfaces.EventService
	allowedEvents    map[string]bool // Whitelist of events to broadcast (empty = allow all)
	throttlers       map[string]*eventThrottler
	serverInstanceID string // Unique ID generated on startup - clients use to detect server restart

	logMu      sync.Mutex
	recentLogs []LogEntry
	logCounter int
}

// eventThrottler drops events arriving faster than the configured interval
type eventThrottler struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func (t *eventThrottler) allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}

func NewWebSocketHandler(eventService interfaces.EventService, logger arbor.ILogger, config *common.WebSocketConfig) *WebSocketHandler {
	h := &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		eventService:     eventService,
		allowedEvents:    make(map[string]bool),
		throttlers:       make(map[string]*eventThrottler),
		serverInstanceID: uuid.New().String(),
		recentLogs:       make([]LogEntry, 0, recentLogCapacity),
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket handler initialized")

	if config != nil && len(config.AllowedEvents) > 0 {
		for _, eventType := range config.AllowedEvents {
			h.allowedEvents[eventType] = true
		}
		logger.Debug().
			Int("allowed_events", len(h.allowedEvents)).
			Msg("Initialized event whitelist")
	}

	// Throttlers exist only for explicitly configured event types;
	// everything else broadcasts unthrottled
	if config != nil {
		for eventType, intervalStr := range config.ThrottleIntervals {
			duration, err := time.ParseDuration(intervalStr)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("event_type", eventType).
					Str("interval", intervalStr).
					Msg("Failed to parse throttle interval - throttler disabled")
				continue
			}
			h.throttlers[eventType] = &eventThrottler{interval: duration}
			logger.Debug().
				Str("event_type", eventType).
				Str("interval", intervalStr).
				Msg("Throttler initialized")
		}
	}

	if eventService != nil {
		h.subscribeToEvents()
	}

	return h
}

// subscribeToEvents wires the event bus onto the broadcast path
func (h *WebSocketHandler) subscribeToEvents() {
	forward := func(ctx context.Context, event interfaces.Event) error {
		h.Broadcast(string(event.Type), event.Payload)
		return nil
	}

	for _, eventType := range []interfaces.EventType{
		interfaces.EventQueueStats,
		interfaces.EventQueueJob,
		interfaces.EventAlertTriggered,
		interfaces.EventLayoutChanged,
	} {
		if err := h.eventService.Subscribe(eventType, forward); err != nil {
			h.logger.Error().Err(err).Str("event_type", string(eventType)).Msg("Failed to subscribe to event")
		}
	}
}

// HandleWebSocket handles WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Msgf("WebSocket client connected (total: %d)", clientCount)

	h.sendToClient(conn, WSMessage{
		Type: "connected",
		Payload: map[string]interface{}{
			"server_instance_id": h.serverInstanceID,
		},
	})

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.clientMutex, conn)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", remaining)
	}()

	// Read messages from client (keep connection alive)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// Broadcast sends a typed message to every connected client, honoring the
// event whitelist and per-type throttle
func (h *WebSocketHandler) Broadcast(messageType string, payload interface{}) {
	if len(h.allowedEvents) > 0 && !h.allowedEvents[messageType] {
		return
	}
	if throttler, ok := h.throttlers[messageType]; ok && !throttler.allow() {
		return
	}

	msg := WSMessage{
		Type:    messageType,
		Payload: payload,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", messageType).Msg("Failed to marshal WebSocket message")
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		mutex := mutexes[i]
		mutex.Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to send message to client")
		}
	}
}

func (h *WebSocketHandler) sendToClient(conn *websocket.Conn, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal WebSocket message")
		return
	}

	h.mu.RLock()
	mutex := h.clientMutex[conn]
	h.mu.RUnlock()
	if mutex == nil {
		return
	}
	mutex.Lock()
	conn.WriteMessage(websocket.TextMessage, data)
	mutex.Unlock()
}

// ClientCount returns the number of connected clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastLog streams one log line to clients and records it in the
// recent-log ring. Called by the log writer, never blocks on delivery.
func (h *WebSocketHandler) BroadcastLog(timestamp, level, message string) {
	entry := h.appendRecentLog(timestamp, level, message)
	h.Broadcast("log", entry)
}

func (h *WebSocketHandler) appendRecentLog(timestamp, level, message string) LogEntry {
	h.logMu.Lock()
	defer h.logMu.Unlock()

	entry := LogEntry{
		Index:     h.logCounter,
		Timestamp: timestamp,
		Level:     level,
		Message:   message,
	}
	h.logCounter++

	if len(h.recentLogs) >= recentLogCapacity {
		copy(h.recentLogs, h.recentLogs[1:])
		h.recentLogs[len(h.recentLogs)-1] = entry
	} else {
		h.recentLogs = append(h.recentLogs, entry)
	}
	return entry
}

// GetRecentLogsHandler handles GET /api/logs - returns buffered log lines
// oldest first so the dashboard can backfill its log panel on connect
func (h *WebSocketHandler) GetRecentLogsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	h.logMu.Lock()
	logs := make([]LogEntry, len(h.recentLogs))
	copy(logs, h.recentLogs)
	h.logMu.Unlock()

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

// Close disconnects every client
func (h *WebSocketHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]bool)
	h.clientMutex = make(map[*websocket.Conn]*sync.Mutex)
}
