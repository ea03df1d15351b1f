package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/services/assistant"
)

// AssistantHandler serves the LLM chat surface
type AssistantHandler struct {
	service interfaces.AssistantService
	logger  arbor.ILogger
}

func NewAssistantHandler(service interfaces.AssistantService, logger arbor.ILogger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		logger:  logger,
	}
}

type chatRequest struct {
	Message string               `json:"message"`
	History []interfaces.Message `json:"history"`
}

type chatResponse struct {
	Response string `json:"response"`
	Provider string `json:"provider"`
}

// ChatHandler handles POST /api/assistant/chat
func (h *AssistantHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.service.Chat(r.Context(), req.Message, req.History)
	if err != nil {
		if errors.Is(err, assistant.ErrDisabled) {
			WriteError(w, http.StatusServiceUnavailable, "Assistant is not configured")
			return
		}
		var perr *assistant.ProviderError
		if errors.As(err, &perr) {
			h.logger.Warn().Err(err).Str("provider", perr.Provider).Msg("Assistant completion failed")
			WriteError(w, http.StatusBadGateway, "Assistant provider error")
			return
		}
		h.logger.Error().Err(err).Msg("Assistant chat failed")
		WriteError(w, http.StatusInternalServerError, "Assistant chat failed")
		return
	}

	WriteJSON(w, http.StatusOK, chatResponse{
		Response: reply,
		Provider: h.service.Provider(),
	})
}
