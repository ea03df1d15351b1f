package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/services/settings"
)

// SettingsHandler serves the account settings key/value surface
type SettingsHandler struct {
	service interfaces.SettingsService
	logger  arbor.ILogger
}

func NewSettingsHandler(service interfaces.SettingsService, logger arbor.ILogger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger,
	}
}

// CollectionHandler handles GET /api/settings (all) and PUT /api/settings (batch update)
func (h *SettingsHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.allSettings(w, r)
	case "PUT":
		h.updateSettings(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) allSettings(w http.ResponseWriter, r *http.Request) {
	values, err := h.service.All(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load settings")
		WriteError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	WriteJSON(w, http.StatusOK, values)
}

func (h *SettingsHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(values) == 0 {
		WriteError(w, http.StatusBadRequest, "No settings provided")
		return
	}

	updated, err := h.service.Update(r.Context(), values)
	if err != nil {
		if errors.Is(err, settings.ErrInvalidKey) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Failed to update settings")
		WriteError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// ItemHandler routes GET/DELETE /api/settings/{key}
func (h *SettingsHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	key := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/settings/"), "/")
	if key == "" || strings.Contains(key, "/") {
		WriteError(w, http.StatusBadRequest, "Setting key is required")
		return
	}

	switch r.Method {
	case "GET":
		h.getSetting(w, r, key)
	case "DELETE":
		h.deleteSetting(w, r, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) getSetting(w http.ResponseWriter, r *http.Request, key string) {
	value, err := h.service.Get(r.Context(), key)
	if err != nil {
		h.writeSettingsError(w, err, "Failed to load setting")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"key":   key,
		"value": value,
	})
}

func (h *SettingsHandler) deleteSetting(w http.ResponseWriter, r *http.Request, key string) {
	if err := h.service.Delete(r.Context(), key); err != nil {
		h.writeSettingsError(w, err, "Failed to delete setting")
		return
	}
	WriteSuccess(w, "Setting deleted")
}

func (h *SettingsHandler) writeSettingsError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Setting not found")
	case errors.Is(err, settings.ErrInvalidKey):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg(message)
		WriteError(w, http.StatusInternalServerError, message)
	}
}
