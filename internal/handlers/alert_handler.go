package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
)

// AlertHandler serves the price alert surface
type AlertHandler struct {
	service interfaces.AlertService
	logger  arbor.ILogger
}

func NewAlertHandler(service interfaces.AlertService, logger arbor.ILogger) *AlertHandler {
	return &AlertHandler{
		service: service,
		logger:  logger,
	}
}

type alertRequest struct {
	WalletID  *string `json:"wallet_id"`
	Asset     string  `json:"asset"`
	Condition string  `json:"condition"`
	Threshold float64 `json:"threshold"`
	Active    *bool   `json:"active"`
}

// ListHandler handles GET /api/alerts (list) and POST /api/alerts (create)
func (h *AlertHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.listAlerts(w, r)
	case "POST":
		h.createAlert(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AlertHandler) listAlerts(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAlerts(r.Context(), RequestUserID(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list alerts")
		WriteError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}
	if list == nil {
		list = []*models.Alert{}
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *AlertHandler) createAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	alert := &models.Alert{
		ID:        common.NewAlertID(),
		UserID:    RequestUserID(r),
		WalletID:  req.WalletID,
		Asset:     strings.ToLower(req.Asset),
		Condition: req.Condition,
		Threshold: req.Threshold,
		Active:    active,
	}
	if err := alert.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateAlert(r.Context(), alert)
	if err != nil {
		h.logger.Error().Err(err).Str("asset", alert.Asset).Msg("Failed to create alert")
		WriteError(w, http.StatusInternalServerError, "Failed to create alert")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// ItemHandler routes GET/PUT/DELETE /api/alerts/{id}
func (h *AlertHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/alerts/"), "/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, http.StatusBadRequest, "Alert id is required")
		return
	}

	switch r.Method {
	case "GET":
		h.getAlert(w, r, id)
	case "PUT":
		h.updateAlert(w, r, id)
	case "DELETE":
		h.deleteAlert(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AlertHandler) getAlert(w http.ResponseWriter, r *http.Request, id string) {
	alert, err := h.service.GetAlert(r.Context(), id)
	if err != nil {
		h.writeAlertError(w, err, "Failed to load alert")
		return
	}
	WriteJSON(w, http.StatusOK, alert)
}

func (h *AlertHandler) updateAlert(w http.ResponseWriter, r *http.Request, id string) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	alert, err := h.service.GetAlert(r.Context(), id)
	if err != nil {
		h.writeAlertError(w, err, "Failed to load alert")
		return
	}

	if req.Asset != "" {
		alert.Asset = strings.ToLower(req.Asset)
	}
	if req.Condition != "" {
		alert.Condition = req.Condition
	}
	if req.Threshold != 0 {
		alert.Threshold = req.Threshold
	}
	if req.WalletID != nil {
		alert.WalletID = req.WalletID
	}
	if req.Active != nil {
		alert.Active = *req.Active
	}
	if err := alert.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateAlert(r.Context(), alert)
	if err != nil {
		h.writeAlertError(w, err, "Failed to update alert")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

func (h *AlertHandler) deleteAlert(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteAlert(r.Context(), id); err != nil {
		h.writeAlertError(w, err, "Failed to delete alert")
		return
	}
	WriteSuccess(w, "Alert deleted")
}

func (h *AlertHandler) writeAlertError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, interfaces.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Alert not found")
		return
	}
	h.logger.Error().Err(err).Msg(message)
	WriteError(w, http.StatusInternalServerError, message)
}
