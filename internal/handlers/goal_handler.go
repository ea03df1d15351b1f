package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/common"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
)

// GoalHandler serves the savings goal surface
type GoalHandler struct {
	service interfaces.GoalService
	logger  arbor.ILogger
}

func NewGoalHandler(service interfaces.GoalService, logger arbor.ILogger) *GoalHandler {
	return &GoalHandler{
		service: service,
		logger:  logger,
	}
}

type goalRequest struct {
	Name      string     `json:"name"`
	TargetUSD float64    `json:"target_usd"`
	Deadline  *time.Time `json:"deadline"`
}

// ListHandler handles GET /api/goals (list) and POST /api/goals (create)
func (h *GoalHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.listGoals(w, r)
	case "POST":
		h.createGoal(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *GoalHandler) listGoals(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListGoals(r.Context(), RequestUserID(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list goals")
		WriteError(w, http.StatusInternalServerError, "Failed to list goals")
		return
	}
	if list == nil {
		list = []*models.Goal{}
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *GoalHandler) createGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	goal := &models.Goal{
		ID:        common.NewGoalID(),
		UserID:    RequestUserID(r),
		Name:      req.Name,
		TargetUSD: req.TargetUSD,
		Deadline:  req.Deadline,
	}
	if err := goal.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateGoal(r.Context(), goal)
	if err != nil {
		h.logger.Error().Err(err).Str("name", req.Name).Msg("Failed to create goal")
		WriteError(w, http.StatusInternalServerError, "Failed to create goal")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// ItemHandler routes GET/PUT/DELETE /api/goals/{id} and GET /api/goals/{id}/progress
func (h *GoalHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/goals/"), "/")
	if rest == "" {
		WriteError(w, http.StatusBadRequest, "Goal id is required")
		return
	}
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && r.Method == "GET":
		h.getGoal(w, r, parts[0])
	case len(parts) == 1 && r.Method == "PUT":
		h.updateGoal(w, r, parts[0])
	case len(parts) == 1 && r.Method == "DELETE":
		h.deleteGoal(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "progress" && r.Method == "GET":
		h.goalProgress(w, r, parts[0])
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *GoalHandler) getGoal(w http.ResponseWriter, r *http.Request, id string) {
	goal, err := h.service.GetGoal(r.Context(), id)
	if err != nil {
		h.writeGoalError(w, err, "Failed to load goal")
		return
	}
	WriteJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) updateGoal(w http.ResponseWriter, r *http.Request, id string) {
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	goal, err := h.service.GetGoal(r.Context(), id)
	if err != nil {
		h.writeGoalError(w, err, "Failed to load goal")
		return
	}

	if req.Name != "" {
		goal.Name = req.Name
	}
	if req.TargetUSD != 0 {
		goal.TargetUSD = req.TargetUSD
	}
	if req.Deadline != nil {
		goal.Deadline = req.Deadline
	}
	if err := goal.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.UpdateGoal(r.Context(), goal)
	if err != nil {
		h.writeGoalError(w, err, "Failed to update goal")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

func (h *GoalHandler) deleteGoal(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteGoal(r.Context(), id); err != nil {
		h.writeGoalError(w, err, "Failed to delete goal")
		return
	}
	WriteSuccess(w, "Goal deleted")
}

func (h *GoalHandler) goalProgress(w http.ResponseWriter, r *http.Request, id string) {
	progress, err := h.service.Progress(r.Context(), id)
	if err != nil {
		h.writeGoalError(w, err, "Failed to compute goal progress")
		return
	}
	WriteJSON(w, http.StatusOK, progress)
}

func (h *GoalHandler) writeGoalError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, interfaces.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Goal not found")
		return
	}
	h.logger.Error().Err(err).Msg(message)
	WriteError(w, http.StatusInternalServerError, message)
}
