package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tradedeck/internal/interfaces"
	"github.com/ternarybob/tradedeck/internal/models"
	"github.com/ternarybob/tradedeck/internal/services/layouts"
)

// LayoutHandler serves the dashboard layout surface
type LayoutHandler struct {
	service interfaces.LayoutService
	logger  arbor.ILogger
}

func NewLayoutHandler(service interfaces.LayoutService, logger arbor.ILogger) *LayoutHandler {
	return &LayoutHandler{
		service: service,
		logger:  logger,
	}
}

type saveLayoutRequest struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Widgets     []models.WidgetConfig `json:"widgets"`
	MakeDefault bool                  `json:"make_default"`
	FarmID      *string               `json:"farm_id"`
}

type updateLayoutRequest struct {
	Name        *string                `json:"name"`
	Widgets     *[]models.WidgetConfig `json:"widgets"`
	MakeDefault *bool                  `json:"make_default"`
}

// ListHandler handles GET /api/layouts (list) and POST /api/layouts (save)
func (h *LayoutHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.listLayouts(w, r)
	case "POST":
		h.saveLayout(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *LayoutHandler) listLayouts(w http.ResponseWriter, r *http.Request) {
	layoutList, err := h.service.LoadLayouts(r.Context(), RequestUserID(r), RequestFarmID(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list layouts")
		WriteError(w, http.StatusInternalServerError, "Failed to list layouts")
		return
	}
	if layoutList == nil {
		layoutList = []*models.DashboardLayout{}
	}
	WriteJSON(w, http.StatusOK, layoutList)
}

// ActiveHandler handles GET /api/layouts/active
func (h *LayoutHandler) ActiveHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	layout, err := h.service.ActiveLayout(r.Context(), RequestUserID(r), RequestFarmID(r))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "No layout in scope")
			return
		}
		h.logger.Error().Err(err).Msg("Failed to load active layout")
		WriteError(w, http.StatusInternalServerError, "Failed to load active layout")
		return
	}
	WriteJSON(w, http.StatusOK, layout)
}

func (h *LayoutHandler) saveLayout(w http.ResponseWriter, r *http.Request) {
	var req saveLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	layout := &models.DashboardLayout{
		ID:      req.ID,
		Name:    req.Name,
		Widgets: req.Widgets,
		FarmID:  req.FarmID,
		UserID:  RequestUserID(r),
	}
	if layout.FarmID == nil {
		layout.FarmID = RequestFarmID(r)
	}
	if err := layout.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.service.SaveLayout(r.Context(), layout, req.MakeDefault)
	if err != nil {
		h.logger.Error().Err(err).Str("layout", req.Name).Msg("Failed to save layout")
		WriteError(w, http.StatusInternalServerError, "Failed to save layout")
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

// ItemHandler routes layout item and widget sub-paths:
//
//	GET    /api/layouts/{id}
//	PUT    /api/layouts/{id}
//	DELETE /api/layouts/{id}
//	POST   /api/layouts/{id}/widgets
//	DELETE /api/layouts/{id}/widgets/{widgetID}
//	POST   /api/layouts/{id}/widgets/{widgetID}/reorder
func (h *LayoutHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/layouts/"), "/")
	if rest == "" {
		WriteError(w, http.StatusBadRequest, "Layout id is required")
		return
	}
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && r.Method == "GET":
		h.getLayout(w, r, parts[0])
	case len(parts) == 1 && r.Method == "PUT":
		h.updateLayout(w, r, parts[0])
	case len(parts) == 1 && r.Method == "DELETE":
		h.deleteLayout(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "widgets" && r.Method == "POST":
		h.addWidget(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "widgets" && r.Method == "DELETE":
		h.removeWidget(w, r, parts[0], parts[2])
	case len(parts) == 4 && parts[1] == "widgets" && parts[3] == "reorder" && r.Method == "POST":
		h.reorderWidget(w, r, parts[0], parts[2])
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *LayoutHandler) getLayout(w http.ResponseWriter, r *http.Request, id string) {
	layout, err := h.service.GetLayout(r.Context(), id)
	if err != nil {
		h.writeLayoutError(w, err, "Failed to load layout")
		return
	}
	WriteJSON(w, http.StatusOK, layout)
}

func (h *LayoutHandler) updateLayout(w http.ResponseWriter, r *http.Request, id string) {
	var req updateLayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	layout, err := h.service.GetLayout(r.Context(), id)
	if err != nil {
		h.writeLayoutError(w, err, "Failed to load layout")
		return
	}

	if req.Name != nil {
		layout.Name = *req.Name
	}
	if req.Widgets != nil {
		layout.Widgets = *req.Widgets
	}
	if err := layout.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	makeDefault := layout.IsDefault
	if req.MakeDefault != nil {
		makeDefault = *req.MakeDefault
	}

	saved, err := h.service.SaveLayout(r.Context(), layout, makeDefault)
	if err != nil {
		h.logger.Error().Err(err).Str("layout_id", id).Msg("Failed to update layout")
		WriteError(w, http.StatusInternalServerError, "Failed to update layout")
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

func (h *LayoutHandler) deleteLayout(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteLayout(r.Context(), id); err != nil {
		h.writeLayoutError(w, err, "Failed to delete layout")
		return
	}
	WriteSuccess(w, "Layout deleted")
}

func (h *LayoutHandler) addWidget(w http.ResponseWriter, r *http.Request, layoutID string) {
	var widget models.WidgetConfig
	if err := json.NewDecoder(r.Body).Decode(&widget); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if widget.Type == "" {
		WriteError(w, http.StatusBadRequest, "Widget type is required")
		return
	}

	layout, err := h.service.AddWidget(r.Context(), layoutID, widget)
	if err != nil {
		h.writeLayoutError(w, err, "Failed to add widget")
		return
	}
	WriteJSON(w, http.StatusOK, layout)
}

func (h *LayoutHandler) removeWidget(w http.ResponseWriter, r *http.Request, layoutID, widgetID string) {
	layout, err := h.service.RemoveWidget(r.Context(), layoutID, widgetID)
	if err != nil {
		h.writeLayoutError(w, err, "Failed to remove widget")
		return
	}
	WriteJSON(w, http.StatusOK, layout)
}

func (h *LayoutHandler) reorderWidget(w http.ResponseWriter, r *http.Request, layoutID, widgetID string) {
	var req struct {
		TargetID string `json:"target_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.TargetID == "" {
		WriteError(w, http.StatusBadRequest, "target_id is required")
		return
	}

	layout, err := h.service.ReorderWidget(r.Context(), layoutID, widgetID, req.TargetID)
	if err != nil {
		h.writeLayoutError(w, err, "Failed to reorder widget")
		return
	}
	WriteJSON(w, http.StatusOK, layout)
}

// CatalogHandler handles GET /api/widgets/catalog
func (h *LayoutHandler) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, h.service.Catalog())
}

func (h *LayoutHandler) writeLayoutError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Layout not found")
	case errors.Is(err, layouts.ErrUnknownWidgetType):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, layouts.ErrProtectedLayout):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error().Err(err).Msg(message)
		WriteError(w, http.StatusInternalServerError, message)
	}
}
