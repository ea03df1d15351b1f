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
	"github.com/ternarybob/tradedeck/internal/services/credentials"
	"golang.org/x/oauth2"
)

// CredentialHandler serves the exchange credential surface. Responses are
// always redacted; the service never hands back raw secret material.
type CredentialHandler struct {
	service interfaces.CredentialService
	logger  arbor.ILogger
}

func NewCredentialHandler(service interfaces.CredentialService, logger arbor.ILogger) *CredentialHandler {
	return &CredentialHandler{
		service: service,
		logger:  logger,
	}
}

type credentialRequest struct {
	Exchange     string     `json:"exchange"`
	Label        string     `json:"label"`
	Kind         string     `json:"kind"`
	APIKey       string     `json:"api_key"`
	APISecret    string     `json:"api_secret"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	Expiry       *time.Time `json:"expiry"`
}

func (req *credentialRequest) token() *oauth2.Token {
	if req.AccessToken == "" && req.RefreshToken == "" {
		return nil
	}
	tok := &oauth2.Token{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	}
	if req.Expiry != nil {
		tok.Expiry = *req.Expiry
	}
	return tok
}

// ListHandler handles GET /api/credentials (list) and POST /api/credentials (create)
func (h *CredentialHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		h.listCredentials(w, r)
	case "POST":
		h.createCredential(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CredentialHandler) listCredentials(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCredentials(r.Context(), RequestUserID(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list credentials")
		WriteError(w, http.StatusInternalServerError, "Failed to list credentials")
		return
	}
	if list == nil {
		list = []*models.ExchangeCredential{}
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *CredentialHandler) createCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cred := &models.ExchangeCredential{
		ID:        common.NewCredentialID(),
		UserID:    RequestUserID(r),
		Exchange:  req.Exchange,
		Label:     req.Label,
		Kind:      req.Kind,
		APIKey:    req.APIKey,
		APISecret: req.APISecret,
		Token:     req.token(),
	}
	if err := cred.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateCredential(r.Context(), cred)
	if err != nil {
		h.writeCredentialError(w, err, "Failed to create credential")
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// ItemHandler routes GET/PUT/DELETE /api/credentials/{id} and
// POST /api/credentials/{id}/refresh
func (h *CredentialHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/credentials/"), "/")
	if rest == "" {
		WriteError(w, http.StatusBadRequest, "Credential id is required")
		return
	}
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && r.Method == "GET":
		h.getCredential(w, r, parts[0])
	case len(parts) == 1 && r.Method == "PUT":
		h.updateCredential(w, r, parts[0])
	case len(parts) == 1 && r.Method == "DELETE":
		h.deleteCredential(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "refresh" && r.Method == "POST":
		h.refreshCredential(w, r, parts[0])
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CredentialHandler) getCredential(w http.ResponseWriter, r *http.Request, id string) {
	cred, err := h.service.GetCredential(r.Context(), id)
	if err != nil {
		h.writeCredentialError(w, err, "Failed to load credential")
		return
	}
	WriteJSON(w, http.StatusOK, cred)
}

func (h *CredentialHandler) updateCredential(w http.ResponseWriter, r *http.Request, id string) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	// The stored record, not the redacted view, is patched inside the
	// service; only changed fields are sent through.
	cred := &models.ExchangeCredential{
		ID:        id,
		UserID:    RequestUserID(r),
		Exchange:  req.Exchange,
		Label:     req.Label,
		Kind:      req.Kind,
		APIKey:    req.APIKey,
		APISecret: req.APISecret,
		Token:     req.token(),
	}

	updated, err := h.service.UpdateCredential(r.Context(), cred)
	if err != nil {
		h.writeCredentialError(w, err, "Failed to update credential")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

func (h *CredentialHandler) deleteCredential(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeleteCredential(r.Context(), id); err != nil {
		h.writeCredentialError(w, err, "Failed to delete credential")
		return
	}
	WriteSuccess(w, "Credential deleted")
}

func (h *CredentialHandler) refreshCredential(w http.ResponseWriter, r *http.Request, id string) {
	refreshed, err := h.service.RefreshToken(r.Context(), id)
	if err != nil {
		h.writeCredentialError(w, err, "Failed to refresh token")
		return
	}
	WriteJSON(w, http.StatusOK, refreshed)
}

func (h *CredentialHandler) writeCredentialError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		WriteError(w, http.StatusNotFound, "Credential not found")
	case errors.Is(err, credentials.ErrUnknownExchange):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, credentials.ErrNotOAuth):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg(message)
		WriteError(w, http.StatusInternalServerError, message)
	}
}
