package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/tradedeck/internal/interfaces"
)

// DefaultUserID is the scope used when a request carries no user identity.
// Auth is out of scope for the dashboard; the scope plumbing is not.
const DefaultUserID = "local"

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// RequestUserID resolves the requesting user's scope: X-User-ID header,
// then user_id query parameter, then the local default.
func RequestUserID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.URL.Query().Get("user_id")); id != "" {
		return id
	}
	return DefaultUserID
}

// RequestFarmID resolves the optional farm scope from the query string.
// Absent or empty means the user's global scope.
func RequestFarmID(r *http.Request) *string {
	if id := strings.TrimSpace(r.URL.Query().Get("farm_id")); id != "" {
		return &id
	}
	return nil
}

// ParseTransactionFilter extracts transaction listing filters from the
// query string. Bad timestamps are rejected rather than ignored so a
// mistyped filter can't silently return the full ledger.
func ParseTransactionFilter(r *http.Request) (interfaces.TransactionFilter, error) {
	filter := interfaces.TransactionFilter{
		Type: strings.TrimSpace(r.URL.Query().Get("type")),
	}

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if n, err := strconv.Atoi(offsetStr); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	return filter, nil
}
