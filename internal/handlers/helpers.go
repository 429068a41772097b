package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ternarybob/sovran/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
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

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps domain errors onto HTTP statuses: not-found
// sentinels to 404, caller validation failures to 400, disabled providers to
// 503, everything else to 500 with the message passed through. A rejected
// judgment is a provider fault, not a caller fault, so it lands on 500.
func WriteServiceError(w http.ResponseWriter, err error) error {
	var verr *models.ValidationError

	switch {
	case errors.Is(err, models.ErrCountryNotFound), errors.Is(err, models.ErrMemoryNotFound):
		return WriteError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		return WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrProviderDisabled):
		return WriteError(w, http.StatusServiceUnavailable, err.Error())
	default:
		return WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// GetLimitParam extracts a positive limit query parameter, falling back to
// def when absent or unusable.
func GetLimitParam(r *http.Request, def int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			return limit
		}
	}
	return def
}
