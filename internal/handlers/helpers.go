package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/finplan-portal/internal/auth"
	"github.com/bobmcallan/finplan-portal/internal/common"
	"github.com/bobmcallan/finplan-portal/internal/interfaces"
	"github.com/bobmcallan/finplan-portal/internal/models"
	"github.com/bobmcallan/finplan-portal/internal/planning"
	"github.com/bobmcallan/finplan-portal/internal/validator"
)

// SessionCookie is the name of the login session cookie.
const SessionCookie = "finplan_session"

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	w.Header().Set("Allow", method)
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
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

// WriteValidationError writes a 400 with the per-field messages.
func WriteValidationError(w http.ResponseWriter, err error) error {
	var ve *validator.ValidationError
	fields := map[string]string{}
	if errors.As(err, &ve) {
		fields = ve.Fields
	}
	return WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
		"status": "error",
		"error":  "validation failed",
		"fields": fields,
	})
}

// writeServiceError maps planning and storage errors to responses. Store
// failures become 502 so the client can show a dismissable error and let the
// user retry.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *common.Logger, err error) {
	logger = common.LoggerFromContext(r.Context(), logger)
	switch {
	case validator.IsValidationError(err):
		WriteValidationError(w, err)
	case errors.Is(err, interfaces.ErrNotFound):
		WriteError(w, http.StatusNotFound, "no record for this user")
	case errors.Is(err, planning.ErrStoreUnavailable):
		logger.Warn().Err(err).Str("path", r.URL.Path).Msg("data store request failed")
		WriteError(w, http.StatusBadGateway, "Could not reach the data store. Please try again.")
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// tokenFromRequest returns the session token from the cookie or an
// Authorization bearer header.
func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// requireUser resolves the caller, writing a 401 when not logged in.
func requireUser(w http.ResponseWriter, r *http.Request, provider auth.Provider) (*models.User, bool) {
	user, err := provider.CurrentUser(r.Context(), tokenFromRequest(r))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "not logged in")
		return nil, false
	}
	return user, true
}
