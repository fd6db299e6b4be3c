package web

// errors.go provides unified error response handling for the web layer.
//
// Handlers log the technical error server-side with the request ID and
// return a JSON body with a stable machine-readable code, so clients can
// branch on the failure kind without parsing messages.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/clientdesk/clientdesk/internal/logging"
	"github.com/clientdesk/clientdesk/internal/store"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError logs err and writes a JSON error response with the given
// status. The code is derived from the error kind.
func respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"request_id", middleware.GetReqID(r.Context()),
	)

	writeJSONStatus(w, status, ErrorResponse{
		Error: err.Error(),
		Code:  errorCode(status, err),
	})
}

// errorCode maps an error and status to a stable code string.
func errorCode(status int, err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrDuplicate):
		return "duplicate_key"
	}
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "duplicate_key"
	case http.StatusRequestEntityTooLarge:
		return "file_too_large"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	default:
		return "internal_error"
	}
}

// writeJSON writes v as a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v interface{}) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus writes v as a JSON response with the given status.
func writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent, nothing to do but record it.
		slog.Error("json encode error", "error", err.Error())
	}
}
