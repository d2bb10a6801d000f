package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
)

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP status codes: validation failures
// are 422, duplicate categories 409, anything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrDuplicateCategory):
		return http.StatusConflict
	case core.IsValidation(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err through the request logger and writes the JSON error.
// Internal errors are not echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	logger := log.FromContext(r.Context())

	body := errorResponse{Error: err.Error()}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}

	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			log.NewFields().WithOperation(op).WithError(err, log.ErrorTypeStorage).ToSlice()...)
		body = errorResponse{Error: "internal error"}
	} else {
		logger.WarnContext(r.Context(), "Request rejected",
			log.NewFields().WithOperation(op).WithError(err, log.ErrorTypeValidation).ToSlice()...)
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
