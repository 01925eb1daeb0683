package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON and writeError, so the API has a
// single error shape:
//
//	{"error": "validation_error", "message": "invalid email", "field": "email"}
//
// The frontend can branch on "error" regardless of the status code.

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/Achille2gre/bonvan-wind-dashboard/internal/apperror"
	"github.com/Achille2gre/bonvan-wind-dashboard/internal/lib/sl"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Input field at fault, for validation errors
}

// MessageResponse acknowledges an action that has nothing else to return.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends data with the given status code.
// render.Status must run before render.JSON, which writes the header.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// errorStatus maps an error sentinel to its HTTP status and error type.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, apperror.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, apperror.ErrStorage):
		return http.StatusServiceUnavailable, "storage_unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it. Server-side failures are logged with the request id; their cause
// never reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, errorType := errorStatus(err)

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			sl.Err(err),
		)
	}

	var appErr *apperror.AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	resp := ErrorResponse{Error: errorType, Message: appErr.Message}
	if errors.Is(err, apperror.ErrValidation) {
		resp.Field = appErr.Field
	}
	writeJSON(w, r, status, resp)
}

// decodeJSON reads a JSON body into v. A malformed body is a validation
// error.
func decodeJSON(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}
