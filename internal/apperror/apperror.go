// Package apperror defines the error taxonomy shared by the stores, the
// services and the transports.
//
// Services return *AppError values wrapping one of the sentinels below, and
// transports map them with errors.Is: the HTTP handler maps ErrNotFound to
// 404, the CLI prints the Message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage unavailable")
	ErrRateLimited  = errors.New("rate limited")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying failure, never shown to users
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause, so
// errors.Is(err, ErrStorage) and errors.Is(err, context.Canceled) both work.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is the AuthError of the sign-in flow: the credentials or the
// session token did not match.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// StorageFailed wraps a backend failure (quota, disabled storage, lost
// connection). The message stays generic; the cause is kept for logs.
func StorageFailed(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: "could not save, storage is unavailable",
		Field:   op,
		Cause:   cause,
	}
}

func RateLimited(message string) *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: message,
	}
}
