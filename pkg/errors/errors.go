package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for the failure classes a client can observe.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal error")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrUnreachable    = errors.New("service unreachable")
)

// AppError represents a structured error with an HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Unreachable creates an error for a request that never got a response.
// Status is zero because no HTTP exchange completed.
func Unreachable(err error) *AppError {
	return &AppError{
		Code:    "UNREACHABLE",
		Message: "no response from server",
		Err:     fmt.Errorf("%w: %w", ErrUnreachable, err),
	}
}

// FromStatus builds an AppError for a non-2xx status carrying the server's
// message. The message is kept verbatim.
func FromStatus(status int, message string) *AppError {
	switch {
	case status == http.StatusNotFound:
		return &AppError{Code: "NOT_FOUND", Message: message, Status: status, Err: ErrNotFound}
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		e := InvalidInput(message)
		e.Status = status
		return e
	case status == http.StatusConflict:
		return Conflict(message)
	case status == http.StatusUnauthorized:
		return Unauthorized(message)
	case status == http.StatusForbidden:
		return Forbidden(message)
	case status == http.StatusServiceUnavailable:
		return &AppError{Code: "SERVICE_UNAVAILABLE", Message: message, Status: status, Err: ErrServiceUnavail}
	case status >= 500:
		return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: status, Err: ErrInternal}
	default:
		return &AppError{Code: http.StatusText(status), Message: message, Status: status}
	}
}
