package api

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/errors"
	"github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/httpclient"
)

// Kind classifies a failed request.
type Kind string

const (
	KindAuth          Kind = "AuthError"
	KindValidation    Kind = "ValidationError"
	KindAuthorization Kind = "AuthorizationError"
	KindNotFound      Kind = "NotFoundError"
	KindServer        Kind = "ServerError"
	KindNetwork       Kind = "NetworkError"
)

// Sentinels matched by errors.Is against a *RequestError of the same kind.
var (
	ErrAuth       = errors.New("authentication failed")
	ErrValidation = errors.New("request rejected as invalid")
	ErrForbidden  = errors.New("not permitted")
	ErrNotFound   = errors.New("not found")
	ErrServer     = errors.New("server error")
	ErrNetwork    = errors.New("network error")
)

var kindSentinels = map[Kind]error{
	KindAuth:          ErrAuth,
	KindValidation:    ErrValidation,
	KindAuthorization: ErrForbidden,
	KindNotFound:      ErrNotFound,
	KindServer:        ErrServer,
	KindNetwork:       ErrNetwork,
}

// RequestError is returned for every failed API call. Message is the text to
// show the user: the server's error message verbatim when one was sent.
type RequestError struct {
	Kind    Kind
	Status  int
	Message string
	Method  string
	Path    string
	Err     error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s (%d): %s", e.Method, e.Path, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Kind, msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *RequestError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindForStatus maps a non-2xx status to an error kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindAuthorization
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		// 400, 409, 422 and any other 4xx: the server refused the input.
		return KindValidation
	}
}

// Message extracts the user-facing message from err, or returns fallback
// when err carries none.
func Message(err error, fallback string) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return fallback
}

// KindOf returns the kind of a request error, or "" for other errors.
func KindOf(err error) Kind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return ""
}

func responseError(method, route string, resp *http.Response) *RequestError {
	appErr := httpclient.ParseResponseError(resp)
	return &RequestError{
		Kind:    KindForStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: appErr.Message,
		Method:  method,
		Path:    route,
		Err:     appErr,
	}
}

// transportError classifies an error returned by the HTTP doer. A breaker
// passes 5xx responses back as AppErrors; everything else never reached a
// response.
func transportError(method, route string, err error) *RequestError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return &RequestError{
			Kind:    KindForStatus(appErr.Status),
			Status:  appErr.Status,
			Message: appErr.Message,
			Method:  method,
			Path:    route,
			Err:     appErr,
		}
	}

	msg := "Unable to reach the server"
	if errors.Is(err, httpclient.ErrCircuitOpen) {
		msg = "Server temporarily unavailable"
	}
	return &RequestError{
		Kind:    KindNetwork,
		Message: msg,
		Method:  method,
		Path:    route,
		Err:     apperrors.Unreachable(err),
	}
}

func validationError(method, route, msg string) *RequestError {
	return &RequestError{
		Kind:    KindValidation,
		Message: msg,
		Method:  method,
		Path:    route,
		Err:     apperrors.InvalidInput(msg),
	}
}
