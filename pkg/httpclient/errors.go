package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/Sahithee-Vadali/Roxiler-Systems-client/pkg/errors"
)

// maxErrorBody caps how much of an error body is read.
const maxErrorBody = 1 << 20

// errorBody covers the error shapes a server may send back:
//
//	{"error": "Invalid credentials"}
//	{"message": "Invalid credentials"}
//	{"error": {"code": "UNAUTHORIZED", "message": "Invalid credentials"}}
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type nestedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and turns it
// into an AppError whose Message is the server's text, unmodified. Message
// stays empty when the body carries no recognizable message; the raw body is
// then kept in the wrapped error for logs only. The body is fully consumed
// and closed.
func ParseResponseError(resp *http.Response) *apperrors.AppError {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		appErr := apperrors.FromStatus(resp.StatusCode, "")
		appErr.Err = withDetail(appErr.Err, fmt.Sprintf("read body: %v", err))
		return appErr
	}

	code, msg := extractMessage(raw)
	appErr := apperrors.FromStatus(resp.StatusCode, msg)
	if code != "" {
		appErr.Code = code
	}
	if body := strings.TrimSpace(string(raw)); msg == "" && body != "" {
		appErr.Err = withDetail(appErr.Err, fmt.Sprintf("body %q", truncateBody(body)))
	}
	return appErr
}

// withDetail attaches detail to err, keeping err matchable with errors.Is.
func withDetail(err error, detail string) error {
	if err == nil {
		return errors.New(detail)
	}
	return fmt.Errorf("%w: %s", err, detail)
}

func truncateBody(body string) string {
	const max = 256
	if len(body) <= max {
		return body
	}
	return body[:max] + "..."
}

func extractMessage(raw []byte) (code, msg string) {
	var body errorBody
	if json.Unmarshal(raw, &body) != nil {
		return "", ""
	}

	if len(body.Error) > 0 {
		var s string
		if json.Unmarshal(body.Error, &s) == nil && s != "" {
			return "", s
		}
		var nested nestedError
		if json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
			return nested.Code, nested.Message
		}
	}
	return "", body.Message
}

// IsSuccess returns true for 2xx status codes.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
