package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/cloudopshq/cloudops-go/internal/errors"
)

// TwoFactorRequiredCode is the canonical error code the backend returns
// when a login must be re-submitted with a one-time passcode.
const TwoFactorRequiredCode = "2FA_REQUIRED"

const maxErrorBodyBytes = 64 << 10

// APIError is a non-2xx response from the backend. Business-logic failures
// are carried through untouched; callers inspect Code/Detail to decide what
// to present.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	RequestID  string
	Code       string
	Detail     string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("cloudops api: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("cloudops api: %s %s returned %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap maps well-known statuses onto sentinel errors so callers can use
// errors.Is without digging through the payload.
func (e *APIError) Unwrap() error {
	if e.Code == TwoFactorRequiredCode {
		return apperrors.ErrTwoFactorRequired
	}
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	default:
		return nil
	}
}

// TwoFactorRequired reports whether the backend is asking for a one-time
// passcode. The backend signals this with a single top-level code field.
func (e *APIError) TwoFactorRequired() bool {
	return e.Code == TwoFactorRequiredCode
}

// newAPIError drains the response body and extracts the backend's error
// fields. The body is preserved raw for callers with richer needs.
func newAPIError(resp *http.Response, method, path, requestID string) *APIError {
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		Path:       path,
		RequestID:  requestID,
		Body:       body,
	}

	var payload struct {
		Code    string `json:"code"`
		Detail  string `json:"detail"`
		Err     string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		switch {
		case payload.Detail != "":
			apiErr.Detail = payload.Detail
		case payload.Err != "":
			apiErr.Detail = payload.Err
		case payload.Message != "":
			apiErr.Detail = payload.Message
		}
	}
	return apiErr
}
