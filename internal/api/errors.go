package api

import (
	"errors"
	"net/http"
)

// ErrNotAuthenticated is returned when no valid access token is available.
// No request is sent in that case.
var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a non-2xx answer from the DNS API.
type APIError struct {
	Status  int
	Message string
	Body    any
	Err     error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func newAPIError(status int, body []byte, decoded any) *APIError {
	msg := "API request failed: " + http.StatusText(status)
	if m, ok := decoded.(map[string]any); ok {
		if v, ok := m["error"]; ok && v != nil {
			msg = toString(v)
		}
	}
	if decoded == nil && len(body) > 0 {
		decoded = string(body)
	}
	return &APIError{Status: status, Message: msg, Body: decoded}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
