package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Service    string
	Method     string
	Path       string
	StatusCode int
	// Message is the backend's "error" or "detail" field, if any.
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s %s: %d %s", e.Service, e.Method, e.Path, e.StatusCode, msg)
}

func newAPIError(service, method, path string, status int, body []byte) *APIError {
	e := &APIError{
		Service:    service,
		Method:     method,
		Path:       path,
		StatusCode: status,
		Body:       body,
	}

	var decoded struct {
		Error  any    `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil {
		switch v := decoded.Error.(type) {
		case string:
			e.Message = v
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					e.Message = s
				}
			}
		}
		if e.Message == "" {
			e.Message = decoded.Detail
		}
	}
	return e
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool { return statusOf(err) == http.StatusNotFound }

func IsUnauthorized(err error) bool {
	s := statusOf(err)
	return s == http.StatusUnauthorized || s == http.StatusForbidden
}

// ErrorMessage returns the backend-provided message carried by err, or
// fallback when there is none.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
