package detection

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrServiceUnavailable is returned when the detector cannot be reached,
	// throttles the request or fails server-side.
	ErrServiceUnavailable = errors.New("detection service unavailable")

	// ErrAuth is returned when the detector rejects the prediction key.
	ErrAuth = errors.New("detection service rejected credentials")
)

// ServiceError is a non-2xx response from the prediction API.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("detection service returned status %d", e.StatusCode)
	}
	if e.Code == "" {
		return fmt.Sprintf("detection service returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("detection service returned status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap classifies the response so callers can use errors.Is with
// ErrAuth and ErrServiceUnavailable.
func (e *ServiceError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrAuth
	case e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500:
		return ErrServiceUnavailable
	}
	return nil
}

// newServiceError builds a ServiceError from a response body of the form
// {"code": "...", "message": "..."}. Unparseable bodies are kept as the message.
func newServiceError(status int, body []byte) *ServiceError {
	se := &ServiceError{StatusCode: status}
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && (payload.Code != "" || payload.Message != "") {
		se.Code = payload.Code
		se.Message = payload.Message
	} else if len(body) > 0 {
		se.Message = string(body)
	}
	return se
}
