package ocr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTimeout is returned when the poll budget is exhausted before the
	// operation succeeds.
	ErrTimeout = errors.New("ocr operation timed out")

	// ErrFailed is returned when the service reports the operation as failed.
	ErrFailed = errors.New("ocr operation failed")

	// ErrServiceUnavailable is returned when the service cannot be reached,
	// throttles the request or fails server-side.
	ErrServiceUnavailable = errors.New("ocr service unavailable")

	// ErrAuth is returned when the service rejects the subscription key.
	ErrAuth = errors.New("ocr service rejected credentials")

	errMalformedStatus = errors.New("malformed operation status")
)

// ServiceError is a non-2xx response, or a 2xx response that violates the
// protocol, from the OCR API.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("ocr service returned status %d", e.StatusCode)
	}
	if e.Code == "" {
		return fmt.Sprintf("ocr service returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ocr service returned status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps 401/403 to ErrAuth and 429/5xx to ErrServiceUnavailable.
func (e *ServiceError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrAuth
	case e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500:
		return ErrServiceUnavailable
	}
	return nil
}

// newServiceError parses the error payload. Cognitive Services wraps it as
// {"error": {"code", "message"}}; some gateways answer with the flat form.
func newServiceError(status int, body []byte) *ServiceError {
	se := &ServiceError{StatusCode: status}

	type detail struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	var payload struct {
		Error *detail `json:"error"`
		detail
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		d := payload.detail
		if payload.Error != nil {
			d = *payload.Error
		}
		if d.Code != "" || d.Message != "" {
			se.Code, se.Message = d.Code, d.Message
			return se
		}
	}
	if len(body) > 0 {
		se.Message = string(body)
	}
	return se
}
