package backend

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// APIError is an application-level rejection from the backend: a 4xx response
// whose body we could (at least partially) parse. Transport-level failures are
// reported as apperr errors instead.
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string][]string
	// CurrentStatus is the order status hint some domain-conflict responses
	// include alongside the message.
	CurrentStatus string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend rejected request (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend rejected request (%d)", e.Status)
}

// FlattenFieldErrors joins structured validation errors into one readable
// string, fields in stable order.
func (e *APIError) FlattenFieldErrors() string {
	if len(e.FieldErrors) == 0 {
		return ""
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var parts []string
	for _, f := range fields {
		for _, msg := range e.FieldErrors[f] {
			parts = append(parts, fmt.Sprintf("%s: %s", f, msg))
		}
	}
	return strings.Join(parts, "; ")
}

// errorEnvelope is the backend's error body. The message key has drifted
// between "message" and "error" across backend versions, so both are read.
type errorEnvelope struct {
	Message       string              `json:"message"`
	Error         string              `json:"error"`
	Errors        map[string][]string `json:"errors"`
	CurrentStatus string              `json:"currentStatus"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		apiErr.Message = env.Message
		if apiErr.Message == "" {
			apiErr.Message = env.Error
		}
		apiErr.FieldErrors = env.Errors
		apiErr.CurrentStatus = env.CurrentStatus
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
