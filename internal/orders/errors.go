package orders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/menuflow/dashboard-gateway/internal/backend"
	"github.com/menuflow/dashboard-gateway/pkg/apperr"
)

// Human-readable messages surfaced to the dashboard. The orchestrator never
// exposes error kinds to the UI beyond these strings.
const (
	msgConnection     = "Unable to reach the server. Please check your connection and try again."
	msgSessionExpired = "Your session has expired. Please sign in again."
	msgNotPermitted   = "You are not permitted to perform this action."
	msgNotFound       = "The requested resource was not found."
	msgUnknown        = "Something went wrong"
)

// Domain-conflict substrings the backend embeds in its error messages. There
// is no structured code for these, so the wording is matched as-is; keep in
// sync with the backend team.
const (
	fragInvalidTransition = "Invalid status transition"
	fragCannotConfirm     = "cannot be confirmed"
)

// messageFor flattens any failure into the single error string the dashboard
// shows. Safe on nil.
func messageFor(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiMessage(apiErr)
	}

	switch {
	case errors.Is(err, apperr.ErrUnreachable),
		errors.Is(err, apperr.ErrTimeout),
		errors.Is(err, apperr.ErrUnavailable):
		return msgConnection
	}

	return fmt.Sprintf("%s: %v", msgUnknown, err)
}

func apiMessage(e *backend.APIError) string {
	switch e.Status {
	case 401:
		return msgSessionExpired
	case 403:
		return msgNotPermitted
	case 404:
		return msgNotFound
	}

	// Domain conflicts arrive as 400/409 with a message body.
	if strings.Contains(e.Message, fragInvalidTransition) {
		if e.CurrentStatus != "" {
			return fmt.Sprintf("%s (current status: %s)", fragInvalidTransition, e.CurrentStatus)
		}
		return fragInvalidTransition
	}
	if strings.Contains(e.Message, fragCannotConfirm) {
		if e.CurrentStatus != "" {
			return fmt.Sprintf("This order cannot be confirmed (current status: %s).", e.CurrentStatus)
		}
		return "This order cannot be confirmed in its current state."
	}

	if fields := e.FlattenFieldErrors(); fields != "" {
		return fields
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", msgUnknown, e)
}
