package orders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/menuflow/dashboard-gateway/internal/backend"
	"github.com/menuflow/dashboard-gateway/pkg/apperr"
)

func TestMessageFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "unreachable",
			err:  apperr.Unreachable("connection refused"),
			want: msgConnection,
		},
		{
			name: "timeout",
			err:  apperr.Timeout("deadline exceeded"),
			want: msgConnection,
		},
		{
			name: "circuit_open",
			err:  apperr.Unavailable("circuit open"),
			want: msgConnection,
		},
		{
			name: "session_expired",
			err:  &backend.APIError{Status: 401, Message: "token expired"},
			want: msgSessionExpired,
		},
		{
			name: "forbidden",
			err:  &backend.APIError{Status: 403},
			want: msgNotPermitted,
		},
		{
			name: "not_found",
			err:  &backend.APIError{Status: 404},
			want: msgNotFound,
		},
		{
			name: "invalid_transition_verbatim",
			err:  &backend.APIError{Status: 400, Message: "Invalid status transition"},
			want: "Invalid status transition",
		},
		{
			name: "invalid_transition_embedded",
			err:  &backend.APIError{Status: 400, Message: "Error: Invalid status transition from Delivered to Ready"},
			want: "Invalid status transition",
		},
		{
			name: "invalid_transition_with_status_hint",
			err:  &backend.APIError{Status: 409, Message: "Invalid status transition", CurrentStatus: "Delivered"},
			want: "Invalid status transition (current status: Delivered)",
		},
		{
			name: "cannot_confirm",
			err:  &backend.APIError{Status: 400, Message: "Order cannot be confirmed"},
			want: "This order cannot be confirmed in its current state.",
		},
		{
			name: "cannot_confirm_with_status_hint",
			err:  &backend.APIError{Status: 400, Message: "Order cannot be confirmed", CurrentStatus: "Cancelled"},
			want: "This order cannot be confirmed (current status: Cancelled).",
		},
		{
			name: "validation_fields_flattened",
			err: &backend.APIError{
				Status:  400,
				Message: "Validation failed",
				FieldErrors: map[string][]string{
					"rowVersion":   {"is required"},
					"customerName": {"too long"},
				},
			},
			want: "customerName: too long; rowVersion: is required",
		},
		{
			name: "plain_api_message",
			err:  &backend.APIError{Status: 422, Message: "table already has an open session"},
			want: "table already has an open session",
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: msgUnknown + ": boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messageFor(tt.err))
		})
	}
}
