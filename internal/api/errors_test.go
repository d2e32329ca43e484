package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/mark-chris/checklist/internal/i18n"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantDetail  string
		wantMessage string
		wantFields  int
	}{
		{
			name:        "detail",
			status:      http.StatusForbidden,
			body:        `{"detail": "You do not have permission to perform this action."}`,
			wantDetail:  "You do not have permission to perform this action.",
			wantMessage: "You do not have permission to perform this action.",
		},
		{
			name:        "error key",
			status:      http.StatusBadRequest,
			body:        `{"error": "Invalid or expired invitation"}`,
			wantDetail:  "Invalid or expired invitation",
			wantMessage: "Invalid or expired invitation",
		},
		{
			name:        "detail wins over error",
			status:      http.StatusBadRequest,
			body:        `{"error": "second", "detail": "first"}`,
			wantDetail:  "first",
			wantMessage: "first",
		},
		{
			name:        "field map sorted with non-field errors first",
			status:      http.StatusBadRequest,
			body:        `{"username": ["taken"], "email": ["invalid", "blank"], "non_field_errors": ["mismatch"]}`,
			wantMessage: "mismatch\nemail: invalid, blank\nusername: taken",
			wantFields:  3,
		},
		{
			name:        "plain string field",
			status:      http.StatusBadRequest,
			body:        `{"name": "This field may not be blank."}`,
			wantMessage: "name: This field may not be blank.",
			wantFields:  1,
		},
		{
			name:   "not json",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
		},
		{
			name:   "empty body",
			status: http.StatusInternalServerError,
			body:   ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := parseError(tt.status, []byte(tt.body))

			if apiErr.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("expected detail %q, got %q", tt.wantDetail, apiErr.Detail)
			}
			if got := apiErr.Message(); got != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, got)
			}
			if len(apiErr.Fields) != tt.wantFields {
				t.Errorf("expected %d fields, got %d", tt.wantFields, len(apiErr.Fields))
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := &Error{StatusCode: 400, Fields: map[string][]string{"a": {"x"}, "b": {"y"}}}
	if got := err.Error(); got != "server returned status 400: a: x; b: y" {
		t.Errorf("unexpected error text %q", got)
	}

	bare := &Error{StatusCode: 500}
	if got := bare.Error(); got != "server returned status 500" {
		t.Errorf("unexpected error text %q", got)
	}
}

func TestError_Is(t *testing.T) {
	unauthorized := fmt.Errorf("wrapped: %w", &Error{StatusCode: http.StatusUnauthorized})
	if !errors.Is(unauthorized, ErrNotAuthenticated) {
		t.Error("expected 401 to match ErrNotAuthenticated")
	}

	forbidden := &Error{StatusCode: http.StatusForbidden}
	if errors.Is(forbidden, ErrNotAuthenticated) {
		t.Error("expected 403 not to match ErrNotAuthenticated")
	}

	public := &Error{StatusCode: http.StatusUnauthorized, Public: true}
	if errors.Is(public, ErrNotAuthenticated) {
		t.Error("expected a public 401 not to match ErrNotAuthenticated")
	}
}

func TestError_FieldError(t *testing.T) {
	err := parseError(400, []byte(`{"hex_color": ["Ensure this field has exactly 6 characters."]}`))
	if got := err.FieldError("hex_color"); got != "Ensure this field has exactly 6 characters." {
		t.Errorf("unexpected field error %q", got)
	}
	if got := err.FieldError("email"); got != "" {
		t.Errorf("expected no email error, got %q", got)
	}
}

func TestDescribe(t *testing.T) {
	p := i18n.Printer("de")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "network errors are generic",
			err:  fmt.Errorf("failed: %w", &NetworkError{Op: "GET /", Err: errors.New("connection refused")}),
			want: "Netzwerkfehler. Bitte versuchen Sie es erneut.",
		},
		{
			name: "session expiry",
			err:  &sessionExpiredError{cause: errors.New("401")},
			want: "Ihre Sitzung ist abgelaufen. Bitte melden Sie sich erneut an.",
		},
		{
			name: "backend messages verbatim",
			err:  fmt.Errorf("login failed: %w", &Error{StatusCode: 400, Fields: map[string][]string{"non_field_errors": {"Unable to log in with provided credentials."}}}),
			want: "Unable to log in with provided credentials.",
		},
		{
			name: "empty backend error",
			err:  &Error{StatusCode: 500},
			want: "Ein Fehler ist aufgetreten.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := i18n.Describe(p, tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
