package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/mark-chris/checklist/internal/i18n"
)

var (
	// ErrNotAuthenticated is returned when the backend rejects the request and
	// no refresh token is available to recover
	ErrNotAuthenticated = errors.New("not authenticated: please run 'checklist login' first")

	// ErrSessionExpired is returned when the refresh token was rejected; both
	// credentials have been cleared
	ErrSessionExpired = errors.New("session expired: please run 'checklist login' again")

	// ErrNetwork matches every transport-level failure
	ErrNetwork = errors.New("network error")
)

// NetworkError wraps a transport failure for one request
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("failed to connect to server (%s): %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// MessageKey implements i18n.Localizable
func (e *NetworkError) MessageKey() (string, []any) {
	return i18n.MsgNetworkError, nil
}

type sessionExpiredError struct {
	cause error
}

func (e *sessionExpiredError) Error() string {
	return fmt.Sprintf("%v (refresh failed: %v)", ErrSessionExpired, e.cause)
}

func (e *sessionExpiredError) Unwrap() []error {
	return []error{ErrSessionExpired, e.cause}
}

func (e *sessionExpiredError) MessageKey() (string, []any) {
	return i18n.MsgSessionExpired, nil
}

// Error is a non-2xx response from the backend. Fields holds the validation
// map (field name to messages); Detail holds a top-level "detail" or "error".
type Error struct {
	StatusCode int
	Detail     string
	Fields     map[string][]string

	// Public marks a response from an endpoint that takes no credentials.
	// A 401 there rejects the submitted input, not the session.
	Public bool
}

func (e *Error) Error() string {
	msg := e.Message()
	if msg == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, strings.ReplaceAll(msg, "\n", "; "))
}

// Is makes a 401 from a protected endpoint match ErrNotAuthenticated
func (e *Error) Is(target error) bool {
	return target == ErrNotAuthenticated && e.StatusCode == http.StatusUnauthorized && !e.Public
}

// Message joins the error into one display block: the detail, then
// non-field errors, then one "field: m1, m2" line per field in name order.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}

	var lines []string
	if general := e.Fields["non_field_errors"]; len(general) > 0 {
		lines = append(lines, strings.Join(general, ", "))
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		if k != "non_field_errors" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return strings.Join(lines, "\n")
}

// UserMessage implements i18n.UserFacing
func (e *Error) UserMessage() string {
	return e.Message()
}

// FieldError returns the first message for field, if any
func (e *Error) FieldError(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// parseError tolerates empty and non-JSON bodies
func parseError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status, Fields: map[string][]string{}}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return apiErr
	}

	for _, key := range []string{"detail", "error"} {
		if msgs := flattenMessages(raw[key]); len(msgs) > 0 && apiErr.Detail == "" {
			apiErr.Detail = strings.Join(msgs, " ")
		}
		delete(raw, key)
	}

	for key, value := range raw {
		if msgs := flattenMessages(value); len(msgs) > 0 {
			apiErr.Fields[key] = msgs
		}
	}
	return apiErr
}

func flattenMessages(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			out = append(out, flattenMessages(item)...)
		}
		return out
	case map[string]any:
		data, _ := json.Marshal(v)
		return []string{string(data)}
	default:
		return []string{fmt.Sprint(v)}
	}
}
