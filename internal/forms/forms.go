// Package forms validates user input for the create and account forms and
// turns it into request bodies. Validation runs before any network call.
package forms

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark-chris/checklist/internal/colorhex"
	"github.com/mark-chris/checklist/internal/i18n"
)

// MinPasswordLength is the shortest password accepted on any form
const MinPasswordLength = 8

// ErrInvalid matches every ValidationError
var ErrInvalid = errors.New("invalid input")

// ValidationError rejects one field
type ValidationError struct {
	Field string
	Key   string
	Args  []any
}

func invalid(field, key string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Key: key, Args: args}
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + fmt.Sprintf(e.Key, e.Args...)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// MessageKey implements i18n.Localizable
func (e *ValidationError) MessageKey() (string, []any) {
	return e.Key, e.Args
}

func required(field, value, key string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, key)
	}
	return nil
}

func password(field, value string) error {
	if len(value) < MinPasswordLength {
		return invalid(field, i18n.MsgPasswordTooShort, MinPasswordLength)
	}
	return nil
}

// color requires exactly six hex digits, with or without a leading "#",
// and returns them upper-cased. Longer input is rejected, not truncated.
func color(field, value string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(trimmed) != colorhex.Length {
		return "", invalid(field, i18n.MsgHexRequired)
	}
	hex := colorhex.Normalize(trimmed)
	if len(hex) != colorhex.Length {
		return "", invalid(field, i18n.MsgHexRequired)
	}
	return hex, nil
}

const (
	dateLayout           = time.DateOnly
	localDateTimeLayout  = "2006-01-02T15:04"
	spacedDateTimeLayout = "2006-01-02 15:04"
)

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, invalid(field, i18n.MsgInvalidDate, value)
	}
	return d, nil
}

// parseDateTime accepts RFC 3339 as well as the local date-time forms
// "2006-01-02T15:04" and "2006-01-02 15:04", interpreted in loc
func parseDateTime(field, value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range []string{localDateTimeLayout, spacedDateTimeLayout} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid(field, i18n.MsgInvalidDate, value)
}
