package i18n

import (
	"errors"
	"fmt"
	"testing"
)

type keyedError struct {
	key  string
	args []any
}

func (e keyedError) Error() string               { return fmt.Sprintf(e.key, e.args...) }
func (e keyedError) MessageKey() (string, []any) { return e.key, e.args }

type backendError struct{ msg string }

func (e backendError) Error() string       { return "backend: " + e.msg }
func (e backendError) UserMessage() string { return e.msg }

func TestPrinter_Languages(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"de", "Netzwerkfehler. Bitte versuchen Sie es erneut."},
		{"de-AT", "Netzwerkfehler. Bitte versuchen Sie es erneut."},
		{"en", "Network error. Please try again."},
		{"en-GB", "Network error. Please try again."},
		{"", "Netzwerkfehler. Bitte versuchen Sie es erneut."},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			got := Printer(tt.lang).Sprintf(MsgNetworkError)
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPrinter_FormatsArguments(t *testing.T) {
	got := Printer("de").Sprintf(MsgLevelOutOfRange, 3, 2)
	want := "Level 3 ist nicht verfügbar; bitte zwischen 1 und 2 wählen."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDescribe(t *testing.T) {
	p := Printer("en")

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
			name: "localizable wrapped",
			err:  fmt.Errorf("create task: %w", keyedError{key: MsgUploadFailed, args: []any{"plan.pdf"}}),
			want: "Upload failed: plan.pdf",
		},
		{
			name: "backend message",
			err:  fmt.Errorf("create project: %w", backendError{msg: "name: This field is required."}),
			want: "name: This field is required.",
		},
		{
			name: "backend without message",
			err:  backendError{},
			want: "An error occurred.",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(p, tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCatalogCoversEveryKey(t *testing.T) {
	p := Printer("de")
	for key, want := range german {
		if got := p.Sprintf(key); got == key && want != key {
			t.Errorf("no German translation registered for %q", key)
		}
	}
}

func TestDescribe_NestedErrors(t *testing.T) {
	p := Printer("en")
	cause := keyedError{key: MsgNetworkError}
	err := keyedError{key: MsgStepFailed, args: []any{"create firm", "join firm", cause}}

	want := "create firm completed, but join firm failed: Network error. Please try again."
	if got := Describe(p, err); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestError(t *testing.T) {
	sentinel := NewError(MsgToggleSelf)
	wrapped := fmt.Errorf("toggle: %w", sentinel)

	if !errors.Is(wrapped, sentinel) {
		t.Error("expected wrapped sentinel to match")
	}
	if errors.Is(wrapped, NewError(MsgToggleSelf)) {
		t.Error("distinct Error values must not match")
	}
	if got := Describe(Printer("de"), wrapped); got != "Sie können sich nicht selbst deaktivieren." {
		t.Errorf("unexpected message %q", got)
	}

	withArgs := NewError(MsgToggleFailed, 500)
	if withArgs.Error() != "Toggle failed (status 500)." {
		t.Errorf("unexpected error text %q", withArgs.Error())
	}
}
