package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/mark-chris/checklist/internal/backendtest"
	"github.com/mark-chris/checklist/internal/forms"
	"github.com/mark-chris/checklist/internal/roster"
)

type usersFixture struct {
	*cliFixture
	adminID  int
	workerID int
}

func newUsersFixture(t *testing.T) *usersFixture {
	t.Helper()
	f := newCLIFixture(t)
	firm := f.firmID
	adminID := f.srv.AddUser(backendtest.User{
		Username: "chefin", Email: "chefin@firm.de", FirstName: "Clara", LastName: "Chef",
		Firm: &firm, IsCreator: true, IsAdmin: true, IsActive: true,
	}, testPassword)
	workerID := f.srv.AddUser(backendtest.User{
		Username: "erika", Email: "erika@firm.de", FirstName: "Erika", LastName: "Muster",
		Firm: &firm, IsActive: true,
	}, testPassword)
	return &usersFixture{cliFixture: f, adminID: adminID, workerID: workerID}
}

func TestUsersListCommand(t *testing.T) {
	f := newUsersFixture(t)
	f.signIn(t, f.adminID)

	out, err := run(t, "", "users", "list")
	if err != nil {
		t.Fatalf("users list failed: %v", err)
	}
	chefin := strings.Index(out, "chefin")
	erika := strings.Index(out, "erika")
	maxRow := strings.Index(out, "max@firm.de")
	if chefin < 0 || erika < 0 || maxRow < 0 {
		t.Fatalf("expected every member in output:\n%s", out)
	}
	if chefin > erika || chefin > maxRow {
		t.Errorf("expected the owner first:\n%s", out)
	}
	if !strings.Contains(out, "Owner") || !strings.Contains(out, "Employee") {
		t.Errorf("expected role labels:\n%s", out)
	}
}

func TestUsersListCommand_NotAdmin(t *testing.T) {
	f := newUsersFixture(t)
	f.signIn(t, f.workerID)

	_, err := run(t, "", "users", "list")
	if !errors.Is(err, roster.ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired, got %v", err)
	}
	if got := english(err); got != "Admin rights required." {
		t.Errorf("unexpected message %q", got)
	}
	if n := len(f.srv.Requests(http.MethodGet, "/api/auth/users/")); n != 0 {
		t.Errorf("expected no list request, got %d", n)
	}
}

func TestUsersToggleCommand(t *testing.T) {
	f := newUsersFixture(t)
	f.signIn(t, f.adminID)

	out, err := run(t, "", "users", "toggle", strconv.Itoa(f.workerID))
	if err != nil {
		t.Fatalf("users toggle failed: %v", err)
	}
	if !strings.Contains(out, "Erika Muster is now inactive.") {
		t.Errorf("expected confirmation, got: %s", out)
	}
	if u, _ := f.srv.User(f.workerID); u.IsActive {
		t.Error("expected the worker to be inactive")
	}

	if _, err := run(t, "", "users", "toggle", strconv.Itoa(f.workerID)); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if u, _ := f.srv.User(f.workerID); !u.IsActive {
		t.Error("expected the worker to be active again")
	}
}

func TestUsersToggleCommand_ServerError(t *testing.T) {
	f := newUsersFixture(t)
	f.signIn(t, f.adminID)
	f.srv.Fail(http.MethodPatch, "/api/auth/toggle_active/", http.StatusInternalServerError, 1)

	_, err := run(t, "", "users", "toggle", strconv.Itoa(f.workerID))
	var toggleErr *roster.ToggleError
	if !errors.As(err, &toggleErr) {
		t.Fatalf("expected ToggleError, got %v", err)
	}
	if toggleErr.UserID != f.workerID {
		t.Errorf("expected user %d, got %d", f.workerID, toggleErr.UserID)
	}
	if got := english(err); got != "Internal Server Error" {
		t.Errorf("expected the server detail, got %q", got)
	}
	if u, _ := f.srv.User(f.workerID); !u.IsActive {
		t.Error("expected the worker to stay active")
	}
	if n := len(f.srv.Requests(http.MethodPatch, "/api/auth/toggle_active/")); n != 1 {
		t.Errorf("expected one toggle attempt, got %d", n)
	}
}

func TestUsersToggleCommand_Refused(t *testing.T) {
	f := newUsersFixture(t)
	f.signIn(t, f.adminID)

	tests := []struct {
		name string
		id   int
		want error
	}{
		{name: "self", id: f.adminID, want: roster.ErrToggleSelf},
		{name: "unknown", id: 9999, want: roster.ErrUnknownUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", "users", "toggle", strconv.Itoa(tt.id))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if n := len(f.srv.Requests(http.MethodPatch, "/api/auth/toggle_active/")); n != 0 {
		t.Errorf("expected no toggle request, got %d", n)
	}
}

func TestUsersCreateCommand(t *testing.T) {
	f := newUsersFixture(t)
	f.signIn(t, f.adminID)

	out, err := run(t, testPassword+"\n", "users", "create", "--username", "azubi", "--email", "azubi@firm.de")
	if err != nil {
		t.Fatalf("users create failed: %v", err)
	}
	if !strings.Contains(out, `User "azubi" created.`) {
		t.Errorf("expected confirmation, got: %s", out)
	}

	u, ok := f.srv.UserByUsername("azubi")
	if !ok {
		t.Fatal("expected the user to exist")
	}
	if u.HexColor != forms.DefaultColor {
		t.Errorf("expected the default color, got %q", u.HexColor)
	}
	if u.Firm == nil || *u.Firm != f.firmID {
		t.Errorf("expected firm %d, got %v", f.firmID, u.Firm)
	}
	if u.IsAdmin {
		t.Error("expected a regular member")
	}
}
