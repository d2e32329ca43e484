package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/mark-chris/checklist/internal/backendtest"
	"github.com/mark-chris/checklist/internal/forms"
)

func TestInviteAcceptCommand_SevenDigitColor(t *testing.T) {
	f := newCLIFixture(t)

	_, err := run(t, "", "invite", "accept",
		"--token", "abc", "--email", "neu@firm.de", "--username", "neu",
		"--password", testPassword, "--color", "1A73E8F")
	if !errors.Is(err, forms.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if got := english(err); !strings.Contains(got, "6-digit hex value required") {
		t.Errorf("expected the hex message, got %q", got)
	}
	if n := len(f.srv.Requests("", "")); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestInviteAcceptCommand(t *testing.T) {
	f := newCLIFixture(t)
	projectID := f.srv.AddProject(backendtest.Project{Firm: f.firmID, Name: "Abschluss", IsOneTime: true, StartDate: "2026-01-01"})
	token := f.srv.AddInvitation("neu@firm.de", projectID)

	out, err := run(t, testPassword+"\n", "invite", "accept",
		"--token", token, "--email", "neu@firm.de", "--username", "neu",
		"--first-name", "Nina", "--color", "1a73e8")
	if err != nil {
		t.Fatalf("invite accept failed: %v", err)
	}
	if !strings.Contains(out, "Invitation accepted.") {
		t.Errorf("expected confirmation, got: %s", out)
	}

	u, ok := f.srv.UserByUsername("neu")
	if !ok {
		t.Fatal("expected the invited user to exist")
	}
	if u.HexColor != "1A73E8" {
		t.Errorf("expected color 1A73E8, got %q", u.HexColor)
	}
	if u.Firm == nil || *u.Firm != f.firmID {
		t.Errorf("expected the user to join firm %d, got %v", f.firmID, u.Firm)
	}
	if f.kc.Len() != 0 {
		t.Errorf("expected no tokens to be stored, got %d", f.kc.Len())
	}
}

func TestInviteAcceptCommand_UsedToken(t *testing.T) {
	f := newCLIFixture(t)
	projectID := f.srv.AddProject(backendtest.Project{Firm: f.firmID, Name: "Abschluss", IsOneTime: true, StartDate: "2026-01-01"})
	token := f.srv.AddInvitation("neu@firm.de", projectID)
	args := []string{"invite", "accept", "--token", token, "--email", "neu@firm.de",
		"--username", "neu", "--password", testPassword, "--color", "1A73E8"}

	if _, err := run(t, "", args...); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	_, err := run(t, "", args...)
	if got := english(err); got != "Invalid or expired invitation" {
		t.Errorf("expected the server message, got %q", got)
	}
}

func TestInviteSendCommand(t *testing.T) {
	f := newCLIFixture(t)
	projectID := f.srv.AddProject(backendtest.Project{Firm: f.firmID, Name: "Abschluss", IsOneTime: true, StartDate: "2026-01-01"})
	f.signIn(t, f.userID)

	out, err := run(t, "", "invite", "send", "--email", "partner@kanzlei.de", "--project", strconv.Itoa(projectID))
	if err != nil {
		t.Fatalf("invite send failed: %v", err)
	}
	if !strings.Contains(out, "Invitation sent to partner@kanzlei.de.") {
		t.Errorf("expected confirmation, got: %s", out)
	}

	invitations := f.srv.Invitations()
	if len(invitations) != 1 || invitations[0].Project != projectID {
		t.Errorf("expected one invitation for project %d, got %+v", projectID, invitations)
	}

	f.srv.ResetRequests()
	if _, err := run(t, "", "invite", "send", "--project", strconv.Itoa(projectID)); !errors.Is(err, forms.ErrInvalid) {
		t.Errorf("expected a missing email to be rejected, got %v", err)
	}
	if n := len(f.srv.Requests(http.MethodPost, "/api/auth/invitations/send/")); n != 0 {
		t.Errorf("expected no request, got %d", n)
	}
}
