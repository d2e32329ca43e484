package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/mark-chris/checklist/internal/backendtest"
	"github.com/mark-chris/checklist/internal/forms"
	"github.com/mark-chris/checklist/internal/mutation"
	"github.com/mark-chris/checklist/internal/tasktree"
)

func TestProjectsCreateCommand_OneTimeOmitsRecurrence(t *testing.T) {
	f := newCLIFixture(t)
	f.signIn(t, f.userID)

	out, err := run(t, "", "projects", "create", "--name", "Umzug", "--one-time",
		"--recurrence", "monthly", "--start", "2026-05-01")
	if err != nil {
		t.Fatalf("projects create failed: %v", err)
	}
	if !strings.Contains(out, `Project "Umzug" created.`) {
		t.Errorf("unexpected output: %s", out)
	}

	reqs := f.srv.Requests(http.MethodPost, "/api/organisation/projects/")
	if len(reqs) != 1 {
		t.Fatalf("expected one request, got %d", len(reqs))
	}
	var body map[string]any
	_ = json.Unmarshal(reqs[0].Body, &body)
	if _, ok := body["recurrence_pattern"]; ok {
		t.Errorf("expected recurrence_pattern to be omitted, got %s", reqs[0].Body)
	}
	if body["is_one_time"] != true {
		t.Errorf("expected is_one_time, got %s", reqs[0].Body)
	}
}

func TestProjectsCreateCommand_Validation(t *testing.T) {
	f := newCLIFixture(t)
	f.signIn(t, f.userID)

	_, err := run(t, "", "projects", "create", "--name", "USt", "--start", "2026-01-01")
	if !errors.Is(err, forms.ErrInvalid) {
		t.Errorf("expected a validation error for a missing recurrence, got %v", err)
	}
	if n := len(f.srv.Requests("", "")); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestProjectsListCommand(t *testing.T) {
	f := newCLIFixture(t)
	f.signIn(t, f.userID)

	out, err := run(t, "", "projects", "list")
	if err != nil {
		t.Fatalf("projects list failed: %v", err)
	}
	if !strings.Contains(out, "No projects yet.") {
		t.Errorf("expected empty state, got: %s", out)
	}

	monthly := "monthly"
	f.srv.AddProject(backendtest.Project{Firm: f.firmID, Name: "USt", RecurrencePattern: &monthly, StartDate: "2026-01-01"})
	out, err = run(t, "", "projects", "list")
	if err != nil {
		t.Fatalf("projects list failed: %v", err)
	}
	for _, want := range []string{"NAME", "USt", "monthly", "2026-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTasksCreateCommand_LevelOutOfRange(t *testing.T) {
	f := newCLIFixture(t)
	projectID := f.srv.AddProject(backendtest.Project{Firm: f.firmID, Name: "Neu", IsOneTime: true, StartDate: "2026-01-01"})
	f.signIn(t, f.userID)

	_, err := run(t, "", "tasks", "create", "--project", strconv.Itoa(projectID), "--name", "Tief", "--level", "2")
	if !errors.Is(err, tasktree.ErrLevelOutOfRange) {
		t.Fatalf("expected ErrLevelOutOfRange, got %v", err)
	}
	if n := len(f.srv.Requests(http.MethodPost, "/api/organisation/tasks/")); n != 0 {
		t.Errorf("expected no create request, got %d", n)
	}
}

func TestTasksCreateCommand_WithFiles(t *testing.T) {
	f := newCLIFixture(t)
	projectID := f.srv.AddProject(backendtest.Project{Firm: f.firmID, Name: "Neu", IsOneTime: true, StartDate: "2026-01-01"})
	f.signIn(t, f.userID)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	_ = os.WriteFile(a, []byte("first"), 0o600)
	_ = os.WriteFile(b, []byte("second"), 0o600)

	out, err := run(t, "", "tasks", "create", "--project", strconv.Itoa(projectID), "--name", "Belege",
		"--assign", strconv.Itoa(f.userID), "--file", a, "--file", b)
	if err != nil {
		t.Fatalf("tasks create failed: %v", err)
	}
	if !strings.Contains(out, `Task "Belege" created.`) {
		t.Errorf("unexpected output: %s", out)
	}

	tasks := f.srv.Tasks(projectID)
	if len(tasks) != 1 || tasks[0].Duration != "2.00" || tasks[0].Level != 1 {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
	atts := f.srv.Attachments(tasks[0].ID)
	if len(atts) != 2 || string(atts[0].Content) != "first" || string(atts[1].Content) != "second" {
		t.Errorf("unexpected attachments %+v", atts)
	}
}

func TestTasksCreateCommand_UploadFailure(t *testing.T) {
	f := newCLIFixture(t)
	projectID := f.srv.AddProject(backendtest.Project{Firm: f.firmID, Name: "Neu", IsOneTime: true, StartDate: "2026-01-01"})
	f.signIn(t, f.userID)

	path := filepath.Join(t.TempDir(), "beleg.pdf")
	_ = os.WriteFile(path, []byte("x"), 0o600)
	// ids are sequential, so the new task takes the next one
	taskID := projectID + 1
	f.srv.Fail(http.MethodPost, "/api/organisation/tasks/"+strconv.Itoa(taskID)+"/attachments/", http.StatusInternalServerError, -1)

	_, err := run(t, "", "tasks", "create", "--project", strconv.Itoa(projectID), "--name", "Belege", "--file", path)
	var partial *mutation.PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("expected *mutation.PartialFailureError, got %v", err)
	}
	var upload *forms.UploadError
	if !errors.As(err, &upload) || upload.Filename != "beleg.pdf" {
		t.Errorf("expected the failed file to be named, got %v", err)
	}
	if got := english(err); !strings.Contains(got, "Upload failed: Internal Server Error") {
		t.Errorf("unexpected message %q", got)
	}
	if tasks := f.srv.Tasks(projectID); len(tasks) != 1 || tasks[0].ID != taskID {
		t.Errorf("expected the task to persist, got %+v", tasks)
	}
}
