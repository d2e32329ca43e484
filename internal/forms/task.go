package forms

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/mutation"
	"github.com/mark-chris/checklist/internal/tasktree"
)

// DefaultDuration is the preset task duration in hours
const DefaultDuration = 2

// Task is the task creation form
type Task struct {
	Project       int
	Name          string
	Description   string
	Level         int
	Duration      float64
	Start         string
	End           string
	AssignedUsers []int

	// Location interprets Start and End given without a zone; nil means local time
	Location *time.Location
}

// NewTask returns a form with the presets of a fresh task
func NewTask(project int) Task {
	return Task{Project: project, Level: 1, Duration: DefaultDuration}
}

// Request validates the form against the project's existing tasks and
// builds the request body. Datetimes are sent as RFC 3339 in UTC.
func (f Task) Request(existing []api.Task) (api.CreateTaskRequest, error) {
	if err := required("name", f.Name, i18n.MsgNameRequired); err != nil {
		return api.CreateTaskRequest{}, err
	}
	if err := tasktree.ValidateLevel(existing, f.Level); err != nil {
		return api.CreateTaskRequest{}, err
	}
	if f.Duration <= 0 {
		return api.CreateTaskRequest{}, invalid("duration", i18n.MsgDurationInvalid)
	}

	loc := f.Location
	if loc == nil {
		loc = time.Local
	}

	req := api.CreateTaskRequest{
		Project:       f.Project,
		Name:          strings.TrimSpace(f.Name),
		Description:   f.Description,
		Duration:      f.Duration,
		Level:         f.Level,
		AssignedUsers: append([]int{}, f.AssignedUsers...),
	}

	var start, end time.Time
	if strings.TrimSpace(f.Start) != "" {
		t, err := parseDateTime("start_datetime", f.Start, loc)
		if err != nil {
			return api.CreateTaskRequest{}, err
		}
		start = t
		req.StartDatetime = t.UTC().Format(time.RFC3339)
	}
	if strings.TrimSpace(f.End) != "" {
		t, err := parseDateTime("end_datetime", f.End, loc)
		if err != nil {
			return api.CreateTaskRequest{}, err
		}
		end = t
		req.EndDatetime = t.UTC().Format(time.RFC3339)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return api.CreateTaskRequest{}, invalid("end_datetime", i18n.MsgEndBeforeStart)
	}
	return req, nil
}

// File is an attachment queued for upload after the task exists. Open is
// called for every upload attempt.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// PathFile uploads the file at path under its base name
func PathFile(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesFile uploads data under name
func BytesFile(name string, data []byte) File {
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// TaskBackend creates tasks and uploads their attachments
type TaskBackend interface {
	CreateTask(ctx context.Context, in api.CreateTaskRequest) (*api.Task, error)
	UploadAttachment(ctx context.Context, taskID int, filename string, content io.Reader) (*api.Attachment, error)
}

// UploadError names the file whose upload stopped the remaining uploads
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s failed: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// MessageKey implements i18n.Localizable
func (e *UploadError) MessageKey() (string, []any) {
	return i18n.MsgUploadFailed, []any{e.Err}
}

// TaskSubmission creates a task and then uploads its files one request at
// a time. The first failed upload stops the rest. Submitting again after a
// failure resumes at the failed upload without creating the task twice.
type TaskSubmission struct {
	backend TaskBackend
	seq     *mutation.Sequence
	task    *api.Task
}

// NewTaskSubmission prepares the create-then-upload sequence for req
func NewTaskSubmission(backend TaskBackend, req api.CreateTaskRequest, files []File) *TaskSubmission {
	s := &TaskSubmission{backend: backend}

	steps := []mutation.Step{{
		Name: fmt.Sprintf("task %q", req.Name),
		Run: func(ctx context.Context) error {
			task, err := backend.CreateTask(ctx, req)
			if err != nil {
				return err
			}
			s.task = task
			return nil
		},
	}}
	for _, file := range files {
		steps = append(steps, mutation.Step{
			Name: file.Name,
			Run: func(ctx context.Context) error {
				content, err := file.Open()
				if err != nil {
					return &UploadError{Filename: file.Name, Err: err}
				}
				defer func() { _ = content.Close() }()

				if _, err := backend.UploadAttachment(ctx, s.task.ID, file.Name, content); err != nil {
					return &UploadError{Filename: file.Name, Err: err}
				}
				return nil
			},
		})
	}
	s.seq = mutation.NewSequence(steps...)
	return s
}

// Submit runs the remaining steps and returns the created task. When the
// task was created but an upload failed, the task is returned together
// with a *mutation.PartialFailureError wrapping an *UploadError.
func (s *TaskSubmission) Submit(ctx context.Context) (*api.Task, error) {
	err := s.seq.Run(ctx)
	return s.task, err
}

// Pending names the uploads not yet done
func (s *TaskSubmission) Pending() []string {
	remaining := s.seq.Remaining()
	if s.task == nil && len(remaining) > 0 {
		return remaining[1:]
	}
	return remaining
}
