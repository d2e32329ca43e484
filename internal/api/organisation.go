package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// CreateProjectRequest is the project creation body. Optional fields are
// omitted when empty so the backend applies its own defaults.
type CreateProjectRequest struct {
	Name              string     `json:"name"`
	Partner           *int       `json:"partner,omitempty"`
	IsOneTime         bool       `json:"is_one_time"`
	RecurrencePattern Recurrence `json:"recurrence_pattern,omitempty"`
	StartDate         string     `json:"start_date"`
	EndDate           string     `json:"end_date,omitempty"`
}

// CreateTaskRequest is the task creation body
type CreateTaskRequest struct {
	Project       int     `json:"project"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Duration      float64 `json:"duration"`
	Level         int     `json:"level"`
	AssignedUsers []int   `json:"assigned_users"`
	StartDatetime string  `json:"start_datetime,omitempty"`
	EndDatetime   string  `json:"end_datetime,omitempty"`
}

type onboardingStatus struct {
	NeedsOnboarding bool `json:"needs_onboarding"`
}

// ListFirms returns every firm the user may join
func (ac *AuthenticatedClient) ListFirms(ctx context.Context) ([]Firm, error) {
	var firms []Firm
	if err := ac.call(ctx, http.MethodGet, pathFirms, nil, nil, &firms); err != nil {
		return nil, fmt.Errorf("failed to list firms: %w", err)
	}
	return firms, nil
}

// CreateFirm creates a firm. It does not make the caller a member.
func (ac *AuthenticatedClient) CreateFirm(ctx context.Context, name string) (*Firm, error) {
	var firm Firm
	body := map[string]string{"name": name}
	if err := ac.call(ctx, http.MethodPost, pathFirms, nil, body, &firm); err != nil {
		return nil, fmt.Errorf("failed to create firm: %w", err)
	}
	return &firm, nil
}

// JoinFirm makes the caller a member of firmID
func (ac *AuthenticatedClient) JoinFirm(ctx context.Context, firmID int) error {
	body := map[string]int{"firm_id": firmID}
	if err := ac.call(ctx, http.MethodPost, pathJoinFirm, nil, body, nil); err != nil {
		return fmt.Errorf("failed to join firm: %w", err)
	}
	return nil
}

// NeedsOnboarding asks the backend whether the onboarding wizard must run
func (ac *AuthenticatedClient) NeedsOnboarding(ctx context.Context) (bool, error) {
	var out onboardingStatus
	if err := ac.call(ctx, http.MethodGet, pathOnboarding, nil, nil, &out); err != nil {
		return false, fmt.Errorf("failed to check onboarding: %w", err)
	}
	return out.NeedsOnboarding, nil
}

// ListProjects returns the projects visible to the user
func (ac *AuthenticatedClient) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := ac.call(ctx, http.MethodGet, pathProjects, nil, nil, &projects); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// CreateProject creates a project
func (ac *AuthenticatedClient) CreateProject(ctx context.Context, in CreateProjectRequest) (*Project, error) {
	var project Project
	if err := ac.call(ctx, http.MethodPost, pathProjects, nil, in, &project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

// ListTasks returns the flat task list of a project
func (ac *AuthenticatedClient) ListTasks(ctx context.Context, projectID int) ([]Task, error) {
	query := url.Values{"project": []string{strconv.Itoa(projectID)}}
	var tasks []Task
	if err := ac.call(ctx, http.MethodGet, pathTasks, query, nil, &tasks); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask creates a task
func (ac *AuthenticatedClient) CreateTask(ctx context.Context, in CreateTaskRequest) (*Task, error) {
	if in.AssignedUsers == nil {
		in.AssignedUsers = []int{}
	}
	var task Task
	if err := ac.call(ctx, http.MethodPost, pathTasks, nil, in, &task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

// GetTask fetches one task
func (ac *AuthenticatedClient) GetTask(ctx context.Context, taskID int) (*Task, error) {
	var task Task
	if err := ac.call(ctx, http.MethodGet, taskPath(taskID), nil, nil, &task); err != nil {
		return nil, fmt.Errorf("failed to fetch task %d: %w", taskID, err)
	}
	return &task, nil
}

// ListAttachments returns the attachments of a task
func (ac *AuthenticatedClient) ListAttachments(ctx context.Context, taskID int) ([]Attachment, error) {
	var attachments []Attachment
	if err := ac.call(ctx, http.MethodGet, attachmentsPath(taskID), nil, nil, &attachments); err != nil {
		return nil, fmt.Errorf("failed to list attachments of task %d: %w", taskID, err)
	}
	return attachments, nil
}

// TaskDetail fetches a task and its attachments. A failing attachment list
// yields an empty list rather than an error.
func (ac *AuthenticatedClient) TaskDetail(ctx context.Context, taskID int) (*TaskDetail, error) {
	task, err := ac.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	attachments, err := ac.ListAttachments(ctx, taskID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		ac.client.logger.Debug("attachment list unavailable", zap.Int("task", taskID), zap.Error(err))
		attachments = []Attachment{}
	}
	return &TaskDetail{Task: *task, Attachments: attachments}, nil
}

// UploadAttachment uploads one file to a task as multipart form data
func (ac *AuthenticatedClient) UploadAttachment(ctx context.Context, taskID int, filename string, content io.Reader) (*Attachment, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.WriteField("task", strconv.Itoa(taskID)); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := ac.client.newRequest(ctx, http.MethodPost, attachmentsPath(taskID), nil, buf.Bytes(), mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	resp, err := ac.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	var attachment Attachment
	if err := decodeResponse(resp, &attachment); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	return &attachment, nil
}

func taskPath(taskID int) string {
	return pathTasks + strconv.Itoa(taskID) + "/"
}

func attachmentsPath(taskID int) string {
	return taskPath(taskID) + "attachments/"
}
