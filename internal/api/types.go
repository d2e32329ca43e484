package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Ref is a nullable reference to another entity. The backend renders it
// either as a bare id or as a nested object carrying at least an id.
type Ref struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON accepts a number, a numeric string, or an object
func (r *Ref) UnmarshalJSON(data []byte) error {
	id, name, err := decodeRef(data)
	if err != nil {
		return err
	}
	r.ID, r.Name = id, name
	return nil
}

// MarshalJSON emits the bare id, which is what the backend accepts on writes
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

func decodeRef(data []byte) (int, string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, "", nil
	}

	switch data[0] {
	case '{':
		var obj struct {
			ID   json.Number `json:"id"`
			Name string      `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return 0, "", fmt.Errorf("invalid reference: %w", err)
		}
		id, err := strconv.Atoi(obj.ID.String())
		if err != nil {
			return 0, "", fmt.Errorf("invalid reference id %q", obj.ID)
		}
		return id, obj.Name, nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, "", err
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			return 0, "", fmt.Errorf("invalid reference id %q", s)
		}
		return id, "", nil
	default:
		var id int
		if err := json.Unmarshal(data, &id); err != nil {
			return 0, "", fmt.Errorf("invalid reference: %w", err)
		}
		return id, "", nil
	}
}

// IDs is a list of references rendered as ids or nested objects
type IDs []int

// UnmarshalJSON accepts [1, 2] as well as [{"id": 1}, {"id": 2}]
func (ids *IDs) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid id list: %w", err)
	}
	out := make(IDs, 0, len(raw))
	for _, item := range raw {
		id, _, err := decodeRef(item)
		if err != nil {
			return err
		}
		out = append(out, id)
	}
	*ids = out
	return nil
}

// Hours is a duration in hours. The backend serialises decimals as strings.
type Hours float64

// UnmarshalJSON accepts 2, 2.5, "2.50" and null
func (h *Hours) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*h = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*h = Hours(f)
	return nil
}

// String formats the duration the way the tree preview shows it
func (h Hours) String() string {
	return strconv.FormatFloat(float64(h), 'f', -1, 64) + "h"
}

// User is the authenticated user or a member of their firm
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	HexColor  string `json:"hex_color"`
	Firm      *Ref   `json:"firm"`
	IsCreator bool   `json:"is_creator"`
	IsAdmin   bool   `json:"is_admin"`
	IsActive  bool   `json:"is_active"`
}

// HasFirm reports whether the user belongs to a firm
func (u *User) HasFirm() bool {
	return u != nil && u.Firm != nil && u.Firm.ID != 0
}

// HasColor reports whether the user picked an identifying color
func (u *User) HasColor() bool {
	return u != nil && strings.TrimSpace(u.HexColor) != ""
}

// FirmID returns the id of the user's firm, or 0
func (u *User) FirmID() int {
	if !u.HasFirm() {
		return 0
	}
	return u.Firm.ID
}

// DisplayName prefers the full name and falls back to username, then email
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// Firm is an organisation owning projects and users
type Firm struct {
	ID      int               `json:"id"`
	Name    string            `json:"name"`
	Workers []json.RawMessage `json:"workers,omitempty"`
}

// Recurrence is how often a recurring project repeats
type Recurrence string

// Recurrence patterns accepted by the backend
const (
	RecurrenceWeekly    Recurrence = "weekly"
	RecurrenceMonthly   Recurrence = "monthly"
	RecurrenceQuarterly Recurrence = "quarterly"
	RecurrenceYearly    Recurrence = "yearly"
)

// Recurrences lists every valid pattern
var Recurrences = []Recurrence{RecurrenceWeekly, RecurrenceMonthly, RecurrenceQuarterly, RecurrenceYearly}

// Valid reports whether r is a known pattern
func (r Recurrence) Valid() bool {
	for _, candidate := range Recurrences {
		if r == candidate {
			return true
		}
	}
	return false
}

// Project groups tasks for one firm
type Project struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	Partner           *Ref       `json:"partner"`
	IsOneTime         bool       `json:"is_one_time"`
	RecurrencePattern Recurrence `json:"recurrence_pattern,omitempty"`
	StartDate         string     `json:"start_date"`
	EndDate           string     `json:"end_date,omitempty"`
	Status            string     `json:"status,omitempty"`
}

// TaskStatus is the lifecycle state of a task
type TaskStatus string

// Task states
const (
	TaskNew       TaskStatus = "new"
	TaskActive    TaskStatus = "active"
	TaskCompleted TaskStatus = "completed"
	TaskCancelled TaskStatus = "cancelled"
	TaskExpired   TaskStatus = "expired"
)

// Task is one node of a project's task hierarchy
type Task struct {
	ID            int        `json:"id"`
	Project       int        `json:"project"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Level         int        `json:"level"`
	Duration      Hours      `json:"duration"`
	StartDatetime *time.Time `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime"`
	AssignedUsers IDs        `json:"assigned_users"`
	Status        TaskStatus `json:"status"`
	IsVeto        bool       `json:"is_veto"`
}

// EffectiveLevel treats a missing or non-positive level as the root level
func (t Task) EffectiveLevel() int {
	if t.Level < 1 {
		return 1
	}
	return t.Level
}

// Attachment is a file uploaded to a task
type Attachment struct {
	ID         int        `json:"id"`
	Task       int        `json:"task"`
	File       string     `json:"file"`
	FileSize   *int64     `json:"file_size,omitempty"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

// TaskDetail is a task together with its attachments
type TaskDetail struct {
	Task
	Attachments []Attachment `json:"attachments"`
}

// Invitation is an emailed invite to join a project
type Invitation struct {
	Email   string `json:"email"`
	Project int    `json:"project"`
	Token   string `json:"token,omitempty"`
}
