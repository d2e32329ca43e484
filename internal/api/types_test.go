package api

import (
	"encoding/json"
	"testing"
)

func TestRef_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantNil  bool
		wantID   int
		wantName string
	}{
		{name: "bare id", data: `{"firm": 7}`, wantID: 7},
		{name: "numeric string", data: `{"firm": "7"}`, wantID: 7},
		{name: "object", data: `{"firm": {"id": 7, "name": "Acme"}}`, wantID: 7, wantName: "Acme"},
		{name: "null", data: `{"firm": null}`, wantNil: true},
		{name: "missing", data: `{}`, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u User
			if err := json.Unmarshal([]byte(tt.data), &u); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if tt.wantNil {
				if u.HasFirm() {
					t.Errorf("expected no firm, got %+v", u.Firm)
				}
				return
			}
			if u.FirmID() != tt.wantID {
				t.Errorf("expected firm %d, got %d", tt.wantID, u.FirmID())
			}
			if u.Firm.Name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, u.Firm.Name)
			}
		})
	}
}

func TestRef_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Partner *Ref `json:"partner"`
	}{Partner: &Ref{ID: 3, Name: "Partner GmbH"}})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"partner":3}` {
		t.Errorf("expected bare id, got %s", data)
	}
}

func TestTask_UnmarshalJSON(t *testing.T) {
	data := `{
		"id": 4, "project": 1, "name": "Belege sammeln", "description": "",
		"level": 2, "duration": "2.50",
		"start_datetime": "2026-03-01T08:00:00Z", "end_datetime": null,
		"assigned_users": [{"id": 1}, 2], "status": "active", "is_veto": true
	}`

	var task Task
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if task.Duration != 2.5 {
		t.Errorf("expected duration 2.5, got %v", task.Duration)
	}
	if task.Duration.String() != "2.5h" {
		t.Errorf("unexpected duration text %q", task.Duration.String())
	}
	if len(task.AssignedUsers) != 2 || task.AssignedUsers[0] != 1 || task.AssignedUsers[1] != 2 {
		t.Errorf("unexpected assigned users %v", task.AssignedUsers)
	}
	if task.StartDatetime == nil || task.StartDatetime.Hour() != 8 {
		t.Errorf("unexpected start %v", task.StartDatetime)
	}
	if task.EndDatetime != nil {
		t.Errorf("expected no end, got %v", task.EndDatetime)
	}
	if task.Status != TaskActive || !task.IsVeto {
		t.Errorf("unexpected status %q veto %v", task.Status, task.IsVeto)
	}
}

func TestTask_EffectiveLevel(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{level: 0, want: 1},
		{level: -2, want: 1},
		{level: 1, want: 1},
		{level: 3, want: 3},
	}
	for _, tt := range tests {
		if got := (Task{Level: tt.level}).EffectiveLevel(); got != tt.want {
			t.Errorf("level %d: expected %d, got %d", tt.level, tt.want, got)
		}
	}
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "full name", user: User{FirstName: "Max", LastName: "Muster", Username: "max"}, want: "Max Muster"},
		{name: "username", user: User{Username: "max", Email: "max@firm.de"}, want: "max"},
		{name: "email", user: User{Email: "max@firm.de"}, want: "max@firm.de"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRecurrence_Valid(t *testing.T) {
	for _, r := range Recurrences {
		if !r.Valid() {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if Recurrence("daily").Valid() {
		t.Error("expected daily to be invalid")
	}
	if Recurrence("").Valid() {
		t.Error("expected empty pattern to be invalid")
	}
}

func TestNewLoginRequest(t *testing.T) {
	tests := []struct {
		identifier   string
		wantUsername string
		wantEmail    string
	}{
		{identifier: "max@firm.de", wantEmail: "max@firm.de"},
		{identifier: "  max@firm.de ", wantEmail: "max@firm.de"},
		{identifier: "max", wantUsername: "max"},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			req := NewLoginRequest(tt.identifier, "secret")
			if req.Username != tt.wantUsername || req.Email != tt.wantEmail {
				t.Errorf("expected username %q email %q, got %+v", tt.wantUsername, tt.wantEmail, req)
			}

			data, _ := json.Marshal(req)
			var fields map[string]string
			_ = json.Unmarshal(data, &fields)
			if len(fields) != 2 {
				t.Errorf("expected exactly two fields, got %s", data)
			}
		})
	}
}
