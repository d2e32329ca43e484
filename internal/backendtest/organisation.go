package backendtest

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

var recurrences = map[string]bool{"weekly": true, "monthly": true, "quarterly": true, "yearly": true}

func (s *Server) handleListFirms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Firms())
}

func (s *Server) handleCreateFirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		fieldError(w, "name", "This field may not be blank.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.firms {
		if f.Name == req.Name {
			fieldError(w, "name", "firm with this name already exists.")
			return
		}
	}
	f := &Firm{ID: s.id(), Name: req.Name, Workers: []int{}}
	s.firms[f.ID] = f
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleJoinFirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirmID int `json:"firm_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.firms[req.FirmID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Firm not found"})
		return
	}
	u := s.users[userFromContext(r)]
	id := f.ID
	u.Firm = &id
	if len(f.Workers) == 0 {
		u.IsCreator = true
		u.IsAdmin = true
	}
	f.Workers = append(f.Workers, u.ID)
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Joined firm."})
}

func (s *Server) handleCheckOnboarding(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userFromContext(r)]
	writeJSON(w, http.StatusOK, map[string]bool{
		"needs_onboarding": u.Firm == nil || u.HexColor == "",
	})
}

func (s *Server) callerFirm(r *http.Request) int {
	u := s.users[userFromContext(r)]
	if u == nil || u.Firm == nil {
		return 0
	}
	return *u.Firm
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	firm := s.callerFirm(r)
	out := []Project{}
	for _, p := range s.projects {
		if p.Firm == firm {
			out = append(out, *p)
		}
	}
	sortByID(out, func(p Project) int { return p.ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              string  `json:"name"`
		Partner           *int    `json:"partner"`
		IsOneTime         bool    `json:"is_one_time"`
		RecurrencePattern *string `json:"recurrence_pattern"`
		StartDate         string  `json:"start_date"`
		EndDate           *string `json:"end_date"`
	}
	if !decode(w, r, &req) {
		return
	}

	errs := map[string][]string{}
	if req.Name == "" {
		errs["name"] = []string{"This field may not be blank."}
	}
	if _, err := time.Parse(time.DateOnly, req.StartDate); err != nil {
		errs["start_date"] = []string{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}
	}
	if req.EndDate != nil {
		if _, err := time.Parse(time.DateOnly, *req.EndDate); err != nil {
			errs["end_date"] = []string{"Date has wrong format. Use one of these formats instead: YYYY-MM-DD."}
		}
	}
	if req.IsOneTime {
		req.RecurrencePattern = nil
	} else if req.RecurrencePattern == nil || !recurrences[*req.RecurrencePattern] {
		errs["recurrence_pattern"] = []string{"Recurring projects need a recurrence pattern."}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	firm := s.callerFirm(r)
	if firm == 0 {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "User has no firm"})
		return
	}
	if req.Partner != nil {
		if _, ok := s.firms[*req.Partner]; !ok {
			errs["partner"] = []string{fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", *req.Partner)}
		}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	p := &Project{
		ID:                s.id(),
		Firm:              firm,
		Name:              req.Name,
		Partner:           req.Partner,
		IsOneTime:         req.IsOneTime,
		RecurrencePattern: req.RecurrencePattern,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            "active",
	}
	s.projects[p.ID] = p
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	project, err := strconv.Atoi(r.URL.Query().Get("project"))
	if err != nil {
		fieldError(w, "project", "A valid integer is required.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.tasksOf(project))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Project       int     `json:"project"`
		Name          string  `json:"name"`
		Description   string  `json:"description"`
		Duration      float64 `json:"duration"`
		Level         int     `json:"level"`
		AssignedUsers []int   `json:"assigned_users"`
		StartDatetime *string `json:"start_datetime"`
		EndDatetime   *string `json:"end_datetime"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	errs := map[string][]string{}
	if _, ok := s.projects[req.Project]; !ok {
		errs["project"] = []string{fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", req.Project)}
	}
	if req.Name == "" {
		errs["name"] = []string{"This field may not be blank."}
	}
	if req.Duration <= 0 {
		errs["duration"] = []string{"Ensure this value is greater than 0."}
	}
	maxLevel := 0
	for _, t := range s.tasksOf(req.Project) {
		maxLevel = max(maxLevel, t.Level)
	}
	if req.Level < 1 || req.Level > maxLevel+1 {
		errs["level"] = []string{fmt.Sprintf("Level must be between 1 and %d.", maxLevel+1)}
	}
	for _, field := range []struct {
		name  string
		value *string
	}{{"start_datetime", req.StartDatetime}, {"end_datetime", req.EndDatetime}} {
		if field.value == nil {
			continue
		}
		if _, err := time.Parse(time.RFC3339, *field.value); err != nil {
			errs[field.name] = []string{"Datetime has wrong format."}
		}
	}
	for _, id := range req.AssignedUsers {
		if _, ok := s.users[id]; !ok {
			errs["assigned_users"] = append(errs["assigned_users"], fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	if req.AssignedUsers == nil {
		req.AssignedUsers = []int{}
	}
	t := &Task{
		ID:            s.id(),
		Project:       req.Project,
		Name:          req.Name,
		Description:   req.Description,
		Level:         req.Level,
		Duration:      strconv.FormatFloat(req.Duration, 'f', 2, 64),
		StartDatetime: req.StartDatetime,
		EndDatetime:   req.EndDatetime,
		AssignedUsers: req.AssignedUsers,
		Status:        "new",
	}
	s.tasks[t.ID] = t
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) taskFromPath(w http.ResponseWriter, r *http.Request) (*Task, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return nil, false
	}
	t, ok := s.tasks[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return nil, false
	}
	return t, true
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.taskFromPath(w, r); ok {
		writeJSON(w, http.StatusOK, t)
	}
}

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.taskFromPath(w, r); ok {
		writeJSON(w, http.StatusOK, s.attachmentsOf(t.ID))
	}
}

// maxUploadSize mirrors the backend's upload limit
const maxUploadSize = 10 << 20

func (s *Server) handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		fieldError(w, "file", "The submitted data was not a file.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		fieldError(w, "file", "No file was submitted.")
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		fieldError(w, "file", "The submitted data was not a file.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.taskFromPath(w, r)
	if !ok {
		return
	}
	a := &Attachment{
		ID:         s.id(),
		Task:       t.ID,
		File:       fmt.Sprintf("/media/attachments/%d/%s", t.ID, header.Filename),
		FileSize:   header.Size,
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
		Content:    content,
		Filename:   header.Filename,
	}
	s.attachments[a.ID] = a
	writeJSON(w, http.StatusCreated, a)
}
