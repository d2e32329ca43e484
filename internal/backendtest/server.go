// Package backendtest runs an in-memory checklist backend for tests.
//
// It serves the same routes as the real backend with the same JSON shapes,
// issues HS256 access tokens and opaque refresh tokens, records every request,
// and can be told to fail specific routes.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"
)

// User is a stored account
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	HexColor     string `json:"hex_color"`
	Firm         *int   `json:"firm"`
	IsCreator    bool   `json:"is_creator"`
	IsAdmin      bool   `json:"is_admin"`
	IsActive     bool   `json:"is_active"`
	passwordHash []byte
}

// Firm is a stored organisation
type Firm struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Workers []int  `json:"workers"`
}

// Project is a stored project
type Project struct {
	ID                int     `json:"id"`
	Firm              int     `json:"-"`
	Name              string  `json:"name"`
	Partner           *int    `json:"partner"`
	IsOneTime         bool    `json:"is_one_time"`
	RecurrencePattern *string `json:"recurrence_pattern"`
	StartDate         string  `json:"start_date"`
	EndDate           *string `json:"end_date"`
	Status            string  `json:"status"`
}

// Task is a stored task
type Task struct {
	ID            int     `json:"id"`
	Project       int     `json:"project"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Level         int     `json:"level"`
	Duration      string  `json:"duration"`
	StartDatetime *string `json:"start_datetime"`
	EndDatetime   *string `json:"end_datetime"`
	AssignedUsers []int   `json:"assigned_users"`
	Status        string  `json:"status"`
	IsVeto        bool    `json:"is_veto"`
}

// Attachment is a stored upload
type Attachment struct {
	ID         int    `json:"id"`
	Task       int    `json:"task"`
	File       string `json:"file"`
	FileSize   int64  `json:"file_size"`
	UploadedAt string `json:"uploaded_at"`
	Content    []byte `json:"-"`
	Filename   string `json:"-"`
}

// Invitation is a pending invite
type Invitation struct {
	Email    string `json:"email"`
	Project  int    `json:"project"`
	Token    string `json:"token"`
	Accepted bool   `json:"-"`
}

// Request is one recorded request
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	Body          []byte
}

type fault struct {
	status    int
	remaining int
}

// Server is the fake backend
type Server struct {
	*httptest.Server

	// AccessTTL is the lifetime of newly issued access tokens
	AccessTTL time.Duration

	mu           sync.Mutex
	auth         *authService
	users        map[int]*User
	firms        map[int]*Firm
	projects     map[int]*Project
	tasks        map[int]*Task
	attachments  map[int]*Attachment
	invitations  map[string]*Invitation
	refresh      map[string]int
	blacklisted  map[string]bool
	faults       map[string]*fault
	requests     []Request
	nextID       int
	tokenVersion int
}

// New starts a fake backend that is closed when the test ends
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		AccessTTL:   time.Hour,
		auth:        newAuthService([]byte("backendtest-secret")),
		users:       map[int]*User{},
		firms:       map[int]*Firm{},
		projects:    map[int]*Project{},
		tasks:       map[int]*Task{},
		attachments: map[int]*Attachment{},
		invitations: map[string]*Invitation{},
		refresh:     map[string]int{},
		blacklisted: map[string]bool{},
		faults:      map[string]*fault{},
	}
	s.Server = httptest.NewServer(s.record(s.inject(s.routes())))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login/{$}", s.handleLogin)
	mux.HandleFunc("POST /api/auth/registration/{$}", s.handleRegister)
	mux.HandleFunc("POST /api/token/refresh/{$}", s.handleRefresh)
	mux.HandleFunc("POST /api/auth/invitations/accept/{$}", s.handleAcceptInvitation)

	mux.Handle("POST /api/auth/logout/{$}", s.requireAuth(s.handleLogout))
	mux.Handle("GET /api/auth/user/{$}", s.requireAuth(s.handleGetUser))
	mux.Handle("PATCH /api/auth/user/{$}", s.requireAuth(s.handleUpdateUser))
	mux.Handle("PATCH /api/auth/set_color/{$}", s.requireAuth(s.handleSetColor))
	mux.Handle("GET /api/auth/users/{$}", s.requireAuth(s.requireAdmin(s.handleListUsers)))
	mux.Handle("POST /api/auth/users/create/{$}", s.requireAuth(s.requireAdmin(s.handleCreateUser)))
	mux.Handle("PATCH /api/auth/toggle_active/{$}", s.requireAuth(s.requireAdmin(s.handleToggleActive)))
	mux.Handle("POST /api/auth/invitations/send/{$}", s.requireAuth(s.handleSendInvitation))

	mux.Handle("GET /api/organisation/firms/{$}", s.requireAuth(s.handleListFirms))
	mux.Handle("POST /api/organisation/firms/{$}", s.requireAuth(s.handleCreateFirm))
	mux.Handle("POST /api/organisation/join_firm/{$}", s.requireAuth(s.handleJoinFirm))
	mux.Handle("GET /api/organisation/check_onboarding/{$}", s.requireAuth(s.handleCheckOnboarding))
	mux.Handle("GET /api/organisation/projects/{$}", s.requireAuth(s.handleListProjects))
	mux.Handle("POST /api/organisation/projects/{$}", s.requireAuth(s.handleCreateProject))
	mux.Handle("GET /api/organisation/tasks/{$}", s.requireAuth(s.handleListTasks))
	mux.Handle("POST /api/organisation/tasks/{$}", s.requireAuth(s.handleCreateTask))
	mux.Handle("GET /api/organisation/tasks/{id}/{$}", s.requireAuth(s.handleGetTask))
	mux.Handle("GET /api/organisation/tasks/{id}/attachments/{$}", s.requireAuth(s.handleListAttachments))
	mux.Handle("POST /api/organisation/tasks/{id}/attachments/{$}", s.requireAuth(s.handleUploadAttachment))

	return mux
}

// record keeps a copy of every request, body included
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := readBody(r)
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// inject answers with a configured failure status while one is pending
func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.faults[r.Method+" "+r.URL.Path]
		if ok && f.remaining != 0 {
			if f.remaining > 0 {
				f.remaining--
			}
			status := f.status
			s.mu.Unlock()
			writeJSON(w, status, map[string]string{"detail": http.StatusText(status)})
			return
		}
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// Fail makes the next times requests to method+path answer with status.
// A negative times fails every request until Recover is called.
func (s *Server) Fail(method, path string, status, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" "+path] = &fault{status: status, remaining: times}
}

// Recover removes every configured failure
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]*fault{}
}

// Requests returns recorded requests matching method and path.
// An empty method or path matches anything.
func (s *Server) Requests(method, path string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

// ResetRequests forgets recorded requests
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) id() int {
	s.nextID++
	return s.nextID
}

// AddUser stores a user with password and returns its id
func (s *Server) AddUser(u User, password string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	u.passwordHash = s.auth.hashPassword(password)
	s.users[u.ID] = &u
	if u.Firm != nil {
		if f, ok := s.firms[*u.Firm]; ok {
			f.Workers = append(f.Workers, u.ID)
		}
	}
	return u.ID
}

// AddFirm stores a firm and returns its id
func (s *Server) AddFirm(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &Firm{ID: s.id(), Name: name, Workers: []int{}}
	s.firms[f.ID] = f
	return f.ID
}

// AddProject stores a project and returns its id
func (s *Server) AddProject(p Project) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	if p.Status == "" {
		p.Status = "active"
	}
	s.projects[p.ID] = &p
	return p.ID
}

// AddTask stores a task as is and returns its id
func (s *Server) AddTask(t Task) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	if t.Status == "" {
		t.Status = "new"
	}
	if t.AssignedUsers == nil {
		t.AssignedUsers = []int{}
	}
	s.tasks[t.ID] = &t
	return t.ID
}

// AddInvitation stores an invitation and returns its token
func (s *Server) AddInvitation(email string, project int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := &Invitation{Email: email, Project: project, Token: newInvitationToken()}
	s.invitations[inv.Token] = inv
	return inv.Token
}

// User returns a copy of a stored user
func (s *Server) User(id int) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// UserByUsername returns a copy of a stored user
func (s *Server) UserByUsername(username string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return *u, true
		}
	}
	return User{}, false
}

// Firms returns every stored firm ordered by id
func (s *Server) Firms() []Firm {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Firm, 0, len(s.firms))
	for _, f := range s.firms {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Projects returns every stored project ordered by id
func (s *Server) Projects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Tasks returns the tasks of a project ordered by id
func (s *Server) Tasks(project int) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasksOf(project)
}

func (s *Server) tasksOf(project int) []Task {
	out := []Task{}
	for _, t := range s.tasks {
		if t.Project == project {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Attachments returns the attachments of a task ordered by id
func (s *Server) Attachments(task int) []Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attachmentsOf(task)
}

func (s *Server) attachmentsOf(task int) []Attachment {
	out := []Attachment{}
	for _, a := range s.attachments {
		if a.Task == task {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Invitations returns every stored invitation
func (s *Server) Invitations() []Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Invitation, 0, len(s.invitations))
	for _, inv := range s.invitations {
		out = append(out, *inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func sortByID[T any](items []T, id func(T) int) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func fieldError(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string][]string{field: {msg}})
}
