package backendtest

import (
	"net/http"
	"strconv"
	"strings"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	firm := s.callerFirm(r)
	out := []User{}
	for _, u := range s.users {
		if u.Firm != nil && *u.Firm == firm {
			out = append(out, *u)
		}
	}
	sortByID(out, func(u User) int { return u.ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		HexColor    string `json:"hex_color"`
		IsFirmAdmin bool   `json:"is_firm_admin"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	errs := map[string][]string{}
	if req.Username == "" {
		errs["username"] = []string{"This field may not be blank."}
	}
	if len(req.Password) < 8 {
		errs["password"] = []string{"This password is too short. It must contain at least 8 characters."}
	}
	for _, u := range s.users {
		if u.Username == req.Username {
			errs["username"] = append(errs["username"], "A user with that username already exists.")
		}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	firm := s.callerFirm(r)
	u := &User{
		ID:        s.id(),
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		HexColor:  req.HexColor,
		Firm:      &firm,
		IsAdmin:   req.IsFirmAdmin,
		IsActive:  true,
	}
	u.passwordHash = s.auth.hashPassword(req.Password)
	s.users[u.ID] = u
	if f, ok := s.firms[firm]; ok {
		f.Workers = append(f.Workers, u.ID)
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleToggleActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int `json:"user_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	firm, err := strconv.Atoi(r.URL.Query().Get("firm"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "firm parameter required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	caller := userFromContext(r)
	if firm != s.callerFirm(r) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Not a member of this firm"})
		return
	}
	target, ok := s.users[req.UserID]
	if !ok || target.Firm == nil || *target.Firm != firm {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		return
	}
	if target.ID == caller {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "You cannot deactivate yourself"})
		return
	}
	target.IsActive = !target.IsActive
	writeJSON(w, http.StatusOK, map[string]any{"user_id": target.ID, "is_active": target.IsActive})
}

func (s *Server) handleSendInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		Project int    `json:"project"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !strings.Contains(req.Email, "@") {
		fieldError(w, "email", "Enter a valid email address.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[req.Project]; !ok {
		fieldError(w, "project", "Project not found.")
		return
	}
	inv := &Invitation{Email: req.Email, Project: req.Project, Token: newInvitationToken()}
	s.invitations[inv.Token] = inv
	writeJSON(w, http.StatusCreated, map[string]string{"detail": "Invitation sent."})
}

func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvitationToken string `json:"invitation_token"`
		Email           string `json:"email"`
		Username        string `json:"username"`
		Password        string `json:"password"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		HexColor        string `json:"hex_color"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invitations[req.InvitationToken]
	if !ok || inv.Accepted {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid or expired invitation"})
		return
	}
	if !strings.EqualFold(inv.Email, req.Email) {
		fieldError(w, "email", "Email does not match the invitation.")
		return
	}
	for _, u := range s.users {
		if u.Username == req.Username {
			fieldError(w, "username", "A user with that username already exists.")
			return
		}
	}

	u := &User{
		ID:        s.id(),
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		HexColor:  req.HexColor,
		IsActive:  true,
	}
	if p, ok := s.projects[inv.Project]; ok && p.Firm != 0 {
		firm := p.Firm
		u.Firm = &firm
		if f, ok := s.firms[firm]; ok {
			f.Workers = append(f.Workers, u.ID)
		}
	}
	u.passwordHash = s.auth.hashPassword(req.Password)
	s.users[u.ID] = u
	inv.Accepted = true
	writeJSON(w, http.StatusCreated, map[string]string{"detail": "Invitation accepted."})
}
