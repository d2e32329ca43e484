package backendtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
)

func do(t *testing.T, s *Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestServer_Login(t *testing.T) {
	s := New(t)
	s.AddUser(User{Username: "max", Email: "max@firm.de", IsActive: true}, "correct-horse")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{name: "by email", body: map[string]string{"email": "max@firm.de", "password": "correct-horse"}, wantStatus: http.StatusOK},
		{name: "by username", body: map[string]string{"username": "max", "password": "correct-horse"}, wantStatus: http.StatusOK},
		{name: "wrong password", body: map[string]string{"username": "max", "password": "nope"}, wantStatus: http.StatusBadRequest},
		{name: "unknown user", body: map[string]string{"username": "moritz", "password": "correct-horse"}, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := do(t, s, http.MethodPost, "/api/auth/login/", "", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (%v)", tt.wantStatus, resp.StatusCode, out)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			access, _ := out["access"].(string)
			refresh, _ := out["refresh"].(string)
			if access == "" || refresh == "" {
				t.Errorf("expected both tokens, got %v", out)
			}
		})
	}
}

func TestServer_RequireAuth(t *testing.T) {
	s := New(t)
	id := s.AddUser(User{Username: "max", IsActive: true}, "correct-horse")
	access, refresh := s.IssueTokens(id)

	if resp, _ := do(t, s, http.MethodGet, "/api/auth/user/", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
	if resp, _ := do(t, s, http.MethodGet, "/api/auth/user/", access, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", resp.StatusCode)
	}

	s.ExpireAccessTokens()
	if resp, _ := do(t, s, http.MethodGet, "/api/auth/user/", access, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after expiry, got %d", resp.StatusCode)
	}

	resp, out := do(t, s, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": refresh})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected refresh to succeed, got %d", resp.StatusCode)
	}
	fresh, _ := out["access"].(string)
	if resp, _ := do(t, s, http.MethodGet, "/api/auth/user/", fresh, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("expected the refreshed token to work, got %d", resp.StatusCode)
	}

	s.RevokeRefreshTokens()
	if resp, _ := do(t, s, http.MethodPost, "/api/token/refresh/", "", map[string]string{"refresh": refresh}); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected a revoked refresh token to fail, got %d", resp.StatusCode)
	}
}

func TestServer_Logout(t *testing.T) {
	s := New(t)
	id := s.AddUser(User{Username: "max", IsActive: true}, "correct-horse")
	access, _ := s.IssueTokens(id)

	if resp, _ := do(t, s, http.MethodPost, "/api/auth/logout/", access, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected logout to succeed, got %d", resp.StatusCode)
	}
	if resp, _ := do(t, s, http.MethodGet, "/api/auth/user/", access, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected the token to be blacklisted, got %d", resp.StatusCode)
	}
}

func TestServer_RequireAdmin(t *testing.T) {
	s := New(t)
	firm := s.AddFirm("Muster GmbH")
	worker := s.AddUser(User{Username: "max", Firm: &firm, IsActive: true}, "correct-horse")
	access, _ := s.IssueTokens(worker)

	if resp, _ := do(t, s, http.MethodGet, "/api/auth/users/", access, nil); resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for a non-admin, got %d", resp.StatusCode)
	}
}

func TestServer_Fail(t *testing.T) {
	s := New(t)
	id := s.AddUser(User{Username: "max", IsActive: true}, "correct-horse")
	access, _ := s.IssueTokens(id)
	s.Fail(http.MethodGet, "/api/auth/user/", http.StatusServiceUnavailable, 2)

	var statuses []int
	for range 3 {
		resp, _ := do(t, s, http.MethodGet, "/api/auth/user/", access, nil)
		statuses = append(statuses, resp.StatusCode)
	}
	want := []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("request %d: expected %d, got %d", i, want[i], statuses[i])
		}
	}
	if n := len(s.Requests(http.MethodGet, "/api/auth/user/")); n != 3 {
		t.Errorf("expected failed requests to be recorded, got %d", n)
	}

	s.Fail(http.MethodGet, "/api/auth/user/", http.StatusBadGateway, -1)
	s.Recover()
	if resp, _ := do(t, s, http.MethodGet, "/api/auth/user/", access, nil); resp.StatusCode != http.StatusOK {
		t.Errorf("expected Recover to clear faults, got %d", resp.StatusCode)
	}
}

func TestServer_SequentialIDs(t *testing.T) {
	s := New(t)
	firm := s.AddFirm("Muster GmbH")
	user := s.AddUser(User{Username: "max", Firm: &firm, IsActive: true}, "correct-horse")
	s.IssueTokens(user)
	project := s.AddProject(Project{Firm: firm, Name: "Abschluss"})

	if user != firm+1 || project != user+1 {
		t.Errorf("expected sequential ids, got firm=%d user=%d project=%d", firm, user, project)
	}
	if p := s.Projects(); len(p) != 1 || p[0].Status != "active" {
		t.Errorf("expected an active project, got %+v", p)
	}
}
