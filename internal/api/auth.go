package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mark-chris/checklist/internal/session"
	"go.uber.org/zap"
)

// Backend routes
const (
	pathLogin        = "/api/auth/login/"
	pathRegister     = "/api/auth/registration/"
	pathRefresh      = "/api/token/refresh/"
	pathLogout       = "/api/auth/logout/"
	pathUser         = "/api/auth/user/"
	pathSetColor     = "/api/auth/set_color/"
	pathUsers        = "/api/auth/users/"
	pathCreateUser   = "/api/auth/users/create/"
	pathToggleActive = "/api/auth/toggle_active/"
	pathInviteSend   = "/api/auth/invitations/send/"
	pathInviteAccept = "/api/auth/invitations/accept/"
	pathFirms        = "/api/organisation/firms/"
	pathJoinFirm     = "/api/organisation/join_firm/"
	pathOnboarding   = "/api/organisation/check_onboarding/"
	pathProjects     = "/api/organisation/projects/"
	pathTasks        = "/api/organisation/tasks/"
)

// AuthenticatedClient wraps Client with the session credentials
type AuthenticatedClient struct {
	client    *Client
	session   session.Store
	onExpired func()
}

// NewAuthenticatedClient creates a new authenticated API client
func NewAuthenticatedClient(baseURL string, store session.Store, opts ...Option) *AuthenticatedClient {
	return &AuthenticatedClient{
		client:  NewClient(baseURL, opts...),
		session: store,
	}
}

// OnSessionExpired registers fn to run after an irrecoverable refresh
// failure, once both credentials have been cleared
func (ac *AuthenticatedClient) OnSessionExpired(fn func()) {
	ac.onExpired = fn
}

// LoginRequest is the login body. Exactly one of Username or Email is set.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// NewLoginRequest applies the single identifier rule used everywhere:
// an identifier containing "@" is an email, anything else a username.
func NewLoginRequest(identifier, password string) LoginRequest {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return LoginRequest{Email: identifier, Password: password}
	}
	return LoginRequest{Username: identifier, Password: password}
}

// TokenResponse is returned by login and registration
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    *User  `json:"user,omitempty"`
}

// RegisterRequest is the registration body
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// ProfileUpdate is a partial user update; nil fields are left untouched
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// Do executes req with the current access token attached. On a 401 it
// exchanges the refresh token for a new access token and replays req once.
// Without a refresh token the 401 response is returned as is. If the refresh
// itself fails, both credentials are cleared and ErrSessionExpired returned.
func (ac *AuthenticatedClient) Do(req *http.Request) (*http.Response, error) {
	ac.authorize(req)

	resp, err := ac.client.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	refreshToken, err := ac.session.Get(session.RefreshToken)
	if err != nil || refreshToken == "" {
		return resp, nil
	}
	drain(resp)

	access, err := ac.exchange(req.Context(), refreshToken)
	if err != nil {
		ac.expire()
		return nil, &sessionExpiredError{cause: err}
	}

	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to reset request body: %w", err)
		}
		req.Body = body
	}
	req.Header.Set("Authorization", "Bearer "+access)

	return ac.client.send(req)
}

func (ac *AuthenticatedClient) authorize(req *http.Request) {
	token, err := ac.session.Get(session.AccessToken)
	if err != nil || token == "" {
		req.Header.Del("Authorization")
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// exchange trades a refresh token for an access token and stores it
func (ac *AuthenticatedClient) exchange(ctx context.Context, refreshToken string) (string, error) {
	req, err := ac.client.newJSONRequest(ctx, http.MethodPost, pathRefresh, nil, refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}
	resp, err := ac.client.send(req)
	if err != nil {
		return "", err
	}

	var out refreshResponse
	if err := decodeResponse(resp, &out); err != nil {
		return "", err
	}
	if out.Access == "" {
		return "", errors.New("refresh response carried no access token")
	}
	if err := ac.session.Set(session.AccessToken, out.Access, session.AccessTTL); err != nil {
		return "", err
	}
	return out.Access, nil
}

func (ac *AuthenticatedClient) expire() {
	if err := session.Clear(ac.session); err != nil {
		ac.client.logger.Warn("failed to clear session", zap.Error(err))
	}
	if ac.onExpired != nil {
		ac.onExpired()
	}
}

// call sends an authenticated JSON request and decodes the response into out
func (ac *AuthenticatedClient) call(ctx context.Context, method, path string, query url.Values, in, out any) error {
	req, err := ac.client.newJSONRequest(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	resp, err := ac.Do(req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

// callPublic sends a JSON request to an endpoint that needs no credentials
func (ac *AuthenticatedClient) callPublic(ctx context.Context, method, path string, in, out any) error {
	req, err := ac.client.newJSONRequest(ctx, method, path, nil, in)
	if err != nil {
		return err
	}
	resp, err := ac.client.send(req)
	if err != nil {
		return err
	}
	err = decodeResponse(resp, out)
	var apiErr *Error
	if errors.As(err, &apiErr) {
		apiErr.Public = true
	}
	return err
}

// Login authenticates with a username or email and stores both tokens
func (ac *AuthenticatedClient) Login(ctx context.Context, identifier, password string) (*TokenResponse, error) {
	var out TokenResponse
	if err := ac.callPublic(ctx, http.MethodPost, pathLogin, NewLoginRequest(identifier, password), &out); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if err := session.Save(ac.session, out.Access, out.Refresh); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &out, nil
}

// Register creates an account and stores both tokens
func (ac *AuthenticatedClient) Register(ctx context.Context, email, username, password string) (*TokenResponse, error) {
	body := RegisterRequest{
		Email:     email,
		Username:  username,
		Password1: password,
		Password2: password,
	}

	var out TokenResponse
	if err := ac.callPublic(ctx, http.MethodPost, pathRegister, body, &out); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	if err := session.Save(ac.session, out.Access, out.Refresh); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return &out, nil
}

// RefreshToken exchanges the stored refresh token for a new access token.
// Any failure clears both credentials.
func (ac *AuthenticatedClient) RefreshToken(ctx context.Context) (string, error) {
	refreshToken, err := ac.session.Get(session.RefreshToken)
	if err != nil {
		_ = session.Clear(ac.session)
		return "", fmt.Errorf("no refresh token available: %w", ErrNotAuthenticated)
	}

	access, err := ac.exchange(ctx, refreshToken)
	if err != nil {
		_ = session.Clear(ac.session)
		return "", fmt.Errorf("token refresh failed: %w", err)
	}
	return access, nil
}

// Logout invalidates the session on the server when possible and always
// removes the local credentials
func (ac *AuthenticatedClient) Logout(ctx context.Context) error {
	if err := ac.call(ctx, http.MethodPost, pathLogout, nil, nil, nil); err != nil {
		ac.client.logger.Debug("server-side logout failed", zap.Error(err))
	}
	if err := session.Clear(ac.session); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// IsAuthenticated reports whether an access token is stored
func (ac *AuthenticatedClient) IsAuthenticated() bool {
	return session.IsAuthenticated(ac.session)
}

// CurrentUser fetches the authenticated user's profile
func (ac *AuthenticatedClient) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := ac.call(ctx, http.MethodGet, pathUser, nil, nil, &u); err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	return &u, nil
}

// UpdateProfile applies a partial update and returns the updated user
func (ac *AuthenticatedClient) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var u User
	if err := ac.call(ctx, http.MethodPatch, pathUser, nil, update, &u); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &u, nil
}

// SetColor stores the user's identifying color (six hex digits, no "#")
func (ac *AuthenticatedClient) SetColor(ctx context.Context, hex string) error {
	body := map[string]string{"hex_color": hex}
	if err := ac.call(ctx, http.MethodPatch, pathSetColor, nil, body, nil); err != nil {
		return fmt.Errorf("failed to set color: %w", err)
	}
	return nil
}
