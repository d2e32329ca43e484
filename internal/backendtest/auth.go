package backendtest

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type contextKey struct{}

type authService struct {
	secretKey []byte
}

func newAuthService(secretKey []byte) *authService {
	return &authService{secretKey: secretKey}
}

// accessToken signs an HS256 token for userID
func (a *authService) accessToken(userID, version int, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     strconv.Itoa(userID),
		"gen":     version,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		"jti":     uuid.NewString(),
		"user_id": userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secretKey)
}

func (a *authService) validate(tokenString string) (userID, version int, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secretKey, nil
	})
	if err != nil {
		return 0, 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, 0, jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	userID, err = strconv.Atoi(sub)
	if err != nil {
		return 0, 0, jwt.ErrTokenInvalidClaims
	}
	gen, _ := claims["gen"].(float64)
	return userID, int(gen), nil
}

// hashPassword uses the lowest bcrypt cost to keep tests fast
func (a *authService) hashPassword(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}

func (a *authService) verifyPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

func refreshToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base64.URLEncoding.EncodeToString(b)
}

func newInvitationToken() string {
	return uuid.NewString()
}

// IssueTokens returns a fresh access/refresh pair for userID
func (s *Server) IssueTokens(userID int) (access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(userID)
}

func (s *Server) issue(userID int) (string, string) {
	access, err := s.auth.accessToken(userID, s.tokenVersion, s.AccessTTL)
	if err != nil {
		panic(err)
	}
	refresh := refreshToken()
	s.refresh[refresh] = userID
	return access, refresh
}

// ExpireAccessTokens invalidates every access token issued so far.
// Refresh tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenVersion++
}

// RevokeRefreshTokens invalidates every refresh token issued so far
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = map[string]int{}
}

// requireAuth validates the bearer token and attaches the user to the context
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}

		userID, version, err := s.auth.validate(strings.TrimPrefix(header, "Bearer "))
		s.mu.Lock()
		stale := version < s.tokenVersion || s.blacklisted[header]
		user, ok := s.users[userID]
		active := ok && user.IsActive
		s.mu.Unlock()

		if err != nil || stale {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
			})
			return
		}
		if !active {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "User not found or inactive",
			})
			return
		}

		ctx := context.WithValue(r.Context(), contextKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin refuses callers without the admin flag
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		u := s.users[userFromContext(r)]
		admin := u != nil && u.IsAdmin
		s.mu.Unlock()

		if !admin {
			writeJSON(w, http.StatusForbidden, map[string]string{
				"detail": "You do not have permission to perform this action.",
			})
			return
		}
		next(w, r)
	}
}

func userFromContext(r *http.Request) int {
	id, _ := r.Context().Value(contextKey{}).(int)
	return id
}

func readBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid request body"})
		return false
	}
	return true
}

type tokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var found *User
	for _, u := range s.users {
		if (req.Username != "" && u.Username == req.Username) || (req.Email != "" && strings.EqualFold(u.Email, req.Email)) {
			found = u
			break
		}
	}
	if found == nil || !found.IsActive || !s.auth.verifyPassword(found.passwordHash, req.Password) {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"non_field_errors": {"Unable to log in with provided credentials."},
		})
		return
	}

	access, refresh := s.issue(found.ID)
	writeJSON(w, http.StatusOK, tokenResponse{Access: access, Refresh: refresh, User: *found})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		Password1 string `json:"password1"`
		Password2 string `json:"password2"`
	}
	if !decode(w, r, &req) {
		return
	}

	errs := map[string][]string{}
	if req.Username == "" {
		errs["username"] = append(errs["username"], "This field may not be blank.")
	}
	if req.Email == "" {
		errs["email"] = append(errs["email"], "This field may not be blank.")
	}
	if req.Password1 != req.Password2 {
		errs["non_field_errors"] = append(errs["non_field_errors"], "The two password fields didn't match.")
	}
	if len(req.Password1) < 8 {
		errs["password1"] = append(errs["password1"], "This password is too short. It must contain at least 8 characters.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == req.Username {
			errs["username"] = append(errs["username"], "A user with that username already exists.")
		}
		if strings.EqualFold(u.Email, req.Email) {
			errs["email"] = append(errs["email"], "A user is already registered with this e-mail address.")
		}
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	u := &User{ID: s.id(), Username: req.Username, Email: req.Email, IsActive: true}
	u.passwordHash = s.auth.hashPassword(req.Password1)
	s.users[u.ID] = u

	access, refresh := s.issue(u.ID)
	writeJSON(w, http.StatusCreated, tokenResponse{Access: access, Refresh: refresh, User: *u})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.refresh[req.Refresh]
	if !ok || req.Refresh == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}

	access, err := s.auth.accessToken(userID, s.tokenVersion, s.AccessTTL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.blacklisted[r.Header.Get("Authorization")] = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Successfully logged out."})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.users[userFromContext(r)])
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[userFromContext(r)]
	if req.Username != nil {
		for _, other := range s.users {
			if other.ID != u.ID && other.Username == *req.Username {
				fieldError(w, "username", "A user with that username already exists.")
				return
			}
		}
		u.Username = *req.Username
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleSetColor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HexColor string `json:"hex_color"`
	}
	if !decode(w, r, &req) {
		return
	}
	if len(req.HexColor) != 6 {
		fieldError(w, "hex_color", "Ensure this field has exactly 6 characters.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userFromContext(r)]
	u.HexColor = req.HexColor
	writeJSON(w, http.StatusOK, u)
}
