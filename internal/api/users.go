package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// CreateUserRequest is the admin user-creation body
type CreateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	HexColor    string `json:"hex_color"`
	IsFirmAdmin bool   `json:"is_firm_admin"`
}

// ListUsers returns the members of the caller's firm. Admin only.
func (ac *AuthenticatedClient) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := ac.call(ctx, http.MethodGet, pathUsers, nil, nil, &users); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUser adds a user to the caller's firm. Admin only.
func (ac *AuthenticatedClient) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	var u User
	if err := ac.call(ctx, http.MethodPost, pathCreateUser, nil, in, &u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

// ToggleActive flips the active flag of userID within firmID
func (ac *AuthenticatedClient) ToggleActive(ctx context.Context, firmID, userID int) error {
	query := url.Values{"firm": []string{strconv.Itoa(firmID)}}
	body := map[string]int{"user_id": userID}
	if err := ac.call(ctx, http.MethodPatch, pathToggleActive, query, body, nil); err != nil {
		return fmt.Errorf("failed to toggle user %d: %w", userID, err)
	}
	return nil
}
