package api

import (
	"context"
	"fmt"
	"net/http"
)

// AcceptInvitationRequest registers a new user through an invitation link
type AcceptInvitationRequest struct {
	InvitationToken string `json:"invitation_token"`
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	HexColor        string `json:"hex_color"`
}

// SendInvitation emails an invitation to join project
func (ac *AuthenticatedClient) SendInvitation(ctx context.Context, email string, project int) error {
	body := Invitation{Email: email, Project: project}
	if err := ac.call(ctx, http.MethodPost, pathInviteSend, nil, body, nil); err != nil {
		return fmt.Errorf("failed to send invitation: %w", err)
	}
	return nil
}

// AcceptInvitation redeems an invitation token. The endpoint is public.
func (ac *AuthenticatedClient) AcceptInvitation(ctx context.Context, in AcceptInvitationRequest) error {
	if err := ac.callPublic(ctx, http.MethodPost, pathInviteAccept, in, nil); err != nil {
		return fmt.Errorf("failed to accept invitation: %w", err)
	}
	return nil
}
