package forms

import (
	"strings"

	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/i18n"
)

// DefaultColor is preselected on forms that ask for a color
const DefaultColor = "000000"

// Login is the sign-in form
type Login struct {
	Identifier string
	Password   string
}

// Validate checks that both fields are filled
func (f Login) Validate() error {
	if err := required("login", f.Identifier, i18n.MsgIdentifierRequired); err != nil {
		return err
	}
	return required("password", f.Password, i18n.MsgPasswordRequired)
}

// Register is the sign-up form. Confirm must repeat Password.
type Register struct {
	Email    string
	Username string
	Password string
	Confirm  string
}

// Validate checks the form in display order
func (f Register) Validate() error {
	if err := required("email", f.Email, i18n.MsgEmailRequired); err != nil {
		return err
	}
	if err := required("username", f.Username, i18n.MsgUsernameRequired); err != nil {
		return err
	}
	if f.Password != f.Confirm {
		return invalid("password2", i18n.MsgPasswordMismatch)
	}
	return password("password1", f.Password)
}

// CreateUser is the admin form adding a member to the firm
type CreateUser struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	HexColor    string
	IsFirmAdmin bool
}

// Request validates the form and builds the request body. An empty color
// falls back to DefaultColor.
func (f CreateUser) Request() (api.CreateUserRequest, error) {
	if err := required("username", f.Username, i18n.MsgUsernameRequired); err != nil {
		return api.CreateUserRequest{}, err
	}
	if err := required("email", f.Email, i18n.MsgEmailRequired); err != nil {
		return api.CreateUserRequest{}, err
	}
	if err := password("password", f.Password); err != nil {
		return api.CreateUserRequest{}, err
	}

	raw := f.HexColor
	if strings.TrimSpace(raw) == "" {
		raw = DefaultColor
	}
	hex, err := color("hex_color", raw)
	if err != nil {
		return api.CreateUserRequest{}, err
	}

	return api.CreateUserRequest{
		Username:    strings.TrimSpace(f.Username),
		Email:       strings.TrimSpace(f.Email),
		Password:    f.Password,
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		HexColor:    hex,
		IsFirmAdmin: f.IsFirmAdmin,
	}, nil
}

// AcceptInvitation registers through an invitation link
type AcceptInvitation struct {
	Token     string
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	HexColor  string
}

// Request validates token, email, username, password and color, in that
// order, and builds the request body
func (f AcceptInvitation) Request() (api.AcceptInvitationRequest, error) {
	if strings.TrimSpace(f.Token) == "" {
		return api.AcceptInvitationRequest{}, invalid("invitation_token", i18n.MsgTokenMissing)
	}
	if err := required("email", f.Email, i18n.MsgEmailRequired); err != nil {
		return api.AcceptInvitationRequest{}, err
	}
	if err := required("username", f.Username, i18n.MsgUsernameRequired); err != nil {
		return api.AcceptInvitationRequest{}, err
	}
	if err := password("password", f.Password); err != nil {
		return api.AcceptInvitationRequest{}, err
	}
	hex, err := color("hex_color", f.HexColor)
	if err != nil {
		return api.AcceptInvitationRequest{}, err
	}

	return api.AcceptInvitationRequest{
		InvitationToken: strings.TrimSpace(f.Token),
		Email:           strings.TrimSpace(f.Email),
		Username:        strings.TrimSpace(f.Username),
		Password:        f.Password,
		FirstName:       strings.TrimSpace(f.FirstName),
		LastName:        strings.TrimSpace(f.LastName),
		HexColor:        hex,
	}, nil
}

// SendInvitation invites someone to a project
type SendInvitation struct {
	Email   string
	Project int
}

// Validate requires an email address
func (f SendInvitation) Validate() error {
	return required("email", f.Email, i18n.MsgEmailRequired)
}

// Profile is a partial profile update; nil fields stay unchanged
type Profile struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// Request validates the set fields and builds the update
func (f Profile) Request() (api.ProfileUpdate, error) {
	if f.Username != nil {
		if err := required("username", *f.Username, i18n.MsgUsernameRequired); err != nil {
			return api.ProfileUpdate{}, err
		}
	}
	if f.Email != nil {
		if err := required("email", *f.Email, i18n.MsgEmailRequired); err != nil {
			return api.ProfileUpdate{}, err
		}
	}
	return api.ProfileUpdate{
		Username:  f.Username,
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
	}, nil
}
