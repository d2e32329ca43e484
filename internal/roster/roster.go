// Package roster is the admin view of a firm's members.
package roster

import (
	"context"
	"errors"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/mutation"
)

var (
	ErrAdminRequired    = i18n.NewError(i18n.MsgAdminRequired)
	ErrToggleNotAllowed = i18n.NewError(i18n.MsgToggleNotAllowed)
	ErrToggleSelf       = i18n.NewError(i18n.MsgToggleSelf)

	ErrUnknownUser = errors.New("roster: unknown user")
)

// Role orders members in the list; lower ranks come first
type Role int

const (
	RoleCreator Role = iota
	RoleAdmin
	RoleEmployee
)

// RoleOf returns the highest role u holds
func RoleOf(u api.User) Role {
	switch {
	case u.IsCreator:
		return RoleCreator
	case u.IsAdmin:
		return RoleAdmin
	default:
		return RoleEmployee
	}
}

// Label returns the localized role name
func (r Role) Label(p *message.Printer) string {
	switch r {
	case RoleCreator:
		return p.Sprintf(i18n.MsgRoleCreator)
	case RoleAdmin:
		return p.Sprintf(i18n.MsgRoleAdmin)
	default:
		return p.Sprintf(i18n.MsgRoleEmployee)
	}
}

// IsEmployee reports whether u is neither admin nor creator. Only employees
// can be activated or deactivated.
func IsEmployee(u api.User) bool {
	return !u.IsAdmin && !u.IsCreator
}

// Sort orders users by role, then by username ignoring case and accents
func Sort(users []api.User) {
	c := collate.New(language.German, collate.IgnoreCase, collate.IgnoreDiacritics)
	slices.SortStableFunc(users, func(a, b api.User) int {
		if d := RoleOf(a) - RoleOf(b); d != 0 {
			return int(d)
		}
		return c.CompareString(a.Username, b.Username)
	})
}

// Backend is the part of the API the roster uses
type Backend interface {
	CurrentUser(ctx context.Context) (*api.User, error)
	ListUsers(ctx context.Context) ([]api.User, error)
	ToggleActive(ctx context.Context, firmID, userID int) error
}

// ToggleError reports a failed toggle after the local change was reverted
type ToggleError struct {
	UserID int
	Err    error
}

func (e *ToggleError) Error() string {
	return "toggle failed: " + e.Err.Error()
}

func (e *ToggleError) Unwrap() error {
	return e.Err
}

// MessageKey shows the backend's message when it sent one, the status
// otherwise, and the transport error for network failures
func (e *ToggleError) MessageKey() (string, []any) {
	var apiErr *api.Error
	if errors.As(e.Err, &apiErr) {
		if apiErr.Detail != "" {
			return "%s", []any{apiErr.Detail}
		}
		return i18n.MsgToggleFailed, []any{apiErr.StatusCode}
	}
	return "%s", []any{e.Err}
}

// Roster holds the firm's members as shown to an admin
type Roster struct {
	backend Backend
	me      *api.User
	users   []api.User
}

// New creates an empty roster
func New(backend Backend) *Roster {
	return &Roster{backend: backend}
}

// Load fetches the current user and, for admins, the member list.
// Results arriving after ctx ended are dropped.
func (r *Roster) Load(ctx context.Context) error {
	me, err := r.backend.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if !me.IsAdmin {
		return ErrAdminRequired
	}

	users, err := r.backend.ListUsers(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	Sort(users)
	r.me = me
	r.users = users
	return nil
}

// Me returns the signed-in admin
func (r *Roster) Me() *api.User { return r.me }

// Users returns the members in display order
func (r *Roster) Users() []api.User { return r.users }

// CanToggle reports whether the active flag of u may be switched
func (r *Roster) CanToggle(u api.User) bool {
	return r.me != nil && u.ID != r.me.ID && IsEmployee(u)
}

// Toggle flips the active flag of userID right away and reverts it when
// the backend refuses. The returned flag is the value now shown.
func (r *Roster) Toggle(ctx context.Context, userID int) (bool, error) {
	i := slices.IndexFunc(r.users, func(u api.User) bool { return u.ID == userID })
	if i < 0 {
		return false, ErrUnknownUser
	}
	u := &r.users[i]
	if r.me != nil && u.ID == r.me.ID {
		return u.IsActive, ErrToggleSelf
	}
	if !IsEmployee(*u) {
		return u.IsActive, ErrToggleNotAllowed
	}

	err := mutation.Value(ctx, &u.IsActive, !u.IsActive, func(ctx context.Context) error {
		return r.backend.ToggleActive(ctx, r.me.FirmID(), userID)
	})
	if err != nil {
		return u.IsActive, &ToggleError{UserID: userID, Err: err}
	}
	return u.IsActive, nil
}
