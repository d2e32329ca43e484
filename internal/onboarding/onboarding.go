// Package onboarding drives the setup a new account goes through before the
// dashboard opens: choose a role, join or create a firm, pick a color.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/colorhex"
	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/mutation"
)

// Step is a state of the wizard
type Step int

const (
	StepRoleSelection Step = iota
	StepFirmDecision
	StepColorSelection
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepRoleSelection:
		return "role"
	case StepFirmDecision:
		return "firm"
	case StepColorSelection:
		return "color"
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Role decides whether the firm step joins or creates a firm
type Role string

const (
	RoleEmployee Role = "employee"
	RoleOwner    Role = "owner"
)

var (
	ErrChooseRole       = i18n.NewError(i18n.MsgChooseRole)
	ErrChooseFirm       = i18n.NewError(i18n.MsgChooseFirm)
	ErrNoFirms          = i18n.NewError(i18n.MsgNoFirms)
	ErrFirmNameRequired = i18n.NewError(i18n.MsgFirmNameRequired)
	ErrInvalidColor     = i18n.NewError(i18n.MsgHexRequired)

	// ErrWrongStep is returned by actions that do not belong to the current step
	ErrWrongStep = errors.New("onboarding: action not available in this step")
)

// DeriveStep returns where the wizard starts for u
func DeriveStep(u *api.User) Step {
	switch {
	case !u.HasFirm():
		return StepRoleSelection
	case !u.HasColor():
		return StepColorSelection
	default:
		return StepDone
	}
}

// Backend is the part of the API the wizard talks to
type Backend interface {
	CurrentUser(ctx context.Context) (*api.User, error)
	ListFirms(ctx context.Context) ([]api.Firm, error)
	CreateFirm(ctx context.Context, name string) (*api.Firm, error)
	JoinFirm(ctx context.Context, firmID int) error
	SetColor(ctx context.Context, hex string) error
}

// StatusChecker reports whether onboarding is still required
type StatusChecker interface {
	NeedsOnboarding(ctx context.Context) (bool, error)
}

// ShouldShow asks the backend whether the wizard has to run
func ShouldShow(ctx context.Context, b StatusChecker) (bool, error) {
	return b.NeedsOnboarding(ctx)
}

// Wizard is the onboarding state machine. It is not safe for concurrent use.
type Wizard struct {
	backend    Backend
	onComplete func()

	user       *api.User
	firms      []api.Firm
	step       Step
	needsColor bool

	role     Role
	firmID   int
	firmName string
	color    string

	create     *mutation.Sequence
	createName string
	createdID  int
}

// New creates a wizard. Call Open before anything else.
func New(backend Backend) *Wizard {
	return &Wizard{backend: backend, user: &api.User{}, step: StepRoleSelection}
}

// OnComplete registers fn to run once the wizard reaches StepDone through
// one of its own submissions
func (w *Wizard) OnComplete(fn func()) {
	w.onComplete = fn
}

// Open fetches the user and the firm list and derives the current step.
// Nothing changes when either call fails or ctx ends first.
func (w *Wizard) Open(ctx context.Context) error {
	user, err := w.backend.CurrentUser(ctx)
	if err != nil {
		return err
	}
	firms, err := w.backend.ListFirms(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	w.user = user
	w.firms = firms
	w.needsColor = !user.HasColor()
	w.step = DeriveStep(user)
	if user.HasColor() {
		w.color = colorhex.Normalize(user.HexColor)
	}
	return nil
}

// Step returns the current step
func (w *Wizard) Step() Step { return w.step }

// Done reports whether onboarding is complete
func (w *Wizard) Done() bool { return w.step == StepDone }

// User returns the user as last seen by the wizard
func (w *Wizard) User() *api.User { return w.user }

// Firms returns the firms offered for joining
func (w *Wizard) Firms() []api.Firm { return w.firms }

// Role returns the selected role, or "" before a selection
func (w *Wizard) Role() Role { return w.role }

// Color returns the normalized color entered so far
func (w *Wizard) Color() string { return w.color }

// Steps lists the steps shown to this user. The color step is left out
// when the user already had a color on open.
func (w *Wizard) Steps() []Step {
	steps := []Step{StepRoleSelection, StepFirmDecision}
	if w.needsColor {
		steps = append(steps, StepColorSelection)
	}
	return steps
}

// SelectRole picks how the firm step proceeds
func (w *Wizard) SelectRole(r Role) error {
	if w.step != StepRoleSelection {
		return ErrWrongStep
	}
	switch r {
	case RoleEmployee, RoleOwner:
		if r != w.role {
			w.firmID = 0
		}
		w.role = r
		return nil
	default:
		return ErrChooseRole
	}
}

// Continue leaves the role step. A role must have been selected.
func (w *Wizard) Continue() error {
	if w.step != StepRoleSelection {
		return ErrWrongStep
	}
	if w.role == "" {
		return ErrChooseRole
	}
	w.step = StepFirmDecision
	return nil
}

// Back returns from the firm step to the role step
func (w *Wizard) Back() error {
	if w.step != StepFirmDecision {
		return ErrWrongStep
	}
	w.step = StepRoleSelection
	return nil
}

// SelectFirm picks the firm to join. id must be one of Firms.
func (w *Wizard) SelectFirm(id int) error {
	if w.step != StepFirmDecision || w.role != RoleEmployee {
		return ErrWrongStep
	}
	if len(w.firms) == 0 {
		return ErrNoFirms
	}
	for _, f := range w.firms {
		if f.ID == id {
			w.firmID = id
			return nil
		}
	}
	return ErrChooseFirm
}

// SetFirmName sets the name of the firm to create
func (w *Wizard) SetFirmName(name string) error {
	if w.step != StepFirmDecision || w.role != RoleOwner {
		return ErrWrongStep
	}
	w.firmName = strings.TrimSpace(name)
	return nil
}

// SubmitFirm joins the selected firm, or creates the named firm and joins
// it. If the firm was created but joining failed, submitting again only
// retries the join.
func (w *Wizard) SubmitFirm(ctx context.Context) error {
	if w.step != StepFirmDecision {
		return ErrWrongStep
	}

	var firmID int
	switch w.role {
	case RoleEmployee:
		if len(w.firms) == 0 {
			return ErrNoFirms
		}
		if w.firmID == 0 {
			return ErrChooseFirm
		}
		if err := w.backend.JoinFirm(ctx, w.firmID); err != nil {
			return err
		}
		firmID = w.firmID
	case RoleOwner:
		id, err := w.createAndJoin(ctx)
		if err != nil {
			return err
		}
		firmID = id
	default:
		return ErrChooseRole
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	w.user.Firm = &api.Ref{ID: firmID}
	w.advance()
	return nil
}

func (w *Wizard) createAndJoin(ctx context.Context) (int, error) {
	if w.firmName == "" {
		return 0, ErrFirmNameRequired
	}

	// a new name only restarts the sequence while nothing has been created
	if w.create == nil || (w.createName != w.firmName && len(w.create.Completed()) == 0) {
		name := w.firmName
		w.createName = name
		w.create = mutation.NewSequence(
			mutation.Step{
				Name: fmt.Sprintf("firm %q", name),
				Run: func(ctx context.Context) error {
					firm, err := w.backend.CreateFirm(ctx, name)
					if err != nil {
						return err
					}
					w.createdID = firm.ID
					return nil
				},
			},
			mutation.Step{
				Name: "join",
				Run: func(ctx context.Context) error {
					return w.backend.JoinFirm(ctx, w.createdID)
				},
			},
		)
	}

	if err := w.create.Run(ctx); err != nil {
		return 0, err
	}
	return w.createdID, nil
}

// SetColor stores the normalized form of s and returns it
func (w *Wizard) SetColor(s string) string {
	w.color = colorhex.Normalize(s)
	return w.color
}

// SubmitColor saves the color. It must be six hex digits.
func (w *Wizard) SubmitColor(ctx context.Context) error {
	if w.step != StepColorSelection {
		return ErrWrongStep
	}
	if !colorhex.Valid(w.color) {
		return ErrInvalidColor
	}
	if err := w.backend.SetColor(ctx, w.color); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w.user.HexColor = w.color
	w.advance()
	return nil
}

func (w *Wizard) advance() {
	w.step = DeriveStep(w.user)
	if w.step == StepDone && w.onComplete != nil {
		w.onComplete()
	}
}
