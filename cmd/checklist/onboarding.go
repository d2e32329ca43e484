package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/forms"
	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/mutation"
	"github.com/mark-chris/checklist/internal/onboarding"
)

type onboardingOptions struct {
	role     string
	firmID   int
	firmName string
	color    string
}

func newOnboardingCmd() *cobra.Command {
	var opts onboardingOptions

	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Finish setting up your account",
		Long: `Choose whether you join an existing firm as an employee or create a new
firm as its owner, then pick your color. Steps already completed are skipped.
Values not given as flags are asked for.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return runOnboarding(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.role, "role", "", "employee (join a firm) or owner (create a firm)")
	cmd.Flags().IntVar(&opts.firmID, "firm", 0, "ID of the firm to join")
	cmd.Flags().StringVar(&opts.firmName, "firm-name", "", "Name of the firm to create")
	cmd.Flags().StringVar(&opts.color, "color", "", "Six-digit hex color")
	return cmd
}

func runOnboarding(cmd *cobra.Command, a *app, opts onboardingOptions) error {
	ctx := cmd.Context()
	p := newPrompter(cmd)

	w := onboarding.New(a.client)
	w.OnComplete(func() { a.say(cmd, i18n.MsgOnboardingDone) })
	if err := w.Open(ctx); err != nil {
		return err
	}
	if w.Done() {
		a.say(cmd, i18n.MsgOnboardingDone)
		return nil
	}

	// retry re-runs a submission whose earlier step already succeeded
	retry := func(submit func(context.Context) error) error {
		for {
			err := submit(ctx)
			var partial *mutation.PartialFailureError
			if err == nil || !errors.As(err, &partial) {
				return err
			}
			cmd.Println(describe(a.printer, err))
			if !p.confirm("Retry " + partial.Failed) {
				return err
			}
		}
	}

	// tryAgain reports a validation error for prompted input and lets the
	// loop ask again; errors for flag values end the command
	tryAgain := func(err error, prompted bool) error {
		if !prompted {
			return err
		}
		cmd.Println(describe(a.printer, err))
		return nil
	}

	for !w.Done() {
		switch w.Step() {
		case onboarding.StepRoleSelection:
			role, prompted := opts.role, false
			if role == "" {
				s, err := p.line("Role (employee = join a firm, owner = create a firm)")
				if err != nil {
					return err
				}
				role, prompted = strings.ToLower(strings.TrimSpace(s)), true
			}
			if err := w.SelectRole(onboarding.Role(role)); err != nil {
				if err := tryAgain(err, prompted); err != nil {
					return err
				}
				continue
			}
			if err := w.Continue(); err != nil {
				return err
			}

		case onboarding.StepFirmDecision:
			if w.Role() == onboarding.RoleEmployee {
				if len(w.Firms()) == 0 {
					return onboarding.ErrNoFirms
				}
				id, prompted := opts.firmID, false
				if id == 0 {
					for _, f := range w.Firms() {
						cmd.Printf("  %d  %s\n", f.ID, f.Name)
					}
					s, err := p.line("Firm ID")
					if err != nil {
						return err
					}
					id, _ = strconv.Atoi(strings.TrimSpace(s))
					prompted = true
				}
				if err := w.SelectFirm(id); err != nil {
					if err := tryAgain(err, prompted); err != nil {
						return err
					}
					continue
				}
			} else {
				prompted := false
				if opts.firmName == "" {
					s, err := p.line("Firm name")
					if err != nil {
						return err
					}
					opts.firmName, prompted = s, true
				}
				if err := w.SetFirmName(opts.firmName); err != nil {
					return err
				}
				if strings.TrimSpace(opts.firmName) == "" {
					if err := tryAgain(onboarding.ErrFirmNameRequired, prompted); err != nil {
						return err
					}
					opts.firmName = ""
					continue
				}
			}
			if err := retry(w.SubmitFirm); err != nil {
				return err
			}

		case onboarding.StepColorSelection:
			color, prompted := opts.color, false
			if color == "" {
				s, err := p.line("Color (six hex digits, default " + forms.DefaultColor + ")")
				if err != nil {
					return err
				}
				color, prompted = s, true
				if strings.TrimSpace(color) == "" {
					color = forms.DefaultColor
				}
			}
			w.SetColor(color)
			if err := w.SubmitColor(ctx); err != nil {
				if !errors.Is(err, onboarding.ErrInvalidColor) {
					return err
				}
				if err := tryAgain(err, prompted); err != nil {
					return err
				}
			}

		default:
			return onboarding.ErrWrongStep
		}
	}
	return nil
}
