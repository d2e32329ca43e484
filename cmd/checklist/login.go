package main

import (
	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/forms"
	"github.com/mark-chris/checklist/internal/i18n"
)

func newLoginCmd() *cobra.Command {
	var form forms.Login

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the checklist backend",
		Long:  "Log in with a username or email address and store both tokens in the system keychain.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			p := newPrompter(cmd)
			if err := p.askIfEmpty(&form.Identifier, "Username or email", false); err != nil {
				return err
			}
			if err := p.askIfEmpty(&form.Password, "Password", true); err != nil {
				return err
			}
			if err := form.Validate(); err != nil {
				return err
			}

			resp, err := a.client.Login(cmd.Context(), form.Identifier, form.Password)
			if err != nil {
				return err
			}

			name := form.Identifier
			if resp.User != nil {
				name = resp.User.DisplayName()
			}
			a.say(cmd, i18n.MsgLoggedIn, name)
			a.say(cmd, i18n.MsgDashboardHint)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Identifier, "login", "", "Username or email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (will prompt if not provided)")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var form forms.Register

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  "Register a new account. You are logged in afterwards; run 'checklist onboarding' next.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			p := newPrompter(cmd)
			if err := p.askIfEmpty(&form.Email, "Email", false); err != nil {
				return err
			}
			if err := p.askIfEmpty(&form.Username, "Username", false); err != nil {
				return err
			}
			if err := p.askIfEmpty(&form.Password, "Password", true); err != nil {
				return err
			}
			if err := p.askIfEmpty(&form.Confirm, "Repeat password", true); err != nil {
				return err
			}
			if err := form.Validate(); err != nil {
				return err
			}

			if _, err := a.client.Register(cmd.Context(), form.Email, form.Username, form.Password); err != nil {
				return err
			}

			a.say(cmd, i18n.MsgRegistered, form.Username)
			a.say(cmd, i18n.MsgOnboardingRequired)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Username, "username", "", "Username")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&form.Confirm, "confirm", "", "Password again (will prompt if not provided)")
	return cmd
}
