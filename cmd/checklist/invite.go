package main

import (
	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/forms"
	"github.com/mark-chris/checklist/internal/i18n"
)

func newInviteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Send and accept project invitations",
	}
	cmd.AddCommand(newInviteSendCmd(), newInviteAcceptCmd())
	return cmd
}

func newInviteSendCmd() *cobra.Command {
	var form forms.SendInvitation

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Invite someone to a project by email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := form.Validate(); err != nil {
				return err
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.client.SendInvitation(cmd.Context(), form.Email, form.Project); err != nil {
				return err
			}
			a.say(cmd, i18n.MsgInvitationSent, form.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "Email address to invite")
	cmd.Flags().IntVar(&form.Project, "project", 0, "Project ID")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newInviteAcceptCmd() *cobra.Command {
	var form forms.AcceptInvitation

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Create your account from an invitation",
		Long:  "Create an account with the token from an invitation email. No login is needed; log in afterwards.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if form.Token != "" {
				if err := p.askIfEmpty(&form.Password, "Password", true); err != nil {
					return err
				}
			}
			req, err := form.Request()
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.client.AcceptInvitation(cmd.Context(), req); err != nil {
				return err
			}
			a.say(cmd, i18n.MsgInvitationAccepted)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Token, "token", "", "Invitation token")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address the invitation was sent to")
	cmd.Flags().StringVar(&form.Username, "username", "", "Username")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&form.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&form.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&form.HexColor, "color", "", "Six-digit hex color")
	return cmd
}
