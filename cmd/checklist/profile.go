package main

import (
	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/colorhex"
	"github.com/mark-chris/checklist/internal/forms"
	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/roster"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and edit your profile",
	}
	cmd.AddCommand(newProfileShowCmd(), newProfileSetCmd(), newProfileColorCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			u, err := a.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Printf("Username:   %s\n", u.Username)
			cmd.Printf("Email:      %s\n", u.Email)
			cmd.Printf("First name: %s\n", u.FirstName)
			cmd.Printf("Last name:  %s\n", u.LastName)
			cmd.Printf("Color:      %s\n", u.HexColor)
			cmd.Printf("Role:       %s\n", roster.RoleOf(*u).Label(a.printer))
			return nil
		},
	}
}

func newProfileSetCmd() *cobra.Command {
	var username, email, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		Long:  "Update only the fields given as flags. Example: checklist profile set --first-name Max",
		RunE: func(cmd *cobra.Command, args []string) error {
			var form forms.Profile
			flags := cmd.Flags()
			if flags.Changed("username") {
				form.Username = &username
			}
			if flags.Changed("email") {
				form.Email = &email
			}
			if flags.Changed("first-name") {
				form.FirstName = &firstName
			}
			if flags.Changed("last-name") {
				form.LastName = &lastName
			}

			update, err := form.Request()
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if _, err := a.client.UpdateProfile(cmd.Context(), update); err != nil {
				return err
			}
			a.say(cmd, i18n.MsgProfileUpdated)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	return cmd
}

func newProfileColorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color <hex>",
		Short: "Set your identifying color",
		Long:  "Set the six-digit hex color shown next to your tasks, e.g. 'checklist profile color 1A73E8'.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			hex, ok := colorhex.Parse(args[0])
			if !ok {
				return i18n.NewError(i18n.MsgHexRequired)
			}
			if err := a.client.SetColor(cmd.Context(), hex); err != nil {
				return err
			}
			a.say(cmd, i18n.MsgProfileUpdated)
			return nil
		},
	}
}
