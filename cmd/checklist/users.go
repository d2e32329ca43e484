package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/forms"
	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/roster"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the members of your firm (admins only)",
	}
	cmd.AddCommand(newUsersListCmd(), newUsersCreateCmd(), newUsersToggleCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the members of your firm",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			r := roster.New(a.client)
			if err := r.Load(cmd.Context()); err != nil {
				return err
			}
			return printRoster(cmd, a, r)
		},
	}
}

func printRoster(cmd *cobra.Command, a *app, r *roster.Roster) error {
	p := a.printer
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tROLE\tSTATE")
	for _, u := range r.Users() {
		state := p.Sprintf(i18n.MsgInactive)
		if u.IsActive {
			state = p.Sprintf(i18n.MsgActive)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.DisplayName(), u.Email, roster.RoleOf(u).Label(p), state)
	}
	return tw.Flush()
}

func newUsersCreateCmd() *cobra.Command {
	var form forms.CreateUser

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a member to your firm",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.askIfEmpty(&form.Password, "Password", true); err != nil {
				return err
			}
			req, err := form.Request()
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			u, err := a.client.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.say(cmd, i18n.MsgUserCreated, u.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Username, "username", "", "Username")
	cmd.Flags().StringVar(&form.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&form.Password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&form.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&form.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&form.HexColor, "color", "", "Six-digit hex color (default "+forms.DefaultColor+")")
	cmd.Flags().BoolVar(&form.IsFirmAdmin, "admin", false, "Grant admin rights")
	return cmd
}

func newUsersToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <user-id>",
		Short: "Activate or deactivate an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			r := roster.New(a.client)
			if err := r.Load(cmd.Context()); err != nil {
				return err
			}

			active, err := r.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}

			state := a.printer.Sprintf(i18n.MsgInactive)
			if active {
				state = a.printer.Sprintf(i18n.MsgActive)
			}
			for _, u := range r.Users() {
				if u.ID == id {
					a.say(cmd, i18n.MsgUserToggled, u.DisplayName(), state)
				}
			}
			return nil
		},
	}
}
