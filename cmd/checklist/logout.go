package main

import (
	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/i18n"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored authentication credentials",
		Long:  "Log out of the checklist backend and remove both stored tokens. The tokens are removed even when the backend cannot be reached.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			a.say(cmd, i18n.MsgLoggedOut)
			return nil
		},
	}
}
