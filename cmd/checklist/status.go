package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/session"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show who is logged in",
		Long:    "Show the signed-in user, when the stored access token expires, and whether onboarding is still open.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			cmd.Printf("Server: %s\n", a.cfg.Server.URL)
			if !a.client.IsAuthenticated() {
				if _, err := a.store.Get(session.RefreshToken); err != nil {
					a.say(cmd, i18n.MsgNotAuthenticated)
					return nil
				}
			}
			if access, err := a.store.Get(session.AccessToken); err == nil {
				if exp, ok := session.Expiry(access); ok {
					cmd.Printf("Access token valid until: %s\n", exp.Local().Format(time.DateTime))
				}
			}

			user, err := a.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			a.say(cmd, i18n.MsgLoggedIn, user.DisplayName())
			if user.HasFirm() {
				cmd.Printf("Firm: %d\n", user.FirmID())
			}

			needed, err := a.client.NeedsOnboarding(cmd.Context())
			if err != nil {
				return err
			}
			if needed {
				a.say(cmd, i18n.MsgOnboardingRequired)
			}
			return nil
		},
	}
}
