package main

import (
	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/onboarding"
	"github.com/mark-chris/checklist/internal/tasktree"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your projects and the task tree of the first one",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			show, err := onboarding.ShouldShow(ctx, a.client)
			if err != nil {
				return err
			}
			if show {
				a.say(cmd, i18n.MsgOnboardingRequired)
				return nil
			}

			projects, err := a.client.ListProjects(ctx)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				a.say(cmd, i18n.MsgNoProjects)
				return nil
			}
			if err := printProjects(cmd, projects); err != nil {
				return err
			}

			first := projects[0]
			tasks, err := a.client.ListTasks(ctx, first.ID)
			if err != nil {
				return err
			}
			cmd.Printf("\n%s\n", first.Name)
			return tasktree.NewView(tasks).Render(cmd.OutOrStdout(), a.printer)
		},
	}
}
