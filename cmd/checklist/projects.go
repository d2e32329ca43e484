package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/forms"
	"github.com/mark-chris/checklist/internal/i18n"
)

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "List and create projects",
	}
	cmd.AddCommand(newProjectsListCmd(), newProjectsCreateCmd())
	return cmd
}

func newProjectsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the projects of your firm",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			projects, err := a.client.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				a.say(cmd, i18n.MsgNoProjects)
				return nil
			}
			return printProjects(cmd, projects)
		},
	}
}

func printProjects(cmd *cobra.Command, projects []api.Project) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRECURRENCE\tSTART\tEND\tSTATUS")
	for _, p := range projects {
		recurrence := string(p.RecurrencePattern)
		if p.IsOneTime || recurrence == "" {
			recurrence = "once"
		}
		end := p.EndDate
		if end == "" {
			end = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, recurrence, p.StartDate, end, p.Status)
	}
	return tw.Flush()
}

func newProjectsCreateCmd() *cobra.Command {
	var (
		form       forms.Project
		recurrence string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Long: `Create a project. Recurring projects need --recurrence; one-time
projects ignore it.

Example:
  checklist projects create --name "USt-Voranmeldung" --recurrence monthly --start 2026-01-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Recurrence = api.Recurrence(recurrence)
			req, err := form.Request()
			if err != nil {
				return err
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			project, err := a.client.CreateProject(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.say(cmd, i18n.MsgProjectCreated, project.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Project name")
	cmd.Flags().IntVar(&form.Partner, "partner", 0, "ID of the partner firm")
	cmd.Flags().BoolVar(&form.IsOneTime, "one-time", false, "Project runs once")
	cmd.Flags().StringVar(&recurrence, "recurrence", "", "weekly, monthly, quarterly or yearly")
	cmd.Flags().StringVar(&form.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&form.EndDate, "end", "", "End date (YYYY-MM-DD, optional)")
	_ = cmd.RegisterFlagCompletionFunc("recurrence", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		values := make([]string, len(api.Recurrences))
		for i, r := range api.Recurrences {
			values[i] = string(r)
		}
		return values, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
