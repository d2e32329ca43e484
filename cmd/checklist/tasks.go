package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/forms"
	"github.com/mark-chris/checklist/internal/i18n"
	"github.com/mark-chris/checklist/internal/mutation"
	"github.com/mark-chris/checklist/internal/tasktree"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Show and create the tasks of a project",
	}
	cmd.AddCommand(newTasksTreeCmd(), newTasksCreateCmd(), newTasksShowCmd())
	return cmd
}

func newTasksTreeCmd() *cobra.Command {
	var (
		project     int
		selected    int
		collapse    []int
		collapseAll bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the tasks of a project grouped by level",
		Long:  "Show the tasks of a project as an outline, one group per level. --select shows the inline detail of one task.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			tasks, err := a.client.ListTasks(cmd.Context(), project)
			if err != nil {
				return err
			}

			view := tasktree.NewView(tasks)
			if collapseAll {
				view.CollapseAll()
			}
			for _, n := range collapse {
				if view.Expanded(n) {
					view.Toggle(n)
				}
			}
			if selected != 0 {
				view.Select(selected)
			}
			return view.Render(cmd.OutOrStdout(), a.printer)
		},
	}

	cmd.Flags().IntVar(&project, "project", 0, "Project ID")
	cmd.Flags().IntVar(&selected, "select", 0, "Task ID to show inline")
	cmd.Flags().IntSliceVar(&collapse, "collapse", nil, "Levels to collapse")
	cmd.Flags().BoolVar(&collapseAll, "collapse-all", false, "Collapse every level")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTasksCreateCmd() *cobra.Command {
	var files []string
	form := forms.NewTask(0)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task and upload its attachments",
		Long: `Create a task in a project. The level must lie between 1 and one more
than the deepest existing level. Files given with --file are uploaded one
after another once the task exists; the first failed upload stops the rest.

Example:
  checklist tasks create --project 3 --name "Belege sammeln" --start "2026-03-01 09:00" --file beleg.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			existing, err := a.client.ListTasks(ctx, form.Project)
			if err != nil {
				return err
			}
			req, err := form.Request(existing)
			if err != nil {
				return err
			}

			attachments := make([]forms.File, len(files))
			for i, path := range files {
				attachments[i] = forms.PathFile(path)
			}

			sub := forms.NewTaskSubmission(a.client, req, attachments)
			p := newPrompter(cmd)
			for {
				task, err := sub.Submit(ctx)
				if err == nil {
					a.say(cmd, i18n.MsgTaskCreated, task.Name)
					return nil
				}
				var partial *mutation.PartialFailureError
				if !errors.As(err, &partial) {
					return err
				}
				cmd.Println(describe(a.printer, err))
				if !p.confirm("Retry " + strings.Join(sub.Pending(), ", ")) {
					return err
				}
			}
		},
	}

	cmd.Flags().IntVar(&form.Project, "project", 0, "Project ID")
	cmd.Flags().StringVar(&form.Name, "name", "", "Task name")
	cmd.Flags().StringVar(&form.Description, "description", "", "Description")
	cmd.Flags().IntVar(&form.Level, "level", form.Level, "Level (1 = main task)")
	cmd.Flags().Float64Var(&form.Duration, "duration", form.Duration, "Duration in hours")
	cmd.Flags().StringVar(&form.Start, "start", "", "Start (YYYY-MM-DD HH:MM or RFC 3339)")
	cmd.Flags().StringVar(&form.End, "end", "", "End (YYYY-MM-DD HH:MM or RFC 3339)")
	cmd.Flags().IntSliceVar(&form.AssignedUsers, "assign", nil, "IDs of assigned users")
	cmd.Flags().StringArrayVar(&files, "file", nil, "File to attach (repeatable)")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

func newTasksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			detail, err := a.client.TaskDetail(cmd.Context(), id)
			if err != nil {
				return err
			}
			printTaskDetail(cmd, a, detail)
			return nil
		},
	}
}

func printTaskDetail(cmd *cobra.Command, a *app, d *api.TaskDetail) {
	p := a.printer
	preview := tasktree.NewPreview(d.Task)

	cmd.Printf("#%d %s [%s]\n", d.ID, d.Name, d.Status)
	cmd.Printf("%s\n", tasktree.LevelLabel(p, d.EffectiveLevel()))
	if d.Description != "" {
		cmd.Printf("%s: %s\n", p.Sprintf(i18n.MsgDescription), d.Description)
	}
	cmd.Printf("%s: %s\n", p.Sprintf(i18n.MsgDuration), preview.Duration)
	cmd.Printf("%s: %s\n", p.Sprintf(i18n.MsgPeriod), preview.Period())
	cmd.Printf("%s: %d\n", p.Sprintf(i18n.MsgAssignees), preview.Assignees)
	if d.IsVeto {
		cmd.Printf("(%s)\n", p.Sprintf(i18n.MsgVeto))
	}

	cmd.Printf("%s: %d\n", p.Sprintf(i18n.MsgAttachments), len(d.Attachments))
	for _, att := range d.Attachments {
		line := "  " + att.File
		if att.FileSize != nil {
			line += fmt.Sprintf(" (%d bytes)", *att.FileSize)
		}
		if att.UploadedAt != nil {
			line += " " + att.UploadedAt.Local().Format(time.DateTime)
		}
		cmd.Println(line)
	}
}
