package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskdesk/internal/models"
	"taskdesk/internal/services"
)

func (r *runner) taskCommand() *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Work with your tasks",
	}
	task.AddCommand(
		r.taskAddCommand(),
		r.taskListCommand(),
		r.taskShowCommand(),
		r.taskStatusCommand(),
		r.taskMoveCommand(),
		r.taskPriorityCommand(),
		r.taskDeleteCommand(),
	)
	return task
}

func (r *runner) taskAddCommand() *cobra.Command {
	var (
		title, description, status string
		priority                   bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task to your board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := r.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			in := services.NewTask{
				OwnerEmail:  s.Email,
				Title:       strings.TrimSpace(title),
				Description: strings.TrimSpace(description),
				Priority:    priority,
			}
			if status != "" {
				st, ok := models.ParseStatus(status)
				if !ok {
					return refuse("unknown status %q", status)
				}
				in.Status = st
			}
			id, out, err := r.app.Tasks.AddTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			if err := fromOutcome(out); err != nil {
				return err
			}
			fmt.Fprintf(r.out, "task %d created\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title (required)")
	cmd.Flags().StringVar(&description, "desc", "", "task description")
	cmd.Flags().StringVar(&status, "status", "", "initial status (default ToDo)")
	cmd.Flags().BoolVar(&priority, "priority", false, "mark as priority")
	return cmd
}

func (r *runner) taskListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := r.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			tasks, err := r.app.Tasks.ListTasks(cmd.Context(), s.Email)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tP\tTITLE")
			for _, t := range tasks {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Status, priorityMark(t.Priority), t.Title)
			}
			return w.Flush()
		},
	}
}

func (r *runner) taskShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one task and the moves available for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := r.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			t, err := r.app.Tasks.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			if t == nil || !canView(s, t) {
				return refuse("not found")
			}
			fmt.Fprintf(r.out, "#%d %s\n", t.ID, t.Title)
			if t.Description != "" {
				fmt.Fprintln(r.out, t.Description)
			}
			fmt.Fprintf(r.out, "status: %s  priority: %v  owner: %s\n", t.Status, t.Priority, t.OwnerEmail)
			var moves []string
			for _, m := range services.Moves(t.Status) {
				moves = append(moves, string(m))
			}
			fmt.Fprintf(r.out, "moves: %s\n", strings.Join(moves, ", "))
			return nil
		},
	}
}

func (r *runner) taskStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Set a task's status (ToDo, InProgress, Done)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			st, ok := models.ParseStatus(args[1])
			if !ok {
				return refuse("unknown status %q", args[1])
			}
			s, err := r.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			out, err := r.app.Tasks.SetStatus(cmd.Context(), id, st, &s)
			if err != nil {
				return err
			}
			return r.report(out)
		},
	}
}

func (r *runner) taskMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move ID next|prev",
		Short: "Move a task one column forward or back",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var dir services.Direction
			switch args[1] {
			case "next":
				dir = services.Forward
			case "prev":
				dir = services.Back
			default:
				return refuse("direction must be next or prev")
			}
			s, err := r.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			out, err := r.app.Tasks.MoveTask(cmd.Context(), id, dir, &s)
			if err != nil {
				return err
			}
			return r.report(out)
		},
	}
}

func (r *runner) taskPriorityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "priority ID on|off",
		Short: "Flag or unflag a task as priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var value bool
			switch args[1] {
			case "on":
				value = true
			case "off":
			default:
				return refuse("priority must be on or off")
			}
			s, err := r.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			out, err := r.app.Tasks.SetPriority(cmd.Context(), id, value, &s)
			if err != nil {
				return err
			}
			return r.report(out)
		},
	}
}

func (r *runner) taskDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := r.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			out, err := r.app.Tasks.DeleteTask(cmd.Context(), id, &s)
			if err != nil {
				return err
			}
			return r.report(out)
		},
	}
}

func (r *runner) report(out services.Outcome) error {
	if err := fromOutcome(out); err != nil {
		return err
	}
	fmt.Fprintln(r.out, out.Message)
	return nil
}

func priorityMark(p bool) string {
	if p {
		return "!"
	}
	return "-"
}
