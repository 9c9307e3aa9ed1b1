package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"taskdesk/internal/authz"
	"taskdesk/internal/models"
)

// canView applies the ownership rule to reads made through this front end.
func canView(s authz.Session, t *models.Task) bool {
	return authz.Permit(s, t.OwnerEmail)
}

func (r *runner) boardOwner(ctx context.Context, owner string) (string, error) {
	s, err := r.currentSession(ctx)
	if err != nil {
		return "", err
	}
	if owner == "" {
		return s.Email, nil
	}
	if !authz.Permit(s, owner) {
		return "", refuse("no permission to view the board of %s", owner)
	}
	return owner, nil
}

func (r *runner) boardCommand() *cobra.Command {
	board := &cobra.Command{
		Use:   "board",
		Short: "Kanban view of a board",
	}

	var owner string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the board by column",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := r.boardOwner(cmd.Context(), owner)
			if err != nil {
				return err
			}
			b, err := r.app.Tasks.Board(cmd.Context(), email)
			if err != nil {
				return err
			}
			for _, col := range b.Columns {
				fmt.Fprintf(r.out, "== %s (%d)\n", col.Status, len(col.Tasks))
				for _, t := range col.Tasks {
					fmt.Fprintf(r.out, "  %s #%d %s\n", priorityMark(t.Priority), t.ID, t.Title)
				}
			}
			return nil
		},
	}
	show.Flags().StringVar(&owner, "owner", "", "board owner (administrator only for other accounts)")

	var exportOwner, file string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the board as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := r.boardOwner(cmd.Context(), exportOwner)
			if err != nil {
				return err
			}
			b, err := r.app.Tasks.Board(cmd.Context(), email)
			if err != nil {
				return err
			}
			path, err := r.app.Reports.BoardReport(b, file)
			if err != nil {
				return err
			}
			fmt.Fprintln(r.out, path)
			return nil
		},
	}
	export.Flags().StringVar(&exportOwner, "owner", "", "board owner (administrator only for other accounts)")
	export.Flags().StringVar(&file, "file", "", "file name inside the reports directory")

	board.AddCommand(show, export)
	return board
}
