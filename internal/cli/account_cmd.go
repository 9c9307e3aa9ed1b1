package cli

import (
	"fmt"
	"net/mail"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskdesk/internal/session"
)

func (r *runner) registerCommand() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name = strings.TrimSpace(name)
			email = strings.TrimSpace(email)
			if name == "" || email == "" || password == "" {
				return refuse("name, email and password are required")
			}
			if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
				return refuse("invalid email %q", email)
			}
			created, err := r.app.Accounts.Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			if !created {
				return refuse("email %s is already registered", email)
			}
			fmt.Fprintf(r.out, "registered %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (r *runner) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = strings.TrimSpace(email)
			if email == "" || password == "" {
				return refuse("email and password are required")
			}
			account, err := r.app.Accounts.Authenticate(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if account == nil {
				return refuse("wrong email or password")
			}
			tok, err := r.app.Sessions.Issue(*account)
			if err != nil {
				return err
			}
			if err := session.Save(r.app.Config.Session.File, tok); err != nil {
				return err
			}
			fmt.Fprintf(r.out, "welcome, %s\n", account.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func (r *runner) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return session.Clear(r.app.Config.Session.File)
		},
	}
}

func (r *runner) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := r.currentSession(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(r.out, "%s (%s)\n", s.Email, s.Role)
			return nil
		},
	}
}

func (r *runner) usersCommand() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Administer accounts (administrator only)",
	}

	users.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := r.adminSession(cmd.Context()); err != nil {
				return err
			}
			accounts, err := r.app.Accounts.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL")
			for _, a := range accounts {
				fmt.Fprintf(w, "%d\t%s\t%s\n", a.ID, a.Name, a.Email)
			}
			return w.Flush()
		},
	})

	users.AddCommand(&cobra.Command{
		Use:   "delete EMAIL",
		Short: "Delete an account and all of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := r.adminSession(cmd.Context()); err != nil {
				return err
			}
			out, err := r.app.Accounts.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := fromOutcome(out); err != nil {
				return err
			}
			fmt.Fprintf(r.out, "deleted %s\n", args[0])
			return nil
		},
	})

	var file string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the account list as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := r.adminSession(cmd.Context()); err != nil {
				return err
			}
			accounts, err := r.app.Accounts.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			path, err := r.app.Reports.AccountsReport(accounts, file)
			if err != nil {
				return err
			}
			fmt.Fprintln(r.out, path)
			return nil
		},
	}
	export.Flags().StringVar(&file, "file", "", "file name inside the reports directory")
	users.AddCommand(export)

	return users
}
