package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"taskdesk/internal/app"
	"taskdesk/internal/authz"
	"taskdesk/internal/config"
	"taskdesk/internal/repositories"
	"taskdesk/internal/services"
	"taskdesk/internal/session"
)

const (
	ExitOK      = 0
	ExitRefused = 1
	ExitStorage = 2
	ExitUsage   = 64
)

// refusal is an operation the backend declined; it is shown, not logged.
type refusal struct {
	msg string
}

func (r *refusal) Error() string { return r.msg }

func refuse(format string, args ...any) error {
	return &refusal{msg: fmt.Sprintf(format, args...)}
}

func fromOutcome(out services.Outcome) error {
	if out.OK {
		return nil
	}
	return &refusal{msg: out.Message}
}

type runner struct {
	cfgPath string
	verbose bool
	out     io.Writer
	app     *app.App
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) int {
	r := &runner{out: out}
	root := r.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if r.app != nil {
		if cerr := r.app.Close(); cerr != nil {
			log.Printf("[cli] close: %v", cerr)
		}
	}
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(errOut, "error:", err)
	var ref *refusal
	switch {
	case errors.As(err, &ref):
		return ExitRefused
	case errors.Is(err, repositories.ErrStorage):
		return ExitStorage
	case r.app == nil:
		return ExitUsage
	}
	return ExitRefused
}

func (r *runner) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskdesk",
		Short:         "Accounts and a personal task board over a shared store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !r.verbose {
				log.SetOutput(io.Discard)
			} else {
				log.SetOutput(cmd.ErrOrStderr())
			}
			cfg, err := config.Load(r.cfgPath)
			if err != nil {
				return err
			}
			r.app, err = app.New(cmd.Context(), cfg)
			return err
		},
	}
	root.PersistentFlags().StringVar(&r.cfgPath, "config", config.DefaultPath, "path to config.yaml")
	root.PersistentFlags().BoolVarP(&r.verbose, "verbose", "v", false, "log backend calls to stderr")

	root.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create the store and the administrator account",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				fmt.Fprintln(r.out, "store ready")
				return nil
			},
		},
		r.registerCommand(),
		r.loginCommand(),
		r.logoutCommand(),
		r.whoamiCommand(),
		r.usersCommand(),
		r.taskCommand(),
		r.boardCommand(),
	)
	return root
}

// currentSession returns the logged-in identity from the session file. The
// token only names the account; the role is read from the store.
func (r *runner) currentSession(ctx context.Context) (authz.Session, error) {
	tok, err := session.Load(r.app.Config.Session.File)
	if err != nil {
		return authz.Session{}, err
	}
	if tok == "" {
		return authz.Session{}, refuse("not logged in; run `taskdesk login`")
	}
	claimed, err := r.app.Sessions.Parse(tok)
	if err != nil {
		return authz.Session{}, refuse("%v; run `taskdesk login`", err)
	}
	ok, err := r.app.Accounts.Exists(ctx, claimed.Email)
	if err != nil {
		return authz.Session{}, err
	}
	if !ok {
		return authz.Session{}, refuse("account %s no longer exists", claimed.Email)
	}
	return r.app.Accounts.SessionFor(ctx, claimed.Email)
}

func (r *runner) adminSession(ctx context.Context) (authz.Session, error) {
	s, err := r.currentSession(ctx)
	if err != nil {
		return s, err
	}
	if !s.IsAdmin() {
		return s, refuse("administrator session required")
	}
	return s, nil
}

func parseID(v string) (int64, error) {
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, refuse("invalid task id %q", v)
	}
	return id, nil
}
