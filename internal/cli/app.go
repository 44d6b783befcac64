// Package cli is the command line front end: it parses intents, hands them to
// the auth and task services, and renders the stores.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jrsteele09/go-task-client/apiclient"
	"github.com/jrsteele09/go-task-client/auth"
	"github.com/jrsteele09/go-task-client/internal/config"
	apperrors "github.com/jrsteele09/go-task-client/internal/errors"
	"github.com/jrsteele09/go-task-client/session"
	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/jrsteele09/go-task-client/token/refresh"
	"github.com/spf13/cobra"
)

// annotationOffline marks commands that never talk to the task API.
const annotationOffline = "offline"

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

type App struct {
	EnvFile string
	APIURL  string
	Verbose bool

	in  io.Reader
	out io.Writer
	err io.Writer

	config        config.Config
	sessions      *session.Store
	refreshTokens *refresh.Manager
	client        *apiclient.Client
	auth          *auth.Service
	tasks         *tasks.Service
	closers       []func() error
}

// NewRootCmd builds the tasks command tree on the process's standard streams.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithIO(os.Stdin, os.Stdout, os.Stderr)
}

func NewRootCmdWithIO(in io.Reader, out, errOut io.Writer) *cobra.Command {
	app := &App{in: in, out: out, err: errOut}

	cmd := &cobra.Command{
		Use:           "tasks",
		Short:         "Manage your tasks from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  tasks register --name Ada --email ada@example.com
  tasks login --email ada@example.com
  tasks add "Write report" --description "Q3 numbers"
  tasks list
  tasks done <task-id>`),
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFiles(app.envFiles()...); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		app.config = config.New()
		setupLogging(app.err, app.config.GetEnv(), app.Verbose)

		if cmd.Annotations[annotationOffline] == "true" {
			return nil
		}
		return app.wire()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.close()
	}

	cmd.PersistentFlags().StringVar(&app.EnvFile, "env-file", "", "Load variables from this .env file (default: ./.env when present)")
	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Task API base URL (overrides TASKS_API_URL)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log requests and token refreshes to stderr")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newUpdateCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newDevServerCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

func (app *App) envFiles() []string {
	if app.EnvFile != "" {
		return []string{app.EnvFile}
	}
	return nil
}

func (app *App) baseURL() string {
	if app.APIURL != "" {
		return strings.TrimRight(app.APIURL, "/")
	}
	return app.config.GetAPIBaseURL()
}

// wire builds the stores, the client and the services for one invocation.
// The session starts anonymous; the first request recovers it from the
// stored refresh token.
func (app *App) wire() error {
	repo, closeRepo, err := openTokenRepo(app.config)
	if err != nil {
		return err
	}
	if closeRepo != nil {
		app.closers = append(app.closers, closeRepo)
	}

	app.sessions = session.NewStore()
	app.refreshTokens = refresh.NewManager(repo)

	app.client, err = apiclient.New(app.baseURL(), app.sessions, app.refreshTokens,
		apiclient.WithTimeout(app.config.GetRequestTimeout()),
		apiclient.WithAuthFailureStatuses(app.config.GetAuthFailureStatuses()),
	)
	if err != nil {
		return err
	}

	if app.auth, err = auth.NewService(app.client, app.sessions, app.refreshTokens); err != nil {
		return err
	}

	store := tasks.NewStore()
	app.sessions.OnLogout(store.Clear)
	if app.tasks, err = tasks.NewService(app.client, store); err != nil {
		return err
	}
	return nil
}

func (app *App) close() error {
	var errs []error
	for _, closeFn := range app.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	if len(errs) > 0 {
		return fmt.Errorf("close: %w", apperrors.Join(errs...))
	}
	return nil
}
