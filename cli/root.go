// Package cli is the terminal client for the task API.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Rajangupta9/tasktracker/client"
	"github.com/Rajangupta9/tasktracker/render"
	"github.com/Rajangupta9/tasktracker/session"
)

type App struct {
	Server      string
	SessionPath string
	JSON        bool
	Verbose     bool

	files   session.FileStore
	session *session.Session
	logger  *log.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "taskcli",
		Short:         "Personal task tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Example = strings.TrimSpace(`
  taskcli login alice
  taskcli add "Buy milk" -p High
  taskcli list
  taskcli toggle 1
  taskcli comment add 1 "remember oat milk"
`)

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.open(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", os.Getenv("TASKS_SERVER"), "API base URL (default: last used, then "+client.DefaultBaseURL+")")
	cmd.PersistentFlags().StringVar(&app.SessionPath, "session", os.Getenv("TASKS_SESSION"), "Session file path")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print JSON instead of the rendered view")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Log client activity to stderr")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newCommentsCmd(app))
	cmd.AddCommand(newCommentCmd(app))

	return cmd
}

func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, render.Error(err))
		return 1
	}
	return 0
}

func (app *App) open(cmd *cobra.Command) error {
	level := log.WarnLevel
	if app.Verbose {
		level = log.DebugLevel
	}
	app.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Level: level, Prefix: "taskcli"})

	path := app.SessionPath
	if path == "" {
		p, err := session.DefaultPath()
		if err != nil {
			return fmt.Errorf("locate session file: %w", err)
		}
		path = p
	}
	app.files = session.FileStore{Path: path}

	st, err := app.files.Load()
	if err != nil {
		return err
	}

	server := app.Server
	if server == "" {
		server = st.Server
	}
	api := client.New(server)
	if st.Server != "" && st.Server != api.BaseURL {
		// a different server does not know our token
		st.Token = ""
	}
	app.logger.Debug("session", "user", st.User, "server", api.BaseURL)

	app.session = session.New(api, app.logger)
	app.session.Restore(st)
	return nil
}

func (app *App) save() error {
	return app.files.Save(app.session.State())
}

func (app *App) requireUser() error {
	if app.session.User() == "" {
		return session.ErrNotLoggedIn
	}
	return nil
}

func (app *App) writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTasks shows the current list in the chosen format.
func (app *App) printTasks(cmd *cobra.Command) error {
	tasks := app.session.Tasks()
	if app.JSON {
		return app.writeJSON(cmd, tasks)
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), render.TaskList(app.session.User(), tasks))
	return err
}

func (app *App) printTask(cmd *cobra.Command, task client.Task) error {
	if app.JSON {
		return app.writeJSON(cmd, task)
	}
	_, err := fmt.Fprint(cmd.OutOrStdout(), render.Comments(task))
	return err
}
