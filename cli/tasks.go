package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rajangupta9/tasktracker/models"
)

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <name>",
		Short: "Log in with a display name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session.Login(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}
			if err := app.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", app.session.User())
			return nil
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.session.Logout()
			if err := app.files.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireUser(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.session.User())
			return nil
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your tasks, highest priority first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session.LoadTasks(cmd.Context()); err != nil {
				return err
			}
			return app.printTasks(cmd)
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var priority string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParsePriority(priority)
			if err != nil {
				return err
			}
			if err := app.requireUser(); err != nil {
				return err
			}
			if err := app.session.AddTask(cmd.Context(), strings.Join(args, " "), string(p)); err != nil {
				return err
			}
			return app.printTasks(cmd)
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", string(models.PriorityMedium), "High, Medium or Low")
	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task>",
		Short: "Mark a task done, or not done again",
		Long:  "A task is referenced by its list number, its id, or the short id shown by list.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.resolveTask(cmd, args[0])
			if err != nil {
				return err
			}
			if err := app.session.ToggleTask(cmd.Context(), task); err != nil {
				return err
			}
			return app.printTasks(cmd)
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <task> <new title>",
		Short: "Rename a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.resolveTask(cmd, args[0])
			if err != nil {
				return err
			}
			if err := app.session.EditTask(cmd.Context(), task.ID, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			return app.printTasks(cmd)
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task>",
		Aliases: []string{"rm"},
		Short:   "Delete a task and its comments",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.resolveTask(cmd, args[0])
			if err != nil {
				return err
			}
			if err := app.session.DeleteTask(cmd.Context(), task.ID); err != nil {
				return err
			}
			return app.printTasks(cmd)
		},
	}
}
