package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Rajangupta9/tasktracker/client"
	"github.com/Rajangupta9/tasktracker/session"
)

func newCommentsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "comments <task>",
		Short: "Show the comments on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.resolveTask(cmd, args[0])
			if err != nil {
				return err
			}
			return app.printTask(cmd, task)
		},
	}
}

func newCommentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Add, edit or delete comments",
	}
	cmd.AddCommand(newCommentAddCmd(app))
	cmd.AddCommand(newCommentEditCmd(app))
	cmd.AddCommand(newCommentDeleteCmd(app))
	return cmd
}

func newCommentAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <task> <text>",
		Short: "Comment on a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.resolveTask(cmd, args[0])
			if err != nil {
				return err
			}
			updated, err := app.session.AddComment(cmd.Context(), task.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if updated == nil {
				updated = &task
			}
			return app.printTask(cmd, *updated)
		},
	}
}

func newCommentEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <task> <comment> <text>",
		Short: "Replace the text of a comment",
		Long:  "A comment is referenced by its number in the thread or its id.",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, comment, err := app.resolveComment(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			text := app.session.User() + ": " + strings.Join(args[2:], " ")
			updated, err := app.session.EditComment(cmd.Context(), task.ID, comment.ID, text)
			if err != nil {
				return err
			}
			if updated == nil {
				updated = &task
			}
			return app.printTask(cmd, *updated)
		},
	}
}

func newCommentDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task> <comment>",
		Aliases: []string{"rm"},
		Short:   "Remove a comment",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, comment, err := app.resolveComment(cmd, args[0], args[1])
			if err != nil {
				return err
			}
			updated, err := app.session.DeleteComment(cmd.Context(), task.ID, comment.ID)
			if err != nil {
				return err
			}
			return app.printTask(cmd, *updated)
		},
	}
}

// resolveTask reloads the list so numbers match what list printed.
func (app *App) resolveTask(cmd *cobra.Command, ref string) (client.Task, error) {
	if err := app.session.LoadTasks(cmd.Context()); err != nil {
		return client.Task{}, err
	}
	return app.session.Resolve(ref)
}

func (app *App) resolveComment(cmd *cobra.Command, taskRef, commentRef string) (client.Task, client.Comment, error) {
	task, err := app.resolveTask(cmd, taskRef)
	if err != nil {
		return client.Task{}, client.Comment{}, err
	}
	comment, err := session.ResolveComment(task, commentRef)
	if err != nil {
		return client.Task{}, client.Comment{}, err
	}
	return task, comment, nil
}
