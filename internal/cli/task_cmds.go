package cli

import (
	"fmt"

	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/spf13/cobra"
)

func newListCmd(app *App) *cobra.Command {
	var asJSON bool
	var status string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := app.tasks.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				want, err := tasks.ParseStatus(status)
				if err != nil {
					return err
				}
				filtered := list[:0]
				for _, t := range list {
					if t.Status == want {
						filtered = append(filtered, t)
					}
				}
				list = filtered
			}
			if asJSON {
				return writeJSON(app.out, list)
			}
			renderTaskList(app.out, list)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tasks as JSON")
	cmd.Flags().StringVar(&status, "status", "", "Only show tasks with this status")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var description, status string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := tasks.TaskInput{Title: args[0], Description: description}
			if status != "" {
				parsed, err := tasks.ParseStatus(status)
				if err != nil {
					return err
				}
				in.Status = parsed
			}
			created, err := app.tasks.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			success(app.out, "Added")
			fmt.Fprintln(app.out, renderTask(created))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "pending, in-progress or done (default pending)")
	return cmd
}

func newUpdateCmd(app *App) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a task's title, description or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if _, err := app.tasks.Fetch(cmd.Context()); err != nil {
				return err
			}
			current, ok := app.tasks.Store().Get(id)
			if !ok {
				return errTaskNotFound(id)
			}

			in := current.Input()
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if cmd.Flags().Changed("description") {
				in.Description = description
			}
			if cmd.Flags().Changed("status") {
				parsed, err := tasks.ParseStatus(status)
				if err != nil {
					return err
				}
				in.Status = parsed
			}

			updated, err := app.tasks.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			success(app.out, "Updated")
			fmt.Fprintln(app.out, renderTask(updated))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status")
	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updated, err := app.tasks.SetStatus(cmd.Context(), args[0], tasks.StatusDone)
			if err != nil {
				return err
			}
			success(app.out, "Done")
			fmt.Fprintln(app.out, renderTask(updated))
			return nil
		},
	}
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.tasks.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(app.out, "Deleted %s", args[0])
			return nil
		},
	}
}
