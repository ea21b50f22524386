package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"remindo/internal/app"
)

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a task and cancel its reminders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			a, err := app.New(cfgPath, app.Options{})
			if err != nil {
				return err
			}
			defer a.Stop()

			t, ok := a.RemoveTask(id)
			if !ok {
				return fmt.Errorf("task with ID %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task '%s' removed (ID: %d)\n", t.Title, id)
			return nil
		},
	}
}
