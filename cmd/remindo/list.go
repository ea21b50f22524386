package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remindo/internal/app"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cfgPath, app.Options{})
			if err != nil {
				return err
			}
			defer a.Stop()

			for _, t := range a.ListTasks() {
				recurring := "No"
				if t.Recurring {
					recurring = "Yes"
				}
				fmt.Fprintf(cmd.OutOrStdout(),
					"ID: %d, Title: '%s', Details: '%s', Start: %s, End: %s, Recurring: %s\n",
					t.ID, t.Title, t.Details, t.StartTime, t.EndTime, recurring)
			}
			return nil
		},
	}
}
