package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"remindo/internal/app"
)

func syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull calendar events into the task store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cfgPath, app.Options{})
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a.Start(ctx)
			defer a.Stop()

			n, err := a.SyncCalendar(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d task(s) from calendar\n", n)
			if n == 0 {
				return nil
			}
			// Imported tasks have live reminder chains; hold on to them.
			return a.AwaitIdle(ctx)
		},
	}
}
