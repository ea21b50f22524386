package main

import (
	"github.com/spf13/cobra"

	"remindo/internal/app"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run as a daemon: seed tasks from config, sync the calendar, deliver reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cfgPath, app.Options{})
			if err != nil {
				return err
			}
			return a.RunWatch(cmd.Context())
		},
	}
}
