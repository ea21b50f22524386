package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"remindo/internal/app"
	"remindo/internal/task"
)

func addCmd() *cobra.Command {
	var (
		recurring bool
		every     int64
	)
	cmd := &cobra.Command{
		Use:   "add <title> <details> <start> <end>",
		Short: "Add a task and deliver its reminders",
		Long: `Add a task and stay in the foreground delivering its reminders.

Start and end are RFC 3339 timestamps, e.g. 2026-12-31T15:00:06Z.
The process exits when the task's chain has run to completion; recurring
chains run until interrupted.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseTimestamp(args[2])
			if err != nil {
				return fmt.Errorf("invalid start time %q: use RFC 3339, e.g. 2026-12-31T15:00:06Z", args[2])
			}
			end, err := parseTimestamp(args[3])
			if err != nil {
				return fmt.Errorf("invalid end time %q: use RFC 3339, e.g. 2026-12-31T15:00:06Z", args[3])
			}

			a, err := app.New(cfgPath, app.Options{})
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a.Start(ctx)
			defer a.Stop()

			t := task.Task{
				Title:            args[0],
				Details:          args[1],
				StartTime:        start,
				EndTime:          end,
				Recurring:        recurring,
				FrequencyMinutes: every,
			}
			id, err := a.AddTask(ctx, t)
			if err != nil {
				switch {
				case errors.Is(err, task.ErrStartNotFuture):
					return errors.New("Error: Start time must be in the future.")
				case errors.Is(err, task.ErrEndNotAfter):
					return errors.New("Error: End time must be after the start time.")
				}
				if id == 0 {
					return err
				}
				// Calendar push failed but the task is in; keep going.
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task '%s' added with ID: %d\n", t.Title, id)

			// Stay alive until the chain runs out or we're interrupted.
			return a.AwaitIdle(ctx)
		},
	}
	cmd.Flags().BoolVar(&recurring, "recurring", false, "repeat the task forever")
	cmd.Flags().Int64Var(&every, "every", 0, "recurrence interval in minutes (with --recurring)")
	return cmd
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
