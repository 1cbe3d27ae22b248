package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/form"
)

func newAddCmd(opts *rootOptions) *cobra.Command {
	var date, clock string

	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a todo",
		Long: `Add a todo. The date defaults to today and the time to midnight.

Examples:
  todo add Buy milk
  todo add "Dentist" --date 2024-03-01 --time 14:30`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			defer e.Close()

			wf := e.workflow()
			c := wf.Controller()
			c.Bind(form.FieldTitle).Set(strings.Join(args, " "))
			c.Bind(form.FieldDate).Set(date)
			c.Bind(form.FieldTime).Set(clock)

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.SubmitTimeout())
			defer cancel()
			saved, err := wf.Submit(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added todo %d: %s (due %s)\n",
				saved.ID, saved.Title, formatDue(saved.CompleteBy, e.loc))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "due date as YYYY-MM-DD")
	cmd.Flags().StringVar(&clock, "time", "", "due time as HH:MM")
	return cmd
}
