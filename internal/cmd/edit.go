package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/form"
)

func newEditCmd(opts *rootOptions) *cobra.Command {
	var title, date, clock string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a todo",
		Long: `Change the title or due date of a todo. Fields without a flag keep
their current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid todo id %q", args[0])
			}

			e, err := opts.open()
			if err != nil {
				return err
			}
			defer e.Close()

			todo, err := e.db.GetTodo(cmd.Context(), id)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("todo %d not found", id)
			}
			if err != nil {
				return err
			}

			wf := e.workflow()
			if err := wf.Load(todo); err != nil {
				return err
			}
			c := wf.Controller()
			flags := cmd.Flags()
			if flags.Changed("title") {
				c.Bind(form.FieldTitle).Set(title)
			}
			if flags.Changed("date") {
				c.Bind(form.FieldDate).Set(date)
			}
			if flags.Changed("time") {
				c.Bind(form.FieldTime).Set(clock)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), e.cfg.SubmitTimeout())
			defer cancel()
			saved, err := wf.Submit(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated todo %d: %s (due %s)\n",
				saved.ID, saved.Title, formatDue(saved.CompleteBy, e.loc))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&date, "date", "", "new due date as YYYY-MM-DD")
	cmd.Flags().StringVar(&clock, "time", "", "new due time as HH:MM")
	return cmd
}
