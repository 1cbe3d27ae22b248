package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
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
			if err := e.db.DeleteTodo(cmd.Context(), id); err != nil {
				return err
			}
			e.logger.Info("todo deleted", "id", id)

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted todo %d: %s\n", id, todo.Title)
			return nil
		},
	}
}
