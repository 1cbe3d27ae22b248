package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/cache"
	"github.com/tgienger/todo/internal/ui/styles"
)

const dueLayout = "Mon Jan 2, 2006 15:04"

func formatDue(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dueLayout)
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos by due date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open()
			if err != nil {
				return err
			}
			defer e.Close()

			todos, err := e.todos.Get(cmd.Context(), cache.TodoListKey)
			if err != nil {
				return err
			}
			if len(todos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No todos.")
				return nil
			}

			now := time.Now()
			overdue := make(map[int]bool)
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("ID", "DUE", "TITLE")
			for i, todo := range todos {
				overdue[i] = todo.Overdue(now)
				t.Row(strconv.FormatInt(todo.ID, 10), formatDue(todo.CompleteBy, e.loc), todo.Title)
			}

			s := styles.NewStyles()
			t.StyleFunc(func(row, col int) lipgloss.Style {
				base := lipgloss.NewStyle().Padding(0, 1)
				switch {
				case row == table.HeaderRow:
					return base.Inherit(s.Title)
				case col == 1 && overdue[row]:
					return base.Inherit(s.Overdue)
				}
				return base
			})

			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
}
