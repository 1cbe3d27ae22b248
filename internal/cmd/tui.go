package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/todo/internal/ui"
)

func runTUI(ctx context.Context, opts *rootOptions) error {
	e, err := opts.open()
	if err != nil {
		return err
	}
	defer e.Close()

	app := ui.NewApp(e.db, e.todos, e.logger, ui.Options{
		SubmitTimeout:    e.cfg.SubmitTimeout(),
		ResetAfterCreate: e.cfg.ResetAfterCreate,
		Location:         e.loc,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
