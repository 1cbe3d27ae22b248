package ui

import (
	"context"
	"io"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/cache"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/ui/views"
)

func newTestApp(t *testing.T) (*App, *db.DB) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	logger := log.New(io.Discard)
	todos := cache.New[models.Todo](func(ctx context.Context, _ string) ([]models.Todo, error) {
		return database.ListTodos(ctx)
	}, logger)

	app := NewApp(database, todos, logger, Options{
		SubmitTimeout:    time.Second,
		ResetAfterCreate: true,
		Location:         time.UTC,
	})
	return app, database
}

func TestAppTracksWindowSize(t *testing.T) {
	app, _ := newTestApp(t)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Same(t, app, model)
	assert.Nil(t, cmd)
	assert.Equal(t, 120, app.width)
	assert.Equal(t, 40, app.height)
	assert.Contains(t, app.View(), "Todos")
}

func TestAppInitRestoresLastTodo(t *testing.T) {
	app, database := newTestApp(t)
	ctx := context.Background()

	var last *models.Todo
	for i := 1; i <= 3; i++ {
		todo, err := database.SaveTodo(ctx, models.TodoInput{
			Title:      "todo " + strconv.Itoa(i),
			CompleteBy: time.Date(2024, 3, i, 9, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		last = todo
	}
	require.NoError(t, database.SetSetting(ctx, views.LastTodoSetting, strconv.FormatInt(last.ID, 10)))

	app.Update(tea.WindowSizeMsg{Width: 100, Height: 60})

	// Init batches the list load with a cache subscription that blocks,
	// so only run the load
	batch, ok := app.Init()().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)
	app.Update(batch[0]())

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	out := app.View()
	assert.Contains(t, out, "Edit Todo")
	assert.Contains(t, out, "todo 3")
}
