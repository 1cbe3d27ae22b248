package views

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/todo/internal/cache"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/form"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/state"
)

var fixedNow = time.Date(2024, 2, 10, 8, 15, 0, 0, time.UTC)

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCtrlR = tea.KeyMsg{Type: tea.KeyCtrlR}
	keyCtrlE = tea.KeyMsg{Type: tea.KeyCtrlE}
	keyCtrlU = tea.KeyMsg{Type: tea.KeyCtrlU}
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type testUI struct {
	db    *db.DB
	todos *cache.ListCache[models.Todo]
	edit  *state.EditModal
	view  *TodoListView
}

func newTestUI(t *testing.T) *testUI {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	logger := log.New(io.Discard)
	todos := cache.New[models.Todo](func(ctx context.Context, _ string) ([]models.Todo, error) {
		return database.ListTodos(ctx)
	}, logger)
	edit := state.NewEditModal()
	now := func() time.Time { return fixedNow }

	coord := form.NewCoordinator(database, todos, edit, logger,
		form.WithLocation(time.UTC), form.WithClock(now))
	validator := form.MustValidator()

	view := NewTodoListView(TodoListDeps{
		Store:      database,
		Todos:      todos,
		Edit:       edit,
		CreateForm: NewFormView(CreateForm, form.NewWorkflow(form.NewController(validator), coord, true), time.Second, logger),
		EditForm:   NewFormView(EditForm, form.NewWorkflow(form.NewController(validator), coord, false), time.Second, logger),
		Location:   time.UTC,
		Logger:     logger,
		Now:        now,
	})
	view.Update(tea.WindowSizeMsg{Width: 100, Height: 60})

	return &testUI{db: database, todos: todos, edit: edit, view: view}
}

// send delivers msgs in order and returns the command from the last one
func (u *testUI) send(msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = u.view.Update(msg)
	}
	return cmd
}

func (u *testUI) reload(t *testing.T) {
	t.Helper()
	msg := u.view.loadTodos()
	require.IsType(t, todosLoadedMsg{}, msg)
	u.view.Update(msg)
}

func (u *testUI) seed(t *testing.T, title string, due time.Time) *models.Todo {
	t.Helper()
	todo, err := u.db.SaveTodo(context.Background(), models.TodoInput{Title: title, CompleteBy: due})
	require.NoError(t, err)
	return todo
}

func (u *testUI) count(t *testing.T) int {
	t.Helper()
	n, err := u.db.TodoCount(context.Background())
	require.NoError(t, err)
	return n
}

// submit presses ctrl+s, runs the resulting command and delivers its result
func (u *testUI) submit(t *testing.T) SubmittedMsg {
	t.Helper()
	cmd := u.send(keyCtrlS)
	require.NotNil(t, cmd, "submit produced no command")
	for _, msg := range runCmd(cmd) {
		if sm, ok := msg.(SubmittedMsg); ok {
			u.send(sm)
			return sm
		}
	}
	t.Fatal("no SubmittedMsg")
	return SubmittedMsg{}
}

// runCmd runs cmd and any batched commands it returns. Only use it on
// commands that return promptly.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func notified(u *testUI) bool {
	select {
	case <-u.view.invalidated:
		return true
	default:
		return false
	}
}
