package ui

import (
	"context"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/tgienger/todo/internal/cache"
	"github.com/tgienger/todo/internal/db"
	"github.com/tgienger/todo/internal/form"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/state"
	"github.com/tgienger/todo/internal/ui/views"
)

// Options configures the application
type Options struct {
	SubmitTimeout    time.Duration
	ResetAfterCreate bool
	Location         *time.Location
}

type App struct {
	db       *db.DB
	logger   *log.Logger
	todoList *views.TodoListView
	width    int
	height   int
}

// Creates a new application. The create form and the edit modal each get
// their own workflow; both save through the same coordinator and share
// the edit modal flag.
func NewApp(database *db.DB, todos *cache.ListCache[models.Todo], logger *log.Logger, opts Options) *App {
	edit := state.NewEditModal()
	coord := form.NewCoordinator(database, todos, edit, logger, form.WithLocation(opts.Location))
	validator := form.MustValidator()

	createWF := form.NewWorkflow(form.NewController(validator), coord, opts.ResetAfterCreate)
	editWF := form.NewWorkflow(form.NewController(validator), coord, false)

	return &App{
		db:     database,
		logger: logger,
		todoList: views.NewTodoListView(views.TodoListDeps{
			Store:      database,
			Todos:      todos,
			Edit:       edit,
			CreateForm: views.NewFormView(views.CreateForm, createWF, opts.SubmitTimeout, logger),
			EditForm:   views.NewFormView(views.EditForm, editWF, opts.SubmitTimeout, logger),
			Location:   opts.Location,
			Logger:     logger,
		}),
	}
}

func (a *App) Init() tea.Cmd {
	// Put the cursor back on the last opened todo
	lastTodoID, err := a.db.GetSetting(context.Background(), views.LastTodoSetting)
	if err != nil {
		a.logger.Warn("read setting", "key", views.LastTodoSetting, "err", err)
	} else if lastTodoID != "" {
		if id, err := strconv.ParseInt(lastTodoID, 10, 64); err == nil {
			a.todoList.RestoreCursor(id)
		}
	}

	return a.todoList.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		a.width = msg.Width
		a.height = msg.Height
	}

	_, cmd := a.todoList.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.todoList.View()
}
