package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tgienger/todo/internal/cache"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/state"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// LastTodoSetting is the settings key holding the last opened todo
const LastTodoSetting = "last_todo_id"

// Form names used to route SubmittedMsg and CancelledMsg
const (
	CreateForm = "create"
	EditForm   = "edit"
)

// TodoStore is the part of the database the list view writes to
type TodoStore interface {
	DeleteTodo(ctx context.Context, id int64) error
	SetSetting(ctx context.Context, key, value string) error
}

// TodoSource serves the cached todo list
type TodoSource interface {
	Get(ctx context.Context, key string) ([]models.Todo, error)
	Invalidate(ctx context.Context, key string) error
	Subscribe() <-chan string
}

// TodoListDeps are the collaborators of a TodoListView
type TodoListDeps struct {
	Store      TodoStore
	Todos      TodoSource
	Edit       *state.EditModal
	CreateForm *FormView
	EditForm   *FormView
	Location   *time.Location
	Logger     *log.Logger
	Now        func() time.Time
}

// TodoListView shows all todos ordered by due date, with an entry form
// for new todos and a modal for editing an existing one
type TodoListView struct {
	store  TodoStore
	todos  TodoSource
	edit   *state.EditModal
	loc    *time.Location
	logger *log.Logger
	now    func() time.Time
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	items       []models.Todo
	cursor      int
	scrollY     int
	restoreID   int64
	loadErr     error
	invalidated <-chan string

	createForm *FormView
	editForm   *FormView
	creating   bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	showHelpPopup bool
}

// NewTodoListView creates the todo list view
func NewTodoListView(deps TodoListDeps) *TodoListView {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TodoListView{
		store:       deps.Store,
		todos:       deps.Todos,
		edit:        deps.Edit,
		loc:         loc,
		logger:      deps.Logger,
		now:         now,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		invalidated: deps.Todos.Subscribe(),
		createForm:  deps.CreateForm,
		editForm:    deps.EditForm,
	}
}

// RestoreCursor moves the cursor to the todo with id once the list loads
func (v *TodoListView) RestoreCursor(id int64) {
	v.restoreID = id
}

// Init initializes the view
func (v *TodoListView) Init() tea.Cmd {
	return tea.Batch(v.loadTodos, v.waitForInvalidation)
}

type todosLoadedMsg struct {
	todos []models.Todo
}

type loadFailedMsg struct {
	err error
}

type listInvalidatedMsg struct {
	key string
}

func (v *TodoListView) loadTodos() tea.Msg {
	todos, err := v.todos.Get(context.Background(), cache.TodoListKey)
	if err != nil {
		return loadFailedMsg{err: err}
	}
	return todosLoadedMsg{todos: todos}
}

// waitForInvalidation blocks until the cache reports a stale list
func (v *TodoListView) waitForInvalidation() tea.Msg {
	key, ok := <-v.invalidated
	if !ok {
		return nil
	}
	return listInvalidatedMsg{key: key}
}

// Update handles messages
func (v *TodoListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.createForm.Update(msg)
		v.editForm.Update(msg)
		return v, nil

	case todosLoadedMsg:
		v.items = msg.todos
		v.loadErr = nil
		if v.restoreID != 0 {
			for i, t := range v.items {
				if t.ID == v.restoreID {
					v.cursor = i
					break
				}
			}
			v.restoreID = 0
		}
		if v.cursor >= len(v.items) {
			v.cursor = max(0, len(v.items)-1)
		}
		v.ensureVisible()
		return v, nil

	case loadFailedMsg:
		v.loadErr = msg.err
		v.logger.Error("todo list", "err", msg.err)
		return v, nil

	case listInvalidatedMsg:
		if msg.key == cache.TodoListKey {
			return v, tea.Batch(v.loadTodos, v.waitForInvalidation)
		}
		return v, v.waitForInvalidation

	case SubmittedMsg:
		if msg.Err == nil && msg.Todo != nil {
			v.restoreID = msg.Todo.ID
			v.remember(msg.Todo.ID)
		}
		return v, v.routeToForm(msg.Form, msg)

	case CancelledMsg:
		switch msg.Form {
		case EditForm:
			v.edit.SetOpen(false)
		case CreateForm:
			v.creating = false
		}
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.edit.Open() {
			return v, v.routeToForm(EditForm, msg)
		}

		if v.creating {
			return v, v.routeToForm(CreateForm, msg)
		}

		return v.updateNormal(msg)
	}

	// Spinner ticks and anything else go to both forms
	_, createCmd := v.createForm.Update(msg)
	_, editCmd := v.editForm.Update(msg)
	return v, tea.Batch(createCmd, editCmd)
}

func (v *TodoListView) routeToForm(name string, msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch name {
	case CreateForm:
		_, cmd = v.createForm.Update(msg)
	case EditForm:
		_, cmd = v.editForm.Update(msg)
	}
	return cmd
}

func (v *TodoListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.items)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.creating = true
		if v.createForm.Busy() {
			return v, nil
		}
		return v, v.createForm.Load(nil)

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if len(v.items) == 0 {
			return v, nil
		}
		v.edit.SetOpen(true)
		// A save still running keeps its todo in the modal
		if v.editForm.Busy() {
			return v, nil
		}
		todo := v.items[v.cursor]
		v.remember(todo.ID)
		return v, v.editForm.Load(&todo)

	case key.Matches(msg, v.keys.Delete):
		if len(v.items) > 0 {
			v.confirmingDelete = true
			v.deleteTargetID = v.items[v.cursor].ID
			v.deleteTargetName = v.items[v.cursor].Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.invalidate

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TodoListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, v.deleteTodo(v.deleteTargetID)
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TodoListView) deleteTodo(id int64) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := v.store.DeleteTodo(ctx, id); err != nil {
			return loadFailedMsg{err: fmt.Errorf("delete todo %d: %w", id, err)}
		}
		v.logger.Info("todo deleted", "id", id)
		return v.invalidate()
	}
}

// invalidate marks the list stale; the subscription triggers the reload
func (v *TodoListView) invalidate() tea.Msg {
	if err := v.todos.Invalidate(context.Background(), cache.TodoListKey); err != nil {
		v.logger.Warn("invalidate todo list", "err", err)
	}
	return nil
}

// remember saves id as the last opened todo
func (v *TodoListView) remember(id int64) {
	if err := v.store.SetSetting(context.Background(), LastTodoSetting, strconv.FormatInt(id, 10)); err != nil {
		v.logger.Warn("save setting", "key", LastTodoSetting, "err", err)
	}
}

func (v *TodoListView) visibleItems() int {
	// Each todo is 2 lines + 1 margin. The create form takes most of the
	// screen when it is showing.
	reserved := 8
	if v.creating {
		reserved += 18
	}
	return max((v.height-reserved)/3, 1)
}

func (v *TodoListView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// View renders the view
func (v *TodoListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.edit.Open() {
		return v.renderEditModal()
	}

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	if v.creating {
		b.WriteString(v.createForm.View())
		b.WriteString("\n\n")
	}

	b.WriteString(v.renderTodoList())

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	padded := lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TodoListView) renderHeader() string {
	s := v.styles
	count := s.TitleMuted.Render(fmt.Sprintf("%d todos", len(v.items)))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, s.Title.Render("Todos"), "  ", count)
	if v.loadErr != nil {
		header = lipgloss.JoinVertical(lipgloss.Left, header, s.StatusError.Render(v.loadErr.Error()))
	}
	return header
}

func (v *TodoListView) renderTodoList() string {
	s := v.styles

	if len(v.items) == 0 {
		return s.TitleMuted.Render("No todos. Press 'n' to create one.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.items))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTodoItem(v.items[i], i == v.cursor && !v.creating))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TodoListView) renderTodoItem(todo models.Todo, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-6, 20)

	due := s.Due.Render("due " + todo.CompleteBy.In(v.loc).Format("Mon Jan 2, 2006 15:04"))
	if todo.Overdue(v.now()) {
		due = s.Overdue.Render("overdue " + todo.CompleteBy.In(v.loc).Format("Mon Jan 2, 2006 15:04"))
	}

	itemStyle := s.ListItem.Width(width)
	if selected {
		itemStyle = s.ListSelected.Width(width)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		itemStyle.Render(todo.Title),
		itemStyle.Render(due),
	) + "\n"
}

func (v *TodoListView) renderEditModal() string {
	contentWidth := styles.ContentWidth(v.width)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		v.styles.Popup.Render(v.editForm.View()),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TodoListView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}

	return s.Help.Render(
		fmt.Sprintf("%s new • %s edit • %s del • %s refresh • %s help • %s quit",
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("?"),
			s.HelpKey.Render("q"),
		),
	)
}

func (v *TodoListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("n") + "       new todo",
		s.HelpKey.Render("e/↵") + "     edit todo",
		s.HelpKey.Render("d") + "       delete todo",
		s.HelpKey.Render("r") + "       refresh",
		s.HelpKey.Render("ctrl+s") + "  save form",
		s.HelpKey.Render("ctrl+r") + "  reset form",
		s.HelpKey.Render("esc") + "     close form",
		s.HelpKey.Render("q") + "       quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TodoListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Todo?"),
		"",
		s.TitleMuted.Render(v.deleteTargetName),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
