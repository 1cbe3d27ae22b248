package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tgienger/todo/internal/form"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// Focusable parts of the form. The first three line up with form.Fields.
const (
	focusTitle = iota
	focusDate
	focusTime
	focusReset
	focusSubmit
	focusCount
)

// SubmittedMsg carries the result of a form submission
type SubmittedMsg struct {
	Form string
	Todo *models.Todo
	Err  error
}

// CancelledMsg is sent when the user leaves a form with esc
type CancelledMsg struct {
	Form string
}

// FormView renders a todo entry form and drives its workflow
type FormView struct {
	name     string
	workflow *form.Workflow
	timeout  time.Duration
	logger   *log.Logger
	styles   *styles.Styles
	keys     keys.KeyMap

	inputs   []textinput.Model
	focusIdx int
	spinner  spinner.Model

	// pending is set from the moment a submit command is issued until its
	// result arrives, so a second ctrl+s never queues another command.
	pending   bool
	status    string
	statusErr bool
	width     int
}

// NewFormView creates a form named name. The name tags the messages the
// form emits so a parent holding several forms can route them.
func NewFormView(name string, wf *form.Workflow, timeout time.Duration, logger *log.Logger) *FormView {
	title := textinput.New()
	title.Placeholder = "What needs doing?"
	title.CharLimit = models.MaxTitleLength

	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = len(form.DateLayout)

	clock := textinput.New()
	clock.Placeholder = "HH:MM"
	clock.CharLimit = len("15:04:05")

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Current.Warning)

	f := &FormView{
		name:     name,
		workflow: wf,
		timeout:  timeout,
		logger:   logger,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		inputs:   []textinput.Model{title, date, clock},
		spinner:  s,
	}
	f.syncInputs()
	f.updateFocus()
	return f
}

// Name returns the name the form tags its messages with
func (f *FormView) Name() string {
	return f.name
}

// Workflow returns the workflow behind the form
func (f *FormView) Workflow() *form.Workflow {
	return f.workflow
}

// Busy reports whether a submission is in flight
func (f *FormView) Busy() bool {
	return f.pending || f.workflow.Controller().Submitting()
}

// Load fills the form from todo, or clears it for a new todo when todo is nil.
// A busy form keeps what it has.
func (f *FormView) Load(todo *models.Todo) tea.Cmd {
	if f.Busy() {
		return nil
	}
	if err := f.workflow.Load(todo); err != nil {
		f.logger.Debug("load form", "form", f.name, "err", err)
		return nil
	}
	f.status = ""
	f.statusErr = false
	f.focusIdx = focusTitle
	f.syncInputs()
	f.updateFocus()
	return textinput.Blink
}

// Init initializes the form
func (f *FormView) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (f *FormView) Update(msg tea.Msg) (*FormView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
		return f, nil

	case spinner.TickMsg:
		if !f.Busy() {
			return f, nil
		}
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(msg)
		return f, cmd

	case SubmittedMsg:
		if msg.Form == f.name {
			f.handleSubmitted(msg)
		}
		return f, nil

	case tea.KeyMsg:
		return f.updateKeys(msg)
	}

	return f, nil
}

func (f *FormView) updateKeys(msg tea.KeyMsg) (*FormView, tea.Cmd) {
	switch {
	case key.Matches(msg, f.keys.Back):
		name := f.name
		return f, func() tea.Msg { return CancelledMsg{Form: name} }

	case key.Matches(msg, f.keys.Submit):
		return f, f.submit()

	case key.Matches(msg, f.keys.Reset):
		f.reset()
		return f, nil

	case key.Matches(msg, f.keys.Tab):
		f.focusIdx = (f.focusIdx + 1) % focusCount
		f.updateFocus()
		return f, nil

	case key.Matches(msg, f.keys.ShiftTab):
		f.focusIdx = (f.focusIdx + focusCount - 1) % focusCount
		f.updateFocus()
		return f, nil

	case key.Matches(msg, f.keys.Enter):
		switch f.focusIdx {
		case focusReset:
			f.reset()
			return f, nil
		case focusSubmit:
			return f, f.submit()
		default:
			f.focusIdx++
			f.updateFocus()
			return f, nil
		}
	}

	// Inputs are read-only while a submission is in flight
	if f.focusIdx >= len(f.inputs) || f.Busy() {
		return f, nil
	}

	before := f.inputs[f.focusIdx].Value()
	var cmd tea.Cmd
	f.inputs[f.focusIdx], cmd = f.inputs[f.focusIdx].Update(msg)
	if after := f.inputs[f.focusIdx].Value(); after != before {
		f.workflow.Controller().Bind(form.Fields[f.focusIdx]).Set(after)
	}
	return f, cmd
}

// submit starts a submission in a command. The result comes back as a
// SubmittedMsg.
func (f *FormView) submit() tea.Cmd {
	if f.Busy() {
		return nil
	}
	f.pending = true
	f.status = ""
	f.statusErr = false
	f.updateFocus()

	wf, name, timeout := f.workflow, f.name, f.timeout
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		todo, err := wf.Submit(ctx)
		return SubmittedMsg{Form: name, Todo: todo, Err: err}
	}
	return tea.Batch(run, f.spinner.Tick)
}

func (f *FormView) handleSubmitted(msg SubmittedMsg) {
	f.pending = false
	f.syncInputs()
	f.updateFocus()

	var ve *form.ValidationError
	var ce *form.CompositionError
	switch {
	case msg.Err == nil:
		f.status = fmt.Sprintf("Saved %q", msg.Todo.Title)
		f.statusErr = false
	case errors.Is(msg.Err, form.ErrSubmitInFlight):
		// another submission owns the form; its result will follow
	case errors.As(msg.Err, &ve), errors.As(msg.Err, &ce):
		// shown next to the fields
		f.status = ""
	default:
		f.logger.Debug("submit failed", "form", f.name, "err", msg.Err)
		f.status = "Could not save: " + msg.Err.Error()
		f.statusErr = true
	}
}

// reset restores the loaded todo in edit mode and blanks the form otherwise
func (f *FormView) reset() {
	if f.Busy() {
		return
	}
	if err := f.workflow.Load(f.workflow.Target()); err != nil {
		return
	}
	f.status = ""
	f.statusErr = false
	f.syncInputs()
}

// syncInputs copies the controller's values into the text inputs
func (f *FormView) syncInputs() {
	c := f.workflow.Controller()
	for i, name := range form.Fields {
		f.inputs[i].SetValue(c.Bind(name).Value())
	}
}

func (f *FormView) updateFocus() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	if f.focusIdx < len(f.inputs) && !f.Busy() {
		f.inputs[f.focusIdx].Focus()
	}
}

// Value returns what the input for name currently shows
func (f *FormView) Value(name form.FieldName) string {
	for i, n := range form.Fields {
		if n == name {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// Status returns the status line text and whether it reports an error
func (f *FormView) Status() (string, bool) {
	return f.status, f.statusErr
}

// View renders the form
func (f *FormView) View() string {
	s := f.styles
	c := f.workflow.Controller()
	contentWidth := styles.ContentWidth(f.width)
	inputWidth := styles.Clamp(contentWidth-8, 20, 50)
	busy := f.Busy()

	formTitle := "New Todo"
	if f.workflow.Editing() {
		formTitle = "Edit Todo"
	}

	labels := []string{"Title:", "Date (YYYY-MM-DD):", "Time (HH:MM):"}
	rows := []string{s.Title.Render(formTitle), ""}
	for i, name := range form.Fields {
		inputStyle := s.Input
		switch {
		case busy:
			inputStyle = s.InputDisabled
		case f.focusIdx == i:
			inputStyle = s.InputFocused
		}
		rows = append(rows,
			s.Label.Render(labels[i]),
			inputStyle.Width(inputWidth).Render(f.inputs[i].View()),
		)
		if msg := c.Bind(name).Error(); msg != "" {
			rows = append(rows, s.FieldError.Render(msg))
		}
	}

	resetStyle, submitStyle := s.Button, s.Button
	switch f.focusIdx {
	case focusReset:
		resetStyle = s.ButtonFocused
	case focusSubmit:
		submitStyle = s.ButtonFocused
	}
	rows = append(rows, "",
		lipgloss.JoinHorizontal(lipgloss.Center,
			resetStyle.Render(" Reset "), "  ", submitStyle.Render(" Save "),
		),
	)

	switch {
	case busy:
		rows = append(rows, s.StatusBusy.Render(f.spinner.View()+" Saving..."))
	case f.status != "" && f.statusErr:
		rows = append(rows, s.StatusError.Render(f.status))
	case f.status != "":
		rows = append(rows, s.StatusOK.Render(f.status))
	}

	rows = append(rows, "",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Ctrl+R: reset • Esc: close"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
