package form

import (
	"context"
	"sync"
	"time"

	"github.com/tgienger/todo/internal/models"
)

// Workflow is the todo entry form: a controller for the fields and a
// coordinator for saving, plus the todo being edited, if any.
type Workflow struct {
	controller       *Controller
	coord            *Coordinator
	resetAfterCreate bool

	mu     sync.Mutex
	target *models.Todo
}

// NewWorkflow creates a workflow in create mode
func NewWorkflow(controller *Controller, coord *Coordinator, resetAfterCreate bool) *Workflow {
	return &Workflow{
		controller:       controller,
		coord:            coord,
		resetAfterCreate: resetAfterCreate,
	}
}

// Controller returns the field controller
func (w *Workflow) Controller() *Controller {
	return w.controller
}

// Load fills the form from an existing todo for editing.
// A nil todo switches back to create mode with a blank form.
// It returns ErrSubmitInFlight and changes nothing while a submission runs.
func (w *Workflow) Load(todo *models.Todo) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.controller.Submitting() {
		return ErrSubmitInFlight
	}

	if todo == nil {
		w.target = nil
		w.controller.ResetToBlank()
		return nil
	}

	target := *todo
	w.target = &target
	w.controller.SetDefaults(DefaultsFor(target, w.coord.Location()))
	return nil
}

// DefaultsFor returns the form values that represent todo
func DefaultsFor(todo models.Todo, loc *time.Location) Values {
	date, clock := Decompose(todo.CompleteBy, loc)
	return Values{Title: todo.Title, Date: date, Time: clock}
}

// Target returns the todo being edited, or nil in create mode
func (w *Workflow) Target() *models.Todo {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.target == nil {
		return nil
	}
	target := *w.target
	return &target
}

// Editing reports whether the form edits an existing todo
func (w *Workflow) Editing() bool {
	return w.Target() != nil
}

// Submit validates and saves the form. In create mode a successful save
// clears the form when resetAfterCreate is set.
func (w *Workflow) Submit(ctx context.Context) (*models.Todo, error) {
	target := w.Target()

	var saved *models.Todo
	err := w.controller.Submit(ctx, func(ctx context.Context, vals Values) error {
		var err error
		saved, err = w.coord.Dispatch(ctx, target, vals)
		return err
	})
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if target == nil {
		if w.resetAfterCreate {
			w.controller.ResetToBlank()
		}
	} else if w.target != nil && w.target.ID == saved.ID {
		updated := *saved
		w.target = &updated
	}
	return saved, nil
}
