package form

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tgienger/todo/internal/cache"
	"github.com/tgienger/todo/internal/models"
)

// Mutator creates or updates a todo
type Mutator interface {
	SaveTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error)
}

// Invalidator marks a cached list stale
type Invalidator interface {
	Invalidate(ctx context.Context, key string) error
}

// EditContext is the shared "edit surface open" flag
type EditContext interface {
	Open() bool
	SetOpen(open bool)
}

// Coordinator turns validated form values into a saved todo and runs the
// refresh protocol afterwards.
type Coordinator struct {
	store  Mutator
	lists  Invalidator
	edit   EditContext
	logger *log.Logger

	listKey string
	now     func() time.Time
	loc     *time.Location
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*Coordinator)

// WithClock sets the clock used to fill in a missing date
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// WithLocation sets the timezone due dates are composed in. A nil
// location keeps local time.
func WithLocation(loc *time.Location) CoordinatorOption {
	return func(c *Coordinator) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithListKey sets the cache key invalidated after a save
func WithListKey(key string) CoordinatorOption {
	return func(c *Coordinator) { c.listKey = key }
}

// NewCoordinator creates a Coordinator
func NewCoordinator(store Mutator, lists Invalidator, edit EditContext, logger *log.Logger, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:   store,
		lists:   lists,
		edit:    edit,
		logger:  logger,
		listKey: cache.TodoListKey,
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the timezone due dates are composed in
func (c *Coordinator) Location() *time.Location {
	return c.loc
}

// Dispatch saves vals as a new todo, or as an update of target when target is
// stored. After a successful save the todo list is invalidated and, for an
// update, an open edit surface is closed, in that order. Nothing happens
// after a failure.
func (c *Coordinator) Dispatch(ctx context.Context, target *models.Todo, vals Values) (*models.Todo, error) {
	completeBy, err := Compose(vals.Date, vals.Time, c.now(), c.loc)
	if err != nil {
		return nil, err
	}

	in := models.TodoInput{
		Title:      strings.TrimSpace(vals.Title),
		CompleteBy: completeBy,
	}
	if !target.IsNew() {
		in.ID = target.ID
	}

	saved, err := c.store.SaveTodo(ctx, in)
	if err != nil {
		c.logger.Error("save todo failed", "id", in.ID, "err", err)
		return nil, &SubmissionError{Err: err}
	}
	c.logger.Info("todo saved", "id", saved.ID, "created", in.ID == 0, "complete_by", saved.CompleteBy)

	// The save has happened; a submit deadline must not stop the refresh
	if err := c.lists.Invalidate(context.WithoutCancel(ctx), c.listKey); err != nil {
		c.logger.Warn("invalidate todo list failed", "key", c.listKey, "err", err)
	}

	// A create never owns the edit surface, even if it opened meanwhile
	if in.ID != 0 && c.edit.Open() {
		c.edit.SetOpen(false)
	}
	return saved, nil
}
