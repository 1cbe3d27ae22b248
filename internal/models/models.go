package models

import "time"

// MaxTitleLength is the longest title the store accepts
const MaxTitleLength = 255

// Todo represents a single todo
type Todo struct {
	ID         int64
	Title      string
	CompleteBy time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsNew reports whether the todo has not been stored yet
func (t *Todo) IsNew() bool {
	return t == nil || t.ID == 0
}

// Overdue reports whether the due time has passed
func (t Todo) Overdue(now time.Time) bool {
	return !t.CompleteBy.IsZero() && t.CompleteBy.Before(now)
}

// TodoInput is the payload of a create or update.
// ID 0 creates a new todo, anything else updates that todo.
type TodoInput struct {
	ID         int64
	Title      string
	CompleteBy time.Time
}
