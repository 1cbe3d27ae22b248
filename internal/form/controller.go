package form

import (
	"context"
	"errors"
	"sync"
)

// FieldName names one of the form fields
type FieldName string

// Form fields.
const (
	FieldTitle FieldName = "title"
	FieldDate  FieldName = "date"
	FieldTime  FieldName = "time"
)

// Fields lists the form fields in display order
var Fields = []FieldName{FieldTitle, FieldDate, FieldTime}

// Values holds the raw field values. Empty means absent.
type Values struct {
	Title string
	Date  string
	Time  string
}

func (v Values) get(name FieldName) string {
	switch name {
	case FieldTitle:
		return v.Title
	case FieldDate:
		return v.Date
	case FieldTime:
		return v.Time
	}
	return ""
}

func (v *Values) set(name FieldName, value string) {
	switch name {
	case FieldTitle:
		v.Title = value
	case FieldDate:
		v.Date = value
	case FieldTime:
		v.Time = value
	}
}

// Status is the submission status of a form
type Status int

const (
	StatusIdle Status = iota
	StatusSubmitting
)

func (s Status) String() string {
	if s == StatusSubmitting {
		return "submitting"
	}
	return "idle"
}

// OnValid receives validated values during Submit
type OnValid func(ctx context.Context, vals Values) error

// Controller owns the field values and submission status of one form.
// It is safe for use from the UI goroutine and a submit command at once.
type Controller struct {
	validator *Validator

	mu        sync.Mutex
	values    Values
	touched   map[FieldName]bool
	errors    map[FieldName]string
	status    Status
	attempted bool
	// gen changes whenever the values are replaced so a submission that
	// settles afterwards does not report errors against the new values
	gen    int
	fields map[FieldName]*Field
}

// NewController returns a blank, idle controller
func NewController(validator *Validator) *Controller {
	c := &Controller{
		validator: validator,
		touched:   make(map[FieldName]bool),
		errors:    make(map[FieldName]string),
		fields:    make(map[FieldName]*Field, len(Fields)),
	}
	for _, name := range Fields {
		c.fields[name] = &Field{c: c, name: name}
	}
	return c
}

// Bind returns the handle for a field, or nil for an unknown name
func (c *Controller) Bind(name FieldName) *Field {
	return c.fields[name]
}

// SetDefaults overwrites every field and clears touched and error state.
// A submission in flight keeps the form submitting until it settles.
func (c *Controller) SetDefaults(vals Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = vals
	c.clearLocked()
}

// ResetToBlank clears every field
func (c *Controller) ResetToBlank() {
	c.SetDefaults(Values{})
}

func (c *Controller) clearLocked() {
	c.touched = make(map[FieldName]bool)
	c.errors = make(map[FieldName]string)
	c.attempted = false
	c.gen++
}

// Values returns a copy of the current field values
func (c *Controller) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values
}

// Status returns the submission status
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Submitting reports whether a submission is in flight
func (c *Controller) Submitting() bool {
	return c.Status() == StatusSubmitting
}

// Errors returns a copy of the current per-field errors
func (c *Controller) Errors() map[FieldName]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[FieldName]string, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

// Submit validates the current values and, when they are valid, calls onValid
// with the status set to submitting. The status is idle again when Submit
// returns, whatever onValid returned.
func (c *Controller) Submit(ctx context.Context, onValid OnValid) error {
	c.mu.Lock()
	if c.status == StatusSubmitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.attempted = true

	vals, err := c.validator.Validate(c.values)
	if err != nil {
		c.setErrorsLocked(err)
		c.mu.Unlock()
		return err
	}

	c.errors = make(map[FieldName]string)
	c.status = StatusSubmitting
	gen := c.gen
	c.mu.Unlock()

	err = onValid(ctx, vals)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = StatusIdle
	if c.gen == gen {
		var ce *CompositionError
		if errors.As(err, &ce) {
			c.errors[ce.Field] = ce.Message()
		}
	}
	return err
}

func (c *Controller) setErrorsLocked(err error) {
	c.errors = make(map[FieldName]string)
	var ve *ValidationError
	if errors.As(err, &ve) {
		for name, msg := range ve.Fields {
			c.errors[name] = msg
		}
	}
}

// revalidateLocked refreshes the error of one field after a failed submit
func (c *Controller) revalidateLocked(name FieldName) {
	delete(c.errors, name)
	if !c.attempted {
		return
	}
	if _, err := c.validator.Validate(c.values); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			if msg, ok := ve.Fields[name]; ok {
				c.errors[name] = msg
			}
		}
	}
}

// Field is a handle on one form field.
type Field struct {
	c    *Controller
	name FieldName
}

// Name returns the field name
func (f *Field) Name() FieldName {
	return f.name
}

// Value returns the current raw value
func (f *Field) Value() string {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	return f.c.values.get(f.name)
}

// Set stores raw input and marks the field touched
func (f *Field) Set(raw string) {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	f.c.values.set(f.name, raw)
	f.c.touched[f.name] = true
	f.c.revalidateLocked(f.name)
}

// Touched reports whether the field has received input
func (f *Field) Touched() bool {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	return f.c.touched[f.name]
}

// Error returns the field's error message, if any
func (f *Field) Error() string {
	f.c.mu.Lock()
	defer f.c.mu.Unlock()
	return f.c.errors[f.name]
}
