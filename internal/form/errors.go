package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Field error messages.
const (
	MsgRequired    = "Required"
	MsgTooLong     = "Must be 255 characters or fewer"
	MsgInvalidDate = "Invalid date, use YYYY-MM-DD"
	MsgInvalidTime = "Invalid time, use HH:MM"
)

// ErrSubmitInFlight is returned by Submit and Workflow.Load while a submission
// is running.
var ErrSubmitInFlight = errors.New("form: submission already in flight")

// ValidationError maps field names to messages.
type ValidationError struct {
	Fields map[FieldName]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, string(name))
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[FieldName(name)]
	}
	return "invalid todo: " + strings.Join(parts, ", ")
}

// SubmissionError wraps a failed create or update.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("save todo: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// CompositionError reports a date or time that cannot be parsed.
type CompositionError struct {
	Field FieldName
	Value string
	Err   error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *CompositionError) Unwrap() error {
	return e.Err
}

// Message is the text shown next to the offending field
func (e *CompositionError) Message() string {
	if e.Field == FieldTime {
		return MsgInvalidTime
	}
	return MsgInvalidDate
}
