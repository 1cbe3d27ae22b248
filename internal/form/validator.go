package form

import (
	_ "embed"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed todo.schema.json
var todoSchema string

const schemaURL = "todo.schema.json"

// Validator checks form values against the todo form schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(todoSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// MustValidator is NewValidator for the compiled-in schema, which cannot fail
// unless the embedded file is broken.
func MustValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate returns vals unchanged when they are valid, or a *ValidationError.
// The title is checked as it will be stored, with surrounding whitespace
// removed.
func (v *Validator) Validate(vals Values) (Values, error) {
	instance := map[string]interface{}{
		string(FieldTitle): strings.TrimSpace(vals.Title),
	}
	if vals.Date != "" {
		instance[string(FieldDate)] = vals.Date
	}
	if vals.Time != "" {
		instance[string(FieldTime)] = vals.Time
	}

	if err := v.schema.Validate(instance); err != nil {
		return Values{}, toValidationError(err)
	}
	return vals, nil
}

func toValidationError(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}

	fields := make(map[FieldName]string)
	collectFieldErrors(ve, fields)
	if len(fields) == 0 {
		fields[FieldTitle] = MsgRequired
	}
	return &ValidationError{Fields: fields}
}

// collectFieldErrors walks the leaf causes and maps each to a field message.
func collectFieldErrors(err *jsonschema.ValidationError, fields map[FieldName]string) {
	if len(err.Causes) > 0 {
		for _, cause := range err.Causes {
			collectFieldErrors(cause, fields)
		}
		return
	}

	name := FieldName(strings.TrimPrefix(err.InstanceLocation, "/"))
	if name == "" && strings.HasSuffix(err.KeywordLocation, "/required") {
		name = FieldTitle
	}
	if name == "" {
		return
	}

	msg := MsgRequired
	if strings.HasSuffix(err.KeywordLocation, "/maxLength") {
		msg = MsgTooLong
	}
	// Required wins over any other complaint about the same field
	if fields[name] != MsgRequired {
		fields[name] = msg
	}
}
