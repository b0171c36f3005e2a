package reading

import (
	"errors"
	"fmt"
)

// Decode error categories.
// Use errors.Is() against these to classify a *DecodeError.
var (
	// ErrEncoding is returned when the payload is not valid UTF-8.
	ErrEncoding = errors.New("reading: payload is not valid UTF-8")

	// ErrSchema is returned when the payload is not a JSON object carrying
	// numeric temperature, pressure and humidity.
	ErrSchema = errors.New("reading: payload does not match schema")
)

// DecodeError describes why a payload was rejected.
type DecodeError struct {
	// Kind is ErrEncoding or ErrSchema.
	Kind error

	// Field names the offending field, empty when the problem is not
	// tied to one field.
	Field string

	// Err is the underlying cause, if any.
	Err error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the category sentinel and the cause.
func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func schemaError(field string, err error) *DecodeError {
	return &DecodeError{Kind: ErrSchema, Field: field, Err: err}
}
