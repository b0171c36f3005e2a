package series

import (
	"errors"
	"fmt"
)

// ErrWriteFailed matches every *WriteError via errors.Is.
var ErrWriteFailed = errors.New("series: write failed")

// WriteError reports the append that stopped a Write.
//
// Fields before Field in write order were appended; Field and those after
// it were not.
type WriteError struct {
	Field string
	Key   string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("series: append %s to %s: %v", e.Field, e.Key, e.Err)
}

// Unwrap exposes ErrWriteFailed and the store error.
func (e *WriteError) Unwrap() []error {
	return []error{ErrWriteFailed, e.Err}
}
