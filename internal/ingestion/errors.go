package ingestion

import (
	"errors"
	"fmt"
)

// ErrEmptyHandle is returned when no handle was supplied.
var ErrEmptyHandle = errors.New("empty handle")

// ResolutionError indicates the handle could not be resolved to a usable
// profile identifier. Fatal to the run.
type ResolutionError struct {
	Handle string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve handle %q: %v", e.Handle, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
