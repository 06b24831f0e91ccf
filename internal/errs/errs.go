// Package errs defines the error taxonomy shared by the storage packages.
//
// Callers match categories with errors.Is against the sentinels; the typed
// errors carry the details of a single failure.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrIO reports a short read/write or a file system failure.
	ErrIO = errors.New("io error")
	// ErrInvalidFormat reports a malformed or unexpected on-disk structure.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrOutOfRange reports an index or offset past the end of a container.
	ErrOutOfRange = errors.New("out of range")
	// ErrSchemaNotMatch reports a file with more columns than the caller expects.
	ErrSchemaNotMatch = errors.New("schema not match")
	// ErrInvalidMemoryOperation reports an attempt to resize memory the holder does not own.
	ErrInvalidMemoryOperation = errors.New("invalid memory operation")
	// ErrLogic reports a violated API contract.
	ErrLogic = errors.New("logic error")
)

// IOError describes a failed or short I/O call.
type IOError struct {
	Op     string
	Offset int64
	Want   int
	Got    int
	Err    error
}

func (e *IOError) Error() string {
	if e.Err != nil && e.Want == e.Got {
		return fmt.Sprintf("%s at offset %d: %v", e.Op, e.Offset, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s at offset %d: short count, got %d want %d: %v", e.Op, e.Offset, e.Got, e.Want, e.Err)
	}
	return fmt.Sprintf("%s at offset %d: short count, got %d want %d", e.Op, e.Offset, e.Got, e.Want)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports IOError as ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// RangeError describes an index outside [0, Limit).
type RangeError struct {
	What  string
	Index int64
	Limit int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0, %d)", e.What, e.Index, e.Limit)
}

// Is reports RangeError as ErrOutOfRange.
func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }

// OutOfRange returns a *RangeError for index in a container of size limit.
func OutOfRange(what string, index, limit int) error {
	return &RangeError{What: what, Index: int64(index), Limit: int64(limit)}
}

// Format wraps a message as ErrInvalidFormat.
func Format(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, fmt.Sprintf(format, args...))
}

// Logic wraps a message as ErrLogic.
func Logic(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrLogic, fmt.Sprintf(format, args...))
}
