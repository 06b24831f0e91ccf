package pax

import (
	"fmt"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

var (
	// ErrIO is returned for short reads and writes and file system failures.
	ErrIO = errs.ErrIO
	// ErrInvalidFormat is returned when a file cannot be parsed.
	ErrInvalidFormat = errs.ErrInvalidFormat
	// ErrOutOfRange is returned for bad row, stripe, column or bit indices.
	ErrOutOfRange = errs.ErrOutOfRange
	// ErrSchemaNotMatch is returned when a file or tuple does not fit the schema.
	ErrSchemaNotMatch = errs.ErrSchemaNotMatch
	// ErrInvalidMemoryOperation is returned when a borrowed buffer would be resized.
	ErrInvalidMemoryOperation = errs.ErrInvalidMemoryOperation
	// ErrLogic is returned on API misuse, such as writing after Close.
	ErrLogic = errs.ErrLogic
)

// IOError describes a short or failed read or write.
type IOError = errs.IOError

// SchemaMismatchError indicates a column count mismatch between a file or
// tuple and the schema it is used with.
type SchemaMismatchError struct {
	Expected int
	Actual   int
	What     string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %s has %d columns, expected %d", e.What, e.Actual, e.Expected)
}

func (e *SchemaMismatchError) Is(target error) bool { return target == ErrSchemaNotMatch }

func errClosed(op string) error {
	return fmt.Errorf("%w: %s after close", ErrLogic, op)
}
