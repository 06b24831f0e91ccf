package mmap

import (
	"fmt"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential suits full scans.
	AccessSequential
	// AccessRandom suits projected reads and GetTuple.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
	// AccessDontNeed expects data to not be accessed in the near future.
	AccessDontNeed
)

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = fmt.Errorf("%w: mmap: mapping is closed", errs.ErrLogic)
	// ErrInvalidSize is returned when the file size cannot be mapped.
	ErrInvalidSize = fmt.Errorf("%w: mmap: invalid file size", errs.ErrIO)
)
