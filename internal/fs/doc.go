// Package fs provides the file abstraction the storage codec reads and writes through.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with positional and streaming read/write, sync and stat
//   - [FileSystem]: open, remove, rename and stat by name
//
// # Implementations
//
//   - [LocalFS]: production implementation on top of the os package
//   - [FaultyFS]: test wrapper that injects failed, short or late writes and reads
//
// # Exact I/O
//
// The codec never accepts partial transfers. [ReadFullAt], [WriteFull] and
// [WriteFullAt] turn any count mismatch into an *errs.IOError (errs.ErrIO):
//
//	if err := fs.ReadFullAt(f, buf, off); err != nil {
//	    return err // errors.Is(err, errs.ErrIO)
//	}
//
// Operations take no context.Context: local file calls are short and cannot be
// interrupted at the syscall level. Cancellation happens between stripes by
// closing the handle.
package fs
