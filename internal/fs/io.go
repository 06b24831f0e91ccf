package fs

import (
	"errors"
	"io"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// ReadFullAt reads exactly len(p) bytes at off.
func ReadFullAt(r io.ReaderAt, p []byte, off int64) error {
	n, err := r.ReadAt(p, off)
	if n == len(p) {
		// io.ReaderAt may report io.EOF together with a full read at the end.
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &errs.IOError{Op: "pread", Offset: off, Want: len(p), Got: n, Err: err}
}

// WriteFull writes all of p at the current position of w.
// off is only used for the error message.
func WriteFull(w io.Writer, p []byte, off int64) error {
	n, err := w.Write(p)
	if n == len(p) && err == nil {
		return nil
	}
	if err == nil {
		err = io.ErrShortWrite
	}
	return &errs.IOError{Op: "write", Offset: off, Want: len(p), Got: n, Err: err}
}

// WriteFullAt writes all of p at off.
func WriteFullAt(w io.WriterAt, p []byte, off int64) error {
	n, err := w.WriteAt(p, off)
	if n == len(p) && err == nil {
		return nil
	}
	if err == nil {
		err = io.ErrShortWrite
	}
	return &errs.IOError{Op: "pwrite", Offset: off, Want: len(p), Got: n, Err: err}
}

// CountingReaderAt counts calls and bytes going through an io.ReaderAt.
type CountingReaderAt struct {
	R         io.ReaderAt
	Calls     int
	BytesRead int64
}

func (c *CountingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	c.Calls++
	n, err := c.R.ReadAt(p, off)
	c.BytesRead += int64(n)
	return n, err
}
