package pax

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/column"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/fs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/stripe"
)

// FileSystem abstracts file access for Create and OpenFile.
type FileSystem = fs.FileSystem

// LocalFS is the operating system file system.
var LocalFS FileSystem = fs.Default

// Writer buffers tuples into columns and writes them out a stripe at a time.
// A Writer is not safe for concurrent use.
type Writer struct {
	opts   options
	schema Schema
	sw     *stripe.Writer
	cols   *column.Columns
	file   fs.File
	rows   uint64
	closed bool
}

// Create creates (or truncates) path on fsys and returns a Writer for it.
// Close also closes the file.
func Create(fsys FileSystem, path string, schema Schema, opts ...Option) (*Writer, error) {
	f, err := fsys.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	o := applyOptions(opts)
	o.logger = o.logger.WithPath(path)
	w, err := newWriter(f, schema, o)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}
	w.file = f
	return w, nil
}

// NewWriter returns a Writer appending to out, which must be positioned at
// the start of an empty file. Close does not close out.
func NewWriter(out io.Writer, schema Schema, opts ...Option) (*Writer, error) {
	return newWriter(out, schema, applyOptions(opts))
}

func newWriter(out io.Writer, schema Schema, o options) (*Writer, error) {
	sw, err := stripe.NewWriter(out, schema)
	if err != nil {
		return nil, err
	}
	cols, err := column.NewColumns(schema)
	if err != nil {
		return nil, err
	}
	return &Writer{
		opts:   o,
		schema: append(Schema(nil), schema...),
		sw:     sw,
		cols:   cols,
	}, nil
}

// Schema returns the column kinds of the file.
func (w *Writer) Schema() Schema { return w.schema }

// WriteTuple appends one row. A tuple is rejected as a whole: on error no
// column has been modified.
func (w *Writer) WriteTuple(t Tuple) error {
	if w.closed {
		return errClosed("write tuple")
	}
	if len(t) != len(w.schema) {
		return &SchemaMismatchError{Expected: len(w.schema), Actual: len(t), What: "tuple"}
	}
	for i, v := range t {
		if width := w.schema[i].Width(); !v.Null && width > 0 && len(v.Data) != width {
			return fmt.Errorf("%w: column %d is %s, got %d bytes", ErrSchemaNotMatch, i, w.schema[i], len(v.Data))
		}
	}

	for i, v := range t {
		var err error
		if v.Null {
			err = w.cols.AppendNull(i)
		} else {
			err = w.cols.Append(i, v.Data)
		}
		if err != nil {
			return err
		}
	}
	w.rows++

	if n := w.opts.stripeRows; n > 0 && w.cols.Rows() >= n {
		return w.Flush()
	}
	return nil
}

// Flush writes the buffered rows as a stripe. It does nothing when no rows
// are buffered.
func (w *Writer) Flush() error {
	if w.closed {
		return errClosed("flush")
	}
	rows := w.cols.Rows()
	if rows == 0 {
		return nil
	}

	start := time.Now()
	before := w.sw.Offset()
	index := w.sw.NumStripes()
	_, err := w.sw.WriteStripe(w.cols)
	w.opts.metricsCollector.RecordStripeWrite(rows, int64(w.sw.Offset()-before), time.Since(start), err)
	w.opts.logger.WithStripe(index).LogStripeWritten(context.Background(), rows, before, err)
	if err != nil {
		return err
	}

	cols, err := column.NewColumns(w.schema)
	if err != nil {
		return err
	}
	w.cols = cols
	return nil
}

// EstimatedSize returns the bytes written so far plus the encoded size of the
// buffered rows, excluding the file tail.
func (w *Writer) EstimatedSize() int64 {
	if w.cols == nil {
		return int64(w.sw.Offset())
	}
	return int64(w.sw.Offset()) + int64(w.cols.EncodedSize())
}

// Rows returns the number of tuples written, buffered ones included.
func (w *Writer) Rows() uint64 { return w.rows }

// Close writes the buffered rows and the file tail, then syncs and closes the
// file when the Writer was created with Create.
func (w *Writer) Close() error {
	if w.closed {
		return errClosed("close")
	}
	w.closed = true

	rows := w.cols.Rows()
	start := time.Now()
	before := w.sw.Offset()
	index := w.sw.NumStripes()
	err := w.sw.Close(w.cols)
	if rows > 0 {
		w.opts.metricsCollector.RecordStripeWrite(rows, int64(w.sw.LastStripeLength()), time.Since(start), err)
		w.opts.logger.WithStripe(index).LogStripeWritten(context.Background(), rows, before, err)
	}
	w.cols = nil

	if w.file != nil {
		if err == nil {
			err = w.file.Sync()
		}
		err = errors.Join(err, w.file.Close())
	}
	w.opts.logger.LogFileClosed(context.Background(), w.sw.NumStripes(), w.sw.NumRows(), w.sw.Offset(), err)
	return err
}
