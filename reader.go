package pax

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/bitmap"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/buffer"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/column"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/fs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/stripe"
)

// Source is a random access view of a whole file. blobstore.Blob satisfies it.
type Source interface {
	io.ReaderAt
	Size() int64
}

// Buffer is a growable scratch buffer for WithReusableBuffer.
type Buffer = buffer.Owned

// NewBuffer returns a Buffer with the given initial capacity.
func NewBuffer(capacity int) *Buffer { return buffer.NewOwned(capacity) }

// Reader reads tuples from a file, either sequentially with ReadTuple or by
// row number with GetTuple. Values returned by a Reader alias its stripe
// memory; use Tuple.Clone to keep them across stripes.
// A Reader is not safe for concurrent use.
type Reader struct {
	opts    options
	src     *fs.CountingReaderAt
	sr      *stripe.Reader
	closer  io.Closer
	schema  Schema
	proj    []bool
	deleted *bitmap.Roaring
	closed  bool

	// streaming stripe
	cur      *column.Columns
	curStart uint64
	curRows  int
	pos      int   // row inside cur
	nulls    []int // nulls before pos, per column
	next     uint64
	returned int

	// random access stripe
	cache    *column.Columns
	cacheIdx int
}

// Open reads the tail of src and returns a Reader positioned at row 0.
func Open(src Source, opts ...Option) (*Reader, error) {
	return open(src, src.Size(), applyOptions(opts))
}

// OpenFile opens path on fsys for reading. Close also closes the file.
func OpenFile(fsys FileSystem, path string, opts ...Option) (*Reader, error) {
	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	size, err := fs.Size(f)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}
	o := applyOptions(opts)
	o.logger = o.logger.WithPath(path)
	r, err := open(f, size, o)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}
	r.closer = f
	return r, nil
}

func open(src io.ReaderAt, size int64, o options) (*Reader, error) {
	counter := &fs.CountingReaderAt{R: src}
	sr, err := stripe.Open(counter, size)
	if err != nil {
		o.logger.LogOpen(context.Background(), size, 0, 0, err)
		return nil, err
	}
	o.logger.LogOpen(context.Background(), size, sr.NumStripes(), sr.NumRows(), nil)

	schema := Schema(sr.Kinds())
	if o.schema != nil {
		if sr.NumColumns() > len(o.schema) {
			return nil, &SchemaMismatchError{Expected: len(o.schema), Actual: sr.NumColumns(), What: "file"}
		}
		for i, k := range sr.Kinds() {
			if o.schema[i] != k {
				return nil, fmt.Errorf("%w: column %d is %s in the file, expected %s", ErrSchemaNotMatch, i, k, o.schema[i])
			}
		}
		schema = o.schema
	}
	for col, v := range o.missing {
		if col < 0 || col >= len(schema) {
			return nil, fmt.Errorf("missing value for column %d: %w", col, ErrOutOfRange)
		}
		if w := schema[col].Width(); !v.Null && w > 0 && len(v.Data) != w {
			return nil, fmt.Errorf("%w: missing value for column %d is %d bytes, %s wants %d",
				ErrSchemaNotMatch, col, len(v.Data), schema[col], w)
		}
	}

	r := &Reader{
		opts:     o,
		src:      counter,
		sr:       sr,
		schema:   schema,
		cacheIdx: -1,
		nulls:    make([]int, sr.NumColumns()),
	}
	if o.projection != nil {
		r.proj = make([]bool, len(schema))
		copy(r.proj, o.projection)
	}
	if o.deleted != nil {
		r.deleted = bitmap.NewRoaring(o.deleted, int(sr.NumRows()))
	}
	return r, nil
}

// Schema returns the column kinds of the tuples this Reader produces.
func (r *Reader) Schema() Schema { return r.schema }

// FileSchema returns the column kinds stored in the file.
func (r *Reader) FileSchema() Schema { return Schema(r.sr.Kinds()) }

// NumRows returns the number of rows in the file, deleted ones included.
func (r *Reader) NumRows() uint64 { return r.sr.NumRows() }

// NumStripes returns the number of stripes in the file.
func (r *Reader) NumStripes() int { return r.sr.NumStripes() }

// StripeRows returns the row count of stripe i.
func (r *Reader) StripeRows(i int) (int, error) { return r.sr.StripeRows(i) }

// GroupStats returns the column statistics of stripe i.
func (r *Reader) GroupStats(i int) ([]ColumnStats, error) { return r.sr.Stats(i) }

// FileStats returns the column statistics of the whole file.
func (r *Reader) FileStats() []ColumnStats { return r.sr.FileStats() }

// Offset returns the file row number of the next tuple ReadTuple considers.
func (r *Reader) Offset() uint64 { return r.next }

func (r *Reader) fileProjection() []bool {
	if r.proj == nil {
		return nil
	}
	return r.proj[:r.sr.NumColumns()]
}

func (r *Reader) projected(col int) bool {
	return r.proj == nil || r.proj[col]
}

func (r *Reader) load(i int, scratch *buffer.Owned) (*column.Columns, int, error) {
	start := time.Now()
	before := r.src.BytesRead
	cols, rows, err := r.sr.ReadStripe(i, r.fileProjection(), scratch)
	r.opts.metricsCollector.RecordStripeRead(rows, r.src.BytesRead-before, time.Since(start), err)
	r.opts.logger.WithStripe(i).LogStripeLoaded(context.Background(), rows, err)
	return cols, rows, err
}

// position moves the streaming cursor to file row target < NumRows().
// While a stripe is loaded, next == curStart+pos.
func (r *Reader) position(target uint64) error {
	if r.cur != nil && target >= r.curStart && target < r.curStart+uint64(r.curRows) {
		row := int(target - r.curStart)
		if target >= r.next {
			r.countNulls(r.pos, row, true)
		} else {
			r.countNulls(0, row, false)
		}
		r.pos, r.next = row, target
		return nil
	}

	i, err := r.sr.StripeOf(target)
	if err != nil {
		return err
	}
	start, err := r.sr.StripeStart(i)
	if err != nil {
		return err
	}
	// drop the previous stripe before loading, it may share the scratch buffer
	r.cur = nil
	cols, rows, err := r.load(i, r.opts.scratch)
	if err != nil {
		return err
	}
	r.cur, r.curStart, r.curRows = cols, start, rows
	row := int(target - start)
	r.countNulls(0, row, false)
	r.pos, r.next = row, target
	return nil
}

// countNulls sets or, with add, increments the per-column null counters with
// the nulls in rows [from, to) of the streaming stripe.
func (r *Reader) countNulls(from, to int, add bool) {
	for c := range r.nulls {
		if !add {
			r.nulls[c] = 0
		}
		if col := r.cur.At(c); col != nil {
			r.nulls[c] += nullsIn(col, from, to)
		}
	}
}

func nullsIn(col column.Column, from, to int) int {
	if !col.HasNull() || from >= to {
		return 0
	}
	it := bitmap.NewIterator(col.Nulls())
	it.SeekTo(from)
	n := 0
	for i := it.Next(false); i >= 0 && i < to; i = it.Next(false) {
		n++
	}
	return n
}

// ReadTuple returns the next visible tuple, or io.EOF after the last one.
func (r *Reader) ReadTuple() (Tuple, error) {
	if r.closed {
		return nil, errClosed("read tuple")
	}
	total := r.sr.NumRows()
	target := r.next
	if r.deleted != nil && target < total {
		n, ok := r.deleted.FindFirst(int(target), false)
		if !ok {
			r.next = total
			return nil, io.EOF
		}
		target = uint64(n)
	}
	if target >= total {
		return nil, io.EOF
	}
	if r.cur == nil || target != r.next || r.pos >= r.curRows {
		// crossing a stripe boundary, a seek, or skipping deleted rows
		if err := r.position(target); err != nil {
			return nil, err
		}
	}

	t, err := r.tuple(r.cur, r.pos, r.nulls, true)
	if err != nil {
		return nil, err
	}
	r.pos++
	r.next++
	r.returned++
	return t, nil
}

// tuple assembles row of cols. nulls holds the nulls before row per column;
// with advance it is updated past row.
func (r *Reader) tuple(cols *column.Columns, row int, nulls []int, advance bool) (Tuple, error) {
	t := make(Tuple, len(r.schema))
	for i := range t {
		switch {
		case !r.projected(i):
			t[i] = Null()
			continue
		case i >= cols.Len():
			t[i] = r.missingValue(i)
			continue
		}
		col := cols.At(i)
		if col == nil {
			t[i] = Null()
			continue
		}
		null, err := col.IsNull(row)
		if err != nil {
			return nil, err
		}
		if null {
			t[i] = Null()
			if advance {
				nulls[i]++
			}
			continue
		}
		b, err := col.GetBuffer(row - nulls[i])
		if err != nil {
			return nil, err
		}
		t[i] = Value{Data: b}
	}
	return t, nil
}

func (r *Reader) missingValue(col int) Value {
	if v, ok := r.opts.missing[col]; ok {
		return v
	}
	return Null()
}

// Seek positions the reader so that the next ReadTuple considers file row
// row. Seeking to NumRows() positions at the end. Seeking further fails with
// ErrOutOfRange and rewinds the reader to an empty state at row 0.
func (r *Reader) Seek(row uint64) error {
	if r.closed {
		return errClosed("seek")
	}
	total := r.sr.NumRows()
	switch {
	case row > total:
		r.reset()
		return errs.OutOfRange("seek row", int(row), int(total)+1)
	case row == total:
		r.cur, r.pos, r.next = nil, 0, row
		return nil
	}
	if err := r.position(row); err != nil {
		r.reset()
		return err
	}
	return nil
}

func (r *Reader) reset() {
	r.cur, r.curStart, r.curRows = nil, 0, 0
	r.pos, r.next = 0, 0
	clear(r.nulls)
}

// GetTuple returns file row row regardless of the streaming position and of
// visibility. The stripe holding it stays cached for further calls.
func (r *Reader) GetTuple(row uint64) (Tuple, error) {
	if r.closed {
		return nil, errClosed("get tuple")
	}
	i, err := r.sr.StripeOf(row)
	if err != nil {
		return nil, err
	}
	if r.cache == nil || r.cacheIdx != i {
		r.cache, r.cacheIdx = nil, -1
		cols, _, err := r.load(i, nil)
		if err != nil {
			return nil, err
		}
		r.cache, r.cacheIdx = cols, i
	}
	start, err := r.sr.StripeStart(i)
	if err != nil {
		return nil, err
	}

	p := int(row - start)
	nulls := make([]int, r.cache.Len())
	for c := range nulls {
		if col := r.cache.At(c); col != nil {
			nulls[c] = nullsIn(col, 0, p)
		}
	}
	return r.tuple(r.cache, p, nulls, false)
}

// Close releases the stripes and closes the underlying file if the Reader
// was opened with OpenFile.
func (r *Reader) Close() error {
	if r.closed {
		return errClosed("close")
	}
	r.closed = true
	r.cur, r.cache = nil, nil
	r.opts.metricsCollector.RecordTupleRead(r.returned)
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
