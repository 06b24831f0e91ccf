package column

import (
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// Columns is the ordered set of columns of one stripe.
// An entry may be nil when the attribute was dropped or not projected.
type Columns struct {
	cols []Column
}

// NewColumns creates one empty writable column per kind.
func NewColumns(kinds []Kind) (*Columns, error) {
	cols := make([]Column, len(kinds))
	for i, k := range kinds {
		c, err := New(k)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return &Columns{cols: cols}, nil
}

// FromColumns wraps already built columns.
func FromColumns(cols []Column) *Columns {
	return &Columns{cols: cols}
}

// Len returns the number of column slots.
func (c *Columns) Len() int { return len(c.cols) }

// At returns column i, which may be nil.
func (c *Columns) At(i int) Column { return c.cols[i] }

// Set replaces column i.
func (c *Columns) Set(i int, col Column) { c.cols[i] = col }

func (c *Columns) column(i int) (Column, error) {
	if uint(i) >= uint(len(c.cols)) {
		return nil, errs.OutOfRange("column", i, len(c.cols))
	}
	if c.cols[i] == nil {
		return nil, errs.Logic("column %d is not materialized", i)
	}
	return c.cols[i], nil
}

// Append forwards a non-null value to column i.
func (c *Columns) Append(i int, b []byte) error {
	col, err := c.column(i)
	if err != nil {
		return err
	}
	return col.Append(b)
}

// AppendNull forwards a null to column i.
func (c *Columns) AppendNull(i int) error {
	col, err := c.column(i)
	if err != nil {
		return err
	}
	return col.AppendNull()
}

// Rows returns the row count of the stripe, taken from the widest column.
func (c *Columns) Rows() int {
	rows := 0
	for _, col := range c.cols {
		if col != nil {
			rows = max(rows, col.Rows())
		}
	}
	return rows
}

// Plan lays out the streams of every non-nil column in column order.
func (c *Columns) Plan() *StreamPlan {
	p := &StreamPlan{}
	for i, col := range c.cols {
		if col != nil {
			col.appendStreams(p, i)
		}
	}
	return p
}

// EncodedSize returns Plan().Size() without encoding any stream.
func (c *Columns) EncodedSize() int {
	n := 0
	for _, col := range c.cols {
		if col != nil {
			n += col.encodedSize()
		}
	}
	return n
}

// Serialize allocates the stripe data once and fills it.
func (c *Columns) Serialize() ([]byte, []Stream) {
	p := c.Plan()
	buf := make([]byte, p.Size())
	_, _ = p.Combine(buf)
	return buf, p.Streams()
}

// Stats returns per-column statistics; nil columns yield zero Stats.
func (c *Columns) Stats() []Stats {
	out := make([]Stats, len(c.cols))
	for i, col := range c.cols {
		if col != nil {
			out[i] = col.Stats()
		}
	}
	return out
}
