package column

import (
	"encoding/binary"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/buffer"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// VariableColumn stores variable-length values back to back.
// offsets is the prefix sum of lengths, extended on demand.
type VariableColumn struct {
	data    buffer.Buffer
	lengths []int64
	offsets []int64
	presence
}

// NewVariable returns an empty writable column.
func NewVariable() *VariableColumn {
	return &VariableColumn{data: buffer.NewOwned(0)}
}

func (c *VariableColumn) Kind() Kind        { return String }
func (c *VariableColumn) HasNull() bool     { return c.bm != nil }
func (c *VariableColumn) Nulls() NullBitmap { return c.bm }
func (c *VariableColumn) NonNullRows() int  { return len(c.lengths) }
func (c *VariableColumn) Rows() int         { return c.rows(len(c.lengths)) }

func (c *VariableColumn) Append(b []byte) error {
	o, err := writable(c.data, len(b))
	if err != nil {
		return err
	}
	_, _ = o.Write(b)
	c.lengths = append(c.lengths, int64(len(b)))
	c.appendPresent()
	return nil
}

func (c *VariableColumn) AppendNull() error {
	if _, err := writable(c.data, 0); err != nil {
		return err
	}
	c.appendNull(c.Rows())
	return nil
}

func (c *VariableColumn) GetBuffer(row int) ([]byte, error) {
	if uint(row) >= uint(len(c.lengths)) {
		return nil, errs.OutOfRange("column value", row, len(c.lengths))
	}
	if len(c.offsets) == 0 {
		c.offsets = append(c.offsets, 0)
	}
	for i := len(c.offsets) - 1; i <= row; i++ {
		c.offsets = append(c.offsets, c.offsets[i]+c.lengths[i])
	}
	start := c.offsets[row]
	return c.data.Bytes()[start : start+c.lengths[row]], nil
}

func (c *VariableColumn) IsNull(row int) (bool, error) { return c.isNull(row, len(c.lengths)) }

func (c *VariableColumn) Stats() Stats {
	return Stats{Rows: c.Rows(), HasNull: c.HasNull()}
}

func (c *VariableColumn) encodedSize() int {
	return c.presence.encodedSize() + 8*len(c.lengths) + c.data.Used()
}

func (c *VariableColumn) appendStreams(p *StreamPlan, index int) {
	if c.bm != nil {
		p.add(Present, index, c.bm.Bytes())
	}
	lengths := make([]byte, 8*len(c.lengths))
	for i, n := range c.lengths {
		binary.LittleEndian.PutUint64(lengths[8*i:], uint64(n))
	}
	p.add(Length, index, lengths)
	p.add(Data, index, c.data.Bytes())
}
