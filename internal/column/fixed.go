package column

import (
	"encoding/binary"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/buffer"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// Integer is the set of value types a FixedColumn can hold.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// FixedColumn stores little-endian values of a single width.
type FixedColumn[T Integer] struct {
	kind  Kind
	width int
	data  buffer.Buffer
	count int
	presence
}

// NewFixed returns an empty writable column. kind must have the width of T.
func NewFixed[T Integer](kind Kind) *FixedColumn[T] {
	return &FixedColumn[T]{
		kind:  kind,
		width: kind.Width(),
		data:  buffer.NewOwned(0),
	}
}

func (c *FixedColumn[T]) Kind() Kind        { return c.kind }
func (c *FixedColumn[T]) HasNull() bool     { return c.bm != nil }
func (c *FixedColumn[T]) Nulls() NullBitmap { return c.bm }
func (c *FixedColumn[T]) NonNullRows() int  { return c.count }
func (c *FixedColumn[T]) Rows() int         { return c.rows(c.count) }

// Append copies one value. len(b) must equal the column width.
func (c *FixedColumn[T]) Append(b []byte) error {
	if len(b) != c.width {
		return errs.Format("%s column takes %d-byte values, got %d", c.kind, c.width, len(b))
	}
	o, err := writable(c.data, c.width)
	if err != nil {
		return err
	}
	_, _ = o.Write(b)
	c.count++
	c.appendPresent()
	return nil
}

func (c *FixedColumn[T]) AppendNull() error {
	if _, err := writable(c.data, 0); err != nil {
		return err
	}
	c.appendNull(c.Rows())
	return nil
}

func (c *FixedColumn[T]) GetBuffer(row int) ([]byte, error) {
	if uint(row) >= uint(c.count) {
		return nil, errs.OutOfRange("column value", row, c.count)
	}
	off := row * c.width
	return c.data.Bytes()[off : off+c.width], nil
}

func (c *FixedColumn[T]) IsNull(row int) (bool, error) { return c.isNull(row, c.count) }

// Value decodes the value with the given non-null ordinal.
func (c *FixedColumn[T]) Value(row int) (T, error) {
	b, err := c.GetBuffer(row)
	if err != nil {
		return 0, err
	}
	return T(DecodeInt(b)), nil
}

// DecodeInt sign-extends a 1, 2, 4 or 8 byte little-endian integer.
func DecodeInt(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	case 8:
		return int64(binary.LittleEndian.Uint64(b))
	default:
		return 0
	}
}

// EncodeInt writes v into a little-endian value of width bytes.
func EncodeInt(v int64, width int) []byte {
	b := make([]byte, width)
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, uint64(v))
	}
	return b
}

func (c *FixedColumn[T]) Stats() Stats {
	s := Stats{Rows: c.Rows(), HasNull: c.HasNull()}
	if c.count == 0 {
		return s
	}
	data := c.data.Bytes()
	s.HasMinMax, s.HasSum = true, true
	for i := range c.count {
		v := DecodeInt(data[i*c.width : (i+1)*c.width])
		if i == 0 || v < s.Min {
			s.Min = v
		}
		if i == 0 || v > s.Max {
			s.Max = v
		}
		if s.HasSum {
			sum := s.Sum + v
			if (v > 0 && sum < s.Sum) || (v < 0 && sum > s.Sum) {
				s.HasSum, s.Sum = false, 0
				continue
			}
			s.Sum = sum
		}
	}
	return s
}

func (c *FixedColumn[T]) encodedSize() int {
	return c.presence.encodedSize() + c.data.Used()
}

func (c *FixedColumn[T]) appendStreams(p *StreamPlan, index int) {
	if c.bm != nil {
		p.add(Present, index, c.bm.Bytes())
	}
	p.add(Data, index, c.data.Bytes())
}
