package column

import (
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/bitmap"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/buffer"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// Column stores one attribute's values for one stripe.
//
// The set of implementations is closed: *FixedColumn[T] and *VariableColumn.
type Column interface {
	Kind() Kind
	// Append adds a non-null value.
	Append(b []byte) error
	// AppendNull adds a null row.
	AppendNull() error
	// GetBuffer returns the value with the given non-null ordinal.
	GetBuffer(row int) ([]byte, error)
	// IsNull reports whether the logical row is null.
	IsNull(row int) (bool, error)
	HasNull() bool
	// Nulls returns the presence bitmap, nil when the column has no nulls.
	Nulls() NullBitmap
	// Rows returns the logical row count, nulls included.
	Rows() int
	// NonNullRows returns the number of stored values.
	NonNullRows() int
	Stats() Stats

	appendStreams(p *StreamPlan, index int)
	// encodedSize is the byte length appendStreams would add.
	encodedSize() int
}

// Stats summarizes a column.
type Stats struct {
	Rows    int
	HasNull bool
	// Min, Max and Sum are only meaningful for fixed-width columns with at
	// least one value; Sum additionally requires HasSum (no overflow).
	HasMinMax bool
	Min       int64
	Max       int64
	HasSum    bool
	Sum       int64
}

// New returns an empty, writable column for kind.
func New(kind Kind) (Column, error) {
	switch kind {
	case Byte:
		return NewFixed[int8](kind), nil
	case Short:
		return NewFixed[int16](kind), nil
	case Int:
		return NewFixed[int32](kind), nil
	case Long:
		return NewFixed[int64](kind), nil
	case String:
		return NewVariable(), nil
	default:
		return nil, errs.Format("unsupported column kind %s", kind)
	}
}

// NullBitmap is a column's presence bitmap: a set bit is a non-null row.
type NullBitmap interface {
	bitmap.Bitmap
	Count() int
	Bytes() []byte
}

// presence tracks nulls for a column. A writable column creates a
// *bitmap.Dynamic on the first null, until then every row is implicitly
// present. A loaded column holds a *bitmap.Fixed sized to the stripe rows.
type presence struct {
	bm NullBitmap
}

func (p *presence) appendNull(rows int) {
	d, ok := p.bm.(*bitmap.Dynamic)
	if !ok {
		d = bitmap.NewDynamic(rows)
		for i := range rows {
			_ = d.Set(i)
		}
		p.bm = d
	}
	d.Append(false)
}

func (p *presence) appendPresent() {
	if d, ok := p.bm.(*bitmap.Dynamic); ok {
		d.Append(true)
	}
}

func (p *presence) encodedSize() int {
	if p.bm == nil {
		return 0
	}
	return bitmap.ByteLen(p.bm.NumBits())
}

func (p *presence) rows(nonNull int) int {
	if p.bm == nil {
		return nonNull
	}
	return p.bm.NumBits()
}

func (p *presence) isNull(row, nonNull int) (bool, error) {
	if p.bm == nil {
		if uint(row) >= uint(nonNull) {
			return false, errs.OutOfRange("column row", row, nonNull)
		}
		return false, nil
	}
	present, err := p.bm.Test(row)
	return !present, err
}

// writable returns the owned data buffer with room for n more bytes.
// Columns decoded from a file alias the read block and refuse writes.
func writable(b buffer.Buffer, n int) (*buffer.Owned, error) {
	if err := buffer.Reserve(b, n); err != nil {
		return nil, err
	}
	o, ok := b.(*buffer.Owned)
	if !ok {
		return nil, errs.ErrInvalidMemoryOperation
	}
	return o, nil
}
