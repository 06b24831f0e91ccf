package column

import (
	"encoding/binary"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/bitmap"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/buffer"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// Load rebuilds a read-only column from its streams.
//
// present is nil for a column without nulls. data is aliased, not copied;
// the returned column refuses appends with errs.ErrInvalidMemoryOperation.
func Load(kind Kind, rows int, present, lengths, data []byte) (Column, error) {
	var p presence
	nonNull := rows
	if present != nil {
		bm, err := bitmap.LoadFixed(present, rows)
		if err != nil {
			return nil, err
		}
		p.bm = bm
		nonNull = bm.Count()
	}

	switch kind {
	case Byte:
		return loadFixed[int8](kind, nonNull, p, data)
	case Short:
		return loadFixed[int16](kind, nonNull, p, data)
	case Int:
		return loadFixed[int32](kind, nonNull, p, data)
	case Long:
		return loadFixed[int64](kind, nonNull, p, data)
	case String:
		return loadVariable(nonNull, p, lengths, data)
	default:
		return nil, errs.Format("unsupported column kind %s", kind)
	}
}

func loadFixed[T Integer](kind Kind, nonNull int, p presence, data []byte) (Column, error) {
	width := kind.Width()
	if len(data) != nonNull*width {
		return nil, errs.Format("%s data stream is %d bytes, want %d", kind, len(data), nonNull*width)
	}
	return &FixedColumn[T]{
		kind:     kind,
		width:    width,
		data:     buffer.NewBorrowed(data),
		count:    nonNull,
		presence: p,
	}, nil
}

func loadVariable(nonNull int, p presence, lengthStream, data []byte) (Column, error) {
	if len(lengthStream) != 8*nonNull {
		return nil, errs.Format("length stream is %d bytes, want %d", len(lengthStream), 8*nonNull)
	}
	lengths := make([]int64, nonNull)
	var total int64
	for i := range lengths {
		n := int64(binary.LittleEndian.Uint64(lengthStream[8*i:]))
		if n < 0 || n > int64(len(data))-total {
			return nil, errs.Format("value %d has length %d past the data stream", i, n)
		}
		lengths[i] = n
		total += n
	}
	if total != int64(len(data)) {
		return nil, errs.Format("data stream is %d bytes, lengths sum to %d", len(data), total)
	}
	return &VariableColumn{
		data:     buffer.NewBorrowed(data),
		lengths:  lengths,
		presence: p,
	}, nil
}
