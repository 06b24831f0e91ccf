package pax

import (
	"strconv"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/column"
)

// Value is one attribute of a tuple. Data holds the little-endian bytes of
// an integer or the raw bytes of a string, and is empty for nulls.
type Value struct {
	Null bool
	Data []byte
}

// Tuple is one row.
type Tuple []Value

func Int8(v int8) Value   { return Value{Data: column.EncodeInt(int64(v), 1)} }
func Int16(v int16) Value { return Value{Data: column.EncodeInt(int64(v), 2)} }
func Int32(v int32) Value { return Value{Data: column.EncodeInt(int64(v), 4)} }
func Int64(v int64) Value { return Value{Data: column.EncodeInt(v, 8)} }
func String(s string) Value {
	return Value{Data: []byte(s)}
}
func Bytes(b []byte) Value { return Value{Data: b} }

// Null returns a null value.
func Null() Value { return Value{Null: true} }

// Int64 decodes an integer value of any width. Null decodes as 0.
func (v Value) Int64() int64 {
	if v.Null {
		return 0
	}
	return column.DecodeInt(v.Data)
}

// String returns the bytes of v as a string.
func (v Value) String() string { return string(v.Data) }

// Format renders v for display using kind k.
func (v Value) Format(k Kind) string {
	switch {
	case v.Null:
		return "NULL"
	case k.Width() > 0:
		return strconv.FormatInt(v.Int64(), 10)
	default:
		return strconv.Quote(string(v.Data))
	}
}

// Equal reports whether v and o hold the same value.
func (v Value) Equal(o Value) bool {
	if v.Null || o.Null {
		return v.Null == o.Null
	}
	return string(v.Data) == string(o.Data)
}

// Clone returns a copy of t whose values do not alias reader memory.
func (t Tuple) Clone() Tuple {
	out := make(Tuple, len(t))
	for i, v := range t {
		out[i] = Value{Null: v.Null, Data: append([]byte(nil), v.Data...)}
	}
	return out
}
