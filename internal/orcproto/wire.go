package orcproto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// fieldFunc decodes one field from b and returns the bytes consumed.
// Returning 0 skips the field as unknown.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func decode(msg string, b []byte, field fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return parseError(msg, protowire.ParseError(n))
		}
		b = b[n:]

		m, err := field(num, typ, b)
		if err != nil {
			return parseError(msg, fmt.Errorf("field %d: %w", num, err))
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return parseError(msg, protowire.ParseError(m))
			}
		}
		b = b[m:]
	}
	return nil
}

func parseError(msg string, err error) error {
	return fmt.Errorf("%w: parse %s: %w", errs.ErrInvalidFormat, msg, err)
}

func wrongType(typ protowire.Type) error {
	return fmt.Errorf("unexpected wire type %d", typ)
}

func consumeUint(typ protowire.Type, b []byte, dst *uint64) (int, error) {
	if typ != protowire.VarintType {
		return 0, wrongType(typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	*dst = v
	return n, nil
}

func consumeUint32(typ protowire.Type, b []byte, dst *uint32) (int, error) {
	var v uint64
	n, err := consumeUint(typ, b, &v)
	*dst = uint32(v)
	return n, err
}

func consumeSint(typ protowire.Type, b []byte, dst *int64) (int, error) {
	var v uint64
	n, err := consumeUint(typ, b, &v)
	*dst = protowire.DecodeZigZag(v)
	return n, err
}

func consumeBool(typ protowire.Type, b []byte, dst *bool) (int, error) {
	var v uint64
	n, err := consumeUint(typ, b, &v)
	*dst = v != 0
	return n, err
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, wrongType(typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

// consumeUint32s reads a repeated uint32 in packed or unpacked form.
func consumeUint32s(typ protowire.Type, b []byte, dst *[]uint32) (int, error) {
	if typ == protowire.VarintType {
		var v uint32
		n, err := consumeUint32(typ, b, &v)
		*dst = append(*dst, v)
		return n, err
	}
	packed, n, err := consumeBytes(typ, b)
	if err != nil {
		return 0, err
	}
	for len(packed) > 0 {
		v, m := protowire.ConsumeVarint(packed)
		if m < 0 {
			return 0, protowire.ParseError(m)
		}
		*dst = append(*dst, uint32(v))
		packed = packed[m:]
	}
	return n, nil
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSint(b []byte, num protowire.Number, v int64) []byte {
	return appendUint(b, num, protowire.EncodeZigZag(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendUint(b, num, protowire.EncodeBool(v))
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendPacked(b []byte, num protowire.Number, vs []uint32) []byte {
	if len(vs) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	return appendBytes(b, num, packed)
}

type appender interface {
	appendTo(b []byte) []byte
}

func appendMessage(b []byte, num protowire.Number, m appender) []byte {
	return appendBytes(b, num, m.appendTo(nil))
}
