package orcproto

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Magic is the ORC file magic stored in the PostScript.
const Magic = "ORC"

// CompressionKind is the stream compression recorded in the PostScript.
type CompressionKind uint32

const (
	CompressionNone CompressionKind = 0
)

// TypeKind is the kind of a Type node.
type TypeKind uint32

const (
	TypeBoolean TypeKind = 0
	TypeByte    TypeKind = 1
	TypeShort   TypeKind = 2
	TypeInt     TypeKind = 3
	TypeLong    TypeKind = 4
	TypeFloat   TypeKind = 5
	TypeDouble  TypeKind = 6
	TypeString  TypeKind = 7
	TypeBinary  TypeKind = 8
	TypeStruct  TypeKind = 12
)

// StreamKind is the kind of a stream inside a stripe.
type StreamKind uint32

const (
	StreamPresent StreamKind = 0
	StreamData    StreamKind = 1
	StreamLength  StreamKind = 2
)

// EncodingKind is the column encoding recorded in the stripe footer.
type EncodingKind uint32

const (
	EncodingDirect EncodingKind = 0
)

// PostScript is the uncompressed trailer anchoring the footer.
type PostScript struct {
	FooterLength         uint64
	Compression          CompressionKind
	CompressionBlockSize uint64
	Version              []uint32
	MetadataLength       uint64
	WriterVersion        uint32
	Magic                string
}

func (m *PostScript) Marshal() []byte { return m.appendTo(nil) }

func (m *PostScript) appendTo(b []byte) []byte {
	b = appendUint(b, 1, m.FooterLength)
	b = appendUint(b, 2, uint64(m.Compression))
	b = appendUint(b, 3, m.CompressionBlockSize)
	b = appendPacked(b, 4, m.Version)
	b = appendUint(b, 5, m.MetadataLength)
	b = appendUint(b, 6, uint64(m.WriterVersion))
	return appendBytes(b, 8000, []byte(m.Magic))
}

func (m *PostScript) Unmarshal(b []byte) error {
	*m = PostScript{}
	return decode("postscript", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint(typ, b, &m.FooterLength)
		case 2:
			var v uint32
			n, err := consumeUint32(typ, b, &v)
			m.Compression = CompressionKind(v)
			return n, err
		case 3:
			return consumeUint(typ, b, &m.CompressionBlockSize)
		case 4:
			return consumeUint32s(typ, b, &m.Version)
		case 5:
			return consumeUint(typ, b, &m.MetadataLength)
		case 6:
			return consumeUint32(typ, b, &m.WriterVersion)
		case 8000:
			v, n, err := consumeBytes(typ, b)
			m.Magic = string(v)
			return n, err
		}
		return 0, nil
	})
}

// StripeInformation locates one stripe in the file.
type StripeInformation struct {
	Offset       uint64
	IndexLength  uint64
	DataLength   uint64
	FooterLength uint64
	NumberOfRows uint64
}

func (m *StripeInformation) appendTo(b []byte) []byte {
	b = appendUint(b, 1, m.Offset)
	b = appendUint(b, 2, m.IndexLength)
	b = appendUint(b, 3, m.DataLength)
	b = appendUint(b, 4, m.FooterLength)
	return appendUint(b, 5, m.NumberOfRows)
}

func (m *StripeInformation) Unmarshal(b []byte) error {
	*m = StripeInformation{}
	return decode("stripe information", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint(typ, b, &m.Offset)
		case 2:
			return consumeUint(typ, b, &m.IndexLength)
		case 3:
			return consumeUint(typ, b, &m.DataLength)
		case 4:
			return consumeUint(typ, b, &m.FooterLength)
		case 5:
			return consumeUint(typ, b, &m.NumberOfRows)
		}
		return 0, nil
	})
}

// Type is one node of the schema tree.
type Type struct {
	Kind       TypeKind
	Subtypes   []uint32
	FieldNames []string
}

func (m *Type) appendTo(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.Kind))
	b = appendPacked(b, 2, m.Subtypes)
	for _, name := range m.FieldNames {
		b = appendBytes(b, 3, []byte(name))
	}
	return b
}

func (m *Type) Unmarshal(b []byte) error {
	*m = Type{}
	return decode("type", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var v uint32
			n, err := consumeUint32(typ, b, &v)
			m.Kind = TypeKind(v)
			return n, err
		case 2:
			return consumeUint32s(typ, b, &m.Subtypes)
		case 3:
			v, n, err := consumeBytes(typ, b)
			m.FieldNames = append(m.FieldNames, string(v))
			return n, err
		}
		return 0, nil
	})
}

// IntegerStatistics holds min/max/sum for integer columns.
type IntegerStatistics struct {
	Minimum int64
	Maximum int64
	HasSum  bool
	Sum     int64
}

func (m *IntegerStatistics) appendTo(b []byte) []byte {
	b = appendSint(b, 1, m.Minimum)
	b = appendSint(b, 2, m.Maximum)
	if m.HasSum {
		b = appendSint(b, 3, m.Sum)
	}
	return b
}

func (m *IntegerStatistics) Unmarshal(b []byte) error {
	*m = IntegerStatistics{}
	return decode("integer statistics", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeSint(typ, b, &m.Minimum)
		case 2:
			return consumeSint(typ, b, &m.Maximum)
		case 3:
			m.HasSum = true
			return consumeSint(typ, b, &m.Sum)
		}
		return 0, nil
	})
}

// ColumnStatistics summarizes one column of a stripe or file.
type ColumnStatistics struct {
	NumberOfValues uint64
	IntStatistics  *IntegerStatistics
	HasNull        bool
}

func (m *ColumnStatistics) appendTo(b []byte) []byte {
	b = appendUint(b, 1, m.NumberOfValues)
	if m.IntStatistics != nil {
		b = appendMessage(b, 2, m.IntStatistics)
	}
	return appendBool(b, 10, m.HasNull)
}

func (m *ColumnStatistics) Unmarshal(b []byte) error {
	*m = ColumnStatistics{}
	return decode("column statistics", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint(typ, b, &m.NumberOfValues)
		case 2:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			m.IntStatistics = &IntegerStatistics{}
			return n, m.IntStatistics.Unmarshal(v)
		case 10:
			return consumeBool(typ, b, &m.HasNull)
		}
		return 0, nil
	})
}

// Footer is the file footer: schema, stripe directory and file statistics.
type Footer struct {
	HeaderLength   uint64
	ContentLength  uint64
	Stripes        []StripeInformation
	Types          []Type
	NumberOfRows   uint64
	Statistics     []ColumnStatistics
	RowIndexStride uint32
}

func (m *Footer) Marshal() []byte { return m.appendTo(nil) }

func (m *Footer) appendTo(b []byte) []byte {
	b = appendUint(b, 1, m.HeaderLength)
	b = appendUint(b, 2, m.ContentLength)
	for i := range m.Stripes {
		b = appendMessage(b, 3, &m.Stripes[i])
	}
	for i := range m.Types {
		b = appendMessage(b, 4, &m.Types[i])
	}
	b = appendUint(b, 6, m.NumberOfRows)
	for i := range m.Statistics {
		b = appendMessage(b, 7, &m.Statistics[i])
	}
	return appendUint(b, 8, uint64(m.RowIndexStride))
}

func (m *Footer) Unmarshal(b []byte) error {
	*m = Footer{}
	return decode("footer", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint(typ, b, &m.HeaderLength)
		case 2:
			return consumeUint(typ, b, &m.ContentLength)
		case 3:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var s StripeInformation
			err = s.Unmarshal(v)
			m.Stripes = append(m.Stripes, s)
			return n, err
		case 4:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var t Type
			err = t.Unmarshal(v)
			m.Types = append(m.Types, t)
			return n, err
		case 6:
			return consumeUint(typ, b, &m.NumberOfRows)
		case 7:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var s ColumnStatistics
			err = s.Unmarshal(v)
			m.Statistics = append(m.Statistics, s)
			return n, err
		case 8:
			return consumeUint32(typ, b, &m.RowIndexStride)
		}
		return 0, nil
	})
}

// StripeStatistics holds the column statistics of one stripe.
type StripeStatistics struct {
	ColStats []ColumnStatistics
}

func (m *StripeStatistics) appendTo(b []byte) []byte {
	for i := range m.ColStats {
		b = appendMessage(b, 1, &m.ColStats[i])
	}
	return b
}

func (m *StripeStatistics) Unmarshal(b []byte) error {
	*m = StripeStatistics{}
	return decode("stripe statistics", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		v, n, err := consumeBytes(typ, b)
		if err != nil {
			return 0, err
		}
		var s ColumnStatistics
		err = s.Unmarshal(v)
		m.ColStats = append(m.ColStats, s)
		return n, err
	})
}

// Metadata holds per-stripe statistics, one entry per stripe.
type Metadata struct {
	StripeStats []StripeStatistics
}

func (m *Metadata) Marshal() []byte { return m.appendTo(nil) }

func (m *Metadata) appendTo(b []byte) []byte {
	for i := range m.StripeStats {
		b = appendMessage(b, 1, &m.StripeStats[i])
	}
	return b
}

func (m *Metadata) Unmarshal(b []byte) error {
	*m = Metadata{}
	return decode("metadata", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 {
			return 0, nil
		}
		v, n, err := consumeBytes(typ, b)
		if err != nil {
			return 0, err
		}
		var s StripeStatistics
		err = s.Unmarshal(v)
		m.StripeStats = append(m.StripeStats, s)
		return n, err
	})
}

// Stream describes one stream of a stripe.
type Stream struct {
	Kind   StreamKind
	Column uint32
	Length uint64
}

func (m *Stream) appendTo(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.Kind))
	b = appendUint(b, 2, uint64(m.Column))
	return appendUint(b, 3, m.Length)
}

func (m *Stream) Unmarshal(b []byte) error {
	*m = Stream{}
	return decode("stream", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var v uint32
			n, err := consumeUint32(typ, b, &v)
			m.Kind = StreamKind(v)
			return n, err
		case 2:
			return consumeUint32(typ, b, &m.Column)
		case 3:
			return consumeUint(typ, b, &m.Length)
		}
		return 0, nil
	})
}

// ColumnEncoding records how a column's streams are encoded.
type ColumnEncoding struct {
	Kind           EncodingKind
	DictionarySize uint32
}

func (m *ColumnEncoding) appendTo(b []byte) []byte {
	b = appendUint(b, 1, uint64(m.Kind))
	return appendUint(b, 2, uint64(m.DictionarySize))
}

func (m *ColumnEncoding) Unmarshal(b []byte) error {
	*m = ColumnEncoding{}
	return decode("column encoding", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			var v uint32
			n, err := consumeUint32(typ, b, &v)
			m.Kind = EncodingKind(v)
			return n, err
		case 2:
			return consumeUint32(typ, b, &m.DictionarySize)
		}
		return 0, nil
	})
}

// StripeFooter lists the streams and column encodings of a stripe.
type StripeFooter struct {
	Streams []Stream
	Columns []ColumnEncoding
}

func (m *StripeFooter) Marshal() []byte { return m.appendTo(nil) }

func (m *StripeFooter) appendTo(b []byte) []byte {
	for i := range m.Streams {
		b = appendMessage(b, 1, &m.Streams[i])
	}
	for i := range m.Columns {
		b = appendMessage(b, 2, &m.Columns[i])
	}
	return b
}

func (m *StripeFooter) Unmarshal(b []byte) error {
	*m = StripeFooter{}
	return decode("stripe footer", b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var s Stream
			err = s.Unmarshal(v)
			m.Streams = append(m.Streams, s)
			return n, err
		case 2:
			v, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}
			var c ColumnEncoding
			err = c.Unmarshal(v)
			m.Columns = append(m.Columns, c)
			return n, err
		}
		return 0, nil
	})
}
