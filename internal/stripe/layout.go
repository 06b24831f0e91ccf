package stripe

import (
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/column"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/orcproto"
)

// span is a [start, end) byte range inside the stripe data.
type span struct {
	start, end uint64
}

func (s span) len() uint64 { return s.end - s.start }

// streamGroup is the byte layout of one column's streams.
type streamGroup struct {
	present bool
	presentSpan,
	lengthSpan,
	dataSpan span
	start, end uint64
}

// groupStreams checks that the stripe footer lists, in column order, the
// streams each column kind requires, and locates them inside the stripe data.
// Columns without streams get a nil entry.
func groupStreams(sf *orcproto.StripeFooter, kinds []column.Kind, dataLength uint64) ([]*streamGroup, error) {
	groups := make([]*streamGroup, len(kinds))
	var off uint64
	streams := sf.Streams
	for _, st := range streams {
		if st.Length > dataLength-off {
			return nil, errs.Format("stream kind %d of column %d (%d bytes) runs past stripe data of %d",
				st.Kind, st.Column, st.Length, dataLength)
		}
		off += st.Length
	}
	off = 0

	for len(streams) > 0 {
		col := int(streams[0].Column)
		if col >= len(kinds) {
			return nil, errs.Format("stream for column %d, schema has %d columns", col, len(kinds))
		}
		if groups[col] != nil {
			return nil, errs.Format("streams of column %d are not contiguous", col)
		}
		for prev := col + 1; prev < len(kinds); prev++ {
			if groups[prev] != nil {
				return nil, errs.Format("streams of column %d follow column %d", col, prev)
			}
		}

		g := &streamGroup{start: off}
		next := func(kind orcproto.StreamKind) (span, bool) {
			if len(streams) == 0 || int(streams[0].Column) != col || streams[0].Kind != kind {
				return span{}, false
			}
			s := span{start: off, end: off + streams[0].Length}
			off = s.end
			streams = streams[1:]
			return s, true
		}

		g.presentSpan, g.present = next(orcproto.StreamPresent)
		if kinds[col].Width() == 0 {
			var ok bool
			if g.lengthSpan, ok = next(orcproto.StreamLength); !ok {
				return nil, errs.Format("column %d (%s) has no LENGTH stream", col, kinds[col])
			}
		}
		var ok bool
		if g.dataSpan, ok = next(orcproto.StreamData); !ok {
			return nil, errs.Format("column %d (%s) has no DATA stream", col, kinds[col])
		}
		g.end = off
		groups[col] = g
	}

	if off != dataLength {
		return nil, errs.Format("streams cover %d bytes, stripe data is %d", off, dataLength)
	}
	return groups, nil
}

// decodeColumn builds a column from its streams. data holds the group's bytes
// starting at data[pos].
func decodeColumn(kind column.Kind, rows int, g *streamGroup, data []byte, pos uint64) (column.Column, error) {
	at := func(s span) []byte {
		lo := pos + s.start - g.start
		return data[lo : lo+s.len()]
	}
	var present, lengths []byte
	if g.present {
		present = at(g.presentSpan)
	}
	if kind.Width() == 0 {
		lengths = at(g.lengthSpan)
	}
	return column.Load(kind, rows, present, lengths, at(g.dataSpan))
}
