package stripe

import (
	"fmt"
	"io"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/column"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/fs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/orcproto"
)

// FormatVersion is the ORC version pair written into the PostScript.
var FormatVersion = []uint32{0, 12}

// WriterVersion identifies this writer in the PostScript.
const WriterVersion = 1

// Writer appends stripes to an io.Writer and finishes the file on Close.
// The first error is sticky.
type Writer struct {
	w      io.Writer
	kinds  []column.Kind
	offset uint64

	footer    orcproto.Footer
	meta      orcproto.Metadata
	fileStats []column.Stats

	closed bool
	err    error
}

// NewWriter creates a Writer for the given column kinds. Nothing is written
// until the first stripe.
func NewWriter(w io.Writer, kinds []column.Kind) (*Writer, error) {
	types := make([]orcproto.Type, 0, len(kinds)+1)
	root := orcproto.Type{Kind: orcproto.TypeStruct}
	for i, k := range kinds {
		if !k.Valid() {
			return nil, errs.Format("unsupported column kind %d at %d", uint8(k), i)
		}
		root.Subtypes = append(root.Subtypes, uint32(i))
	}
	types = append(types, root)
	for _, k := range kinds {
		types = append(types, orcproto.Type{Kind: orcproto.TypeKind(k)})
	}

	return &Writer{
		w:         w,
		kinds:     append([]column.Kind(nil), kinds...),
		footer:    orcproto.Footer{Types: types},
		fileStats: make([]column.Stats, len(kinds)),
	}, nil
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() uint64 { return w.offset }

// NumStripes returns the number of stripes recorded so far.
func (w *Writer) NumStripes() int { return len(w.footer.Stripes) }

// LastStripeLength returns the byte length of the most recent stripe, or 0.
func (w *Writer) LastStripeLength() uint64 {
	if n := len(w.footer.Stripes); n > 0 {
		return w.footer.Stripes[n-1].FooterLength
	}
	return 0
}

// NumRows returns the number of rows recorded so far.
func (w *Writer) NumRows() uint64 { return w.footer.NumberOfRows }

func (w *Writer) check(cols *column.Columns) error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return errs.Logic("stripe writer is closed")
	}
	if cols != nil && cols.Len() != len(w.kinds) {
		return fmt.Errorf("%w: got %d columns, schema has %d", errs.ErrSchemaNotMatch, cols.Len(), len(w.kinds))
	}
	return nil
}

// encode appends the stripe built from cols to dst and records it in the
// directory. It returns dst unchanged and false when cols holds no rows.
func (w *Writer) encode(dst []byte, cols *column.Columns) ([]byte, bool, error) {
	rows := cols.Rows()
	if rows == 0 {
		return dst, false, nil
	}
	for i := range cols.Len() {
		c := cols.At(i)
		if c == nil {
			continue
		}
		if c.Kind() != w.kinds[i] {
			return dst, false, fmt.Errorf("%w: column %d is %s, schema wants %s",
				errs.ErrSchemaNotMatch, i, c.Kind(), w.kinds[i])
		}
		if c.Rows() != rows {
			return dst, false, errs.Format("column %d has %d rows, stripe has %d", i, c.Rows(), rows)
		}
	}

	plan := cols.Plan()
	start := len(dst)
	dst = append(dst, make([]byte, plan.Size())...)
	if _, err := plan.Combine(dst[start:]); err != nil {
		return dst[:start], false, err
	}

	sf := orcproto.StripeFooter{}
	for _, s := range plan.Streams() {
		sf.Streams = append(sf.Streams, orcproto.Stream{
			Kind:   orcproto.StreamKind(s.Kind),
			Column: uint32(s.Column),
			Length: s.Length,
		})
	}
	for range w.kinds {
		sf.Columns = append(sf.Columns, orcproto.ColumnEncoding{Kind: orcproto.EncodingDirect})
	}
	dst = append(dst, sf.Marshal()...)

	size := uint64(len(dst) - start)
	w.footer.Stripes = append(w.footer.Stripes, orcproto.StripeInformation{
		Offset:       w.offset + uint64(start),
		DataLength:   uint64(plan.Size()),
		FooterLength: size,
		NumberOfRows: uint64(rows),
	})
	w.footer.NumberOfRows += uint64(rows)

	stats := cols.Stats()
	ss := orcproto.StripeStatistics{ColStats: make([]orcproto.ColumnStatistics, len(w.kinds))}
	for i := range w.kinds {
		if i < len(stats) {
			ss.ColStats[i] = statsToProto(stats[i])
			w.fileStats[i] = mergeStats(w.fileStats[i], stats[i])
		}
	}
	w.meta.StripeStats = append(w.meta.StripeStats, ss)
	return dst, true, nil
}

// WriteStripe writes cols as one stripe. It reports false, without writing,
// when cols holds no rows.
func (w *Writer) WriteStripe(cols *column.Columns) (bool, error) {
	if err := w.check(cols); err != nil {
		return false, err
	}
	buf, ok, err := w.encode(nil, cols)
	if err != nil || !ok {
		return false, err
	}
	if err := fs.WriteFull(w.w, buf, int64(w.offset)); err != nil {
		w.err = err
		return false, err
	}
	w.offset += uint64(len(buf))
	return true, nil
}

// Close writes last, when it holds rows, followed by the metadata, footer and
// postscript in a single write. last may be nil.
func (w *Writer) Close(last *column.Columns) error {
	if err := w.check(last); err != nil {
		return err
	}
	w.closed = true

	var buf []byte
	if last != nil {
		var err error
		if buf, _, err = w.encode(buf, last); err != nil {
			w.err = err
			return err
		}
	}

	meta := w.meta.Marshal()
	buf = append(buf, meta...)

	w.footer.ContentLength = w.offset + uint64(len(buf)) - uint64(len(meta))
	w.footer.Statistics = w.footer.Statistics[:0]
	for _, s := range w.fileStats {
		w.footer.Statistics = append(w.footer.Statistics, statsToProto(s))
	}
	footer := w.footer.Marshal()
	buf = append(buf, footer...)

	ps := orcproto.PostScript{
		FooterLength:   uint64(len(footer)),
		Compression:    orcproto.CompressionNone,
		Version:        FormatVersion,
		MetadataLength: uint64(len(meta)),
		WriterVersion:  WriterVersion,
		Magic:          orcproto.Magic,
	}
	psb := ps.Marshal()
	if len(psb) > 255 {
		return errs.Logic("postscript of %d bytes does not fit the length byte", len(psb))
	}
	buf = append(buf, psb...)
	buf = append(buf, byte(len(psb)))

	if err := fs.WriteFull(w.w, buf, int64(w.offset)); err != nil {
		w.err = err
		return err
	}
	w.offset += uint64(len(buf))
	return nil
}
