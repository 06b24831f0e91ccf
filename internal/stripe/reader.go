package stripe

import (
	"io"
	"math"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/buffer"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/column"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/fs"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/orcproto"
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/projection"
)

// postscriptLenSize is the trailing byte holding the postscript length.
const postscriptLenSize = 1

// Reader reads stripes of one file.
type Reader struct {
	src    io.ReaderAt
	size   int64
	ps     orcproto.PostScript
	footer orcproto.Footer
	meta   orcproto.Metadata
	kinds  []column.Kind

	// rowStart[i] is the first row of stripe i; rowStart[n] is the total.
	rowStart []uint64
}

// Open parses the tail of a file of the given size.
func Open(src io.ReaderAt, size int64) (*Reader, error) {
	if size <= postscriptLenSize {
		return nil, errs.Format("file of %d bytes is too small", size)
	}
	r := &Reader{src: src, size: size}

	var lenByte [1]byte
	if err := fs.ReadFullAt(src, lenByte[:], size-postscriptLenSize); err != nil {
		return nil, err
	}
	psLen := int64(lenByte[0])
	psOff := size - postscriptLenSize - psLen
	if psLen == 0 || psOff < 0 {
		return nil, errs.Format("postscript length %d does not fit file of %d bytes", psLen, size)
	}
	psb := make([]byte, psLen)
	if err := fs.ReadFullAt(src, psb, psOff); err != nil {
		return nil, err
	}
	if err := r.ps.Unmarshal(psb); err != nil {
		return nil, err
	}
	if r.ps.Magic != orcproto.Magic {
		return nil, errs.Format("bad magic %q", r.ps.Magic)
	}
	if r.ps.Compression != orcproto.CompressionNone {
		return nil, errs.Format("unsupported compression %d", r.ps.Compression)
	}

	// bound the lengths before any signed arithmetic
	avail := uint64(psOff)
	if r.ps.FooterLength == 0 || r.ps.FooterLength > avail || r.ps.MetadataLength > avail-r.ps.FooterLength {
		return nil, errs.Format("footer (%d) and metadata (%d) do not fit before offset %d",
			r.ps.FooterLength, r.ps.MetadataLength, psOff)
	}
	footerOff := psOff - int64(r.ps.FooterLength)
	metaOff := footerOff - int64(r.ps.MetadataLength)

	// footer and metadata are adjacent, read them together
	tail := make([]byte, psOff-metaOff)
	if err := fs.ReadFullAt(src, tail, metaOff); err != nil {
		return nil, err
	}
	if err := r.meta.Unmarshal(tail[:r.ps.MetadataLength]); err != nil {
		return nil, err
	}
	if err := r.footer.Unmarshal(tail[r.ps.MetadataLength:]); err != nil {
		return nil, err
	}

	if err := r.parseSchema(); err != nil {
		return nil, err
	}
	if err := r.checkStripes(uint64(metaOff)); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) parseSchema() error {
	types := r.footer.Types
	if len(types) == 0 {
		return errs.Format("footer has no types")
	}
	root := types[0]
	if root.Kind != orcproto.TypeStruct {
		return errs.Format("root type is %d, want struct", root.Kind)
	}
	if len(root.Subtypes) != len(types)-1 {
		return errs.Format("root has %d subtypes for %d types", len(root.Subtypes), len(types)-1)
	}

	r.kinds = make([]column.Kind, len(root.Subtypes))
	for i, sub := range root.Subtypes {
		idx := int(sub) + 1
		if idx >= len(types) {
			return errs.Format("subtype %d of column %d is out of range", sub, i)
		}
		k := column.Kind(types[idx].Kind)
		if types[idx].Kind == orcproto.TypeStruct || !k.Valid() {
			return errs.Format("column %d has unsupported type %d", i, types[idx].Kind)
		}
		r.kinds[i] = k
	}
	return nil
}

func (r *Reader) checkStripes(contentEnd uint64) error {
	r.rowStart = make([]uint64, len(r.footer.Stripes)+1)
	for i, si := range r.footer.Stripes {
		if si.IndexLength > si.FooterLength || si.DataLength > si.FooterLength-si.IndexLength {
			return errs.Format("stripe %d: length %d is shorter than index %d plus data %d",
				i, si.FooterLength, si.IndexLength, si.DataLength)
		}
		if si.FooterLength > contentEnd || si.Offset > contentEnd-si.FooterLength {
			return errs.Format("stripe %d: %d bytes at offset %d run past content end %d",
				i, si.FooterLength, si.Offset, contentEnd)
		}
		if si.NumberOfRows > math.MaxInt32 || r.rowStart[i] > math.MaxInt64-si.NumberOfRows {
			return errs.Format("stripe %d: row count %d out of range", i, si.NumberOfRows)
		}
		r.rowStart[i+1] = r.rowStart[i] + si.NumberOfRows
	}
	if total := r.rowStart[len(r.footer.Stripes)]; total != r.footer.NumberOfRows {
		return errs.Format("stripes hold %d rows, footer says %d", total, r.footer.NumberOfRows)
	}
	return nil
}

// Kinds returns the column kinds of the file.
func (r *Reader) Kinds() []column.Kind { return r.kinds }

// NumColumns returns the number of columns.
func (r *Reader) NumColumns() int { return len(r.kinds) }

// NumStripes returns the number of stripes.
func (r *Reader) NumStripes() int { return len(r.footer.Stripes) }

// NumRows returns the total number of rows.
func (r *Reader) NumRows() uint64 { return r.footer.NumberOfRows }

// Size returns the file size given to Open.
func (r *Reader) Size() int64 { return r.size }

// ContentLength returns the byte length of all stripes.
func (r *Reader) ContentLength() uint64 { return r.footer.ContentLength }

// Version returns the format version from the PostScript.
func (r *Reader) Version() []uint32 { return r.ps.Version }

// StripeInfo returns the directory entry of stripe i.
func (r *Reader) StripeInfo(i int) (orcproto.StripeInformation, error) {
	if uint(i) >= uint(len(r.footer.Stripes)) {
		return orcproto.StripeInformation{}, errs.OutOfRange("stripe", i, len(r.footer.Stripes))
	}
	return r.footer.Stripes[i], nil
}

// StripeRows returns the row count of stripe i.
func (r *Reader) StripeRows(i int) (int, error) {
	si, err := r.StripeInfo(i)
	if err != nil {
		return 0, err
	}
	return int(si.NumberOfRows), nil
}

// StripeStart returns the file row number of the first row of stripe i.
// StripeStart(NumStripes()) is NumRows().
func (r *Reader) StripeStart(i int) (uint64, error) {
	if uint(i) >= uint(len(r.rowStart)) {
		return 0, errs.OutOfRange("stripe", i, len(r.rowStart))
	}
	return r.rowStart[i], nil
}

// StripeOf returns the stripe holding file row row.
func (r *Reader) StripeOf(row uint64) (int, error) {
	n := len(r.footer.Stripes)
	if row >= r.footer.NumberOfRows {
		return 0, errs.OutOfRange("row", int(row), int(r.footer.NumberOfRows))
	}
	lo, hi := 0, n
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if r.rowStart[mid+1] <= row {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, nil
}

// Stats returns the column statistics of stripe i.
func (r *Reader) Stats(i int) ([]column.Stats, error) {
	if uint(i) >= uint(len(r.footer.Stripes)) {
		return nil, errs.OutOfRange("stripe", i, len(r.footer.Stripes))
	}
	if i >= len(r.meta.StripeStats) {
		return nil, errs.Format("no statistics for stripe %d", i)
	}
	return convertStats(r.meta.StripeStats[i].ColStats), nil
}

// FileStats returns the column statistics of the whole file.
func (r *Reader) FileStats() []column.Stats {
	return convertStats(r.footer.Statistics)
}

func convertStats(ps []orcproto.ColumnStatistics) []column.Stats {
	out := make([]column.Stats, len(ps))
	for i, p := range ps {
		out[i] = statsFromProto(p)
	}
	return out
}

// block returns n bytes of scratch space, growing scratch by half its
// capacity until it fits. A nil scratch allocates.
func block(scratch *buffer.Owned, n int) ([]byte, error) {
	if scratch == nil {
		return make([]byte, n), nil
	}
	scratch.Reset()
	if c := scratch.Capacity(); c < n {
		c = max(c, 16)
		for c < n {
			c += c / 2
		}
		if err := scratch.Resize(c); err != nil {
			return nil, err
		}
	}
	return scratch.Raw()[:n], nil
}

func wantsAll(proj []bool, n int) bool {
	if proj == nil {
		return true
	}
	for i := range n {
		if i >= len(proj) || !proj[i] {
			return false
		}
	}
	return true
}

// ReadStripe loads stripe i. proj selects columns; nil selects all. Columns
// not selected, or without streams, are nil in the result. When scratch is
// not nil the stripe is read into it and the returned columns alias it until
// the next call with the same scratch.
func (r *Reader) ReadStripe(i int, proj []bool, scratch *buffer.Owned) (*column.Columns, int, error) {
	si, err := r.StripeInfo(i)
	if err != nil {
		return nil, 0, err
	}
	rows := int(si.NumberOfRows)
	cols := make([]column.Column, len(r.kinds))
	if si.FooterLength == 0 {
		return column.FromColumns(cols), rows, nil
	}

	dataStart := si.IndexLength
	footerStart := dataStart + si.DataLength
	base := int64(si.Offset)

	if wantsAll(proj, len(r.kinds)) {
		buf, err := block(scratch, int(si.FooterLength))
		if err != nil {
			return nil, 0, err
		}
		if err := fs.ReadFullAt(r.src, buf, base); err != nil {
			return nil, 0, err
		}
		var sf orcproto.StripeFooter
		if err := sf.Unmarshal(buf[footerStart:]); err != nil {
			return nil, 0, err
		}
		groups, err := groupStreams(&sf, r.kinds, si.DataLength)
		if err != nil {
			return nil, 0, err
		}
		data := buf[dataStart:footerStart]
		for c, g := range groups {
			if g == nil {
				continue
			}
			if cols[c], err = decodeColumn(r.kinds[c], rows, g, data, g.start); err != nil {
				return nil, 0, err
			}
		}
		return column.FromColumns(cols), rows, nil
	}

	sfb := make([]byte, si.FooterLength-footerStart)
	if err := fs.ReadFullAt(r.src, sfb, base+int64(footerStart)); err != nil {
		return nil, 0, err
	}
	var sf orcproto.StripeFooter
	if err := sf.Unmarshal(sfb); err != nil {
		return nil, 0, err
	}
	groups, err := groupStreams(&sf, r.kinds, si.DataLength)
	if err != nil {
		return nil, 0, err
	}

	// Each run of wanted columns is contiguous on disk and becomes one read.
	// pos is indexed by read position within wanted.
	type run struct {
		s   span
		pos uint64
	}
	wanted := projection.Info(len(r.kinds), proj)
	pos := make([]uint64, len(wanted))
	var runs []run
	var total uint64
	for _, rg := range projection.BuildReadRanges(proj, len(r.kinds)) {
		var first, last *streamGroup
		for c := rg.Lo; c <= rg.Hi; c++ {
			if g := groups[c]; g != nil {
				if first == nil {
					first = g
				}
				last = g
			}
		}
		if first == nil {
			continue
		}
		s := span{start: first.start, end: last.end}
		for c := rg.Lo; c <= rg.Hi; c++ {
			if g := groups[c]; g != nil {
				pos[projection.ReadIndexOf(wanted, c)] = total + g.start - s.start
			}
		}
		runs = append(runs, run{s: s, pos: total})
		total += s.len()
	}

	buf, err := block(scratch, int(total))
	if err != nil {
		return nil, 0, err
	}
	for _, rn := range runs {
		dst := buf[rn.pos : rn.pos+rn.s.len()]
		if err := fs.ReadFullAt(r.src, dst, base+int64(dataStart+rn.s.start)); err != nil {
			return nil, 0, err
		}
	}

	for ri, c := range wanted {
		g := groups[c]
		if g == nil {
			continue
		}
		if cols[c], err = decodeColumn(r.kinds[c], rows, g, buf, pos[ri]); err != nil {
			return nil, 0, err
		}
	}
	return column.FromColumns(cols), rows, nil
}
