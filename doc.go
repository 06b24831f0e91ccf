// Package pax reads and writes micro-partition files: self-describing,
// stripe-oriented columnar files anchored by a footer and postscript in the
// ORC layout.
//
// # Quick Start
//
// Writing:
//
//	schema := pax.Schema{pax.KindString, pax.KindString, pax.KindInt32}
//	w, _ := pax.Create(pax.LocalFS, "part-0.pax", schema)
//	_ = w.WriteTuple(pax.Tuple{pax.String("abc"), pax.String("xyz"), pax.Int32(1)})
//	_ = w.WriteTuple(pax.Tuple{pax.Null(), pax.Null(), pax.Int32(2)})
//	_ = w.Close()
//
// Reading:
//
//	r, _ := pax.OpenFile(pax.LocalFS, "part-0.pax")
//	defer r.Close()
//	for {
//		t, err := r.ReadTuple()
//		if err == io.EOF {
//			break
//		}
//		fmt.Println(t[0].Format(pax.KindString), t[2].Int64())
//	}
//
// # Stripes
//
// A Writer buffers rows in memory, one column per attribute, and writes them
// out as a stripe on Flush, on Close, or when WithStripeRows rows are
// buffered. Each stripe records its row count and per-column statistics.
//
// # Reading
//
// A Reader loads one stripe at a time. WithProjection limits I/O to the
// wanted columns: adjacent wanted columns are fetched with a single read.
// Seek and GetTuple provide random access by row number; GetTuple keeps its
// own cached stripe so it does not disturb a sequential scan.
//
// Files written with fewer columns than the reader's schema (WithSchema) are
// padded with WithMissingValue defaults or nulls. Files with more columns are
// rejected with ErrSchemaNotMatch.
//
// # Null Bitmaps
//
// A column without nulls stores no bitmap. Otherwise one bit per row is
// stored, set for rows that hold a value.
package pax
