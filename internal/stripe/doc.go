// Package stripe implements the micro-partition file format.
//
// # Layout
//
//	File        := Stripe* Metadata Footer PostScript psLen(1 byte)
//	Stripe      := streams... StripeFooter
//
// Streams of a stripe are written column by column in schema order: PRESENT
// (only for columns with nulls), then LENGTH and DATA for variable-length
// columns or DATA for fixed-width ones. Metadata, Footer, PostScript and
// StripeFooter are ORC protobuf messages (see internal/orcproto).
//
// The stripe directory in the Footer records, per stripe, its offset, the
// data length and in FooterLength the full stripe length (data plus stripe
// footer). The stripe footer therefore starts at Offset+IndexLength+DataLength.
// IndexLength is always zero. A stripe with FooterLength zero stores no bytes
// and yields NumberOfRows rows of nothing.
//
// # Reading
//
// [Open] reads the trailing length byte, the PostScript, the Footer and the
// Metadata, back to front, and validates the schema tree. [Reader.ReadStripe]
// loads one stripe: a single read when every column is wanted, otherwise one
// read for the stripe footer plus one read per run of consecutive wanted
// columns. Decoded columns alias the read block.
package stripe
