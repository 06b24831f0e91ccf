// Package orcproto encodes and decodes the ORC metadata messages used by the
// file format: PostScript, Footer, Metadata and StripeFooter.
//
// Messages are plain Go structs serialized with the protobuf wire format via
// google.golang.org/protobuf/encoding/protowire, using the field numbers of
// orc_proto.proto. Unknown fields are skipped on decode so files from
// newer writers stay readable.
package orcproto
