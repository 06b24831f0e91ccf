// Package bitmap provides the bit-vectors used for column null tracking and
// row visibility.
//
// All implementations satisfy [Bitmap]:
//
//   - [Fixed]: fixed size, word-backed, byte-packed on the wire. Its
//     FindFirst scans 64 bits at a time.
//   - [Dynamic]: resizable, backed by github.com/bits-and-blooms/bitset.
//   - [Roaring]: a view over a compressed *roaring.Bitmap with an explicit
//     universe, used for externally supplied visibility maps.
//
// Indices at or beyond NumBits fail with errs.ErrOutOfRange.
//
// # Wire layout
//
// Bit i is stored in byte i/8 at position i%8 (LSB first). A 64-bit
// little-endian word therefore holds bits [64*w, 64*w+63], which is what lets
// [Fixed] keep []uint64 storage and still read and write the byte layout.
//
// # Iteration
//
//	it := bitmap.NewIterator(bm)
//	for i := it.Next(true); i != -1; i = it.Next(true) {
//	    // i is set
//	}
package bitmap
