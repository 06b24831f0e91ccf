package bitmap

import (
	"encoding/binary"
	"math/bits"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// Bitmap is the contract shared by all bit-vectors.
type Bitmap interface {
	Set(i int) error
	Clear(i int) error
	Test(i int) (bool, error)
	// Reset clears every bit.
	Reset()
	// FindFirst returns the smallest index >= offset whose bit equals value.
	FindFirst(offset int, value bool) (int, bool)
	NumBits() int
}

// ByteLen returns the wire size of an n-bit bitmap.
func ByteLen(n int) int { return (n + 7) / 8 }

func wordLen(n int) int { return (n + 63) / 64 }

// Fixed is a fixed-size bitmap.
//
// Storage is []uint64 so word loads are always 8-byte aligned. Bits at and
// beyond n are kept zero.
type Fixed struct {
	words []uint64
	n     int
}

// NewFixed returns an all-zero bitmap of n bits.
func NewFixed(n int) *Fixed {
	return &Fixed{words: make([]uint64, wordLen(n)), n: n}
}

// LoadFixed decodes the first ByteLen(n) bytes of b.
// The bytes are copied into aligned words.
func LoadFixed(b []byte, n int) (*Fixed, error) {
	if len(b) < ByteLen(n) {
		return nil, errs.Format("bitmap of %d bits needs %d bytes, have %d", n, ByteLen(n), len(b))
	}
	f := NewFixed(n)
	decodeWords(f.words, b[:ByteLen(n)])
	if r := n & 63; r != 0 {
		f.words[len(f.words)-1] &= (1 << r) - 1
	}
	return f, nil
}

func (f *Fixed) NumBits() int { return f.n }

func (f *Fixed) Set(i int) error {
	if uint(i) >= uint(f.n) {
		return errs.OutOfRange("bitmap", i, f.n)
	}
	f.words[i>>6] |= 1 << (i & 63)
	return nil
}

func (f *Fixed) Clear(i int) error {
	if uint(i) >= uint(f.n) {
		return errs.OutOfRange("bitmap", i, f.n)
	}
	f.words[i>>6] &^= 1 << (i & 63)
	return nil
}

func (f *Fixed) Test(i int) (bool, error) {
	if uint(i) >= uint(f.n) {
		return false, errs.OutOfRange("bitmap", i, f.n)
	}
	return f.words[i>>6]&(1<<(i&63)) != 0, nil
}

func (f *Fixed) Reset() { clear(f.words) }

// SetAll sets every bit.
func (f *Fixed) SetAll() {
	for i := range f.words {
		f.words[i] = ^uint64(0)
	}
	if r := f.n & 63; r != 0 {
		f.words[len(f.words)-1] = (1 << r) - 1
	}
}

// Count returns the number of set bits.
func (f *Fixed) Count() int {
	c := 0
	for _, w := range f.words {
		c += bits.OnesCount64(w)
	}
	return c
}

// FindFirst scans the masked leading word, then whole words compared against
// all-zeros (or all-ones when looking for a clear bit), then checks the hit
// against the trailing bound.
func (f *Fixed) FindFirst(offset int, value bool) (int, bool) {
	if offset < 0 {
		offset = 0
	}
	if offset >= f.n {
		return -1, false
	}

	var miss uint64 // a word with no candidate bit
	if !value {
		miss = ^uint64(0)
	}
	wi := offset >> 6
	last := (f.n - 1) >> 6

	w := (f.words[wi] ^ miss) & (^uint64(0) << (offset & 63))
	for w == 0 {
		wi++
		if wi > last {
			return -1, false
		}
		w = f.words[wi] ^ miss
	}

	// Padding bits past n are zero, so a clear-bit search can land there.
	i := wi<<6 + bits.TrailingZeros64(w)
	if i >= f.n {
		return -1, false
	}
	return i, true
}

// Bytes returns the byte-packed wire form.
func (f *Fixed) Bytes() []byte {
	return encodeWords(f.words, f.n)
}

func encodeWords(words []uint64, n int) []byte {
	out := make([]byte, ByteLen(n))
	var tmp [8]byte
	for wi := 0; wi*8 < len(out); wi++ {
		var w uint64
		if wi < len(words) {
			w = words[wi]
		}
		binary.LittleEndian.PutUint64(tmp[:], w)
		copy(out[wi*8:], tmp[:])
	}
	return out
}

func decodeWords(dst []uint64, b []byte) {
	var tmp [8]byte
	for wi := range dst {
		lo := wi * 8
		if lo >= len(b) {
			return
		}
		clear(tmp[:])
		copy(tmp[:], b[lo:])
		dst[wi] = binary.LittleEndian.Uint64(tmp[:])
	}
}
