package bitmap

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// Dynamic is a resizable bitmap.
// The underlying bitset doubles its word slice when it runs out of room.
type Dynamic struct {
	bs *bitset.BitSet
	n  int
}

// NewDynamic returns an all-zero bitmap of n bits.
func NewDynamic(n int) *Dynamic {
	return &Dynamic{bs: bitset.New(uint(n)), n: n}
}

func (d *Dynamic) NumBits() int { return d.n }

func (d *Dynamic) Set(i int) error {
	if uint(i) >= uint(d.n) {
		return errs.OutOfRange("bitmap", i, d.n)
	}
	d.bs.Set(uint(i))
	return nil
}

func (d *Dynamic) Clear(i int) error {
	if uint(i) >= uint(d.n) {
		return errs.OutOfRange("bitmap", i, d.n)
	}
	d.bs.Clear(uint(i))
	return nil
}

func (d *Dynamic) Test(i int) (bool, error) {
	if uint(i) >= uint(d.n) {
		return false, errs.OutOfRange("bitmap", i, d.n)
	}
	return d.bs.Test(uint(i)), nil
}

func (d *Dynamic) Reset() { d.bs.ClearAll() }

// Resize changes the logical length. Bits past a shrunk length are dropped;
// grown bits start clear.
func (d *Dynamic) Resize(n int) {
	if n < d.n {
		if n == 0 {
			d.bs = bitset.New(0)
		} else {
			d.bs = d.bs.Shrink(uint(n - 1))
		}
	}
	d.n = n
}

// Append grows the bitmap by one bit holding v.
func (d *Dynamic) Append(v bool) {
	i := d.n
	d.n++
	if v {
		d.bs.Set(uint(i))
	}
}

// Count returns the number of set bits.
func (d *Dynamic) Count() int { return int(d.bs.Count()) }

func (d *Dynamic) FindFirst(offset int, value bool) (int, bool) {
	if offset < 0 {
		offset = 0
	}
	if offset >= d.n {
		return -1, false
	}
	var (
		i  uint
		ok bool
	)
	if value {
		i, ok = d.bs.NextSet(uint(offset))
	} else {
		i, ok = d.bs.NextClear(uint(offset))
		if !ok {
			// Every stored bit from offset on is set; the first clear one
			// is the first bit the bitset has not materialized.
			i, ok = max(uint(offset), d.bs.Len()), true
		}
	}
	if !ok || i >= uint(d.n) {
		return -1, false
	}
	return int(i), true
}

// Bytes returns the byte-packed wire form.
func (d *Dynamic) Bytes() []byte {
	return encodeWords(d.bs.Bytes(), d.n)
}
