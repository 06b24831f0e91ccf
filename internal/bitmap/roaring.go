package bitmap

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

// Roaring adapts a compressed roaring bitmap to Bitmap over a fixed universe
// of n bits.
type Roaring struct {
	rb *roaring.Bitmap
	n  int
}

// NewRoaring wraps rb. A nil rb is an empty set.
func NewRoaring(rb *roaring.Bitmap, n int) *Roaring {
	if rb == nil {
		rb = roaring.New()
	}
	return &Roaring{rb: rb, n: n}
}

func (r *Roaring) NumBits() int { return r.n }

func (r *Roaring) Set(i int) error {
	if uint(i) >= uint(r.n) {
		return errs.OutOfRange("bitmap", i, r.n)
	}
	r.rb.Add(uint32(i))
	return nil
}

func (r *Roaring) Clear(i int) error {
	if uint(i) >= uint(r.n) {
		return errs.OutOfRange("bitmap", i, r.n)
	}
	r.rb.Remove(uint32(i))
	return nil
}

func (r *Roaring) Test(i int) (bool, error) {
	if uint(i) >= uint(r.n) {
		return false, errs.OutOfRange("bitmap", i, r.n)
	}
	return r.rb.Contains(uint32(i)), nil
}

func (r *Roaring) Reset() { r.rb.Clear() }

func (r *Roaring) FindFirst(offset int, value bool) (int, bool) {
	if offset < 0 {
		offset = 0
	}
	if offset >= r.n {
		return -1, false
	}

	it := r.rb.Iterator()
	it.AdvanceIfNeeded(uint32(offset))
	if value {
		if !it.HasNext() {
			return -1, false
		}
		i := int(it.Next())
		if i >= r.n {
			return -1, false
		}
		return i, true
	}

	// Walk the run of set bits starting at offset.
	i := offset
	for it.HasNext() && int(it.PeekNext()) == i {
		it.Next()
		i++
	}
	if i >= r.n {
		return -1, false
	}
	return i, true
}
