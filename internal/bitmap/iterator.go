package bitmap

// Iterator is a forward cursor over a Bitmap.
type Iterator struct {
	bm     Bitmap
	offset int
}

// NewIterator returns an iterator positioned at bit 0.
func NewIterator(bm Bitmap) *Iterator {
	return &Iterator{bm: bm}
}

// Next returns the next index >= the current offset whose bit equals value,
// or -1. A hit moves the offset past the returned index.
func (it *Iterator) Next(value bool) int {
	i, ok := it.bm.FindFirst(it.offset, value)
	if !ok {
		return -1
	}
	it.offset = i + 1
	return i
}

// SeekTo positions the cursor at bit.
func (it *Iterator) SeekTo(bit int) { it.offset = max(bit, 0) }

// Offset returns the current cursor position.
func (it *Iterator) Offset() int { return it.offset }
