// Package buffer provides growable byte buffers with explicit ownership.
//
// Ownership is carried by the type: an [Owned] buffer may grow, shrink and
// release its storage, a [Borrowed] buffer is a view over memory that belongs
// to someone else and has no method that could reallocate it. Code that only
// holds the [Buffer] interface goes through [Reserve] and [Resize], which
// refuse non-owned storage with errs.ErrInvalidMemoryOperation.
package buffer

import (
	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/errs"
)

const minCapacity = 16

// Buffer is the read side shared by owned and borrowed buffers.
type Buffer interface {
	// Bytes returns the used portion of the buffer.
	Bytes() []byte
	// Used returns the cursor position.
	Used() int
	// Capacity returns the size of the bound memory.
	Capacity() int
	// Available returns Capacity() - Used().
	Available() int
}

// Owned is a buffer that owns its storage.
type Owned struct {
	data []byte
	used int
}

// NewOwned allocates an owned buffer with the given capacity.
func NewOwned(capacity int) *Owned {
	if capacity <= 0 {
		return &Owned{}
	}
	return &Owned{data: make([]byte, capacity)}
}

// Set binds p as the buffer's storage and takes ownership of it.
// The cursor starts at zero. Binding an already bound buffer is a logic error.
func (b *Owned) Set(p []byte) error {
	if b.data != nil {
		return errs.Logic("owned buffer is already bound")
	}
	b.data = p[:len(p):len(p)]
	b.used = 0
	return nil
}

func (b *Owned) Bytes() []byte  { return b.data[:b.used] }
func (b *Owned) Used() int      { return b.used }
func (b *Owned) Capacity() int  { return len(b.data) }
func (b *Owned) Available() int { return len(b.data) - b.used }

// Raw returns the whole bound memory, including the unused tail.
// Fill it directly (e.g. by a read call) and advance the cursor with Brush.
func (b *Owned) Raw() []byte { return b.data }

// Write copies p at the cursor. It does not grow the buffer.
func (b *Owned) Write(p []byte) (int, error) {
	if len(p) > b.Available() {
		return 0, errs.OutOfRange("buffer write", b.used+len(p), len(b.data)+1)
	}
	n := copy(b.data[b.used:], p)
	b.used += n
	return n, nil
}

// WriteByte copies c at the cursor.
func (b *Owned) WriteByte(c byte) error {
	if b.Available() < 1 {
		return errs.OutOfRange("buffer write", b.used+1, len(b.data)+1)
	}
	b.data[b.used] = c
	b.used++
	return nil
}

// Brush advances the cursor by n bytes without copying.
func (b *Owned) Brush(n int) error {
	if n < 0 || n > b.Available() {
		return errs.OutOfRange("buffer brush", b.used+n, len(b.data)+1)
	}
	b.used += n
	return nil
}

// BrushAll moves the cursor to the end of the bound memory.
func (b *Owned) BrushAll() { b.used = len(b.data) }

// BrushBack moves the cursor back by n bytes.
func (b *Owned) BrushBack(n int) error {
	if n < 0 || n > b.used {
		return errs.OutOfRange("buffer brush back", b.used-n, b.used+1)
	}
	b.used -= n
	return nil
}

// BrushBackAll moves the cursor to the start.
func (b *Owned) BrushBackAll() { b.used = 0 }

// Reset is BrushBackAll; the memory is kept for reuse.
func (b *Owned) Reset() { b.used = 0 }

// Resize sets the capacity to n, keeping the used bytes.
// Shrinking below the cursor is out of range.
func (b *Owned) Resize(n int) error {
	if n < b.used {
		return errs.OutOfRange("buffer resize", n, b.used)
	}
	if n == len(b.data) {
		return nil
	}
	data := make([]byte, n)
	copy(data, b.data[:b.used])
	b.data = data
	return nil
}

// Grow makes room for at least n more bytes, doubling the capacity.
func (b *Owned) Grow(n int) {
	if n <= b.Available() {
		return
	}
	newCap := max(2*len(b.data), b.used+n, minCapacity)
	data := make([]byte, newCap)
	copy(data, b.data[:b.used])
	b.data = data
}

// Release drops the storage. The buffer can be bound again afterwards.
func (b *Owned) Release() {
	b.data = nil
	b.used = 0
}

// Borrowed is a read-only view over memory owned elsewhere,
// typically a slice of a block read from a file.
type Borrowed struct {
	data []byte
}

// NewBorrowed returns a view whose used length is len(p).
func NewBorrowed(p []byte) *Borrowed {
	return &Borrowed{data: p[:len(p):len(p)]}
}

// Set binds p. Binding an already bound buffer is a logic error.
func (b *Borrowed) Set(p []byte) error {
	if b.data != nil {
		return errs.Logic("borrowed buffer is already bound")
	}
	b.data = p[:len(p):len(p)]
	return nil
}

func (b *Borrowed) Bytes() []byte  { return b.data }
func (b *Borrowed) Used() int      { return len(b.data) }
func (b *Borrowed) Capacity() int  { return len(b.data) }
func (b *Borrowed) Available() int { return 0 }

// Reserve ensures b can take n more bytes.
// Only owned buffers can grow.
func Reserve(b Buffer, n int) error {
	if n <= b.Available() {
		return nil
	}
	o, ok := b.(*Owned)
	if !ok {
		return errs.ErrInvalidMemoryOperation
	}
	o.Grow(n)
	return nil
}

// Resize sets the capacity of b to n.
// Only owned buffers can be resized.
func Resize(b Buffer, n int) error {
	o, ok := b.(*Owned)
	if !ok {
		return errs.ErrInvalidMemoryOperation
	}
	return o.Resize(n)
}
