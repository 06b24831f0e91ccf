// Package mmap maps micro-partition files read-only into memory.
//
// A Mapping is a stripe reader source: ReadAt copies out of the mapping and
// Slice returns zero-copy views. Both are invalid after Close.
//
//	m, err := mmap.Open("part-0.pax")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//
// On Unix the mapping uses mmap(2) and madvise(2). On Windows it uses
// CreateFileMapping/MapViewOfFile and Advise is a no-op.
package mmap
