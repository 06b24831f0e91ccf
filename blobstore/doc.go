// Package blobstore provides named, immutable micro-partition files as read
// sources for pax.Open.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local file system, read through mmap
//   - MemoryStore: an in-memory map, for tests and tools
//
// A Blob is an io.ReaderAt with a Size, which is all pax.Open needs:
//
//	store := blobstore.NewLocalStore("/data/parts")
//	blob, _ := store.Open("part-0.pax")
//	defer blob.Close()
//	r, _ := pax.Open(blob)
package blobstore
