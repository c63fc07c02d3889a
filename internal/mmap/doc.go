// Package mmap provides memory-mapped file access for zero-copy dictionary
// I/O.
//
// A dictionary opened read-only is served straight out of the page cache:
// trie lookups dereference the mapped bytes without copying them into the
// Go heap. An updatable dictionary maps its files with PROT_WRITE so that
// in-place updates inside the original region need no staging copy.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2), madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent readers. Close is idempotent and
// protected by an atomic flag, but callers must ensure no goroutine touches
// Bytes() after Close returns; the slice aliases unmapped memory from then
// on.
package mmap
