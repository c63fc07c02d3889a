// Package fs provides filesystem abstractions for testability and fault
// injection.
//
// The package defines two key interfaces:
//
//   - [File]: an open file with read/write/sync capabilities
//   - [FileSystem]: filesystem operations (open, remove, rename, mkdir, ...)
//
// # Implementations
//
//   - [LocalFS]: production implementation using the standard os package
//   - [FaultyFS]: test utility that injects I/O errors, used to exercise the
//     abort paths of the directory commit protocol
//
// Production code should use fs.Default. Tests inject a FaultyFS to prove
// that a failed flush leaves the canonical dictionary directory untouched.
//
// Filesystem operations here intentionally take no context.Context: they are
// fast local syscalls and non-interruptible at that level. Slow remote I/O
// lives in the blobstore package, which is context-aware.
package fs
