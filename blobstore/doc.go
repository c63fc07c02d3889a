// Package blobstore moves packed dictionaries between devices and storage
// backends.
//
// BlobStore is the storage interface; implementations must be safe for
// concurrent use.
//
// # Built-in implementations
//
//   - LocalStore: a local directory, mmap-backed reads
//   - MemoryStore: in-memory, mainly for tests
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO and other S3-compatible stores
//
// RateLimitedStore wraps any of these with a byte-rate limit so background
// dictionary syncs do not starve foreground I/O. Mirror copies blobs
// between two stores concurrently.
//
// PushDictionary and PullDictionary connect a store to the archive
// package: a dictionary directory is packed into a single compressed blob
// on the way up and unpacked through the atomic-commit path on the way
// down.
package blobstore
