package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error satisfying errors.Is(err, ErrNotFound);
// the default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction over the places packed dictionaries live:
// a local directory, an in-memory map, or an object store.
type BlobStore interface {
	// Open opens an existing blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Create opens a new blob for streaming writes. The blob becomes
	// visible when Close returns nil.
	Create(ctx context.Context, name string) (WritableBlob, error)
	// Put writes a complete blob in one call.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting an absent blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the blob names matching prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a stored blob.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the blob size in bytes.
	Size() int64
}

// WritableBlob is a streaming write handle returned by Create.
type WritableBlob interface {
	io.WriteCloser
	// Sync flushes buffered bytes where the backend supports it.
	Sync() error
}
