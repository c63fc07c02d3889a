package mmap

import (
	"io"
	"os"
	"sync/atomic"
)

// Mapping represents a memory-mapped file.
// It owns the underlying byte slice and is responsible for unmapping it.
// A Mapping is never shared between owners; releasing it invalidates every
// slice previously returned by Bytes.
type Mapping struct {
	data     []byte
	size     int
	writable bool
	closed   atomic.Bool
	// unmap and sync are the platform-specific teardown/flush functions.
	unmap func([]byte) error
	sync  func([]byte) error
}

// Open maps the file at path+suffix into memory. When writable is true the
// file is opened read-write and the mapping is shared, so stores through
// Bytes() reach the file.
func Open(path, suffix string, writable bool) (*Mapping, error) {
	return OpenFile(path+suffix, writable)
}

// OpenFile maps the whole file at path into memory.
func OpenFile(path string, writable bool) (*Mapping, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < 0 {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{data: nil, size: 0, writable: writable}, nil
	}

	data, unmapFunc, syncFunc, err := osMap(f, int(size), writable)
	if err != nil {
		return nil, err
	}

	return &Mapping{
		data:     data,
		size:     int(size),
		writable: writable,
		unmap:    unmapFunc,
		sync:     syncFunc,
	}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m == nil {
		return nil
	}
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the underlying byte slice.
// Warning: the slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m == nil || m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	if m == nil {
		return 0
	}
	return m.size
}

// Writable reports whether stores through Bytes() reach the backing file.
func (m *Mapping) Writable() bool {
	return m != nil && m.writable
}

// Sync flushes modified pages back to the backing file.
func (m *Mapping) Sync() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.writable {
		return ErrReadOnly
	}
	if m.sync == nil || m.data == nil {
		return nil
	}
	return m.sync(m.data)
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (n int, err error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
