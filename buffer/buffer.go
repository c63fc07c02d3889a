// Package buffer provides Growable, a logically contiguous byte space that
// starts out backed by a fixed region (typically a memory-mapped dictionary
// file) and transparently spills into a heap extension once the region is
// exhausted.
//
// Reads and in-place updates inside the base region are zero-copy; only
// growth past the mapped size allocates. Callers address the buffer by
// logical offset and never need to know which side of the boundary a byte
// lives on.
package buffer

import (
	"errors"
	"io"
)

var (
	// ErrOutOfRange is returned when a read or write addresses bytes past
	// the current logical size.
	ErrOutOfRange = errors.New("buffer: offset out of range")
	// ErrReadOnly is returned when a write targets the base region of a
	// buffer bound to a non-writable mapping.
	ErrReadOnly = errors.New("buffer: base region is read-only")
	// ErrCapacityExceeded is returned when a write would grow the
	// extension past its configured maximum.
	ErrCapacityExceeded = errors.New("buffer: max additional capacity exceeded")
)

// Growable is one logical byte space split across an optional fixed base
// region [0, BaseLen()) and a heap extension [BaseLen(), Len()).
//
// A failed read or write leaves the buffer unchanged.
// Growable is not safe for concurrent mutation; the owner serializes access.
type Growable struct {
	base          []byte
	baseWritable  bool
	ext           []byte
	maxAdditional int
}

// NewBound wraps an existing region, typically the bytes of a mapped file.
// The region is mutated in place by writes below BaseLen(), so writable must
// reflect how the underlying mapping was opened.
func NewBound(base []byte, writable bool, maxAdditional int) *Growable {
	return &Growable{
		base:          base,
		baseWritable:  writable,
		maxAdditional: maxAdditional,
	}
}

// NewUnbound creates a buffer with no base region; all content lives in the
// extension. Used for dictionaries that do not exist on disk yet.
func NewUnbound(maxAdditional int) *Growable {
	return &Growable{maxAdditional: maxAdditional}
}

// Len returns the current logical size.
func (g *Growable) Len() int {
	return len(g.base) + len(g.ext)
}

// BaseLen returns the size of the fixed base region.
func (g *Growable) BaseLen() int {
	return len(g.base)
}

// MaxAdditional returns the extension capacity limit.
func (g *Growable) MaxAdditional() int {
	return g.maxAdditional
}

// ReadAt fills p from logical offset off. The read must lie entirely within
// the current logical size.
func (g *Growable) ReadAt(p []byte, off int) error {
	if off < 0 || off+len(p) > g.Len() {
		return ErrOutOfRange
	}
	n := 0
	if off < len(g.base) {
		n = copy(p, g.base[off:])
	}
	if n < len(p) {
		extOff := off + n - len(g.base)
		copy(p[n:], g.ext[extOff:])
	}
	return nil
}

// WriteAt stores p at logical offset off. Writes below BaseLen() mutate the
// base in place and require a writable base. A write ending past the current
// logical size grows the extension by exactly the overhang, up to the
// configured maximum. off may be at most Len(): appends are writes at the
// tail, holes are not supported.
func (g *Growable) WriteAt(p []byte, off int) error {
	if off < 0 || off > g.Len() {
		return ErrOutOfRange
	}
	if len(p) == 0 {
		return nil
	}
	if off < len(g.base) && !g.baseWritable {
		return ErrReadOnly
	}
	end := off + len(p)
	if grown := end - len(g.base); grown > g.maxAdditional {
		return ErrCapacityExceeded
	}

	if grown := end - len(g.base) - len(g.ext); grown > 0 {
		g.ext = appendZeros(g.ext, grown)
	}

	n := 0
	if off < len(g.base) {
		n = copy(g.base[off:], p)
	}
	if n < len(p) {
		extOff := off + n - len(g.base)
		copy(g.ext[extOff:], p[n:])
	}
	return nil
}

// Append writes p at the tail and returns the logical offset it was
// written at.
func (g *Growable) Append(p []byte) (int, error) {
	off := g.Len()
	if err := g.WriteAt(p, off); err != nil {
		return 0, err
	}
	return off, nil
}

// WriteTo serializes the full logical content: base region first, then the
// extension. Implements io.WriterTo.
func (g *Growable) WriteTo(w io.Writer) (int64, error) {
	var total int64
	if len(g.base) > 0 {
		n, err := w.Write(g.base)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	if len(g.ext) > 0 {
		n, err := w.Write(g.ext)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// appendZeros extends ext by n zero bytes with amortized doubling, so
// repeated tail writes do not reallocate on every call.
func appendZeros(ext []byte, n int) []byte {
	need := len(ext) + n
	if need > cap(ext) {
		newCap := cap(ext) * 2
		if newCap < need {
			newCap = need
		}
		grown := make([]byte, len(ext), newCap)
		copy(grown, ext)
		ext = grown
	}
	return ext[:need]
}
