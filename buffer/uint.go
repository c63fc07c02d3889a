package buffer

import "encoding/binary"

// Fixed-width accessors used by the content sections and the trie codec.
// All multi-byte values are little-endian; uint24 is the width used for
// in-trie node offsets, which never exceed MaxDictionarySize.

// Uint8At reads one byte at off.
func (g *Growable) Uint8At(off int) (uint8, error) {
	var b [1]byte
	if err := g.ReadAt(b[:], off); err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16At reads a little-endian uint16 at off.
func (g *Growable) Uint16At(off int) (uint16, error) {
	var b [2]byte
	if err := g.ReadAt(b[:], off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// Uint24At reads a 3-byte little-endian unsigned value at off.
func (g *Growable) Uint24At(off int) (uint32, error) {
	var b [3]byte
	if err := g.ReadAt(b[:], off); err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// Uint32At reads a little-endian uint32 at off.
func (g *Growable) Uint32At(off int) (uint32, error) {
	var b [4]byte
	if err := g.ReadAt(b[:], off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// PutUint8At writes one byte at off.
func (g *Growable) PutUint8At(v uint8, off int) error {
	return g.WriteAt([]byte{v}, off)
}

// PutUint16At writes a little-endian uint16 at off.
func (g *Growable) PutUint16At(v uint16, off int) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return g.WriteAt(b[:], off)
}

// PutUint24At writes a 3-byte little-endian unsigned value at off.
// The value must fit in 24 bits.
func (g *Growable) PutUint24At(v uint32, off int) error {
	if v > 0xFFFFFF {
		return ErrOutOfRange
	}
	b := [3]byte{byte(v), byte(v >> 8), byte(v >> 16)}
	return g.WriteAt(b[:], off)
}

// PutUint32At writes a little-endian uint32 at off.
func (g *Growable) PutUint32At(v uint32, off int) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return g.WriteAt(b[:], off)
}
