// Package header reads and writes the dictionary header file.
//
// The header starts with a fixed 12-byte prelude (magic, format version,
// flags, total header size) followed by an attribute map of length-prefixed
// key/value strings. The Policy view over those bytes is what the rest of
// the module consults: it sizes the header buffer and decides whether the
// probability and bigram sections track per-word usage history.
package header

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/textinput/lexdict/buffer"
	"github.com/textinput/lexdict/format"
)

const preludeSize = 12

// Well-known attribute keys.
const (
	KeyName              = "dictionary"
	KeyLocale            = "locale"
	KeyDate              = "date"
	KeyVersion           = "version"
	KeyHasHistoricalInfo = "HAS_HISTORICAL_INFO"
)

var (
	// ErrBadMagic is returned when the header does not start with the
	// format magic number.
	ErrBadMagic = errors.New("header: bad magic number")
	// ErrTruncated is returned when the header bytes are shorter than the
	// size they declare.
	ErrTruncated = errors.New("header: truncated")
)

// Policy is a read-only view over a dictionary header.
type Policy struct {
	version format.Version
	size    int
	attrs   map[string]string
}

// Parse builds a Policy from raw header bytes for the given format version.
// raw may be longer than the header (e.g. a whole mapped file); only the
// declared size is consumed.
func Parse(raw []byte, version format.Version) (*Policy, error) {
	if !format.Supported(version) {
		return nil, fmt.Errorf("%w: %d", format.ErrUnsupportedVersion, version)
	}
	if len(raw) < preludeSize {
		return nil, ErrTruncated
	}
	if binary.LittleEndian.Uint32(raw[0:4]) != format.MagicNumber {
		return nil, ErrBadMagic
	}
	if v := format.Version(binary.LittleEndian.Uint16(raw[4:6])); v != version {
		return nil, fmt.Errorf("%w: header says %d, expected %d", format.ErrUnsupportedVersion, v, version)
	}
	size := int(binary.LittleEndian.Uint32(raw[8:12]))
	if size < preludeSize || size > len(raw) {
		return nil, ErrTruncated
	}

	attrs := make(map[string]string)
	pos := preludeSize
	for pos < size {
		key, next, err := readString(raw[:size], pos)
		if err != nil {
			return nil, err
		}
		val, next, err := readString(raw[:size], next)
		if err != nil {
			return nil, err
		}
		attrs[key] = val
		pos = next
	}

	return &Policy{version: version, size: size, attrs: attrs}, nil
}

// New builds a Policy for a dictionary that does not exist on disk yet.
// Size() reports the length the serialized header image will have.
func New(version format.Version, attrs map[string]string) *Policy {
	copied := make(map[string]string, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	p := &Policy{version: version, attrs: copied}
	p.size = len(p.image())
	return p
}

// Version returns the format version the policy was built for.
func (p *Policy) Version() format.Version {
	return p.version
}

// Size returns the total header length in bytes.
func (p *Policy) Size() int {
	return p.size
}

// HasHistoricalInfo reports whether per-word usage history is tracked, which
// widens the probability and bigram record layouts.
func (p *Policy) HasHistoricalInfo() bool {
	return p.attrs[KeyHasHistoricalInfo] == "1"
}

// Attribute returns the raw attribute value for key.
func (p *Policy) Attribute(key string) (string, bool) {
	v, ok := p.attrs[key]
	return v, ok
}

// IntAttribute returns the attribute for key parsed as an integer.
func (p *Policy) IntAttribute(key string) (int, bool) {
	v, ok := p.attrs[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AppendImage writes the serialized header to the tail of g.
func (p *Policy) AppendImage(g *buffer.Growable) error {
	_, err := g.Append(p.image())
	return err
}

// image serializes the header: prelude, then attributes in sorted key order
// so equal policies produce identical bytes.
func (p *Policy) image() []byte {
	keys := make([]string, 0, len(p.attrs))
	for k := range p.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	size := preludeSize
	for _, k := range keys {
		size += 2 + len(k) + 2 + len(p.attrs[k])
	}

	img := make([]byte, preludeSize, size)
	binary.LittleEndian.PutUint32(img[0:4], format.MagicNumber)
	binary.LittleEndian.PutUint16(img[4:6], uint16(p.version))
	binary.LittleEndian.PutUint16(img[6:8], 0) // flags, reserved
	binary.LittleEndian.PutUint32(img[8:12], uint32(size))

	var lenBuf [2]byte
	for _, k := range keys {
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(k)))
		img = append(img, lenBuf[:]...)
		img = append(img, k...)
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(p.attrs[k])))
		img = append(img, lenBuf[:]...)
		img = append(img, p.attrs[k]...)
	}
	return img
}

func readString(raw []byte, pos int) (string, int, error) {
	if pos+2 > len(raw) {
		return "", 0, ErrTruncated
	}
	n := int(binary.LittleEndian.Uint16(raw[pos : pos+2]))
	pos += 2
	if pos+n > len(raw) {
		return "", 0, ErrTruncated
	}
	return string(raw[pos : pos+n]), pos + n, nil
}
