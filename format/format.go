// Package format defines the on-disk layout constants of the dictionary
// format: the magic number, the supported format version, the fixed file
// suffixes that make up a dictionary directory, and the default capacity
// limits for growable buffers.
package format

import "errors"

// Version identifies an on-disk dictionary format version.
type Version int

const (
	// Version4 is the directory-based format: one header file, one trie
	// file and one file per content section, all sharing the directory's
	// base name.
	Version4 Version = 4
)

const (
	// MagicNumber is the first four bytes of every header file.
	MagicNumber = 0x9BC13AFE

	// HeaderFileSuffix through ShortcutFileSuffix are appended to the
	// dictionary base name to form the individual file names.
	HeaderFileSuffix      = ".header"
	TrieFileSuffix        = ".trie"
	TerminalFileSuffix    = ".tpos"
	ProbabilityFileSuffix = ".prob"
	BigramFileSuffix      = ".bigram"
	ShortcutFileSuffix    = ".shortcut"

	// TempDirSuffix is appended to the dictionary directory name to form
	// the staging directory used during a flush.
	TempDirSuffix = ".tmp"
)

const (
	// MaxDictionarySize caps the total logical size of the trie buffer.
	MaxDictionarySize = 4 * 1024 * 1024

	// DefaultMaxAdditionalBufferSize caps how far a buffer bound to a
	// mapped file may grow past the mapped region before a flush is
	// required.
	DefaultMaxAdditionalBufferSize = 1024 * 1024
)

// ErrUnsupportedVersion is returned when a header names a format version
// this package cannot read.
var ErrUnsupportedVersion = errors.New("format: unsupported version")

// Supported reports whether v is a version this module can open.
func Supported(v Version) bool {
	return v == Version4
}
