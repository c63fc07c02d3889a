package content

import (
	"errors"
	"fmt"
	"os"

	"github.com/textinput/lexdict/buffer"
	"github.com/textinput/lexdict/format"
	"github.com/textinput/lexdict/internal/fs"
	"github.com/textinput/lexdict/internal/mmap"
)

var (
	// ErrNotUpdatable is returned when a mutation is attempted on a
	// section loaded from a read-only dictionary.
	ErrNotUpdatable = errors.New("content: section is not updatable")
	// ErrInvalidTerminal is returned when a terminal ID has no entry.
	ErrInvalidTerminal = errors.New("content: invalid terminal id")
	// ErrCorrupt is returned when a section file fails structural checks
	// on load.
	ErrCorrupt = errors.New("content: corrupt section file")
)

// NoPosition marks an unset slot in position tables and the end of an entry
// chain.
const NoPosition = uint32(0xFFFFFFFF)

// section is the state shared by all four content variants: the backing
// buffer, the mapping it is bound to (nil when fresh) and the updatable flag
// fixed at construction.
type section struct {
	fsys      fs.FileSystem
	buf       *buffer.Growable
	mapping   *mmap.Mapping
	updatable bool
}

func openSection(fsys fs.FileSystem, basePath, suffix string, updatable bool) (section, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	m, err := mmap.Open(basePath, suffix, updatable)
	if err != nil {
		return section{}, fmt.Errorf("content: open %s%s: %w", basePath, suffix, err)
	}
	return section{
		fsys:      fsys,
		buf:       buffer.NewBound(m.Bytes(), m.Writable(), format.DefaultMaxAdditionalBufferSize),
		mapping:   m,
		updatable: updatable,
	}, nil
}

func freshSection(fsys fs.FileSystem) section {
	if fsys == nil {
		fsys = fs.Default
	}
	return section{
		fsys:      fsys,
		buf:       buffer.NewUnbound(format.MaxDictionarySize),
		updatable: true,
	}
}

// flushToFile writes the buffer's full logical content to basePath+suffix,
// fsyncing before close so the bytes are durable when the caller proceeds to
// the commit rename.
func (s *section) flushToFile(basePath, suffix string) error {
	path := basePath + suffix
	f, err := s.fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("content: create %s: %w", path, err)
	}
	if _, err := s.buf.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("content: write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("content: sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("content: close %s: %w", path, err)
	}
	return nil
}

// close releases the mapping, if any. The buffer's base slice must not be
// touched afterwards.
func (s *section) close() error {
	if s.mapping == nil {
		return nil
	}
	return s.mapping.Close()
}

// IsUpdatable reports whether mutations are accepted.
func (s *section) IsUpdatable() bool {
	return s.updatable
}
