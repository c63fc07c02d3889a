package content

import (
	"encoding/binary"

	"github.com/textinput/lexdict/format"
	"github.com/textinput/lexdict/internal/fs"
)

// ShortcutEntry is one expansion attached to a word, e.g. "ill" -> "I'll".
type ShortcutEntry struct {
	Target      string
	Probability uint8
}

// entry layout: flags(1) probability(1) next(4) targetLen(2) target(...)
const (
	shortcutFlagDeleted = 0x80

	shortcutFixedSize = 8
)

// ShortcutContent stores, per source word, the chain of shortcut targets.
// Unlike the bigram section its entries are variable length, so chains are
// append-only and edits mark the old entry deleted.
type ShortcutContent struct {
	chained
}

// OpenShortcutContent loads the section from basePath plus the fixed
// shortcut file suffix.
func OpenShortcutContent(fsys fs.FileSystem, basePath string, updatable bool) (*ShortcutContent, error) {
	c, err := openChained(fsys, basePath, format.ShortcutFileSuffix, updatable)
	if err != nil {
		return nil, err
	}
	return &ShortcutContent{chained: c}, nil
}

// NewShortcutContent creates an empty in-memory section for a fresh
// dictionary.
func NewShortcutContent(fsys fs.FileSystem) *ShortcutContent {
	return &ShortcutContent{chained: freshChained(fsys)}
}

// Add attaches a shortcut to source. An existing entry for the same target
// is marked deleted and replaced, since the stored string cannot be resized
// in place.
func (s *ShortcutContent) Add(source uint32, e ShortcutEntry) error {
	if !s.updatable {
		return ErrNotUpdatable
	}
	if err := s.Remove(source, e.Target); err != nil {
		return err
	}

	head, err := s.headPos(source)
	if err != nil {
		return err
	}
	newPos := s.entries.Len()
	rec := make([]byte, shortcutFixedSize+len(e.Target))
	rec[1] = e.Probability
	binary.LittleEndian.PutUint32(rec[2:6], head)
	binary.LittleEndian.PutUint16(rec[6:8], uint16(len(e.Target)))
	copy(rec[8:], e.Target)
	if err := s.entries.WriteAt(rec, newPos); err != nil {
		return err
	}
	return s.setHeadPos(source, uint32(newPos))
}

// Remove marks the shortcut source->target deleted. Removing an absent
// shortcut is not an error.
func (s *ShortcutContent) Remove(source uint32, target string) error {
	if !s.updatable {
		return ErrNotUpdatable
	}
	return s.walk(source, func(pos int, deleted bool, e ShortcutEntry) (bool, error) {
		if deleted || e.Target != target {
			return true, nil
		}
		flags, err := s.entries.Uint8At(pos)
		if err != nil {
			return false, err
		}
		return false, s.entries.PutUint8At(flags|shortcutFlagDeleted, pos)
	})
}

// Entries returns the live shortcuts of source, most recently added first.
func (s *ShortcutContent) Entries(source uint32) ([]ShortcutEntry, error) {
	var out []ShortcutEntry
	err := s.walk(source, func(pos int, deleted bool, e ShortcutEntry) (bool, error) {
		if !deleted {
			out = append(out, e)
		}
		return true, nil
	})
	return out, err
}

func (s *ShortcutContent) walk(source uint32, fn func(pos int, deleted bool, e ShortcutEntry) (bool, error)) error {
	pos, err := s.headPos(source)
	if err != nil {
		return err
	}
	for pos != NoPosition {
		flags, err := s.entries.Uint8At(int(pos))
		if err != nil {
			return err
		}
		prob, err := s.entries.Uint8At(int(pos) + 1)
		if err != nil {
			return err
		}
		next, err := s.entries.Uint32At(int(pos) + 2)
		if err != nil {
			return err
		}
		tlen, err := s.entries.Uint16At(int(pos) + 6)
		if err != nil {
			return err
		}
		target := make([]byte, tlen)
		if err := s.entries.ReadAt(target, int(pos)+shortcutFixedSize); err != nil {
			return err
		}

		e := ShortcutEntry{Target: string(target), Probability: prob}
		cont, err := fn(int(pos), flags&shortcutFlagDeleted != 0, e)
		if err != nil || !cont {
			return err
		}
		pos = next
	}
	return nil
}

// FlushToFile serializes the section under basePath.
func (s *ShortcutContent) FlushToFile(basePath string) error {
	return s.flushToFile(basePath, format.ShortcutFileSuffix)
}

// Close releases the underlying mapping.
func (s *ShortcutContent) Close() error {
	return s.close()
}
