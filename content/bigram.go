package content

import (
	"github.com/textinput/lexdict/format"
	"github.com/textinput/lexdict/internal/fs"
)

// BigramEntry is one word-pair association: the target terminal ID and the
// conditional probability of the pair. Timestamp is only meaningful when the
// section tracks historical info.
type BigramEntry struct {
	Target      uint32
	Probability uint8
	Timestamp   uint32
}

// entry layout: flags(1) target(4) probability(1) [timestamp(4)] next(4)
const (
	bigramFlagDeleted = 0x80

	bigramEntrySize           = 10
	bigramEntrySizeHistorical = 14
)

// BigramContent stores, per source word, the chain of bigram entries
// leading out of it.
type BigramContent struct {
	chained
	historical bool
}

// OpenBigramContent loads the section from basePath plus the fixed bigram
// file suffix.
func OpenBigramContent(fsys fs.FileSystem, basePath string, historical, updatable bool) (*BigramContent, error) {
	c, err := openChained(fsys, basePath, format.BigramFileSuffix, updatable)
	if err != nil {
		return nil, err
	}
	return &BigramContent{chained: c, historical: historical}, nil
}

// NewBigramContent creates an empty in-memory section for a fresh
// dictionary.
func NewBigramContent(fsys fs.FileSystem, historical bool) *BigramContent {
	return &BigramContent{chained: freshChained(fsys), historical: historical}
}

// HasHistoricalInfo reports whether entries carry usage-decay metadata.
func (b *BigramContent) HasHistoricalInfo() bool {
	return b.historical
}

func (b *BigramContent) entrySize() int {
	if b.historical {
		return bigramEntrySizeHistorical
	}
	return bigramEntrySize
}

func (b *BigramContent) nextOffsetPos(entryPos int) int {
	return entryPos + b.entrySize() - 4
}

// Add records a bigram from source. An existing live entry for the same
// target is updated in place; otherwise a new entry is prepended to the
// source's chain.
func (b *BigramContent) Add(source uint32, e BigramEntry) error {
	if !b.updatable {
		return ErrNotUpdatable
	}

	pos, err := b.findEntry(source, e.Target)
	if err != nil {
		return err
	}
	if pos != NoPosition {
		return b.writeEntryBody(int(pos), e)
	}

	head, err := b.headPos(source)
	if err != nil {
		return err
	}
	newPos := b.entries.Len()
	rec := make([]byte, b.entrySize())
	if err := b.entries.WriteAt(rec, newPos); err != nil {
		return err
	}
	if err := b.writeEntryBody(newPos, e); err != nil {
		return err
	}
	if err := b.entries.PutUint32At(head, b.nextOffsetPos(newPos)); err != nil {
		return err
	}
	return b.setHeadPos(source, uint32(newPos))
}

// Remove marks the bigram source->target deleted. Removing an absent pair
// is not an error.
func (b *BigramContent) Remove(source, target uint32) error {
	if !b.updatable {
		return ErrNotUpdatable
	}
	pos, err := b.findEntry(source, target)
	if err != nil || pos == NoPosition {
		return err
	}
	flags, err := b.entries.Uint8At(int(pos))
	if err != nil {
		return err
	}
	return b.entries.PutUint8At(flags|bigramFlagDeleted, int(pos))
}

// Entries returns the live bigrams leading out of source, most recently
// added first.
func (b *BigramContent) Entries(source uint32) ([]BigramEntry, error) {
	var out []BigramEntry
	err := b.walk(source, func(pos int, deleted bool) (bool, error) {
		if deleted {
			return true, nil
		}
		e, err := b.readEntryBody(pos)
		if err != nil {
			return false, err
		}
		out = append(out, e)
		return true, nil
	})
	return out, err
}

// findEntry returns the offset of the live entry for source->target, or
// NoPosition.
func (b *BigramContent) findEntry(source, target uint32) (uint32, error) {
	found := NoPosition
	err := b.walk(source, func(pos int, deleted bool) (bool, error) {
		if deleted {
			return true, nil
		}
		t, err := b.entries.Uint32At(pos + 1)
		if err != nil {
			return false, err
		}
		if t == target {
			found = uint32(pos)
			return false, nil
		}
		return true, nil
	})
	return found, err
}

// walk visits each entry of source's chain until fn returns false.
func (b *BigramContent) walk(source uint32, fn func(pos int, deleted bool) (bool, error)) error {
	pos, err := b.headPos(source)
	if err != nil {
		return err
	}
	for pos != NoPosition {
		flags, err := b.entries.Uint8At(int(pos))
		if err != nil {
			return err
		}
		cont, err := fn(int(pos), flags&bigramFlagDeleted != 0)
		if err != nil || !cont {
			return err
		}
		pos, err = b.entries.Uint32At(b.nextOffsetPos(int(pos)))
		if err != nil {
			return err
		}
	}
	return nil
}

// writeEntryBody stores everything but the flags' deleted bit and the next
// pointer.
func (b *BigramContent) writeEntryBody(pos int, e BigramEntry) error {
	if err := b.entries.PutUint32At(e.Target, pos+1); err != nil {
		return err
	}
	if err := b.entries.PutUint8At(e.Probability, pos+5); err != nil {
		return err
	}
	if b.historical {
		return b.entries.PutUint32At(e.Timestamp, pos+6)
	}
	return nil
}

func (b *BigramContent) readEntryBody(pos int) (BigramEntry, error) {
	var e BigramEntry
	var err error
	if e.Target, err = b.entries.Uint32At(pos + 1); err != nil {
		return e, err
	}
	if e.Probability, err = b.entries.Uint8At(pos + 5); err != nil {
		return e, err
	}
	if b.historical {
		if e.Timestamp, err = b.entries.Uint32At(pos + 6); err != nil {
			return e, err
		}
	}
	return e, nil
}

// FlushToFile serializes the section under basePath.
func (b *BigramContent) FlushToFile(basePath string) error {
	return b.flushToFile(basePath, format.BigramFileSuffix)
}

// Close releases the underlying mapping.
func (b *BigramContent) Close() error {
	return b.close()
}
