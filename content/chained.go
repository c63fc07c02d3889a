package content

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/textinput/lexdict/buffer"
	"github.com/textinput/lexdict/format"
	"github.com/textinput/lexdict/internal/fs"
	"github.com/textinput/lexdict/internal/mmap"
)

// chained is the backing state of the bigram and shortcut sections: a head
// table holding, per source terminal ID, the offset of the first entry of
// that word's chain, and an entry area the chains live in. Entries link to
// the next entry of the same source; chains terminate with NoPosition.
//
// On disk the section file is an 8-byte prelude (head length, entry area
// length) followed by the two areas. When loaded, each area is bound to its
// slice of the mapping, so in-place head updates and probability rewrites
// hit the file directly while new entries accumulate in the extensions.
type chained struct {
	fsys      fs.FileSystem
	mapping   *mmap.Mapping
	head      *buffer.Growable
	entries   *buffer.Growable
	updatable bool
}

const chainedPreludeSize = 8

func openChained(fsys fs.FileSystem, basePath, suffix string, updatable bool) (chained, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	m, err := mmap.Open(basePath, suffix, updatable)
	if err != nil {
		return chained{}, fmt.Errorf("content: open %s%s: %w", basePath, suffix, err)
	}
	raw := m.Bytes()
	if len(raw) == 0 {
		// A fresh flush of an empty section writes just the prelude;
		// a zero-length file is accepted as fully empty.
		return chained{
			fsys:      fsys,
			mapping:   m,
			head:      buffer.NewUnbound(format.DefaultMaxAdditionalBufferSize),
			entries:   buffer.NewUnbound(format.DefaultMaxAdditionalBufferSize),
			updatable: updatable,
		}, nil
	}
	if len(raw) < chainedPreludeSize {
		m.Close()
		return chained{}, ErrCorrupt
	}
	headLen := int(binary.LittleEndian.Uint32(raw[0:4]))
	entriesLen := int(binary.LittleEndian.Uint32(raw[4:8]))
	if headLen%4 != 0 || chainedPreludeSize+headLen+entriesLen != len(raw) {
		m.Close()
		return chained{}, ErrCorrupt
	}
	writable := m.Writable()
	return chained{
		fsys:      fsys,
		mapping:   m,
		head:      buffer.NewBound(raw[chainedPreludeSize:chainedPreludeSize+headLen], writable, format.DefaultMaxAdditionalBufferSize),
		entries:   buffer.NewBound(raw[chainedPreludeSize+headLen:], writable, format.DefaultMaxAdditionalBufferSize),
		updatable: updatable,
	}, nil
}

func freshChained(fsys fs.FileSystem) chained {
	if fsys == nil {
		fsys = fs.Default
	}
	return chained{
		fsys:      fsys,
		head:      buffer.NewUnbound(format.DefaultMaxAdditionalBufferSize),
		entries:   buffer.NewUnbound(format.DefaultMaxAdditionalBufferSize),
		updatable: true,
	}
}

// headCount returns the number of head slots.
func (c *chained) headCount() int {
	return c.head.Len() / 4
}

// headPos returns the chain head offset for id, or NoPosition when the word
// has no chain.
func (c *chained) headPos(id uint32) (uint32, error) {
	if int(id) >= c.headCount() {
		return NoPosition, nil
	}
	return c.head.Uint32At(int(id) * 4)
}

// setHeadPos stores the chain head for id, padding any intermediate slots
// with NoPosition. Source IDs are sparse relative to the head table only at
// the tail, never in the middle.
func (c *chained) setHeadPos(id, pos uint32) error {
	for c.headCount() <= int(id) {
		if err := c.head.PutUint32At(NoPosition, c.head.Len()); err != nil {
			return err
		}
	}
	return c.head.PutUint32At(pos, int(id)*4)
}

func (c *chained) flushToFile(basePath, suffix string) error {
	path := basePath + suffix
	f, err := c.fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("content: create %s: %w", path, err)
	}

	write := func() error {
		var prelude [chainedPreludeSize]byte
		binary.LittleEndian.PutUint32(prelude[0:4], uint32(c.head.Len()))
		binary.LittleEndian.PutUint32(prelude[4:8], uint32(c.entries.Len()))
		if _, err := f.Write(prelude[:]); err != nil {
			return err
		}
		if _, err := c.head.WriteTo(f); err != nil {
			return err
		}
		if _, err := c.entries.WriteTo(f); err != nil {
			return err
		}
		return f.Sync()
	}

	if err := write(); err != nil {
		f.Close()
		return fmt.Errorf("content: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("content: close %s: %w", path, err)
	}
	return nil
}

func (c *chained) close() error {
	if c.mapping == nil {
		return nil
	}
	return c.mapping.Close()
}

// IsUpdatable reports whether mutations are accepted.
func (c *chained) IsUpdatable() bool {
	return c.updatable
}
