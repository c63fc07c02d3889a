package content

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/textinput/lexdict/format"
	"github.com/textinput/lexdict/internal/fs"
)

const terminalSlotSize = 4

// TerminalPosTable maps a terminal word ID to the byte offset of that
// word's terminal node inside the trie buffer. Slots holding NoPosition are
// free; a roaring bitmap over the live IDs supports iteration and ID reuse
// without scanning the table.
type TerminalPosTable struct {
	section
	live  *roaring.Bitmap
	freed []uint32
}

// OpenTerminalPosTable loads the table from basePath plus the fixed terminal
// file suffix.
func OpenTerminalPosTable(fsys fs.FileSystem, basePath string, updatable bool) (*TerminalPosTable, error) {
	sec, err := openSection(fsys, basePath, format.TerminalFileSuffix, updatable)
	if err != nil {
		return nil, err
	}
	if sec.buf.Len()%terminalSlotSize != 0 {
		sec.close()
		return nil, ErrCorrupt
	}

	t := &TerminalPosTable{section: sec, live: roaring.New()}
	for id := uint32(0); int(id) < t.Count(); id++ {
		pos, err := t.buf.Uint32At(int(id) * terminalSlotSize)
		if err != nil {
			sec.close()
			return nil, err
		}
		if pos == NoPosition {
			t.freed = append(t.freed, id)
		} else {
			t.live.Add(id)
		}
	}
	return t, nil
}

// NewTerminalPosTable creates an empty in-memory table for a fresh
// dictionary.
func NewTerminalPosTable(fsys fs.FileSystem) *TerminalPosTable {
	return &TerminalPosTable{section: freshSection(fsys), live: roaring.New()}
}

// Count returns the number of allocated slots, live or freed.
func (t *TerminalPosTable) Count() int {
	return t.buf.Len() / terminalSlotSize
}

// TerminalPos returns the trie position of id.
func (t *TerminalPosTable) TerminalPos(id uint32) (uint32, error) {
	if int(id) >= t.Count() {
		return 0, ErrInvalidTerminal
	}
	pos, err := t.buf.Uint32At(int(id) * terminalSlotSize)
	if err != nil {
		return 0, err
	}
	if pos == NoPosition {
		return 0, ErrInvalidTerminal
	}
	return pos, nil
}

// SetTerminalPos records the trie position of id. The id must address an
// existing slot or the one directly past the table's end; holes are not
// supported.
func (t *TerminalPosTable) SetTerminalPos(id, pos uint32) error {
	if !t.updatable {
		return ErrNotUpdatable
	}
	if int(id) > t.Count() {
		return ErrInvalidTerminal
	}
	if err := t.buf.PutUint32At(pos, int(id)*terminalSlotSize); err != nil {
		return err
	}
	t.live.Add(id)
	return nil
}

// AllocateID returns a terminal ID that is not in use, preferring IDs freed
// by Release so the table stays dense.
func (t *TerminalPosTable) AllocateID() (uint32, error) {
	if !t.updatable {
		return 0, ErrNotUpdatable
	}
	for len(t.freed) > 0 {
		id := t.freed[len(t.freed)-1]
		t.freed = t.freed[:len(t.freed)-1]
		if !t.live.Contains(id) {
			return id, nil
		}
	}
	id := uint32(t.Count())
	if err := t.buf.PutUint32At(NoPosition, int(id)*terminalSlotSize); err != nil {
		return 0, err
	}
	return id, nil
}

// Release frees id for reuse. The slot keeps its place in the table but is
// marked unset. Releasing an id whose slot is already unset is a no-op, so
// freed never holds the same id twice.
func (t *TerminalPosTable) Release(id uint32) error {
	if !t.updatable {
		return ErrNotUpdatable
	}
	if int(id) >= t.Count() {
		return ErrInvalidTerminal
	}
	pos, err := t.buf.Uint32At(int(id) * terminalSlotSize)
	if err != nil {
		return err
	}
	if pos == NoPosition {
		return nil
	}
	if err := t.buf.PutUint32At(NoPosition, int(id)*terminalSlotSize); err != nil {
		return err
	}
	t.live.Remove(id)
	t.freed = append(t.freed, id)
	return nil
}

// LiveCount returns the number of IDs currently holding a position.
func (t *TerminalPosTable) LiveCount() int {
	return int(t.live.GetCardinality())
}

// ForEachLive calls fn for every live ID in ascending order until fn returns
// false.
func (t *TerminalPosTable) ForEachLive(fn func(id, pos uint32) bool) error {
	it := t.live.Iterator()
	for it.HasNext() {
		id := it.Next()
		pos, err := t.buf.Uint32At(int(id) * terminalSlotSize)
		if err != nil {
			return err
		}
		if !fn(id, pos) {
			return nil
		}
	}
	return nil
}

// FlushToFile serializes the table under basePath.
func (t *TerminalPosTable) FlushToFile(basePath string) error {
	return t.flushToFile(basePath, format.TerminalFileSuffix)
}

// Close releases the underlying mapping.
func (t *TerminalPosTable) Close() error {
	return t.close()
}
