package content

import (
	"encoding/binary"

	"github.com/textinput/lexdict/format"
	"github.com/textinput/lexdict/internal/fs"
)

// ProbabilityEntry is the per-word record of the probability section.
// Timestamp, Level and Count are only meaningful when the section tracks
// historical info; they decay stale unigram probabilities over time.
type ProbabilityEntry struct {
	Flags       uint8
	Probability uint8
	Timestamp   uint32
	Level       uint8
	Count       uint8
}

const (
	probRecordSize           = 2
	probRecordSizeHistorical = 8
)

// ProbabilityContent is a fixed-width record table indexed by terminal ID.
// The record width switches on whether historical info is tracked, which is
// decided by the header policy at construction and never changes for the
// lifetime of a dictionary file.
type ProbabilityContent struct {
	section
	historical bool
}

// OpenProbabilityContent loads the section from basePath plus the fixed
// probability file suffix.
func OpenProbabilityContent(fsys fs.FileSystem, basePath string, historical, updatable bool) (*ProbabilityContent, error) {
	sec, err := openSection(fsys, basePath, format.ProbabilityFileSuffix, updatable)
	if err != nil {
		return nil, err
	}
	p := &ProbabilityContent{section: sec, historical: historical}
	if sec.buf.Len()%p.recordSize() != 0 {
		sec.close()
		return nil, ErrCorrupt
	}
	return p, nil
}

// NewProbabilityContent creates an empty in-memory section for a fresh
// dictionary.
func NewProbabilityContent(fsys fs.FileSystem, historical bool) *ProbabilityContent {
	return &ProbabilityContent{section: freshSection(fsys), historical: historical}
}

// HasHistoricalInfo reports whether records carry usage-decay metadata.
func (p *ProbabilityContent) HasHistoricalInfo() bool {
	return p.historical
}

func (p *ProbabilityContent) recordSize() int {
	if p.historical {
		return probRecordSizeHistorical
	}
	return probRecordSize
}

// Count returns the number of records.
func (p *ProbabilityContent) Count() int {
	return p.buf.Len() / p.recordSize()
}

// EntryAt returns the record for terminal ID id.
func (p *ProbabilityContent) EntryAt(id uint32) (ProbabilityEntry, error) {
	if int(id) >= p.Count() {
		return ProbabilityEntry{}, ErrInvalidTerminal
	}
	rec := make([]byte, p.recordSize())
	if err := p.buf.ReadAt(rec, int(id)*p.recordSize()); err != nil {
		return ProbabilityEntry{}, err
	}
	e := ProbabilityEntry{Flags: rec[0], Probability: rec[1]}
	if p.historical {
		e.Timestamp = binary.LittleEndian.Uint32(rec[2:6])
		e.Level = rec[6]
		e.Count = rec[7]
	}
	return e, nil
}

// SetEntry stores the record for terminal ID id. As with the terminal
// table, id may extend the table by exactly one record.
func (p *ProbabilityContent) SetEntry(id uint32, e ProbabilityEntry) error {
	if !p.updatable {
		return ErrNotUpdatable
	}
	if int(id) > p.Count() {
		return ErrInvalidTerminal
	}
	rec := make([]byte, p.recordSize())
	rec[0] = e.Flags
	rec[1] = e.Probability
	if p.historical {
		binary.LittleEndian.PutUint32(rec[2:6], e.Timestamp)
		rec[6] = e.Level
		rec[7] = e.Count
	}
	return p.buf.WriteAt(rec, int(id)*p.recordSize())
}

// FlushToFile serializes the section under basePath.
func (p *ProbabilityContent) FlushToFile(basePath string) error {
	return p.flushToFile(basePath, format.ProbabilityFileSuffix)
}

// Close releases the underlying mapping.
func (p *ProbabilityContent) Close() error {
	return p.close()
}
