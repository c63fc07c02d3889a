package lexdict

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/textinput/lexdict/buffer"
	"github.com/textinput/lexdict/content"
	"github.com/textinput/lexdict/format"
	"github.com/textinput/lexdict/header"
	"github.com/textinput/lexdict/internal/dictfile"
	"github.com/textinput/lexdict/internal/mmap"
)

var (
	// ErrMissingHeader is returned when OpenBuffers is called without a
	// header mapping. This is caller misuse, not a recoverable I/O state.
	ErrMissingHeader = errors.New("lexdict: header mapping must be valid to open dictionary buffers")
	// ErrNotUpdatable is returned when Flush is called on a dictionary
	// opened read-only.
	ErrNotUpdatable = errors.New("lexdict: dictionary is not updatable")
	// ErrClosed is returned when operating on closed buffers.
	ErrClosed = errors.New("lexdict: buffers are closed")
)

// Buffers owns every byte region of one open dictionary: the header
// mapping (absent for fresh dictionaries), the header and trie growable
// buffers, and the four content sections. All owned regions share the
// Buffers' lifetime; Close releases them exactly once.
type Buffers struct {
	opts options

	headerMapping *mmap.Mapping // nil for fresh dictionaries
	trieMapping   *mmap.Mapping // nil for fresh dictionaries

	policy    *header.Policy
	headerBuf *buffer.Growable
	trieBuf   *buffer.Growable

	terminals     *content.TerminalPosTable
	probabilities *content.ProbabilityContent
	bigrams       *content.BigramContent
	shortcuts     *content.ShortcutContent

	updatable bool
	closed    atomic.Bool
}

// BasePath returns the path prefix the dictionary's files share: the
// directory joined with its own base name.
func BasePath(dictDir string) string {
	return filepath.Join(dictDir, filepath.Base(dictDir))
}

// Open maps the header file of the dictionary in dictDir and opens buffers
// over it. updatable selects writable mappings throughout.
func Open(dictDir string, version format.Version, updatable bool, optFns ...Option) (*Buffers, error) {
	headerMapping, err := mmap.Open(BasePath(dictDir), format.HeaderFileSuffix, updatable)
	if err != nil {
		return nil, fmt.Errorf("lexdict: open header of %s: %w", dictDir, err)
	}
	b, err := OpenBuffers(dictDir, headerMapping, version, optFns...)
	if err != nil {
		headerMapping.Close()
		return nil, err
	}
	return b, nil
}

// OpenBuffers opens buffers for the dictionary in dictDir over a
// previously-mapped header region. Ownership of headerMapping transfers on
// success; on error the caller still owns it.
//
// The updatable flag of the result is derived from the header mapping's
// writability; the trie file and the content sections are opened to match.
func OpenBuffers(dictDir string, headerMapping *mmap.Mapping, version format.Version, optFns ...Option) (*Buffers, error) {
	opts := applyOptions(optFns)

	if headerMapping == nil {
		opts.logger.Error("header mapping missing on open", "dict", dictDir)
		return nil, ErrMissingHeader
	}
	updatable := headerMapping.Writable()

	policy, err := header.Parse(headerMapping.Bytes(), version)
	if err != nil {
		return nil, fmt.Errorf("lexdict: parse header of %s: %w", dictDir, err)
	}

	basePath := BasePath(dictDir)
	trieMapping, err := mmap.Open(basePath, format.TrieFileSuffix, updatable)
	if err != nil {
		return nil, fmt.Errorf("lexdict: open trie of %s: %w", dictDir, err)
	}

	b := &Buffers{
		opts:          opts,
		headerMapping: headerMapping,
		trieMapping:   trieMapping,
		policy:        policy,
		headerBuf:     buffer.NewBound(headerMapping.Bytes()[:policy.Size()], updatable, format.DefaultMaxAdditionalBufferSize),
		trieBuf:       buffer.NewBound(trieMapping.Bytes(), updatable, format.DefaultMaxAdditionalBufferSize),
		updatable:     updatable,
	}

	historical := policy.HasHistoricalInfo()
	if b.terminals, err = content.OpenTerminalPosTable(opts.fsys, basePath, updatable); err == nil {
		if b.probabilities, err = content.OpenProbabilityContent(opts.fsys, basePath, historical, updatable); err == nil {
			if b.bigrams, err = content.OpenBigramContent(opts.fsys, basePath, historical, updatable); err == nil {
				b.shortcuts, err = content.OpenShortcutContent(opts.fsys, basePath, updatable)
			}
		}
	}
	if err != nil {
		b.headerMapping = nil // caller keeps ownership on error
		b.Close()
		return nil, err
	}

	opts.logger.Debug("dictionary buffers opened",
		"dict", dictDir, "updatable", updatable,
		"header_size", policy.Size(), "trie_size", b.trieBuf.Len())
	return b, nil
}

// NewBuffers creates buffers for a dictionary that does not exist on disk
// yet. Everything lives in unbound growable buffers until the first Flush;
// the result is always updatable.
func NewBuffers(policy *header.Policy, maxTrieSize int, optFns ...Option) (*Buffers, error) {
	opts := applyOptions(optFns)

	if policy == nil {
		opts.logger.Error("header policy missing on create")
		return nil, ErrMissingHeader
	}

	b := &Buffers{
		opts:          opts,
		policy:        policy,
		headerBuf:     buffer.NewUnbound(format.MaxDictionarySize),
		trieBuf:       buffer.NewUnbound(maxTrieSize),
		terminals:     content.NewTerminalPosTable(opts.fsys),
		probabilities: content.NewProbabilityContent(opts.fsys, policy.HasHistoricalInfo()),
		bigrams:       content.NewBigramContent(opts.fsys, policy.HasHistoricalInfo()),
		shortcuts:     content.NewShortcutContent(opts.fsys),
		updatable:     true,
	}
	if err := policy.AppendImage(b.headerBuf); err != nil {
		return nil, fmt.Errorf("lexdict: materialize header: %w", err)
	}
	return b, nil
}

// IsUpdatable reports whether this instance accepts mutations.
func (b *Buffers) IsUpdatable() bool {
	return b.updatable
}

// Policy returns the header policy view of this dictionary.
func (b *Buffers) Policy() *header.Policy {
	return b.policy
}

// HeaderBuffer returns the growable buffer over the header bytes.
func (b *Buffers) HeaderBuffer() *buffer.Growable {
	return b.headerBuf
}

// TrieBuffer returns the growable buffer the trie lives in.
func (b *Buffers) TrieBuffer() *buffer.Growable {
	return b.trieBuf
}

// TerminalPosTable returns the terminal position lookup section.
func (b *Buffers) TerminalPosTable() *content.TerminalPosTable {
	return b.terminals
}

// ProbabilityContent returns the probability section.
func (b *Buffers) ProbabilityContent() *content.ProbabilityContent {
	return b.probabilities
}

// BigramContent returns the bigram section.
func (b *Buffers) BigramContent() *content.BigramContent {
	return b.bigrams
}

// ShortcutContent returns the shortcut section.
func (b *Buffers) ShortcutContent() *content.ShortcutContent {
	return b.shortcuts
}

// Flush stages the complete dictionary image in a temporary sibling of
// dictDir and atomically swaps it into place. headerBuf overrides the
// header image to write; pass nil to write the owned header buffer.
//
// Flush is blocking and synchronous; call it off any latency-sensitive
// path. On any error before the commit rename the canonical directory is
// unchanged.
func (b *Buffers) Flush(dictDir string, headerBuf *buffer.Growable) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if !b.updatable {
		return ErrNotUpdatable
	}
	if headerBuf == nil {
		headerBuf = b.headerBuf
	}

	w := dictfile.NewWriter(b.opts.fsys)
	err := w.Commit(dictDir, func(basePath string) error {
		if err := w.WriteBuffer(basePath, format.HeaderFileSuffix, headerBuf); err != nil {
			return err
		}
		if err := w.WriteBuffer(basePath, format.TrieFileSuffix, b.trieBuf); err != nil {
			return err
		}
		if err := b.terminals.FlushToFile(basePath); err != nil {
			return err
		}
		if err := b.probabilities.FlushToFile(basePath); err != nil {
			return err
		}
		if err := b.bigrams.FlushToFile(basePath); err != nil {
			return err
		}
		return b.shortcuts.FlushToFile(basePath)
	})
	if err != nil {
		b.opts.logger.Error("dictionary flush failed", "dict", dictDir, "error", err)
		return err
	}

	b.opts.logger.Info("dictionary flushed",
		"dict", dictDir,
		"header_size", headerBuf.Len(), "trie_size", b.trieBuf.Len())
	return nil
}

// Close releases every mapping owned by the buffers. It is idempotent;
// no buffer or section may be used afterwards.
func (b *Buffers) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	var errs []error
	if b.shortcuts != nil {
		errs = append(errs, b.shortcuts.Close())
	}
	if b.bigrams != nil {
		errs = append(errs, b.bigrams.Close())
	}
	if b.probabilities != nil {
		errs = append(errs, b.probabilities.Close())
	}
	if b.terminals != nil {
		errs = append(errs, b.terminals.Close())
	}
	if b.trieMapping != nil {
		errs = append(errs, b.trieMapping.Close())
	}
	if b.headerMapping != nil {
		errs = append(errs, b.headerMapping.Close())
	}
	return errors.Join(errs...)
}
