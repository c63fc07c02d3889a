// Package lexdict is the persistence layer for a mutable, trie-backed
// word-prediction dictionary.
//
// A dictionary on disk is a directory: one header file, one trie file and
// four content-section files (terminal position lookup, probability, bigram,
// shortcut), all named after the directory's base name. Opened read-only,
// every file is memory mapped and lookups are zero-copy. Opened updatable,
// the same mappings are writable and updates past the mapped capacity
// accumulate in growable in-memory extensions until the next flush.
//
// A flush stages the complete new image in a temporary sibling directory
// and renames it over the canonical path. The rename is the only commit
// point: a crash or failure at any earlier step leaves the previous
// dictionary byte-for-byte intact.
//
//	policy := header.New(format.Version4, map[string]string{header.KeyLocale: "en_US"})
//	b, err := lexdict.NewBuffers(policy, 4096)
//	if err != nil { ... }
//	defer b.Close()
//
//	// ... write trie bytes, register words, add bigrams ...
//
//	if err := b.Flush("/data/dicts/main_en", nil); err != nil { ... }
//
// A Buffers instance has exactly one in-process writer; the caller
// serializes mutations and flushes against concurrent readers. Instances
// opened read-only never mutate their mappings and are safe for concurrent
// lookups with no coordination.
package lexdict
