// Package content implements the four per-dictionary content sections: the
// terminal position lookup table, the probability table, the bigram table
// and the shortcut table.
//
// Each section owns one growable buffer. Loaded from a dictionary directory,
// the buffer is bound to a memory mapping of the section's file and updates
// accumulate in the buffer's extension (or in place, for an updatable
// mapping). Constructed fresh, the buffer is unbound and everything lives on
// the heap until the first flush.
//
// The orchestrator in the root package treats sections as opaque: it only
// sequences their construction and their FlushToFile calls. The encodings
// here are private to this package.
package content
