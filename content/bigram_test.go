package content

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textinput/lexdict/format"
)

func TestBigramContent_AddAndList(t *testing.T) {
	b := NewBigramContent(nil, false)

	require.NoError(t, b.Add(0, BigramEntry{Target: 1, Probability: 50}))
	require.NoError(t, b.Add(0, BigramEntry{Target: 2, Probability: 60}))
	require.NoError(t, b.Add(7, BigramEntry{Target: 3, Probability: 70}))

	got, err := b.Entries(0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Most recently added first.
	assert.Equal(t, uint32(2), got[0].Target)
	assert.Equal(t, uint32(1), got[1].Target)

	got, err = b.Entries(7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint8(70), got[0].Probability)

	// A source without bigrams yields nothing, even past the head table.
	got, err = b.Entries(3)
	require.NoError(t, err)
	assert.Empty(t, got)
	got, err = b.Entries(1000)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBigramContent_AddUpdatesExisting(t *testing.T) {
	b := NewBigramContent(nil, false)

	require.NoError(t, b.Add(0, BigramEntry{Target: 1, Probability: 10}))
	require.NoError(t, b.Add(0, BigramEntry{Target: 1, Probability: 90}))

	got, err := b.Entries(0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint8(90), got[0].Probability)
}

func TestBigramContent_Remove(t *testing.T) {
	b := NewBigramContent(nil, false)

	require.NoError(t, b.Add(0, BigramEntry{Target: 1, Probability: 10}))
	require.NoError(t, b.Add(0, BigramEntry{Target: 2, Probability: 20}))
	require.NoError(t, b.Remove(0, 1))

	got, err := b.Entries(0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(2), got[0].Target)

	// Absent pair is a no-op.
	require.NoError(t, b.Remove(0, 42))
	require.NoError(t, b.Remove(9, 1))

	// Re-adding a removed pair creates a fresh live entry.
	require.NoError(t, b.Add(0, BigramEntry{Target: 1, Probability: 33}))
	got, err = b.Entries(0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(1), got[0].Target)
	assert.Equal(t, uint8(33), got[0].Probability)
}

func TestBigramContent_HistoricalTimestamps(t *testing.T) {
	base := basePathIn(t)

	b := NewBigramContent(nil, true)
	require.NoError(t, b.Add(0, BigramEntry{Target: 5, Probability: 80, Timestamp: 1234567}))
	require.NoError(t, b.FlushToFile(base))

	re, err := OpenBigramContent(nil, base, true, false)
	require.NoError(t, err)
	defer re.Close()

	got, err := re.Entries(0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint32(1234567), got[0].Timestamp)
}

func TestBigramContent_FlushAndReopen(t *testing.T) {
	base := basePathIn(t)

	b := NewBigramContent(nil, false)
	require.NoError(t, b.Add(2, BigramEntry{Target: 3, Probability: 11}))
	require.NoError(t, b.Add(2, BigramEntry{Target: 4, Probability: 22}))
	require.NoError(t, b.Add(5, BigramEntry{Target: 6, Probability: 33}))
	require.NoError(t, b.FlushToFile(base))

	re, err := OpenBigramContent(nil, base, false, true)
	require.NoError(t, err)
	defer re.Close()

	got, err := re.Entries(2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Updates keep working after reopen; new entries extend the mapped
	// area.
	require.NoError(t, re.Add(5, BigramEntry{Target: 7, Probability: 44}))
	got, err = re.Entries(5)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestBigramContent_ReadOnly(t *testing.T) {
	base := basePathIn(t)

	b := NewBigramContent(nil, false)
	require.NoError(t, b.Add(0, BigramEntry{Target: 1, Probability: 10}))
	require.NoError(t, b.FlushToFile(base))

	ro, err := OpenBigramContent(nil, base, false, false)
	require.NoError(t, err)
	defer ro.Close()

	assert.ErrorIs(t, ro.Add(0, BigramEntry{Target: 2}), ErrNotUpdatable)
	assert.ErrorIs(t, ro.Remove(0, 1), ErrNotUpdatable)
}

func TestBigramContent_CorruptPrelude(t *testing.T) {
	base := basePathIn(t)
	require.NoError(t, os.WriteFile(base+format.BigramFileSuffix, []byte{1, 2, 3}, 0o600))

	_, err := OpenBigramContent(nil, base, false, false)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBigramContent_EmptyFlushRoundTrip(t *testing.T) {
	base := basePathIn(t)

	b := NewBigramContent(nil, false)
	require.NoError(t, b.FlushToFile(base))

	re, err := OpenBigramContent(nil, base, false, true)
	require.NoError(t, err)
	defer re.Close()

	got, err := re.Entries(0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
