package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textinput/lexdict/format"
	"github.com/textinput/lexdict/internal/dictfile"
	"github.com/textinput/lexdict/internal/fs"
)

// writeTestDict lays out a minimal dictionary directory by hand; the
// archive layer only cares about file names and bytes, not their content.
func writeTestDict(t *testing.T, dictDir string) map[string][]byte {
	t.Helper()
	require.NoError(t, os.MkdirAll(dictDir, 0o700))

	base := filepath.Base(dictDir)
	files := map[string][]byte{
		base + format.HeaderFileSuffix:      []byte("header bytes"),
		base + format.TrieFileSuffix:        bytes.Repeat([]byte{0xAB}, 4096),
		base + format.TerminalFileSuffix:    {1, 0, 0, 0, 2, 0, 0, 0},
		base + format.ProbabilityFileSuffix: {100, 0, 101, 0},
	}
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dictDir, name), data, 0o600))
	}
	return files
}

func TestPackUnpack_RoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name  string
		codec Codec
	}{
		{"zstd", CodecZstd},
		{"lz4", CodecLZ4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			srcDir := filepath.Join(t.TempDir(), "main_en")
			files := writeTestDict(t, srcDir)

			var buf bytes.Buffer
			require.NoError(t, Pack(&buf, srcDir, WithCodec(tc.codec)))

			dstDir := filepath.Join(t.TempDir(), "main_en")
			require.NoError(t, Unpack(&buf, dstDir))

			for name, want := range files {
				got, err := os.ReadFile(filepath.Join(dstDir, name))
				require.NoError(t, err)
				assert.Equal(t, want, got, "file %s", name)
			}
			_, err := os.Stat(dictfile.TempDirPath(dstDir))
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestUnpack_RenamesToTargetBase(t *testing.T) {
	srcDir := filepath.Join(t.TempDir(), "main_en")
	writeTestDict(t, srcDir)

	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, srcDir))

	dstDir := filepath.Join(t.TempDir(), "backup_en")
	require.NoError(t, Unpack(&buf, dstDir))

	_, err := os.Stat(filepath.Join(dstDir, "backup_en"+format.HeaderFileSuffix))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dstDir, "main_en"+format.HeaderFileSuffix))
	assert.True(t, os.IsNotExist(err))
}

func TestUnpack_ReplacesExistingAtomically(t *testing.T) {
	srcDir := filepath.Join(t.TempDir(), "main_en")
	writeTestDict(t, srcDir)

	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, srcDir))

	dstDir := filepath.Join(t.TempDir(), "main_en")
	writeTestDict(t, dstDir)
	stale := filepath.Join(dstDir, "stray.txt")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))

	require.NoError(t, Unpack(&buf, dstDir))

	// The old directory is replaced wholesale, strays included.
	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dstDir, "main_en"+format.HeaderFileSuffix))
	require.NoError(t, err)
}

func TestUnpack_TruncatedStreamLeavesTargetIntact(t *testing.T) {
	srcDir := filepath.Join(t.TempDir(), "main_en")
	writeTestDict(t, srcDir)

	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, srcDir))
	truncated := buf.Bytes()[:buf.Len()/2]

	dstDir := filepath.Join(t.TempDir(), "main_en")
	writeTestDict(t, dstDir)
	before, err := os.ReadFile(filepath.Join(dstDir, "main_en"+format.TrieFileSuffix))
	require.NoError(t, err)

	err = Unpack(bytes.NewReader(truncated), dstDir)
	require.Error(t, err)

	after, err := os.ReadFile(filepath.Join(dstDir, "main_en"+format.TrieFileSuffix))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	_, err = os.Stat(dictfile.TempDirPath(dstDir))
	assert.True(t, os.IsNotExist(err))
}

func TestUnpack_StagingFailureLeavesTargetIntact(t *testing.T) {
	srcDir := filepath.Join(t.TempDir(), "main_en")
	writeTestDict(t, srcDir)

	var buf bytes.Buffer
	require.NoError(t, Pack(&buf, srcDir))

	dstDir := filepath.Join(t.TempDir(), "main_en")
	want := writeTestDict(t, dstDir)

	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule(format.TempDirSuffix+string(os.PathSeparator), fs.Fault{FailAfterBytes: 0})

	err := Unpack(bytes.NewReader(buf.Bytes()), dstDir, withFileSystem(faulty))
	require.ErrorIs(t, err, dictfile.ErrPartialWrite)

	// The installed dictionary is untouched and the staging dir is gone.
	for name, data := range want {
		got, rerr := os.ReadFile(filepath.Join(dstDir, name))
		require.NoError(t, rerr)
		assert.Equal(t, data, got, "file %s", name)
	}
	_, err = os.Stat(dictfile.TempDirPath(dstDir))
	assert.True(t, os.IsNotExist(err))
}

func TestUnpack_UnknownCodec(t *testing.T) {
	err := Unpack(bytes.NewReader([]byte("definitely not a frame")), t.TempDir())
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestPack_NotADictionary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	var buf bytes.Buffer
	err := Pack(&buf, dir)
	assert.ErrorIs(t, err, ErrNotDictionary)
}

func TestEntrySuffix_Validation(t *testing.T) {
	for _, name := range []string{
		"",
		"../evil.header",
		"sub/dict.header",
		`sub\dict.header`,
		"dict.unknown",
		format.HeaderFileSuffix, // suffix with no base name
	} {
		_, err := entrySuffix(name)
		assert.ErrorIs(t, err, ErrBadEntry, "name %q", name)
	}

	suffix, err := entrySuffix("main_en" + format.BigramFileSuffix)
	require.NoError(t, err)
	assert.Equal(t, format.BigramFileSuffix, suffix)
}
